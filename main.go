package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/tomaslejdung/pigate/pkg/api"
	"github.com/tomaslejdung/pigate/pkg/log"
	"github.com/tomaslejdung/pigate/pkg/settings"
)

// Config holds runtime configuration that is not part of the saved settings.
type Config struct {
	Headless bool
	Save     bool
	Help     bool
}

func parseFlags(args []string) (Config, *settings.Flags, error) {
	config := Config{}
	fs := pflag.NewFlagSet("pigate", pflag.ContinueOnError)
	fs.Usage = printHelp

	flags := settings.RegisterFlags(fs)
	fs.BoolVar(&config.Headless, "headless", false, "Run the server without the dashboard")
	fs.BoolVar(&config.Save, "save", false, "Write the effective settings to the config file")
	fs.BoolVarP(&config.Help, "help", "h", false, "Show help")

	if err := fs.Parse(args); err != nil {
		return config, nil, err
	}
	return config, flags, nil
}

func printHelp() {
	fmt.Println(`pigate - access gate and signaling server for the projector

Usage: pigate [options]

Options:
  --config, -c <file>    Config file (default: $XDG_CONFIG_HOME/pigate/config.yaml)
  --port, -p <port>      Listen port (default: 3000, PORT env overrides)
  --room <name>          Room identifier (default: lab)
  --code <code>          Access code shown on the projector
  --random-code          Generate a random access code at start
  --static, -d <dir>     Directory with the client and host pages (default: static)
  --host-path <path>     URL path of the host page (default: /youwi11nevergetme)
  --cert <file>          TLS certificate (HTTPS together with --key)
  --key <file>           TLS private key
  --log-level <level>    trace, debug, info, warn, error (default: info)
  --headless             Run the server without the dashboard
  --save                 Write the effective settings to the config file
  --help, -h             Show help

Access Options:
  --trust-proxy          Use X-Forwarded-For as the client identity
  --rate-window <dur>    Window for counting failed attempts (default: 20s)
  --max-attempts <n>     Failed attempts in the window before lockout (default: 6)
  --lockout <dur>        Lockout duration (default: 24h)

Network Options:
  --stun <urls>          STUN server URLs, comma separated
  --turn <url>           TURN server URL (e.g., turn:turn.example.com:3478)
  --turn-user <user>     TURN server username
  --turn-pass <pass>     TURN server password

Dashboard Controls:
  r             Rotate the access code
  u             Clear all lockouts
  q             Quit`)
}

func main() {
	config, flags, err := parseFlags(os.Args[1:])
	if err != nil {
		if err == pflag.ErrHelp {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if config.Help {
		printHelp()
		return
	}

	s, manager, err := flags.Resolve()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load settings: %v\n", err)
		os.Exit(1)
	}

	log.SetLogger(s.LogLevel)

	if config.Save {
		if err := manager.Save(s); err != nil {
			logrus.WithError(err).Fatal("Failed to save settings")
		}
		logrus.Infof("Settings saved to %s", manager.Path())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := api.New(s)

	if config.Headless {
		if err := srv.ListenAndServe(ctx); err != nil {
			logrus.WithError(err).Fatal("Server error")
		}
		return
	}

	if err := RunTUI(ctx, srv); err != nil {
		fmt.Fprintf(os.Stderr, "Dashboard error: %v\n", err)
		os.Exit(1)
	}
}
