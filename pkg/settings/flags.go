package settings

import (
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// Flags are command-line values layered over the config file. Only flags
// the user actually set override the file.
type Flags struct {
	fs         *pflag.FlagSet
	values     Settings
	configPath string
}

// RegisterFlags defines the settings flags on fs.
func RegisterFlags(fs *pflag.FlagSet) *Flags {
	d := DefaultSettings()
	f := &Flags{fs: fs}

	fs.StringVarP(&f.configPath, "config", "c", "", "Config file (default $XDG_CONFIG_HOME/pigate/config.yaml)")
	fs.IntVarP(&f.values.Port, "port", "p", d.Port, "Listen port (PORT env overrides)")
	fs.StringVar(&f.values.Room, "room", d.Room, "Room identifier")
	fs.StringVar(&f.values.AccessCode, "code", d.AccessCode, "Access code shown on the projector")
	fs.BoolVar(&f.values.RandomCode, "random-code", false, "Generate a random access code at start")
	fs.StringVarP(&f.values.StaticDir, "static", "d", d.StaticDir, "Directory with the client and host pages")
	fs.StringVar(&f.values.HostPath, "host-path", d.HostPath, "URL path of the host (receiver) page")
	fs.StringVar(&f.values.CertFile, "cert", "", "TLS certificate (enables HTTPS together with --key)")
	fs.StringVar(&f.values.KeyFile, "key", "", "TLS private key")
	fs.StringVar(&f.values.LogLevel, "log-level", d.LogLevel, "Log level: trace, debug, info, warn, error")
	fs.BoolVar(&f.values.TrustProxy, "trust-proxy", false, "Use X-Forwarded-For as the client identity")
	fs.DurationVar(&f.values.RateWindow, "rate-window", d.RateWindow, "Window for counting failed attempts")
	fs.IntVar(&f.values.MaxAttempts, "max-attempts", d.MaxAttempts, "Failed attempts in the window before lockout")
	fs.DurationVar(&f.values.Lockout, "lockout", d.Lockout, "Lockout duration")
	fs.StringSliceVar(&f.values.STUNServers, "stun", d.STUNServers, "STUN server URLs")
	fs.StringVar(&f.values.TURNServer, "turn", "", "TURN server URL (e.g., turn:turn.example.com:3478)")
	fs.StringVar(&f.values.TURNUser, "turn-user", "", "TURN server username")
	fs.StringVar(&f.values.TURNPass, "turn-pass", "", "TURN server password")

	return f
}

// Resolve loads the config file, applies changed flags and the PORT
// environment variable, and validates the result.
func (f *Flags) Resolve() (Settings, *Manager, error) {
	m, err := NewManager(f.configPath)
	if err != nil {
		return DefaultSettings(), nil, err
	}

	s, err := m.Load()
	if err != nil {
		return s, m, err
	}

	s = f.apply(s)

	// PORT env var for cloud deployments
	if envPort := os.Getenv("PORT"); envPort != "" {
		port, err := strconv.Atoi(envPort)
		if err != nil {
			return s, m, errors.Wrapf(err, "invalid PORT %q", envPort)
		}
		s.Port = port
	}

	return Validate(s), m, nil
}

func (f *Flags) apply(s Settings) Settings {
	v := f.values
	set := func(name string, apply func()) {
		if f.fs.Changed(name) {
			apply()
		}
	}

	set("port", func() { s.Port = v.Port })
	set("room", func() { s.Room = v.Room })
	set("code", func() { s.AccessCode = v.AccessCode })
	set("random-code", func() { s.RandomCode = v.RandomCode })
	set("static", func() { s.StaticDir = v.StaticDir })
	set("host-path", func() { s.HostPath = v.HostPath })
	set("cert", func() { s.CertFile = v.CertFile })
	set("key", func() { s.KeyFile = v.KeyFile })
	set("log-level", func() { s.LogLevel = v.LogLevel })
	set("trust-proxy", func() { s.TrustProxy = v.TrustProxy })
	set("rate-window", func() { s.RateWindow = v.RateWindow })
	set("max-attempts", func() { s.MaxAttempts = v.MaxAttempts })
	set("lockout", func() { s.Lockout = v.Lockout })
	set("stun", func() { s.STUNServers = v.STUNServers })
	set("turn", func() { s.TURNServer = v.TURNServer })
	set("turn-user", func() { s.TURNUser = v.TURNUser })
	set("turn-pass", func() { s.TURNPass = v.TURNPass })

	return s
}
