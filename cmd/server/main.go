// Command server runs the pigate access gate and signaling server without
// the dashboard, for service deployments.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/tomaslejdung/pigate/pkg/api"
	"github.com/tomaslejdung/pigate/pkg/log"
	"github.com/tomaslejdung/pigate/pkg/settings"
)

func main() {
	fs := pflag.NewFlagSet("server", pflag.ExitOnError)
	flags := settings.RegisterFlags(fs)
	_ = fs.Parse(os.Args[1:])

	s, _, err := flags.Resolve()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load settings")
	}
	log.SetLogger(s.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := api.New(s).ListenAndServe(ctx); err != nil {
		logrus.WithError(err).Fatal("Server error")
	}
}
