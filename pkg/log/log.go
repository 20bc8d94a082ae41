// Package log configures the process-wide logrus logger.
package log

import (
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// SetLogger sets the default logger's level and formatter.
// Unknown levels fall back to info.
func SetLogger(level string) {
	customFormatter := new(logrus.TextFormatter)
	customFormatter.TimestampFormat = time.RFC3339
	customFormatter.FullTimestamp = true
	logrus.SetFormatter(customFormatter)

	switch strings.ToLower(level) {
	case "trace":
		logrus.SetLevel(logrus.TraceLevel)
	case "debug":
		logrus.SetLevel(logrus.DebugLevel)
	case "warn", "warning":
		logrus.SetLevel(logrus.WarnLevel)
	case "error":
		logrus.SetLevel(logrus.ErrorLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}
}

// SetOutput redirects log output, e.g. to a file while a TUI owns the terminal.
func SetOutput(w io.Writer) {
	logrus.SetOutput(w)
}
