// Package logger builds the logrus logger shared by the server, the
// workers and the CLI.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Options selects level and output format.
type Options struct {
	Level  string // panic, fatal, error, warn, info, debug, trace
	Format string // "json" or "text"
	Output io.Writer
}

// New returns a configured logger.  Unknown levels fall back to info.
func New(opts Options) *logrus.Logger {
	log := logrus.New()
	if opts.Output != nil {
		log.SetOutput(opts.Output)
	} else {
		log.SetOutput(os.Stdout)
	}

	level, err := logrus.ParseLevel(strings.TrimSpace(opts.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if strings.EqualFold(opts.Format, "text") {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log
}
