// Package logging builds the logrus loggers shared by the servers and the CLI.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New returns a logger writing to out with the given level and format.
// An unknown level falls back to info; any format other than "text" is JSON.
func New(level, format string, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	if out == nil {
		out = os.Stderr
	}
	logger.SetOutput(out)

	if strings.EqualFold(format, "text") {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	return logger
}

// Output resolves a configured output name to a writer.
// MCP stdio servers must never log to stdout, so "stdout" is only honoured
// when allowStdout is set.
func Output(name string, allowStdout bool) io.Writer {
	switch strings.ToLower(name) {
	case "stdout":
		if allowStdout {
			return os.Stdout
		}
		return os.Stderr
	case "discard", "none":
		return io.Discard
	default:
		return os.Stderr
	}
}
