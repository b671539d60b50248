// Package logger configures the process-wide logrus logger.
package logger

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger/Entry/Fields re-export the logrus types so callers don't import logrus directly.
type Logger = logrus.Logger
type Entry = logrus.Entry
type Fields = logrus.Fields

var rootLogger = logrus.StandardLogger()

// Configure sets level and output format of the root logger.
// Unknown levels fall back to info, unknown formats to text.
func Configure(level, format string) {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	rootLogger.SetLevel(lvl)

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		rootLogger.SetFormatter(&logrus.JSONFormatter{})
	default:
		rootLogger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// Root returns the shared logger.
func Root() *Logger {
	return rootLogger
}

// SetRoot replaces the shared logger; nil resets it to the logrus standard logger.
func SetRoot(l *Logger) {
	if l == nil {
		l = logrus.StandardLogger()
	}
	rootLogger = l
}

// SetOutput redirects the shared logger.
func SetOutput(w io.Writer) {
	rootLogger.SetOutput(w)
}

// WithComponent returns an entry tagged with the component field.
func WithComponent(component string) *Entry {
	return rootLogger.WithField("component", component)
}

// WithFields returns an entry carrying the given fields.
func WithFields(fields Fields) *Entry {
	return rootLogger.WithFields(fields)
}
