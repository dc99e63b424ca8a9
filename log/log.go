// Package log provides loggers for wavescope components.
package log

import (
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
)

// DebugEnv enables debug level when parsed as true.
const DebugEnv = "WAVESCOPE_DEBUG"

var debug bool

// Logger is a global interface for wavescope loggers
type Logger interface {
	Debug(...interface{})
	Info(...interface{})
}

func init() {
	var err error
	debug, err = strconv.ParseBool(os.Getenv(DebugEnv))
	if err != nil {
		debug = false
	}
}

// GetLogger returns a new logger instance
func GetLogger() *logrus.Logger {
	l := logrus.New()
	if debug {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

// WithComponent returns a logger that marks all entries with component
// name.
func WithComponent(l *logrus.Logger, component string) Logger {
	return l.WithField("component", component)
}
