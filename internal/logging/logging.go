// Package logging provides the shared leveled logger.
package logging

import (
	"io"
	"strings"
	"sync"

	"github.com/labstack/gommon/log"
)

var (
	mu      sync.Mutex
	loggers = map[string]*log.Logger{}
	level   = log.INFO
	output  io.Writer
)

// New returns the logger registered under prefix, creating it on first use.
func New(prefix string) *log.Logger {
	mu.Lock()
	defer mu.Unlock()

	if l, ok := loggers[prefix]; ok {
		return l
	}
	l := log.New(prefix)
	l.SetLevel(level)
	if output != nil {
		l.SetOutput(output)
	}
	loggers[prefix] = l
	return l
}

// SetLevel changes the level of every logger, existing and future.
func SetLevel(lvl log.Lvl) {
	mu.Lock()
	defer mu.Unlock()

	level = lvl
	for _, l := range loggers {
		l.SetLevel(lvl)
	}
}

// SetOutput redirects every logger, existing and future.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	output = w
	for _, l := range loggers {
		l.SetOutput(w)
	}
}

// ParseLevel maps a config value to a log level. Unknown values yield INFO.
func ParseLevel(s string) log.Lvl {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}
