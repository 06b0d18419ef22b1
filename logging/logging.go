// Package logging builds the shared structured logger.
package logging

import (
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// New builds a logger at the given level. The level string is
// case-insensitive; anything unrecognized falls back to info.
func New(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	})
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn", "warning":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}
	return logger
}

// Component returns a child logger tagged with a component prefix.
func Component(logger *log.Logger, name string) *log.Logger {
	return logger.WithPrefix(name)
}
