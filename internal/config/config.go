// Package config handles application configuration and setup
package config

import (
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	return log.NewWithConfig(loggerConfig(debug, quiet))
}

// FrontendLogger creates the logger used while the given frontend is running.
// The terminal frontend owns the screen, so only errors are logged there.
func FrontendLogger(opts options.Program, frontend string) *log.Logger {
	if frontend == options.FrontendTerminal {
		return CreateLogger(false, true)
	}
	return CreateLogger(opts.Debug, opts.Quiet)
}

func loggerConfig(debug, quiet bool) log.Config {
	cfg := log.DefaultConfig()
	switch {
	case debug:
		cfg.Level = log.DebugLevel
	case quiet:
		cfg.Level = log.ErrorLevel
	}
	return cfg
}
