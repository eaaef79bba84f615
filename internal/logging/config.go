// Package logging provides a unified logging system for dashai.
// It supports console output and a per-session JSON log file.
package logging

import (
	"os"
	"strings"

	"go.uber.org/zap/zapcore"
)

// Level represents log severity levels.
type Level int

const (
	// LevelDebug logs everything, including verbose debugging information.
	LevelDebug Level = iota
	// LevelInfo logs informational messages and above.
	LevelInfo
	// LevelWarn logs warnings and errors only.
	LevelWarn
	// LevelError logs only error messages.
	LevelError
)

// String returns the string representation of a log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// ParseLevel converts a string to a Level.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Config holds logging configuration.
type Config struct {
	// Level is the minimum level for console output.
	Level Level

	// LogDir is the directory for session log files. Empty disables the file.
	// Defaults to .dashai/logs in the current working directory.
	LogDir string

	// Quiet disables console output entirely (the TUI owns the terminal).
	Quiet bool

	// Verbose enables debug-level console output.
	Verbose bool
}

// DefaultLogDir is the default directory for session logs (relative to cwd).
const DefaultLogDir = ".dashai/logs"

// ConfigFromEnv creates a Config from environment variables.
//
// Environment variables:
//   - DASHAI_LOG_LEVEL: Console log level (debug, info, warn, error)
//   - DASHAI_LOG_DIR: Override the session log directory ("-" disables it)
func ConfigFromEnv() Config {
	cfg := Config{
		Level:  LevelInfo,
		LogDir: DefaultLogDir,
	}

	if level := os.Getenv("DASHAI_LOG_LEVEL"); level != "" {
		cfg.Level = ParseLevel(level)
	}

	if dir := os.Getenv("DASHAI_LOG_DIR"); dir != "" {
		cfg.LogDir = dir
		if dir == "-" {
			cfg.LogDir = ""
		}
	}

	return cfg
}

// WithVerbose returns a copy of the config with verbose mode enabled.
func (c Config) WithVerbose(enabled bool) Config {
	c.Verbose = enabled
	if enabled {
		c.Level = LevelDebug
	}
	return c
}

// WithQuiet returns a copy of the config with console output disabled.
func (c Config) WithQuiet(quiet bool) Config {
	c.Quiet = quiet
	return c
}
