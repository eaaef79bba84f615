// Package logging provides a unified logging system for dashai.
//
// The logging system has two output channels, both zap cores:
//   - Console (stderr): Human-readable messages, respects log level
//   - File (.dashai/logs/): JSON session logs, always captures all levels
//
// Usage:
//
//	log, err := logging.Init(logging.ConfigFromEnv())
//	if err != nil {
//	    // handle error
//	}
//	defer log.Close()
//
//	log.Info("Starting session")
//	log.Debug("Verbose info", logging.F("key", "value"))
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the main logging type. A nil *Logger is valid and discards everything.
type Logger struct {
	z       *zap.Logger
	console zap.AtomicLevel
	file    *os.File
	prefix  string
}

// global logger instance
var (
	globalLogger *Logger
	globalMu     sync.RWMutex
)

// Init initializes the global logger with the given configuration.
// This should be called early in main() before any logging occurs.
func Init(cfg Config) (*Logger, error) {
	globalMu.Lock()
	defer globalMu.Unlock()

	logger, err := New(cfg)
	if err != nil {
		return nil, err
	}

	globalLogger = logger
	return logger, nil
}

// New creates a new Logger instance writing the console core to stderr.
func New(cfg Config) (*Logger, error) {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter creates a Logger whose console core writes to w.
func NewWithWriter(cfg Config, w io.Writer) (*Logger, error) {
	consoleLevel := cfg.Level
	if cfg.Verbose {
		consoleLevel = LevelDebug
	}
	level := zap.NewAtomicLevelAt(consoleLevel.zapLevel())

	var cores []zapcore.Core

	if !cfg.Quiet {
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encCfg),
			zapcore.AddSync(w),
			level,
		))
	}

	var file *os.File
	if cfg.LogDir != "" {
		f, err := openSessionFile(cfg.LogDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open session log: %w", err)
		}
		file = f
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(f),
			zapcore.DebugLevel, // Always log everything to file
		))
	}

	core := zapcore.NewNopCore()
	if len(cores) > 0 {
		core = zapcore.NewTee(cores...)
	}

	return &Logger{
		z:       zap.New(core),
		console: level,
		file:    file,
	}, nil
}

// Nop returns a logger that discards everything. Useful in tests.
func Nop() *Logger {
	return &Logger{z: zap.NewNop(), console: zap.NewAtomicLevel()}
}

// FromZap wraps an existing zap logger (e.g. zaptest or an observer core).
func FromZap(z *zap.Logger) *Logger {
	return &Logger{z: z, console: zap.NewAtomicLevelAt(zapcore.DebugLevel)}
}

// openSessionFile creates .dashai/logs/session_<timestamp>.log and points latest.log at it.
func openSessionFile(dir string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	path := filepath.Join(dir, fmt.Sprintf("session_%s.log", timestamp))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	// latest.log is a convenience only
	latest := filepath.Join(dir, "latest.log")
	_ = os.Remove(latest)
	_ = os.Symlink(filepath.Base(path), latest)

	return f, nil
}

// Global returns the global logger instance.
// Returns nil if Init has not been called.
func Global() *Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// WithPrefix returns a new logger with the given prefix.
// The prefix appears in log output as the logger name.
func (l *Logger) WithPrefix(prefix string) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{
		z:       l.z.Named(prefix),
		console: l.console,
		file:    l.file,
		prefix:  prefix,
	}
}

// With returns a logger that adds fields to every entry.
func (l *Logger) With(fields ...Field) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{
		z:       l.z.With(toZap(fields)...),
		console: l.console,
		file:    l.file,
		prefix:  l.prefix,
	}
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...Field) {
	if l == nil {
		return
	}
	l.z.Debug(msg, toZap(fields)...)
}

// Info logs an informational message.
func (l *Logger) Info(msg string, fields ...Field) {
	if l == nil {
		return
	}
	l.z.Info(msg, toZap(fields)...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...Field) {
	if l == nil {
		return
	}
	l.z.Warn(msg, toZap(fields)...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...Field) {
	if l == nil {
		return
	}
	l.z.Error(msg, toZap(fields)...)
}

// IsDebugEnabled returns true if debug logging is enabled on the console.
func (l *Logger) IsDebugEnabled() bool {
	if l == nil {
		return false
	}
	return l.console.Enabled(zapcore.DebugLevel)
}

// SetLevel sets the console log level.
func (l *Logger) SetLevel(level Level) {
	if l == nil {
		return
	}
	l.console.SetLevel(level.zapLevel())
}

// Close flushes buffered entries and closes the session file.
// This should be called on application exit.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	_ = l.z.Sync()
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// Package-level convenience functions using the global logger

// Debug logs a debug message to the global logger.
func Debug(msg string, fields ...Field) {
	if l := Global(); l != nil {
		l.Debug(msg, fields...)
	}
}

// Info logs an informational message to the global logger.
func Info(msg string, fields ...Field) {
	if l := Global(); l != nil {
		l.Info(msg, fields...)
	}
}

// Warn logs a warning message to the global logger.
func Warn(msg string, fields ...Field) {
	if l := Global(); l != nil {
		l.Warn(msg, fields...)
	}
}

// LogError logs an error message to the global logger.
func LogError(msg string, fields ...Field) {
	if l := Global(); l != nil {
		l.Error(msg, fields...)
	}
}

// Close closes the global logger.
func Close() error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalLogger != nil {
		err := globalLogger.Close()
		globalLogger = nil
		return err
	}
	return nil
}

// Or returns l when non-nil, otherwise the global logger, otherwise a no-op logger.
func Or(l *Logger) *Logger {
	if l != nil {
		return l
	}
	if g := Global(); g != nil {
		return g
	}
	return Nop()
}
