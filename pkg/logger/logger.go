// Package logger provides structured logging utilities.
//
// This package keeps a single process-wide zap logger and exposes simple
// printf-style logging functions with consistent formatting.
package logger

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the process-wide logger.
type Options struct {
	Level       string
	Development bool
	// FilePath enables a rotating log file next to stdout when set.
	FilePath string
}

var (
	mu    sync.RWMutex
	sugar = zap.NewNop().Sugar()
	base  = zap.NewNop()
)

// Initialize sets up the process-wide logger writing to stdout.
func Initialize(level string, development bool) error {
	return InitializeWithOptions(Options{Level: level, Development: development})
}

// InitializeWithOptions sets up the process-wide logger.
func InitializeWithOptions(opts Options) error {
	var lvl zapcore.Level
	if opts.Level == "" {
		opts.Level = "info"
	}
	if err := lvl.UnmarshalText([]byte(opts.Level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}

	var encCfg zapcore.EncoderConfig
	if opts.Development {
		encCfg = zap.NewDevelopmentEncoderConfig()
	} else {
		encCfg = zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	var encoder zapcore.Encoder
	if opts.Development {
		encoder = zapcore.NewConsoleEncoder(encCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encCfg)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), lvl),
	}

	if opts.FilePath != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    100, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		}
		fileEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.AddSync(rotator), lvl))
	}

	zapOpts := []zap.Option{zap.AddCaller(), zap.AddCallerSkip(1)}
	if opts.Development {
		zapOpts = append(zapOpts, zap.Development())
	}

	l := zap.New(zapcore.NewTee(cores...), zapOpts...)
	Replace(l)
	return nil
}

// Replace swaps the process-wide logger. Tests use it to install an observer.
func Replace(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	base = l
	sugar = l.Sugar()
}

// L returns the underlying zap logger for code that wants structured fields.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base.WithOptions(zap.AddCallerSkip(-1))
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

// Info logs informational messages.
func Info(message string, args ...interface{}) {
	current().Infof(message, args...)
}

// Warn logs conditions that are unexpected but handled.
func Warn(message string, args ...interface{}) {
	current().Warnf(message, args...)
}

// Error logs error messages.
func Error(message string, args ...interface{}) {
	current().Errorf(message, args...)
}

// Debug logs debug messages. They are dropped unless the level is "debug".
func Debug(message string, args ...interface{}) {
	current().Debugf(message, args...)
}

// Fatal logs fatal messages and terminates the program.
func Fatal(message string, args ...interface{}) {
	l := current()
	l.Errorf(message, args...)
	_ = l.Sync()
	os.Exit(1)
}

// Sync flushes any buffered log entries.
func Sync() {
	_ = current().Sync()
}
