package logger

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logging surface used across graphbase. Messages are
// formatted in the manner of fmt.Sprintf when args are given.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
}

var (
	mu   sync.RWMutex
	root Logger = newZapLogger(buildZap(zapcore.WarnLevel))
)

func buildZap(level zapcore.Level) *zap.SugaredLogger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	l, err := cfg.Build(zap.AddCallerSkip(2))
	if err != nil {
		l = zap.NewNop()
	}
	return l.Sugar()
}

// Configure sets the global verbosity. Warnings and errors are always
// emitted; --debug raises to info, --verbose to debug.
func Configure(debug, verbose bool) {
	level := zapcore.WarnLevel
	if debug {
		level = zapcore.InfoLevel
	}
	if verbose {
		level = zapcore.DebugLevel
	}

	mu.Lock()
	defer mu.Unlock()
	root = newZapLogger(buildZap(level))
}

func global() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root
}

// Debug logs at debug level on the global logger.
func Debug(msg string, args ...interface{}) { global().Debug(msg, args...) }

// Info logs at info level on the global logger.
func Info(msg string, args ...interface{}) { global().Info(msg, args...) }

// Warn logs at warn level on the global logger.
func Warn(msg string, args ...interface{}) { global().Warn(msg, args...) }

// Error logs at error level on the global logger.
func Error(msg string, args ...interface{}) { global().Error(msg, args...) }

// WithField returns a logger with a single structured field attached.
func WithField(key string, value interface{}) Logger {
	return global().WithField(key, value)
}

// WithFields returns a logger with structured fields attached.
func WithFields(fields map[string]interface{}) Logger {
	return global().WithFields(fields)
}

type zapLogger struct {
	s *zap.SugaredLogger
}

func newZapLogger(s *zap.SugaredLogger) *zapLogger {
	return &zapLogger{s: s}
}

func (l *zapLogger) format(msg string, args []interface{}) string {
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

func (l *zapLogger) Debug(msg string, args ...interface{}) { l.s.Debug(l.format(msg, args)) }
func (l *zapLogger) Info(msg string, args ...interface{})  { l.s.Info(l.format(msg, args)) }
func (l *zapLogger) Warn(msg string, args ...interface{})  { l.s.Warn(l.format(msg, args)) }
func (l *zapLogger) Error(msg string, args ...interface{}) { l.s.Error(l.format(msg, args)) }

func (l *zapLogger) WithField(key string, value interface{}) Logger {
	return &zapLogger{s: l.s.With(key, value)}
}

func (l *zapLogger) WithFields(fields map[string]interface{}) Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &zapLogger{s: l.s.With(args...)}
}
