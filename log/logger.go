// Package log provides structured logging with host context.
//
// Logs never go to stdout: stdout carries the native messaging frames.
//
// Two logger variants are available:
//   - Logger: Non-sugared zap.Logger for the relay loop (structured fields)
//   - SugaredLogger: Printf-style logging for the CLI surface
//
// Use Logger.Sugar() to obtain a SugaredLogger when needed.
package log

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pithecene-io/ccshost/types"
)

// HostMeta identifies the running host process in every log entry.
type HostMeta struct {
	// PID is the host process ID.
	PID int
	// Origin is the caller origin passed by the browser, if any.
	Origin string
}

// Logger provides structured logging with host context.
type Logger struct {
	zap *zap.Logger
}

// SugaredLogger provides printf-style logging for the CLI surface.
type SugaredLogger struct {
	sugar *zap.SugaredLogger
}

// ParseLevel parses "debug", "info", "warn" or "error".
// An empty string selects info.
func ParseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	level, err := zapcore.ParseLevel(s)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// NewLogger creates a logger with host context writing to os.Stderr.
func NewLogger(meta HostMeta, level zapcore.Level) *Logger {
	return NewLoggerWithWriter(meta, os.Stderr, level)
}

// NewLoggerWithWriter creates a logger writing JSON entries to w.
func NewLoggerWithWriter(meta HostMeta, w io.Writer, level zapcore.Level) *Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:     "timestamp",
		LevelKey:    "level",
		MessageKey:  "message",
		EncodeTime:  zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel: zapcore.LowercaseLevelEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(w),
		level,
	)

	contextFields := []zap.Field{
		zap.String("host", types.HostName),
		zap.String("version", types.Version),
		zap.Int("pid", meta.PID),
	}
	if meta.Origin != "" {
		contextFields = append(contextFields, zap.String("origin", meta.Origin))
	}

	return &Logger{zap: zap.New(core).With(contextFields...)}
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{zap: zap.NewNop()}
}

// Debug logs a debug message.
func (l *Logger) Debug(message string, fields map[string]any) {
	l.zap.Debug(message, zap.Any("fields", fields))
}

// Info logs an info message.
func (l *Logger) Info(message string, fields map[string]any) {
	l.zap.Info(message, zap.Any("fields", fields))
}

// Warn logs a warning message.
func (l *Logger) Warn(message string, fields map[string]any) {
	l.zap.Warn(message, zap.Any("fields", fields))
}

// Error logs an error message.
func (l *Logger) Error(message string, fields map[string]any) {
	l.zap.Error(message, zap.Any("fields", fields))
}

// Sync flushes buffered log entries.
func (l *Logger) Sync() error {
	return l.zap.Sync()
}

// Sugar returns a SugaredLogger for printf-style logging.
func (l *Logger) Sugar() *SugaredLogger {
	return &SugaredLogger{sugar: l.zap.Sugar()}
}

// Debugf logs a debug message with printf-style formatting.
func (s *SugaredLogger) Debugf(template string, args ...any) {
	s.sugar.Debugf(template, args...)
}

// Infof logs an info message with printf-style formatting.
func (s *SugaredLogger) Infof(template string, args ...any) {
	s.sugar.Infof(template, args...)
}

// Warnf logs a warning message with printf-style formatting.
func (s *SugaredLogger) Warnf(template string, args ...any) {
	s.sugar.Warnf(template, args...)
}

// Errorf logs an error message with printf-style formatting.
func (s *SugaredLogger) Errorf(template string, args ...any) {
	s.sugar.Errorf(template, args...)
}
