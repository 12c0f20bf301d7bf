package log

import (
	"io"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type (
	Level  = zapcore.Level
	Field  = zap.Field
	Option = zap.Option
)

const (
	DebugLevel = zapcore.DebugLevel
	InfoLevel  = zapcore.InfoLevel
	WarnLevel  = zapcore.WarnLevel
	ErrorLevel = zapcore.ErrorLevel
	FatalLevel = zapcore.FatalLevel
)

var (
	WithCaller    = zap.WithCaller
	AddCallerSkip = zap.AddCallerSkip
)

// Logger is a thin wrapper so callers don't import zap directly.
type Logger struct {
	l     *zap.Logger
	level zap.AtomicLevel
}

var (
	std   = New(io.Discard, InfoLevel)
	stdMu sync.RWMutex
)

// New creates a json logger writing to w.
func New(w io.Writer, level Level, opts ...Option) *Logger {
	return newLogger(w, level, zap.NewProductionEncoderConfig(), false, opts...)
}

// DevLogger creates a console logger writing to w.
func DevLogger(w io.Writer, level Level, opts ...Option) *Logger {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return newLogger(w, level, cfg, true, opts...)
}

//nolint:whitespace // editor/linter issue
func newLogger(
	w io.Writer, level Level, encCfg zapcore.EncoderConfig, console bool, opts ...Option,
) *Logger {
	if w == nil {
		w = io.Discard
	}
	atom := zap.NewAtomicLevelAt(level)
	var enc zapcore.Encoder
	if console {
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}
	core := zapcore.NewCore(enc, zapcore.AddSync(w), atom)
	return &Logger{l: zap.New(core, opts...), level: atom}
}

func ParseLevel(s string) (Level, error) {
	return zapcore.ParseLevel(s)
}

// ResetDefault replaces the logger used by the package-level functions.
func ResetDefault(l *Logger) {
	stdMu.Lock()
	defer stdMu.Unlock()
	std = l
}

func Default() *Logger {
	stdMu.RLock()
	defer stdMu.RUnlock()
	return std
}

func (l *Logger) Named(name string) *Logger {
	return &Logger{l: l.l.Named(name), level: l.level}
}

func (l *Logger) With(fields ...Field) *Logger {
	return &Logger{l: l.l.With(fields...), level: l.level}
}

func (l *Logger) Level() Level                      { return l.level.Level() }
func (l *Logger) SetLevel(level Level)              { l.level.SetLevel(level) }
func (l *Logger) Debug(msg string, fields ...Field) { l.l.Debug(msg, fields...) }
func (l *Logger) Info(msg string, fields ...Field)  { l.l.Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.l.Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...Field) { l.l.Error(msg, fields...) }
func (l *Logger) Fatal(msg string, fields ...Field) { l.l.Fatal(msg, fields...) }
func (l *Logger) Sync() error                       { return l.l.Sync() }

func Debug(msg string, fields ...Field) { Default().l.Debug(msg, fields...) }
func Info(msg string, fields ...Field)  { Default().l.Info(msg, fields...) }
func Warn(msg string, fields ...Field)  { Default().l.Warn(msg, fields...) }
func Error(msg string, fields ...Field) { Default().l.Error(msg, fields...) }
func Fatal(msg string, fields ...Field) { Default().l.Fatal(msg, fields...) }
func Sync() error                       { return Default().l.Sync() }
