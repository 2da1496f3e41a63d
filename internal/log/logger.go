package log

import (
	"context"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Logger struct {
	zl    *zap.Logger
	level zap.AtomicLevel

	mu    sync.RWMutex
	hooks []Hook
}

// New builds a logger from cfg. Unknown levels fall back to info.
func New(cfg Config) *Logger {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if cfg.Level != "" {
		if parsed, err := zapcore.ParseLevel(cfg.Level); err == nil {
			level.SetLevel(parsed)
		}
	}

	if cfg.Debug {
		level.SetLevel(zapcore.DebugLevel)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.MessageKey = "msg"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if cfg.Encoding == EncodingConsole {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, newWriteSyncer(cfg), level)

	zl := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2), zap.AddStacktrace(zapcore.ErrorLevel))
	if cfg.Name != "" {
		zl = zl.Named(cfg.Name)
	}

	return &Logger{zl: zl, level: level}
}

// NewWithCore wraps an existing core, mainly to plug an observer in tests.
func NewWithCore(core zapcore.Core) *Logger {
	return &Logger{zl: zap.New(core), level: zap.NewAtomicLevelAt(zapcore.DebugLevel)}
}

// NewNop returns a logger that discards everything, handy in tests.
func NewNop() *Logger {
	return &Logger{zl: zap.NewNop(), level: zap.NewAtomicLevelAt(zapcore.FatalLevel)}
}

func newWriteSyncer(cfg Config) zapcore.WriteSyncer {
	if cfg.Output != OutputFile || cfg.File.Path == "" {
		return zapcore.Lock(os.Stdout)
	}

	maxAgeDays := int(cfg.File.MaxAge.Hours() / 24)

	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.File.Path,
		MaxSize:    cfg.File.MaxSize,
		MaxAge:     maxAgeDays,
		MaxBackups: cfg.File.MaxBackups,
		LocalTime:  cfg.File.LocalTime,
		Compress:   cfg.File.Compress,
	})
}

func (l *Logger) AddHook(hook Hook) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.hooks = append(l.hooks, hook)
}

func (l *Logger) DebugEnabled(ctx context.Context) bool {
	return l.level.Enabled(zapcore.DebugLevel)
}

func (l *Logger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zapcore.DebugLevel, msg, fields)
}

func (l *Logger) Info(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zapcore.InfoLevel, msg, fields)
}

func (l *Logger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zapcore.WarnLevel, msg, fields)
}

func (l *Logger) Error(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zapcore.ErrorLevel, msg, fields)
}

func (l *Logger) Sync() error {
	return l.zl.Sync()
}

func (l *Logger) log(ctx context.Context, lvl zapcore.Level, msg string, fields []Field) {
	if !l.level.Enabled(lvl) {
		return
	}

	fields = l.applyHooks(ctx, msg, fields)

	if ce := l.zl.Check(lvl, msg); ce != nil {
		ce.Write(fields...)
	}
}

func (l *Logger) applyHooks(ctx context.Context, msg string, fields []Field) []Field {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, hook := range l.hooks {
		fields = hook.Apply(ctx, msg, fields...)
	}

	return fields
}
