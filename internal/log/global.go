package log

import (
	"context"
	"sync/atomic"
)

var globalLogger atomic.Pointer[Logger]

//nolint:gochecknoinits // default logger before config is loaded.
func init() {
	globalLogger.Store(New(DefaultConfig()))
}

func SetGlobalConfig(cfg Config) {
	globalLogger.Store(New(cfg))
}

func SetGlobalLogger(logger *Logger) {
	globalLogger.Store(logger)
}

func GetGlobalLogger() *Logger {
	return globalLogger.Load()
}

func DebugEnabled(ctx context.Context) bool {
	return GetGlobalLogger().DebugEnabled(ctx)
}

func Debug(ctx context.Context, msg string, fields ...Field) {
	GetGlobalLogger().Debug(ctx, msg, fields...)
}

func Info(ctx context.Context, msg string, fields ...Field) {
	GetGlobalLogger().Info(ctx, msg, fields...)
}

func Warn(ctx context.Context, msg string, fields ...Field) {
	GetGlobalLogger().Warn(ctx, msg, fields...)
}

func Error(ctx context.Context, msg string, fields ...Field) {
	GetGlobalLogger().Error(ctx, msg, fields...)
}
