package log

import (
	"context"
	"log/slog"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// AsSlog exposes the logger through log/slog for libraries that only accept *slog.Logger.
func (l *Logger) AsSlog() *slog.Logger {
	return slog.New(&slogHandler{logger: l})
}

type slogHandler struct {
	logger *Logger
	attrs  []Field
	group  string
}

func (h *slogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.logger.level.Enabled(toZapLevel(level))
}

func (h *slogHandler) Handle(ctx context.Context, record slog.Record) error {
	fields := make([]Field, 0, len(h.attrs)+record.NumAttrs())
	fields = append(fields, h.attrs...)

	record.Attrs(func(attr slog.Attr) bool {
		fields = append(fields, h.toField(attr))
		return true
	})

	h.logger.log(ctx, toZapLevel(record.Level), record.Message, fields)

	return nil
}

func (h *slogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &slogHandler{logger: h.logger, group: h.group}
	next.attrs = append(next.attrs, h.attrs...)

	for _, attr := range attrs {
		next.attrs = append(next.attrs, h.toField(attr))
	}

	return next
}

func (h *slogHandler) WithGroup(name string) slog.Handler {
	group := name
	if h.group != "" {
		group = h.group + "." + name
	}

	return &slogHandler{logger: h.logger, attrs: h.attrs, group: group}
}

func (h *slogHandler) toField(attr slog.Attr) Field {
	key := attr.Key
	if h.group != "" {
		key = h.group + "." + key
	}

	value := attr.Value.Resolve()

	switch value.Kind() {
	case slog.KindString:
		return zap.String(key, value.String())
	case slog.KindInt64:
		return zap.Int64(key, value.Int64())
	case slog.KindUint64:
		return zap.Uint64(key, value.Uint64())
	case slog.KindFloat64:
		return zap.Float64(key, value.Float64())
	case slog.KindBool:
		return zap.Bool(key, value.Bool())
	case slog.KindDuration:
		return zap.Duration(key, value.Duration())
	case slog.KindTime:
		return zap.Time(key, value.Time())
	default:
		if err, ok := value.Any().(error); ok {
			return zap.NamedError(key, err)
		}

		return zap.Any(key, value.Any())
	}
}

func toZapLevel(level slog.Level) zapcore.Level {
	switch {
	case level >= slog.LevelError:
		return zapcore.ErrorLevel
	case level >= slog.LevelWarn:
		return zapcore.WarnLevel
	case level >= slog.LevelInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}
