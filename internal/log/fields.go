package log

import (
	"time"

	"go.uber.org/zap"
)

type Field = zap.Field

func String(key, val string) Field { return zap.String(key, val) }

func Strings(key string, val []string) Field { return zap.Strings(key, val) }

func Int(key string, val int) Field { return zap.Int(key, val) }

func Int64(key string, val int64) Field { return zap.Int64(key, val) }

func Uint32(key string, val uint32) Field { return zap.Uint32(key, val) }

func Uint64(key string, val uint64) Field { return zap.Uint64(key, val) }

func Float64(key string, val float64) Field { return zap.Float64(key, val) }

func Bool(key string, val bool) Field { return zap.Bool(key, val) }

func Duration(key string, val time.Duration) Field { return zap.Duration(key, val) }

func Time(key string, val time.Time) Field { return zap.Time(key, val) }

func Any(key string, val any) Field { return zap.Any(key, val) }

// Cause attaches err under the "cause" key.
func Cause(err error) Field { return zap.NamedError("cause", err) }
