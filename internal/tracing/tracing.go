package tracing

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/looplj/datavault/internal/contexts"
)

type Config struct {
	TraceHeader   string `conf:"trace_header" yaml:"trace_header" json:"trace_header"`
	RequestHeader string `conf:"request_header" yaml:"request_header" json:"request_header"`
}

// GenerateTraceID generates a trace id formatted as dv-{{uuid}}.
func GenerateTraceID() string {
	return fmt.Sprintf("dv-%s", uuid.New().String())
}

// GenerateRequestID generates a request id formatted as req-{{uuid}}.
func GenerateRequestID() string {
	return fmt.Sprintf("req-%s", uuid.New().String())
}

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return contexts.WithTraceID(ctx, traceID)
}

func GetTraceID(ctx context.Context) (string, bool) {
	return contexts.GetTraceID(ctx)
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return contexts.WithRequestID(ctx, requestID)
}

func GetRequestID(ctx context.Context) (string, bool) {
	return contexts.GetRequestID(ctx)
}

func WithOperationName(ctx context.Context, name string) context.Context {
	return contexts.WithOperationName(ctx, name)
}

func GetOperationName(ctx context.Context) (string, bool) {
	return contexts.GetOperationName(ctx)
}
