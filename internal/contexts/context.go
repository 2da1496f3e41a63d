package contexts

import (
	"context"

	"github.com/looplj/datavault/internal/objects"
)

// ContextKey defines the context key type.
type ContextKey string

const containerContextKey ContextKey = "context_container"

// WithTraceID stores the trace id in the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	container := getContainer(ctx)
	container.TraceID = &traceID

	return withContainer(ctx, container)
}

// GetTraceID retrieves the trace id from the context.
func GetTraceID(ctx context.Context) (string, bool) {
	container := getContainer(ctx)
	if container.TraceID != nil {
		return *container.TraceID, true
	}

	return "", false
}

// WithRequestID stores the request id in the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	container := getContainer(ctx)
	container.RequestID = &requestID

	return withContainer(ctx, container)
}

// GetRequestID retrieves the request id from the context.
func GetRequestID(ctx context.Context) (string, bool) {
	container := getContainer(ctx)
	if container.RequestID != nil {
		return *container.RequestID, true
	}

	return "", false
}

func WithOperationName(ctx context.Context, name string) context.Context {
	container := getContainer(ctx)
	container.OperationName = &name

	return withContainer(ctx, container)
}

func GetOperationName(ctx context.Context) (string, bool) {
	container := getContainer(ctx)
	if container.OperationName != nil {
		return *container.OperationName, true
	}

	return "", false
}

// WithCaller stores the direct caller identity, as presented by the transport credential.
func WithCaller(ctx context.Context, identity objects.Identity) context.Context {
	container := getContainer(ctx)
	container.Caller = &identity

	return withContainer(ctx, container)
}

// GetCaller returns the direct caller identity. Requests without credential resolve to the anonymous identity.
func GetCaller(ctx context.Context) objects.Identity {
	container := getContainer(ctx)
	if container.Caller != nil {
		return *container.Caller
	}

	return objects.AnonymousIdentity
}

// WithAnalyticsToken stores the analytics token presented with the request.
func WithAnalyticsToken(ctx context.Context, token string) context.Context {
	container := getContainer(ctx)
	container.AnalyticsToken = &token

	return withContainer(ctx, container)
}

func GetAnalyticsToken(ctx context.Context) (string, bool) {
	container := getContainer(ctx)
	if container.AnalyticsToken != nil {
		return *container.AnalyticsToken, true
	}

	return "", false
}

// AddError records a non fatal error for the access log.
func AddError(ctx context.Context, err error) context.Context {
	if err == nil {
		return ctx
	}

	container := getContainer(ctx)
	container.mu.Lock()
	container.Errors = append(container.Errors, err)
	container.mu.Unlock()

	return withContainer(ctx, container)
}

func GetErrors(ctx context.Context) []error {
	container := getContainer(ctx)
	container.mu.RLock()
	defer container.mu.RUnlock()

	if len(container.Errors) == 0 {
		return nil
	}

	errs := make([]error, len(container.Errors))
	copy(errs, container.Errors)

	return errs
}
