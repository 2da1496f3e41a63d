package contexts

import (
	"context"
	"sync"

	"github.com/looplj/datavault/internal/objects"
)

// contextContainer holds every request scoped value in one place.
type contextContainer struct {
	TraceID        *string
	RequestID      *string
	OperationName  *string
	Caller         *objects.Identity
	AnalyticsToken *string
	Errors         []error
	mu             sync.RWMutex
}

// getContainer returns the container stored in ctx, or a fresh one that is not yet attached.
func getContainer(ctx context.Context) *contextContainer {
	if ctx == nil {
		return &contextContainer{}
	}

	if container, ok := ctx.Value(containerContextKey).(*contextContainer); ok {
		return container
	}

	return &contextContainer{}
}

// withContainer attaches the container to ctx unless one is already present.
func withContainer(ctx context.Context, container *contextContainer) context.Context {
	if ctx.Value(containerContextKey) == nil {
		return context.WithValue(ctx, containerContextKey, container)
	}

	return ctx
}
