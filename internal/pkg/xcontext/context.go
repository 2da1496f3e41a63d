package xcontext

import (
	"context"
	"time"
)

// DetachWithTimeout keeps ctx values but drops its cancellation, then bounds the result by timeout.
func DetachWithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), timeout)
}

// WithOptionalTimeout applies timeout only when it is positive.
func WithOptionalTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, timeout)
}
