package xtest

import (
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// timeComparer compares instants, ignoring location and monotonic readings.
var timeComparer = cmp.Comparer(func(x, y time.Time) bool {
	return x.Equal(y)
})

func defaultOptions(opts []cmp.Option) []cmp.Option {
	return append(opts, timeComparer, cmpopts.EquateEmpty())
}

// Equal reports semantic equality: nil and empty collections are equal and times compare as instants.
func Equal(a, b any, opts ...cmp.Option) bool {
	return cmp.Equal(a, b, defaultOptions(opts)...)
}

// Diff returns a human readable diff using the same options as Equal.
func Diff(a, b any, opts ...cmp.Option) string {
	return cmp.Diff(a, b, defaultOptions(opts)...)
}
