package analytics

import (
	"time"

	"github.com/looplj/datavault/internal/objects"
)

// Day is the fixed bucket width. Buckets are not calendar aware.
const Day = 24 * time.Hour

// DayBucket truncates t to the start of its fixed 24h window on the unix epoch.
func DayBucket(t time.Time) int64 {
	nanos := t.UnixNano()
	day := int64(Day)

	return nanos / day * day
}

// BucketByDay counts consecutive runs of items falling in the same day bucket.
// Input must be sorted by time for one output row per bucket.
func BucketByDay(items []time.Time) []objects.DateMetrics {
	out := make([]objects.DateMetrics, 0)

	for _, t := range items {
		bucket := DayBucket(t)

		if n := len(out); n > 0 && out[n-1].Date == bucket {
			out[n-1].Value++
			continue
		}

		out = append(out, objects.DateMetrics{Date: bucket, Value: 1})
	}

	return out
}
