package biz

import (
	"context"
	"slices"
	"time"

	"go.uber.org/fx"

	"github.com/looplj/datavault/internal/analytics"
	"github.com/looplj/datavault/internal/objects"
	"github.com/looplj/datavault/internal/server/db"
)

type ActivityServiceParams struct {
	fx.In

	State *db.State
}

type ActivityService struct {
	state *db.State
}

func NewActivityService(params ActivityServiceParams) *ActivityService {
	return &ActivityService{state: params.State}
}

// DatasetActivity buckets entry creation times per day. The second result is false when the
// dataset has no collection.
func (s *ActivityService) DatasetActivity(_ context.Context, datasetID objects.DatasetID) ([]objects.DateMetrics, bool) {
	times, ok := s.state.EntryTimestamps(datasetID)
	if !ok {
		return nil, false
	}

	return bucketSorted(times), true
}

// DatasetQueryActivity buckets logged analytics queries per day.
func (s *ActivityService) DatasetQueryActivity(_ context.Context, datasetID objects.DatasetID) []objects.DateMetrics {
	return bucketSorted(s.state.QueryTimestamps(datasetID))
}

func bucketSorted(times []time.Time) []objects.DateMetrics {
	sorted := slices.Clone(times)
	slices.SortStableFunc(sorted, func(a, b time.Time) int {
		return a.Compare(b)
	})

	return analytics.BucketByDay(sorted)
}
