package biz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/looplj/datavault/internal/analytics"
	"github.com/looplj/datavault/internal/objects"
	"github.com/looplj/datavault/internal/oracle"
)

func TestActivityService_DatasetActivity(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	ctx := t.Context()
	id := env.createDataset(t, "alice")

	_, ok := env.activity.DatasetActivity(ctx, id)
	assert.False(t, ok)

	put := func(user objects.Identity) {
		_, err := env.entries.PutEntries(ctx, "alice", id, []objects.DatasetEntryInput{userEntry(user, "EU")})
		require.NoError(t, err)
	}

	put("a")
	put("b")
	env.clock.Advance(24 * time.Hour)
	put("c")

	metrics, ok := env.activity.DatasetActivity(ctx, id)
	require.True(t, ok)

	day := analytics.DayBucket(epoch)
	assert.Equal(t, []objects.DateMetrics{
		{Date: day, Value: 2},
		{Date: day + int64(analytics.Day), Value: 1},
	}, metrics)
}

func TestActivityService_DatasetQueryActivity(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	ctx := t.Context()
	id := seedRegions(t, env, "alice", "EU")
	env.oracle.set([]oracle.Grant{{AllowedDimensionIDs: []objects.DimensionID{dimRegion}}}, nil)

	assert.Empty(t, env.activity.DatasetQueryActivity(ctx, id))

	for range 3 {
		_, err := env.analytics.GetAnalytics(ctx, "analyst", nil, objects.QueryInput{DatasetID: id, Attributes: []objects.DimensionID{dimRegion}})
		require.NoError(t, err)
	}

	assert.Equal(t, []objects.DateMetrics{{Date: analytics.DayBucket(epoch), Value: 3}}, env.activity.DatasetQueryActivity(ctx, id))
}
