package biz

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/looplj/datavault/internal/objects"
	"github.com/looplj/datavault/internal/oracle"
	"github.com/looplj/datavault/internal/pkg/xcache"
)

func TestFoldGrants(t *testing.T) {
	tests := []struct {
		name   string
		grants []oracle.Grant
		want   objects.AccessGrant
	}{
		{name: "no records", grants: nil, want: objects.AccessGrant{}},
		{
			name:   "single record",
			grants: []oracle.Grant{{AllowedDimensionIDs: []objects.DimensionID{2, 1}, GDPREnabled: true}},
			want:   objects.AccessGrant{Allowed: []objects.DimensionID{1, 2}, GDPREnabled: true},
		},
		{
			name: "union with first gdpr flag",
			grants: []oracle.Grant{
				{AllowedDimensionIDs: []objects.DimensionID{1}, GDPREnabled: false},
				{AllowedDimensionIDs: []objects.DimensionID{1, 3}, GDPREnabled: true},
			},
			want: objects.AccessGrant{Allowed: []objects.DimensionID{1, 3}, GDPREnabled: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FoldGrants(t.Context(), tt.grants))
		})
	}
}

func TestAccessService_FailsClosed(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	env.oracle.set([]oracle.Grant{{AllowedDimensionIDs: []objects.DimensionID{1}}}, errors.New("connection refused"))

	grant := env.access.FetchAccessGrant(t.Context(), 1, "alice")
	assert.True(t, grant.Empty())
	assert.False(t, grant.GDPREnabled)
}

func TestAccessService_CacheSkipsFailures(t *testing.T) {
	env := newTestEnv(t, envOptions{oracleCfg: oracle.Config{Cache: xcache.Config{Mode: xcache.ModeMemory}}})
	ctx := t.Context()

	env.oracle.set(nil, errors.New("timeout"))
	assert.True(t, env.access.FetchAccessGrant(ctx, 1, "alice").Empty())

	env.oracle.set([]oracle.Grant{{AllowedDimensionIDs: []objects.DimensionID{4}}}, nil)

	grant := env.access.FetchAccessGrant(ctx, 1, "alice")
	require.False(t, grant.Empty())
	assert.Equal(t, []objects.DimensionID{4}, grant.Allowed)

	env.oracle.set(nil, errors.New("down"))

	cached := env.access.FetchAccessGrant(ctx, 1, "alice")
	assert.Equal(t, grant, cached)
	assert.Equal(t, 2, env.oracle.callCount())

	env.access.InvalidateDataset(ctx, 1)

	assert.True(t, env.access.FetchAccessGrant(ctx, 1, "alice").Empty())
	assert.Equal(t, 3, env.oracle.callCount())
}

func TestAccessService_NoCacheByDefault(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	env.oracle.set([]oracle.Grant{{AllowedDimensionIDs: []objects.DimensionID{4}}}, nil)

	env.access.FetchAccessGrant(t.Context(), 1, "alice")
	env.access.FetchAccessGrant(t.Context(), 1, "alice")

	assert.Equal(t, 2, env.oracle.callCount())
}
