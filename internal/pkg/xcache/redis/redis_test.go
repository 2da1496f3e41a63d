package redis

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	lib_store "github.com/eko/gocache/lib/v4/store"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type grant struct {
	Allowed []uint8 `msgpack:"allowed"`
	GDPR    bool    `msgpack:"gdpr"`
}

func newStore(t *testing.T) (*RedisStore[grant], *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore[grant](client, "grants", lib_store.WithExpiration(time.Minute)), mr
}

func TestRedisStoreSetAndGet(t *testing.T) {
	s, mr := newStore(t)
	ctx := t.Context()

	want := grant{Allowed: []uint8{1, 2}, GDPR: true}
	require.NoError(t, s.Set(ctx, "7:alice", want))

	assert.True(t, mr.Exists("grants:7:alice"))

	got, err := s.Get(ctx, "7:alice")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, ttl, err := s.GetWithTTL(ctx, "7:alice")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, ttl)
}

func TestRedisStoreMissingKey(t *testing.T) {
	s, _ := newStore(t)

	_, err := s.Get(t.Context(), "missing")
	require.Error(t, err)
	assert.Error(t, err)

	_, err = s.Get(t.Context(), 42)
	assert.Error(t, err)
}

func TestRedisStoreExpiration(t *testing.T) {
	s, mr := newStore(t)
	ctx := t.Context()

	require.NoError(t, s.Set(ctx, "k", grant{}))
	mr.FastForward(2 * time.Minute)

	_, err := s.Get(ctx, "k")
	assert.Error(t, err)
}

func TestRedisStoreInvalidateByTag(t *testing.T) {
	s, mr := newStore(t)
	ctx := t.Context()

	require.NoError(t, s.Set(ctx, "7:alice", grant{}, lib_store.WithTags([]string{"dataset:7"})))
	require.NoError(t, s.Set(ctx, "7:bob", grant{}, lib_store.WithTags([]string{"dataset:7"})))
	require.NoError(t, s.Set(ctx, "8:alice", grant{}, lib_store.WithTags([]string{"dataset:8"})))

	require.NoError(t, s.Invalidate(ctx, lib_store.WithInvalidateTags([]string{"dataset:7"})))

	assert.False(t, mr.Exists("grants:7:alice"))
	assert.False(t, mr.Exists("grants:7:bob"))
	assert.True(t, mr.Exists("grants:8:alice"))
}

func TestRedisStoreClearKeepsOtherPrefixes(t *testing.T) {
	s, mr := newStore(t)
	ctx := t.Context()

	require.NoError(t, mr.Set("tokens:x", "1"))
	require.NoError(t, s.Set(ctx, "a", grant{}))
	require.NoError(t, s.Set(ctx, "b", grant{}))

	require.NoError(t, s.Clear(ctx))

	assert.False(t, mr.Exists("grants:a"))
	assert.False(t, mr.Exists("grants:b"))
	assert.True(t, mr.Exists("tokens:x"))
	assert.Equal(t, RedisType, s.GetType())
}

func TestRedisStoreDelete(t *testing.T) {
	s, mr := newStore(t)
	ctx := t.Context()

	require.NoError(t, s.Set(ctx, "a", grant{}))
	require.NoError(t, s.Delete(ctx, "a"))
	assert.False(t, mr.Exists("grants:a"))
}
