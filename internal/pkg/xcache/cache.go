package xcache

import (
	"context"
	"fmt"
	"time"

	cachelib "github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	gocache_store "github.com/eko/gocache/store/go_cache/v4"
	gocache "github.com/patrickmn/go-cache"
	redis "github.com/redis/go-redis/v9"

	"github.com/looplj/datavault/internal/log"
	redis_store "github.com/looplj/datavault/internal/pkg/xcache/redis"
	"github.com/looplj/datavault/internal/pkg/xredis"
)

// Cache is the gocache CacheInterface. Callers only see Get/Set/Delete/Invalidate/Clear.
type Cache[T any] = cachelib.CacheInterface[T]

type SetterCache[T any] = cachelib.SetterCacheInterface[T]

// NewMemory creates an in-memory cache backed by patrickmn/go-cache.
func NewMemory[T any](client *gocache.Cache, options ...Option) SetterCache[T] {
	return cachelib.New[T](gocache_store.NewGoCache(client, options...))
}

// NewRedis creates a redis cache whose keys live under prefix.
func NewRedis[T any](client redis.UniversalClient, prefix string, options ...Option) SetterCache[T] {
	return cachelib.New[T](redis_store.NewRedisStore[T](client, prefix, options...))
}

// NewTwoLevel chains memory in front of redis.
func NewTwoLevel[T any](memory SetterCache[T], redis SetterCache[T]) Cache[T] {
	return cachelib.NewChain[T](memory, redis)
}

// NewFromConfig builds a typed cache from cfg. An empty mode yields a noop cache.
// name becomes the redis key prefix so several caches can share one server.
func NewFromConfig[T any](cfg Config, name string) (Cache[T], error) {
	ctx := context.Background()

	switch cfg.Mode {
	case "":
		return NewNoop[T](), nil
	case ModeMemory:
		log.Info(ctx, "using memory cache", log.String("cache", name))
		return newMemoryFromConfig[T](cfg.Memory), nil
	case ModeRedis, ModeTwoLevel:
	default:
		return nil, fmt.Errorf("unknown cache mode %q", cfg.Mode)
	}

	if !cfg.Redis.Configured() {
		return nil, fmt.Errorf("cache mode %q requires redis addr or url", cfg.Mode)
	}

	client, err := xredis.NewClient(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("invalid redis config: %w", err)
	}

	rds := NewRedis[T](client, name, store.WithExpiration(defaultIfZero(cfg.Redis.Expiration, 30*time.Minute)))

	if cfg.Mode == ModeRedis {
		log.Info(ctx, "using redis cache", log.String("cache", name))
		return rds, nil
	}

	log.Info(ctx, "using two-level cache", log.String("cache", name))

	return NewTwoLevel[T](newMemoryFromConfig[T](cfg.Memory), rds), nil
}

func newMemoryFromConfig[T any](cfg MemoryConfig) SetterCache[T] {
	expiration := defaultIfZero(cfg.Expiration, 5*time.Minute)
	client := gocache.New(expiration, defaultIfZero(cfg.CleanupInterval, 10*time.Minute))

	return NewMemory[T](client, store.WithExpiration(expiration))
}

func defaultIfZero(d, def time.Duration) time.Duration {
	if d == 0 {
		return def
	}

	return d
}
