package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	lib_store "github.com/eko/gocache/lib/v4/store"
	redis "github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	RedisType = "redis"

	tagPattern = "%s:tag:%s"
	defaultTTL = 720 * time.Hour
)

// RedisStore is a typed gocache store that encodes values with msgpack.
// Every key is written under "<prefix>:".
type RedisStore[T any] struct {
	client  redis.UniversalClient
	prefix  string
	options *lib_store.Options
}

func NewRedisStore[T any](client redis.UniversalClient, prefix string, options ...lib_store.Option) *RedisStore[T] {
	return &RedisStore[T]{
		client:  client,
		prefix:  prefix,
		options: lib_store.ApplyOptions(options...),
	}
}

func (s *RedisStore[T]) key(key any) (string, error) {
	k, ok := key.(string)
	if !ok {
		return "", fmt.Errorf("expected string key, got %T", key)
	}

	if s.prefix == "" {
		return k, nil
	}

	return s.prefix + ":" + k, nil
}

func (s *RedisStore[T]) Get(ctx context.Context, key any) (any, error) {
	v, _, err := s.get(ctx, key, false)
	return v, err
}

func (s *RedisStore[T]) GetWithTTL(ctx context.Context, key any) (any, time.Duration, error) {
	return s.get(ctx, key, true)
}

func (s *RedisStore[T]) get(ctx context.Context, key any, withTTL bool) (T, time.Duration, error) {
	var result T

	k, err := s.key(key)
	if err != nil {
		return result, 0, lib_store.NotFoundWithCause(err)
	}

	raw, err := s.client.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		return result, 0, lib_store.NotFoundWithCause(err)
	}

	if err != nil {
		return result, 0, err
	}

	if err := msgpack.Unmarshal(raw, &result); err != nil {
		var zero T
		return zero, 0, fmt.Errorf("decode cached value: %w", err)
	}

	if !withTTL {
		return result, 0, nil
	}

	ttl, err := s.client.TTL(ctx, k).Result()
	if err != nil {
		var zero T
		return zero, 0, err
	}

	return result, ttl, nil
}

func (s *RedisStore[T]) Set(ctx context.Context, key any, value any, options ...lib_store.Option) error {
	opts := lib_store.ApplyOptionsWithDefault(s.options, options...)

	k, err := s.key(key)
	if err != nil {
		return err
	}

	raw, err := msgpack.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cached value: %w", err)
	}

	if err := s.client.Set(ctx, k, raw, opts.Expiration).Err(); err != nil {
		return err
	}

	if len(opts.Tags) == 0 {
		return nil
	}

	ttl := opts.TagsTTL
	if ttl == 0 {
		ttl = defaultTTL
	}

	pipe := s.client.Pipeline()

	for _, tag := range opts.Tags {
		tagKey := fmt.Sprintf(tagPattern, s.prefix, tag)
		pipe.SAdd(ctx, tagKey, k)
		pipe.Expire(ctx, tagKey, ttl)
	}

	_, err = pipe.Exec(ctx)

	return err
}

func (s *RedisStore[T]) Delete(ctx context.Context, key any) error {
	k, err := s.key(key)
	if err != nil {
		return err
	}

	return s.client.Del(ctx, k).Err()
}

// Invalidate removes every key registered under the given tags.
func (s *RedisStore[T]) Invalidate(ctx context.Context, options ...lib_store.InvalidateOption) error {
	opts := lib_store.ApplyInvalidateOptions(options...)

	for _, tag := range opts.Tags {
		tagKey := fmt.Sprintf(tagPattern, s.prefix, tag)

		keys, err := s.client.SMembers(ctx, tagKey).Result()
		if err != nil {
			return err
		}

		if err := s.client.Del(ctx, append(keys, tagKey)...).Err(); err != nil {
			return err
		}
	}

	return nil
}

// Clear removes every key under the store prefix.
func (s *RedisStore[T]) Clear(ctx context.Context) error {
	if s.prefix == "" {
		return s.client.FlushDB(ctx).Err()
	}

	iter := s.client.Scan(ctx, 0, s.prefix+":*", 256).Iterator()

	var batch []string

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
	}

	if err := iter.Err(); err != nil {
		return err
	}

	if len(batch) == 0 {
		return nil
	}

	return s.client.Del(ctx, batch...).Err()
}

func (s *RedisStore[T]) GetType() string {
	return RedisType
}
