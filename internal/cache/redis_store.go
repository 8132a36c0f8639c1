package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/pkg/database"
)

const (
	entryPrefix = "http_cache:entry:"
	tagPrefix   = "http_cache:tag:"
)

// RedisStore keeps pages as JSON strings and one set of page keys per tag.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore creates a Redis-backed page store.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (e *Entry, err error) {
	ctx, end := database.TraceRedis(ctx, "GET", entryPrefix+key)
	defer func() { end(err) }()

	data, err := s.client.Get(ctx, entryPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get page: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("unmarshal page: %w", err)
	}
	return &entry, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, e *Entry, ttl time.Duration, tags []string) (err error) {
	ctx, end := database.TraceRedis(ctx, "SET", entryPrefix+key)
	defer func() { end(err) }()

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal page: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, entryPrefix+key, data, ttl)
		for _, tag := range tags {
			pipe.SAdd(ctx, tagPrefix+tag, key)
			pipe.Expire(ctx, tagPrefix+tag, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis store page: %w", err)
	}
	return nil
}

func (s *RedisStore) Invalidate(ctx context.Context, tags ...string) (n int, err error) {
	if len(tags) == 0 {
		return 0, nil
	}
	ctx, end := database.TraceRedis(ctx, "INVALIDATE", tagPrefix+"*")
	defer func() { end(err) }()

	seen := make(map[string]struct{})
	var del []string
	for _, tag := range tags {
		keys, err := s.client.SMembers(ctx, tagPrefix+tag).Result()
		if err != nil {
			return 0, fmt.Errorf("redis read tag %s: %w", tag, err)
		}
		for _, k := range keys {
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			del = append(del, entryPrefix+k)
		}
		del = append(del, tagPrefix+tag)
	}

	if err := s.client.Del(ctx, del...).Err(); err != nil {
		return 0, fmt.Errorf("redis delete pages: %w", err)
	}
	return len(seen), nil
}
