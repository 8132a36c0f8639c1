package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

const keyPrefix = "context:"

// ContextRepository implements repository.ContextRepository using Redis.
// Every save refreshes the expiry of the token.
type ContextRepository struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewContextRepository creates a Redis-backed context repository.
func NewContextRepository(client redis.UniversalClient, ttl time.Duration) *ContextRepository {
	return &ContextRepository{client: client, ttl: ttl}
}

// Load retrieves the context stored under token.
func (r *ContextRepository) Load(ctx context.Context, token string) (_ *domain.SalesChannelContext, err error) {
	key := keyPrefix + token
	ctx, end := database.TraceRedis(ctx, "GET", key)
	defer func() { end(err) }()

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("context", token)
		}
		return nil, fmt.Errorf("redis get context: %w", err)
	}

	var sc domain.SalesChannelContext
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("unmarshal context: %w", err)
	}
	return &sc, nil
}

// Save persists sc under its token with the configured TTL.
func (r *ContextRepository) Save(ctx context.Context, sc *domain.SalesChannelContext) (err error) {
	key := keyPrefix + sc.Token
	ctx, end := database.TraceRedis(ctx, "SET", key)
	defer func() { end(err) }()

	data, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("marshal context: %w", err)
	}
	if err = r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set context: %w", err)
	}
	return nil
}

// Delete removes the context stored under token.
func (r *ContextRepository) Delete(ctx context.Context, token string) (err error) {
	key := keyPrefix + token
	ctx, end := database.TraceRedis(ctx, "DEL", key)
	defer func() { end(err) }()

	if err = r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del context: %w", err)
	}
	return nil
}
