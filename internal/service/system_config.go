package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/cache"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/pkg/database"
)

const (
	configKeyPrefix = "system_config:"
	globalConfigKey = configKeyPrefix + "_global"
)

// SystemConfigService reads system config values of a sales channel with a
// Redis cache in front of Postgres. Every read is reported to the config
// tracer so cached pages can be tagged with the keys they used.
type SystemConfigService struct {
	repo   repository.SystemConfigRepository
	redis  redis.UniversalClient
	tracer *cache.ConfigTracer
	ttl    time.Duration
	logger *slog.Logger
}

// NewSystemConfigService creates a new system config service. A nil redis
// client disables caching.
func NewSystemConfigService(repo repository.SystemConfigRepository, client redis.UniversalClient, tracer *cache.ConfigTracer, ttl time.Duration, logger *slog.Logger) *SystemConfigService {
	return &SystemConfigService{
		repo:   repo,
		redis:  client,
		tracer: tracer,
		ttl:    ttl,
		logger: logger,
	}
}

// Get returns the value of key for the sales channel, or nil when unset.
func (s *SystemConfigService) Get(ctx context.Context, key, salesChannelID string) (any, error) {
	values, err := s.load(ctx, salesChannelID)
	if err != nil {
		return nil, err
	}
	s.tracer.Record(ctx, key)
	return values[key], nil
}

// GetBool returns key as a boolean. Unset values are false.
func (s *SystemConfigService) GetBool(ctx context.Context, key, salesChannelID string) (bool, error) {
	v, err := s.Get(ctx, key, salesChannelID)
	if err != nil {
		return false, err
	}
	return toBool(v), nil
}

// Invalidate drops the cached config of a sales channel. An empty id means
// the global default changed, which affects every channel.
func (s *SystemConfigService) Invalidate(ctx context.Context, salesChannelID string) (err error) {
	if s.redis == nil {
		return nil
	}
	if salesChannelID != "" {
		ctx, end := database.TraceRedis(ctx, "DEL", cacheKey(salesChannelID))
		defer func() { end(err) }()
		if err = s.redis.Del(ctx, cacheKey(salesChannelID)).Err(); err != nil {
			return fmt.Errorf("redis del config: %w", err)
		}
		return nil
	}

	ctx, end := database.TraceRedis(ctx, "SCAN+DEL", configKeyPrefix+"*")
	defer func() { end(err) }()

	var keys []string
	iter := s.redis.Scan(ctx, 0, configKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err = iter.Err(); err != nil {
		return fmt.Errorf("redis scan config: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err = s.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del config: %w", err)
	}
	return nil
}

func (s *SystemConfigService) load(ctx context.Context, salesChannelID string) (map[string]any, error) {
	if values, ok := s.cached(ctx, salesChannelID); ok {
		return values, nil
	}

	values, err := s.repo.Load(ctx, salesChannelID)
	if err != nil {
		return nil, fmt.Errorf("load system config: %w", err)
	}
	s.store(ctx, salesChannelID, values)
	return values, nil
}

// cached reads the config from Redis. Redis failures are logged and
// treated as a miss.
func (s *SystemConfigService) cached(ctx context.Context, salesChannelID string) (_ map[string]any, ok bool) {
	if s.redis == nil {
		return nil, false
	}
	key := cacheKey(salesChannelID)
	var err error
	ctx, end := database.TraceRedis(ctx, "GET", key)
	defer func() { end(err) }()

	data, err := s.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		err = nil
		return nil, false
	}
	if err != nil {
		s.logger.WarnContext(ctx, "system config cache read failed", slog.String("error", err.Error()))
		return nil, false
	}

	var values map[string]any
	if err = json.Unmarshal(data, &values); err != nil {
		s.logger.WarnContext(ctx, "system config cache entry corrupt", slog.String("key", key))
		return nil, false
	}
	return values, true
}

func (s *SystemConfigService) store(ctx context.Context, salesChannelID string, values map[string]any) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(values)
	if err != nil {
		return
	}
	key := cacheKey(salesChannelID)
	ctx, end := database.TraceRedis(ctx, "SET", key)
	err = s.redis.Set(ctx, key, data, s.ttl).Err()
	end(err)
	if err != nil {
		s.logger.WarnContext(ctx, "system config cache write failed", slog.String("error", err.Error()))
	}
}

func cacheKey(salesChannelID string) string {
	if salesChannelID == "" {
		return globalConfigKey
	}
	return configKeyPrefix + salesChannelID
}

func toBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		b, err := strconv.ParseBool(t)
		return err == nil && b
	default:
		return false
	}
}
