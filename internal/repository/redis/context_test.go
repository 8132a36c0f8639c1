package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

func setupTestRedis(t *testing.T) (*ContextRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewContextRepository(client, 72*time.Hour), mr
}

func sampleContext() *domain.SalesChannelContext {
	return &domain.SalesChannelContext{
		Token:          "tok-1",
		SalesChannelID: "sc-1",
		DomainID:       "d-1",
		LanguageID:     "lang-en",
		CurrencyID:     "eur",
		CustomerID:     "cust-1",
		UpdatedAt:      time.Now().UTC().Truncate(time.Millisecond),
	}
}

func TestContextRepository_SaveThenLoad(t *testing.T) {
	repo, mr := setupTestRedis(t)
	sc := sampleContext()

	require.NoError(t, repo.Save(context.Background(), sc))

	assert.True(t, mr.Exists("context:tok-1"))
	assert.Equal(t, 72*time.Hour, mr.TTL("context:tok-1"))

	got, err := repo.Load(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Equal(t, sc, got)
}

func TestContextRepository_LoadStoredJSON(t *testing.T) {
	repo, mr := setupTestRedis(t)
	data, err := json.Marshal(sampleContext())
	require.NoError(t, err)
	require.NoError(t, mr.Set("context:tok-1", string(data)))

	got, err := repo.Load(context.Background(), "tok-1")

	require.NoError(t, err)
	assert.Equal(t, "lang-en", got.LanguageID)
	assert.True(t, got.LoggedIn())
}

func TestContextRepository_LoadNotFound(t *testing.T) {
	repo, _ := setupTestRedis(t)

	got, err := repo.Load(context.Background(), "missing")

	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestContextRepository_LoadCorrupt(t *testing.T) {
	repo, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("context:bad", "{not json"))

	_, err := repo.Load(context.Background(), "bad")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)
}

func TestContextRepository_Delete(t *testing.T) {
	repo, mr := setupTestRedis(t)
	require.NoError(t, repo.Save(context.Background(), sampleContext()))

	require.NoError(t, repo.Delete(context.Background(), "tok-1"))
	assert.False(t, mr.Exists("context:tok-1"))

	// deleting twice is fine
	assert.NoError(t, repo.Delete(context.Background(), "tok-1"))
}

func TestContextRepository_RedisDown(t *testing.T) {
	repo, mr := setupTestRedis(t)
	mr.Close()

	_, err := repo.Load(context.Background(), "tok-1")
	assert.Error(t, err)
	assert.Error(t, repo.Save(context.Background(), sampleContext()))
}
