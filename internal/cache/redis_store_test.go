package cache

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client), mr
}

func TestRedisStore_SetGet(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()
	entry := &Entry{
		Status:   http.StatusOK,
		Header:   http.Header{"Content-Type": {"text/html"}},
		Body:     []byte("<html>page</html>"),
		StoredAt: time.Now().UTC().Truncate(time.Second),
	}

	require.NoError(t, store.Set(ctx, "k1", entry, time.Hour, []string{"product.p-1", "route.frontend.detail.page"}))

	got, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, entry, got)
	assert.Equal(t, time.Hour, mr.TTL("http_cache:entry:k1"))

	members, err := mr.SMembers("http_cache:tag:product.p-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"k1"}, members)
}

func TestRedisStore_GetMiss(t *testing.T) {
	store, _ := newRedisStore(t)

	got, err := store.Get(context.Background(), "absent")

	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStore_InvalidateByTag(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()
	page := &Entry{Status: http.StatusOK, Body: []byte("x")}

	require.NoError(t, store.Set(ctx, "a", page, time.Hour, []string{"product.p-1"}))
	require.NoError(t, store.Set(ctx, "b", page, time.Hour, []string{"product.p-1", "config.core.listing.showReview"}))
	require.NoError(t, store.Set(ctx, "c", page, time.Hour, []string{"product.p-2"}))

	n, err := store.Invalidate(ctx, "product.p-1", "config.core.listing.showReview")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.False(t, mr.Exists("http_cache:entry:a"))
	assert.False(t, mr.Exists("http_cache:entry:b"))
	assert.True(t, mr.Exists("http_cache:entry:c"))
	assert.False(t, mr.Exists("http_cache:tag:product.p-1"))
}

func TestRedisStore_InvalidateNothing(t *testing.T) {
	store, _ := newRedisStore(t)

	n, err := store.Invalidate(context.Background())
	assert.NoError(t, err)
	assert.Zero(t, n)

	n, err = store.Invalidate(context.Background(), "unknown")
	assert.NoError(t, err)
	assert.Zero(t, n)
}
