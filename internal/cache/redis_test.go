package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc, err := NewRedisCache("redis://"+mr.Addr(), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { rc.Close() })
	return rc, mr
}

func TestRedisCache_PageRoundTrip(t *testing.T) {
	rc, mr := newTestCache(t, time.Hour)
	ctx := context.Background()
	url := "https://www.basketball-reference.com/teams/BOS/2025.html"

	_, ok, err := rc.GetPage(ctx, url)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, rc.SetPage(ctx, url, "<html></html>"))
	body, ok, err := rc.GetPage(ctx, url)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "<html></html>", body)
	assert.Equal(t, time.Hour, mr.TTL(PageKey(url)))

	require.NoError(t, rc.DeletePage(ctx, url))
	_, ok, err = rc.GetPage(ctx, url)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_Expiry(t *testing.T) {
	rc, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, rc.SetPage(ctx, "https://example.com/a", "a"))
	mr.FastForward(2 * time.Minute)

	_, ok, err := rc.GetPage(ctx, "https://example.com/a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisCache("redis://"+addr, time.Hour)
	assert.Error(t, err)

	_, err = NewRedisCache("not a url", time.Hour)
	assert.Error(t, err)
}

func TestPageKey(t *testing.T) {
	a := PageKey("https://example.com/a")
	assert.Equal(t, a, PageKey("https://example.com/a"))
	assert.NotEqual(t, a, PageKey("https://example.com/b"))
	assert.Len(t, a, len(pageKeyPrefix)+40)
}
