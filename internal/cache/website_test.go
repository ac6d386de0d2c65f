package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilCacheMisses(t *testing.T) {
	t.Parallel()

	var c *WebsiteCache
	ctx := context.Background()
	c.Set(ctx, WebsiteEntry{ID: 1})
	c.Invalidate(ctx, 1)
	_, ok := c.Get(ctx, 1)
	assert.False(t, ok)
}

func TestWebsiteCache_Integration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	client, err := Connect(ctx, addr, os.Getenv("REDIS_PASSWORD"))
	require.NoError(t, err)
	defer client.Close()

	c := NewWebsiteCache(client, time.Minute)
	id := uint(time.Now().UnixNano() % 1_000_000)

	_, ok := c.Get(ctx, id)
	assert.False(t, ok)

	c.Set(ctx, WebsiteEntry{ID: id, Name: "shop", UrlPath: "shop", Active: true})
	got, ok := c.Get(ctx, id)
	require.True(t, ok)
	assert.Equal(t, "shop", got.Name)

	c.Invalidate(ctx, id)
	_, ok = c.Get(ctx, id)
	assert.False(t, ok)
}
