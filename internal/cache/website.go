package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/multisite_shop/pkg/logging"
)

const (
	websiteKeyPrefix = "website:"

	DefaultWebsiteTTL = 10 * time.Minute
)

// WebsiteEntry is the cached part of a website used by tenant resolution.
type WebsiteEntry struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	UrlPath string `json:"url_path"`
	Active  bool   `json:"active"`
}

// WebsiteCache is nil-safe: a nil cache always misses.
type WebsiteCache struct {
	client *redis.Client
	ttl    time.Duration
}

func Connect(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func NewWebsiteCache(client *redis.Client, ttl time.Duration) *WebsiteCache {
	if ttl <= 0 {
		ttl = DefaultWebsiteTTL
	}
	return &WebsiteCache{client: client, ttl: ttl}
}

func key(id uint) string { return fmt.Sprintf("%s%d", websiteKeyPrefix, id) }

func (c *WebsiteCache) Get(ctx context.Context, id uint) (*WebsiteEntry, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		logger(ctx).Warn("website_cache_get_error", "website_id", id, "error", err)
		return nil, false
	}
	var e WebsiteEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		logger(ctx).Warn("website_cache_decode_error", "website_id", id, "error", err)
		return nil, false
	}
	return &e, true
}

func (c *WebsiteCache) Set(ctx context.Context, e WebsiteEntry) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key(e.ID), raw, c.ttl).Err(); err != nil {
		logger(ctx).Warn("website_cache_set_error", "website_id", e.ID, "error", err)
	}
}

func (c *WebsiteCache) Invalidate(ctx context.Context, id uint) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, key(id)).Err(); err != nil {
		logger(ctx).Warn("website_cache_invalidate_error", "website_id", id, "error", err)
	}
}

func logger(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx).With("component", "cache.website")
}
