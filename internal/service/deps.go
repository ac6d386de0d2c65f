package service

import (
	"context"
	"io"
	"strconv"

	"github.com/Skotchmaster/multisite_shop/internal/cache"
	"github.com/Skotchmaster/multisite_shop/internal/events"
	"github.com/Skotchmaster/multisite_shop/internal/models"
	"github.com/Skotchmaster/multisite_shop/internal/search"
	"github.com/Skotchmaster/multisite_shop/pkg/logging"
)

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type ProductIndex interface {
	Index(ctx context.Context, p models.Product) error
	Delete(ctx context.Context, id uint) error
	Search(ctx context.Context, q search.Query) (*search.Result, error)
}

type WebsiteCache interface {
	Get(ctx context.Context, id uint) (*cache.WebsiteEntry, bool)
	Set(ctx context.Context, e cache.WebsiteEntry)
	Invalidate(ctx context.Context, id uint)
}

type FileMover interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Move(ctx context.Context, from, to string) error
	Delete(ctx context.Context, key string) error
}

// publish logs instead of failing: events are sent after the commit.
func publish(ctx context.Context, p EventPublisher, topic string, ev events.Event) {
	if p == nil {
		return
	}
	if err := p.PublishEvent(ctx, topic, uintKey(ev.EntityID), ev); err != nil {
		logging.FromContext(ctx).Warn("publish_event_error", "topic", topic, "type", ev.Type, "error", err)
	}
}

func uintKey(id uint) string { return strconv.FormatUint(uint64(id), 10) }
