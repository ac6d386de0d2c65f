package service_test

import (
	"context"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/Skotchmaster/multisite_shop/internal/events"
	"github.com/Skotchmaster/multisite_shop/internal/models"
	"github.com/Skotchmaster/multisite_shop/internal/repo"
	"github.com/Skotchmaster/multisite_shop/internal/service"
	"github.com/Skotchmaster/multisite_shop/internal/testutil"
)

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	events []events.Event
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic, _ string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event.(events.Event))
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

type shop struct {
	db    *gorm.DB
	uow   *repo.UnitOfWork
	site  *models.Website
	leaf  *models.Category
	admin service.Caller
	buyer service.Caller
	user  *models.User
}

func newShop(t *testing.T) *shop {
	t.Helper()
	gdb := testutil.OpenDB(t)
	site := testutil.Website(t, gdb, "books")
	admin := testutil.User(t, gdb, &site.ID, models.RoleAdministrator, "admin", "secret1")
	user := testutil.User(t, gdb, &site.ID, models.RoleUser, "alice", "secret1")
	return &shop{
		db:    gdb,
		uow:   repo.NewUnitOfWork(gdb),
		site:  site,
		leaf:  testutil.Category(t, gdb, site.ID, "Novels", nil),
		admin: service.Caller{UserID: admin.ID, WebsiteID: &site.ID, Role: models.RoleAdministrator},
		buyer: service.Caller{UserID: user.ID, WebsiteID: &site.ID, Role: models.RoleUser},
		user:  user,
	}
}
