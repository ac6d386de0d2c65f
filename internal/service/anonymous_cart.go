package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/multisite_shop/internal/models"
	"github.com/Skotchmaster/multisite_shop/internal/repo"
)

// AnonymousCartService manages carts of visitors that are not logged in, keyed by a uuid the
// client keeps between requests.
type AnonymousCartService struct {
	UOW *repo.UnitOfWork
}

func validateAnonymousID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return Validationf("anonymous id %q is not a valid uuid", id)
	}
	return nil
}

// NewAnonymousID returns a fresh identifier for a visitor without one.
func NewAnonymousID() string { return uuid.NewString() }

func (s *AnonymousCartService) repo() *repo.Repository[models.AnonymousCart] {
	return repo.Repo[models.AnonymousCart](s.UOW)
}

func (s *AnonymousCartService) lines(websiteID uint, anonymousID string) []repo.Scope {
	return []repo.Scope{repo.ByWebsite(websiteID), repo.Eq("anonymous_id", anonymousID), repo.NotDeleted()}
}

func (s *AnonymousCartService) scope(caller Caller, anonymousID string) (uint, error) {
	if err := validateAnonymousID(anonymousID); err != nil {
		return 0, err
	}
	return caller.Website()
}

func (s *AnonymousCartService) Get(ctx context.Context, caller Caller, anonymousID string) ([]models.AnonymousCart, error) {
	websiteID, err := s.scope(caller, anonymousID)
	if err != nil {
		return nil, err
	}
	scopes := append(s.lines(websiteID, anonymousID), repo.Preload("Product"), repo.OrderBy("id"))
	return s.repo().Where(ctx, scopes...)
}

func (s *AnonymousCartService) Add(ctx context.Context, caller Caller, anonymousID string, productID uint, quantity int) (*models.AnonymousCart, error) {
	websiteID, err := s.scope(caller, anonymousID)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, Validationf("quantity must be greater than zero")
	}

	var line *models.AnonymousCart
	err = s.UOW.Do(ctx, func(ctx context.Context) error {
		if _, err := activeProduct(ctx, s.UOW, websiteID, productID); err != nil {
			return err
		}
		existing, err := s.repo().FindBy(ctx, append(s.lines(websiteID, anonymousID), repo.Eq("product_id", productID))...)
		if err != nil {
			return err
		}
		if existing != nil {
			existing.Quantity += quantity
			line = existing
			return s.repo().Update(ctx, existing)
		}
		line = &models.AnonymousCart{
			Base:        models.Base{Active: true},
			WebsiteID:   websiteID,
			AnonymousID: anonymousID,
			ProductID:   productID,
			Quantity:    quantity,
		}
		return s.repo().Add(ctx, line)
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

func (s *AnonymousCartService) find(ctx context.Context, websiteID uint, anonymousID string, id uint) (*models.AnonymousCart, error) {
	line, err := s.repo().FindBy(ctx, append(s.lines(websiteID, anonymousID), repo.ByID(id))...)
	if err != nil {
		return nil, err
	}
	if line == nil {
		return nil, NotFound("AnonymousCart", id)
	}
	return line, nil
}

func (s *AnonymousCartService) UpdateQuantity(ctx context.Context, caller Caller, anonymousID string, id uint, quantity int) (*models.AnonymousCart, error) {
	websiteID, err := s.scope(caller, anonymousID)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, Validationf("quantity must be greater than zero")
	}
	var line *models.AnonymousCart
	err = s.UOW.Do(ctx, func(ctx context.Context) error {
		var err error
		if line, err = s.find(ctx, websiteID, anonymousID, id); err != nil {
			return err
		}
		line.Quantity = quantity
		return s.repo().Update(ctx, line)
	})
	return line, err
}

func (s *AnonymousCartService) Remove(ctx context.Context, caller Caller, anonymousID string, id uint) error {
	websiteID, err := s.scope(caller, anonymousID)
	if err != nil {
		return err
	}
	return s.UOW.Do(ctx, func(ctx context.Context) error {
		line, err := s.find(ctx, websiteID, anonymousID, id)
		if err != nil {
			return err
		}
		return s.repo().SoftRemove(ctx, line)
	})
}

func (s *AnonymousCartService) Clear(ctx context.Context, caller Caller, anonymousID string) error {
	websiteID, err := s.scope(caller, anonymousID)
	if err != nil {
		return err
	}
	_, err = s.repo().UpdateColumns(ctx, softDeleteColumns(), s.lines(websiteID, anonymousID)...)
	return err
}
