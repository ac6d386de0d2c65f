package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/multisite_shop/internal/events"
	"github.com/Skotchmaster/multisite_shop/internal/models"
	"github.com/Skotchmaster/multisite_shop/internal/repo"
	"github.com/Skotchmaster/multisite_shop/pkg/logging"
)

// CartService manages the cart of the authenticated user in the caller's website.
type CartService struct {
	UOW    *repo.UnitOfWork
	Events EventPublisher
}

func (s *CartService) repo() *repo.Repository[models.Cart] {
	return repo.Repo[models.Cart](s.UOW)
}

func (s *CartService) owner(caller Caller) (uint, error) {
	if caller.UserID == 0 {
		return 0, Unauthorized("login required")
	}
	return caller.Website()
}

func (s *CartService) lines(caller Caller, websiteID uint) []repo.Scope {
	return []repo.Scope{repo.ByWebsite(websiteID), repo.Eq("user_id", caller.UserID), repo.NotDeleted()}
}

// activeProduct loads a product that can be put into a cart of websiteID.
func activeProduct(ctx context.Context, uow *repo.UnitOfWork, websiteID, productID uint) (*models.Product, error) {
	p, err := repo.Repo[models.Product](uow).FindBy(ctx,
		repo.ByID(productID), repo.ByWebsite(websiteID), repo.ActiveOnly(), repo.NotDeleted())
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, NotFound("Product", productID)
	}
	return p, nil
}

func (s *CartService) Get(ctx context.Context, caller Caller) ([]models.Cart, error) {
	websiteID, err := s.owner(caller)
	if err != nil {
		return nil, err
	}
	scopes := append(s.lines(caller, websiteID), repo.Preload("Product"), repo.OrderBy("id"))
	return s.repo().Where(ctx, scopes...)
}

// Add puts quantity units of a product into the cart, adding to an existing line for the same product.
func (s *CartService) Add(ctx context.Context, caller Caller, productID uint, quantity int) (*models.Cart, error) {
	websiteID, err := s.owner(caller)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, Validationf("quantity must be greater than zero")
	}

	var line *models.Cart
	err = s.UOW.Do(ctx, func(ctx context.Context) error {
		if _, err := activeProduct(ctx, s.UOW, websiteID, productID); err != nil {
			return err
		}
		scopes := append(s.lines(caller, websiteID), repo.Eq("product_id", productID))
		existing, err := s.repo().FindBy(ctx, scopes...)
		if err != nil {
			return err
		}
		if existing != nil {
			existing.Quantity += quantity
			line = existing
			return s.repo().Update(ctx, existing)
		}
		line = &models.Cart{
			Base:      models.Base{Active: true},
			WebsiteID: websiteID,
			UserID:    caller.UserID,
			ProductID: productID,
			Quantity:  quantity,
		}
		return s.repo().Add(ctx, line)
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

func (s *CartService) find(ctx context.Context, caller Caller, websiteID, id uint) (*models.Cart, error) {
	line, err := s.repo().FindBy(ctx, append(s.lines(caller, websiteID), repo.ByID(id))...)
	if err != nil {
		return nil, err
	}
	if line == nil {
		return nil, NotFound("Cart", id)
	}
	return line, nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, caller Caller, id uint, quantity int) (*models.Cart, error) {
	websiteID, err := s.owner(caller)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, Validationf("quantity must be greater than zero")
	}
	var line *models.Cart
	err = s.UOW.Do(ctx, func(ctx context.Context) error {
		var err error
		if line, err = s.find(ctx, caller, websiteID, id); err != nil {
			return err
		}
		line.Quantity = quantity
		return s.repo().Update(ctx, line)
	})
	return line, err
}

func (s *CartService) Remove(ctx context.Context, caller Caller, id uint) error {
	websiteID, err := s.owner(caller)
	if err != nil {
		return err
	}
	return s.UOW.Do(ctx, func(ctx context.Context) error {
		line, err := s.find(ctx, caller, websiteID, id)
		if err != nil {
			return err
		}
		return s.repo().SoftRemove(ctx, line)
	})
}

func (s *CartService) Clear(ctx context.Context, caller Caller) error {
	websiteID, err := s.owner(caller)
	if err != nil {
		return err
	}
	_, err = s.repo().UpdateColumns(ctx, softDeleteColumns(), s.lines(caller, websiteID)...)
	return err
}

// MergeAnonymous moves the anonymous cart into the user's cart, summing quantities per product.
// The anonymous lines are soft deleted.
func (s *CartService) MergeAnonymous(ctx context.Context, caller Caller, anonymousID string) ([]models.Cart, error) {
	l := logging.FromContext(ctx).With("svc", "cart.merge_anonymous")
	websiteID, err := s.owner(caller)
	if err != nil {
		return nil, err
	}
	if err := validateAnonymousID(anonymousID); err != nil {
		return nil, err
	}

	merged := 0
	err = s.UOW.Do(ctx, func(ctx context.Context) error {
		anon := repo.Repo[models.AnonymousCart](s.UOW)
		rows, err := anon.Where(ctx, repo.ByWebsite(websiteID), repo.Eq("anonymous_id", anonymousID), repo.NotDeleted())
		if err != nil {
			return err
		}
		for i := range rows {
			row := &rows[i]
			existing, err := s.repo().FindBy(ctx, append(s.lines(caller, websiteID), repo.Eq("product_id", row.ProductID))...)
			if err != nil {
				return err
			}
			if existing != nil {
				existing.Quantity += row.Quantity
				if err := s.repo().Update(ctx, existing); err != nil {
					return err
				}
			} else {
				line := &models.Cart{
					Base:      models.Base{Active: true},
					WebsiteID: websiteID,
					UserID:    caller.UserID,
					ProductID: row.ProductID,
					Quantity:  row.Quantity,
				}
				if err := s.repo().Add(ctx, line); err != nil {
					return err
				}
			}
			if err := anon.SoftRemove(ctx, row); err != nil {
				return err
			}
			merged++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if merged > 0 {
		l.Info("cart_merged", "user_id", caller.UserID, "lines", merged)
		ev := events.New("cart_merged", websiteID, caller.UserID, map[string]any{"anonymous_id": anonymousID, "lines": merged})
		ev.UserID = &caller.UserID
		publish(ctx, s.Events, events.TopicCarts, ev)
	}
	return s.Get(ctx, caller)
}

func softDeleteColumns() map[string]any {
	now := time.Now().UTC()
	return map[string]any{"active": false, "deleted_date": now, "updated_date": now}
}
