package service

import (
	"context"
	"strings"

	"github.com/Skotchmaster/multisite_shop/internal/events"
	"github.com/Skotchmaster/multisite_shop/internal/models"
	"github.com/Skotchmaster/multisite_shop/internal/repo"
	"github.com/Skotchmaster/multisite_shop/internal/transport"
	"github.com/Skotchmaster/multisite_shop/pkg/logging"
)

// OrderService turns carts into orders and keeps product inventory in step with order lines.
// Every operation runs in one transaction; product rows are locked while their stock changes.
type OrderService struct {
	UOW    *repo.UnitOfWork
	Events EventPublisher
}

type OrderFilter struct {
	Text   string
	ID     *uint
	Paging repo.Paging
}

func (s *OrderService) repo() *repo.Repository[models.Order] {
	return repo.Repo[models.Order](s.UOW)
}

func (s *OrderService) lockProduct(ctx context.Context, websiteID, id uint) (*models.Product, error) {
	p, err := repo.Repo[models.Product](s.UOW).FindBy(ctx,
		repo.ByID(id), repo.ByWebsite(websiteID), repo.ActiveOnly(), repo.NotDeleted(), repo.ForUpdate())
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, NotFound("Product", id)
	}
	return p, nil
}

func (s *OrderService) Create(ctx context.Context, caller Caller, req transport.CreateOrderRequest) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.create", "user_id", caller.UserID)
	if caller.UserID == 0 {
		return nil, Unauthorized("login required")
	}
	websiteID, err := caller.Website()
	if err != nil {
		return nil, err
	}
	req.ShipAddress = strings.TrimSpace(req.ShipAddress)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.ShipAddress == "" || req.Phone == "" {
		return nil, Validationf("ship address and phone are required")
	}

	order := &models.Order{
		Base:        models.Base{Active: true},
		WebsiteID:   websiteID,
		UserID:      caller.UserID,
		ShipAddress: req.ShipAddress,
		Phone:       req.Phone,
		OrderState:  models.OrderInProgress,
	}
	err = s.UOW.Do(ctx, func(ctx context.Context) error {
		carts := repo.Repo[models.Cart](s.UOW)
		products := repo.Repo[models.Product](s.UOW)
		lines, err := carts.Where(ctx,
			repo.ByWebsite(websiteID), repo.Eq("user_id", caller.UserID), repo.NotDeleted(), repo.OrderBy("id"))
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return Validationf("cart is empty")
		}
		for i := range lines {
			line := &lines[i]
			product, err := s.lockProduct(ctx, websiteID, line.ProductID)
			if err != nil {
				return err
			}
			if product.Quantity < line.Quantity {
				return Validationf("insufficient inventory for product %q: %d in stock, %d requested",
					product.Name, product.Quantity, line.Quantity)
			}
			order.Details = append(order.Details, models.OrderDetail{
				Base:      models.Base{Active: true},
				ProductID: product.ID,
				Quantity:  line.Quantity,
				Price:     product.Price,
				Discount:  product.Discount,
			})
			product.Quantity -= line.Quantity
			if err := products.Update(ctx, product); err != nil {
				return err
			}
			if err := carts.SoftRemove(ctx, line); err != nil {
				return err
			}
		}
		order.Total = order.CalculateTotal()
		return s.repo().Add(ctx, order)
	})
	if err != nil {
		l.Warn("order_create_error", "error", err)
		return nil, err
	}
	l.Info("order_created", "order_id", order.ID, "website_id", websiteID, "total", order.Total.String())
	s.emit(ctx, "order_created", order)
	return order, nil
}

func (s *OrderService) emit(ctx context.Context, eventType string, o *models.Order) {
	ev := events.New(eventType, o.WebsiteID, o.ID, transport.ToOrderResponse(*o))
	ev.UserID = &o.UserID
	publish(ctx, s.Events, events.TopicOrders, ev)
}

// load returns the order with its details when the caller owns it or administers its website.
func (s *OrderService) load(ctx context.Context, caller Caller, id uint, scopes ...repo.Scope) (*models.Order, error) {
	scopes = append([]repo.Scope{
		repo.ByID(id),
		repo.ByOptionalWebsite(caller.WebsiteID),
		repo.NotDeleted(),
		repo.Preload("Details", repo.OrderBy("id")),
	}, scopes...)
	if caller.WebsiteID == nil && !caller.IsSuperAdmin() {
		return nil, Validationf("website-id header is required")
	}
	if !caller.IsAdmin() {
		scopes = append(scopes, repo.Eq("user_id", caller.UserID))
	}
	o, err := s.repo().FindBy(ctx, scopes...)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, NotFound("Order", id)
	}
	return o, nil
}

func (s *OrderService) Get(ctx context.Context, caller Caller, id uint) (*models.Order, error) {
	return s.load(ctx, caller, id, repo.Preload("User"), repo.Preload("Details.Product"))
}

// Update changes line quantities of an InProgress order and moves the difference in or out of stock.
func (s *OrderService) Update(ctx context.Context, caller Caller, id uint, req transport.UpdateOrderRequest) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.update", "order_id", id)
	var order *models.Order
	err := s.UOW.Do(ctx, func(ctx context.Context) error {
		var err error
		if order, err = s.load(ctx, caller, id, repo.ForUpdate()); err != nil {
			return err
		}
		if order.OrderState != models.OrderInProgress {
			return Validationf("order %d is %s and can no longer be changed", order.ID, order.OrderState)
		}
		details := repo.Repo[models.OrderDetail](s.UOW)
		products := repo.Repo[models.Product](s.UOW)
		for _, upd := range req.Details {
			if upd.Quantity <= 0 {
				return Validationf("quantity must be greater than zero")
			}
			detail := findDetail(order.Details, upd.ID)
			if detail == nil {
				return NotFound("OrderDetail", upd.ID)
			}
			delta := upd.Quantity - detail.Quantity
			if delta == 0 {
				continue
			}
			product, err := s.lockProduct(ctx, order.WebsiteID, detail.ProductID)
			if err != nil {
				return err
			}
			if product.Quantity < delta {
				return Validationf("insufficient inventory for product %q: %d in stock, %d requested",
					product.Name, product.Quantity, delta)
			}
			product.Quantity -= delta
			if err := products.Update(ctx, product); err != nil {
				return err
			}
			detail.Quantity = upd.Quantity
			if err := details.Update(ctx, detail); err != nil {
				return err
			}
		}
		order.Total = order.CalculateTotal()
		return s.repo().Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	l.Info("order_updated", "total", order.Total.String())
	return order, nil
}

func findDetail(details []models.OrderDetail, id uint) *models.OrderDetail {
	for i := range details {
		if details[i].ID == id {
			return &details[i]
		}
	}
	return nil
}

// ChangeState moves an InProgress order to Completed or Rejected.
// Rejecting returns every line to stock; completing marks the order as paid.
// Owners may reject their own order, completing requires an administrator.
func (s *OrderService) ChangeState(ctx context.Context, caller Caller, id uint, state models.OrderState) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.change_state", "order_id", id)

	var order *models.Order
	err := s.UOW.Do(ctx, func(ctx context.Context) error {
		var err error
		if order, err = s.load(ctx, caller, id, repo.ForUpdate()); err != nil {
			return err
		}
		if order.OrderState != models.OrderInProgress {
			return Validationf("order %d is %s and can no longer be changed", order.ID, order.OrderState)
		}
		if state != models.OrderCompleted && state != models.OrderRejected {
			return Validationf("order state %q is not a valid target", state)
		}
		if state == models.OrderCompleted {
			if err := caller.RequireAdmin(); err != nil {
				return err
			}
		}
		if state == models.OrderRejected {
			products := repo.Repo[models.Product](s.UOW)
			for _, d := range order.Details {
				// restock even deactivated products
				p, err := products.FindBy(ctx, repo.ByID(d.ProductID), repo.ByWebsite(order.WebsiteID), repo.ForUpdate())
				if err != nil {
					return err
				}
				if p == nil {
					return NotFound("Product", d.ProductID)
				}
				p.Quantity += d.Quantity
				if err := products.Update(ctx, p); err != nil {
					return err
				}
			}
		}
		order.OrderState = state
		order.PaymentState = state == models.OrderCompleted
		return s.repo().Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	l.Info("order_state_changed", "state", string(state))
	s.emit(ctx, "order_"+strings.ToLower(string(state)), order)
	return order, nil
}

// Search lists orders of the caller's website (all websites for a super-admin without one),
// matching text against the customer's display name.
func (s *OrderService) Search(ctx context.Context, caller Caller, f OrderFilter) (repo.Page[models.Order], error) {
	if err := caller.RequireAdmin(); err != nil {
		return repo.Page[models.Order]{}, err
	}
	if caller.WebsiteID == nil && !caller.IsSuperAdmin() {
		return repo.Page[models.Order]{}, Validationf("website-id header is required")
	}
	scopes := []repo.Scope{
		repo.ByOptionalWebsite(caller.WebsiteID),
		repo.NotDeleted(),
		repo.Preload("User"),
		repo.Preload("Details"),
	}
	if f.ID != nil {
		scopes = append(scopes, repo.ByID(*f.ID))
	}
	if text := strings.TrimSpace(f.Text); text != "" {
		scopes = append(scopes, repo.Where(
			"user_id IN (SELECT id FROM users WHERE LOWER(first_name || ' ' || last_name) LIKE ? ESCAPE '\\')",
			repo.LikePattern(text)))
	}
	return s.repo().Page(ctx, f.Paging, scopes...)
}

// ListForUser pages through the caller's own orders in the current website, newest first by default.
func (s *OrderService) ListForUser(ctx context.Context, caller Caller, paging repo.Paging) (repo.Page[models.Order], error) {
	if caller.UserID == 0 {
		return repo.Page[models.Order]{}, Unauthorized("login required")
	}
	websiteID, err := caller.Website()
	if err != nil {
		return repo.Page[models.Order]{}, err
	}
	if paging.OrderBy == "" {
		paging.OrderBy = "id"
		paging.Descending = true
	}
	return s.repo().Page(ctx, paging,
		repo.ByWebsite(websiteID), repo.Eq("user_id", caller.UserID), repo.NotDeleted(), repo.Preload("Details"))
}
