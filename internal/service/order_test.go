package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/multisite_shop/internal/events"
	"github.com/Skotchmaster/multisite_shop/internal/models"
	"github.com/Skotchmaster/multisite_shop/internal/repo"
	"github.com/Skotchmaster/multisite_shop/internal/service"
	"github.com/Skotchmaster/multisite_shop/internal/testutil"
	"github.com/Skotchmaster/multisite_shop/internal/transport"
)

var shipping = transport.CreateOrderRequest{ShipAddress: "1 Main St", Phone: "+100200300"}

func placeOrder(t *testing.T, s *shop, pub *recordingPublisher) (*service.OrderService, *models.Order, *models.Product, *models.Product) {
	t.Helper()
	a := testutil.Product(t, s.db, s.site.ID, s.leaf.ID, "Dune", 100, 10)
	b := testutil.Product(t, s.db, s.site.ID, s.leaf.ID, "Emma", 150, 5)
	testutil.CartLine(t, s.db, s.site.ID, s.user.ID, a.ID, 2)
	testutil.CartLine(t, s.db, s.site.ID, s.user.ID, b.ID, 1)

	svc := &service.OrderService{UOW: s.uow}
	if pub != nil {
		svc.Events = pub
	}
	order, err := svc.Create(context.Background(), s.buyer, shipping)
	require.NoError(t, err)
	return svc, order, a, b
}

func TestOrderService_CreateFromCart(t *testing.T) {
	s := newShop(t)
	pub := &recordingPublisher{}
	_, order, a, b := placeOrder(t, s, pub)

	assert.True(t, order.Total.Equal(decimal.NewFromInt(350)), "total %s", order.Total)
	assert.Equal(t, models.OrderInProgress, order.OrderState)
	assert.False(t, order.PaymentState)
	require.Len(t, order.Details, 2)

	stored := testutil.Reload[models.Order](t, s.db, order.ID)
	assert.True(t, stored.Total.Equal(decimal.NewFromInt(350)))
	assert.True(t, stored.Active)

	assert.Equal(t, 8, testutil.Reload[models.Product](t, s.db, a.ID).Quantity)
	assert.Equal(t, 4, testutil.Reload[models.Product](t, s.db, b.ID).Quantity)

	var carts []models.Cart
	require.NoError(t, s.db.Where("user_id = ?", s.user.ID).Find(&carts).Error)
	require.Len(t, carts, 2)
	for _, c := range carts {
		assert.NotNil(t, c.DeletedDate)
	}

	assert.Equal(t, []string{"order_created"}, pub.types())
	assert.Equal(t, events.TopicOrders, pub.topics[0])
}

func TestOrderService_CreateSnapshotsDiscount(t *testing.T) {
	s := newShop(t)
	p := testutil.Product(t, s.db, s.site.ID, s.leaf.ID, "Dune", 100, 10)
	require.NoError(t, s.db.Model(p).Update("discount", decimal.NewFromInt(25)).Error)
	testutil.CartLine(t, s.db, s.site.ID, s.user.ID, p.ID, 3)

	svc := &service.OrderService{UOW: s.uow}
	order, err := svc.Create(context.Background(), s.buyer, shipping)
	require.NoError(t, err)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(225)), "total %s", order.Total)
	assert.True(t, order.Details[0].Discount.Equal(decimal.NewFromInt(25)))
}

func TestOrderService_CreateEmptyCart(t *testing.T) {
	s := newShop(t)
	svc := &service.OrderService{UOW: s.uow}

	_, err := svc.Create(context.Background(), s.buyer, shipping)
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrValidation))
	assert.Equal(t, "cart is empty", service.Message(err))
}

func TestOrderService_CreateInsufficientInventory(t *testing.T) {
	s := newShop(t)
	a := testutil.Product(t, s.db, s.site.ID, s.leaf.ID, "Dune", 100, 10)
	b := testutil.Product(t, s.db, s.site.ID, s.leaf.ID, "Emma", 150, 1)
	testutil.CartLine(t, s.db, s.site.ID, s.user.ID, a.ID, 2)
	line := testutil.CartLine(t, s.db, s.site.ID, s.user.ID, b.ID, 3)

	svc := &service.OrderService{UOW: s.uow}
	_, err := svc.Create(context.Background(), s.buyer, shipping)
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrValidation))
	assert.Contains(t, service.Message(err), `"Emma"`)

	// nothing from the failed request is persisted
	assert.Equal(t, 10, testutil.Reload[models.Product](t, s.db, a.ID).Quantity)
	assert.Nil(t, testutil.Reload[models.Cart](t, s.db, line.ID).DeletedDate)
	var n int64
	require.NoError(t, s.db.Model(&models.Order{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestOrderService_CreateProductFromOtherWebsite(t *testing.T) {
	s := newShop(t)
	other := testutil.Website(t, s.db, "music")
	cat := testutil.Category(t, s.db, other.ID, "Vinyl", nil)
	p := testutil.Product(t, s.db, other.ID, cat.ID, "Abbey Road", 30, 5)
	testutil.CartLine(t, s.db, s.site.ID, s.user.ID, p.ID, 1)

	_, err := (&service.OrderService{UOW: s.uow}).Create(context.Background(), s.buyer, shipping)
	assert.True(t, errors.Is(err, service.ErrNotFound))
	assert.Equal(t, "Product with id 1 not found", service.Message(err))
}

func TestOrderService_Reject(t *testing.T) {
	s := newShop(t)
	pub := &recordingPublisher{}
	svc, order, a, b := placeOrder(t, s, pub)

	rejected, err := svc.ChangeState(context.Background(), s.buyer, order.ID, models.OrderRejected)
	require.NoError(t, err)
	assert.Equal(t, models.OrderRejected, rejected.OrderState)
	assert.False(t, rejected.PaymentState)

	assert.Equal(t, 10, testutil.Reload[models.Product](t, s.db, a.ID).Quantity)
	assert.Equal(t, 5, testutil.Reload[models.Product](t, s.db, b.ID).Quantity)
	assert.Equal(t, []string{"order_created", "order_rejected"}, pub.types())
}

func TestOrderService_Complete(t *testing.T) {
	s := newShop(t)
	svc, order, a, _ := placeOrder(t, s, nil)

	_, err := svc.ChangeState(context.Background(), s.buyer, order.ID, models.OrderCompleted)
	assert.True(t, errors.Is(err, service.ErrForbidden))

	done, err := svc.ChangeState(context.Background(), s.admin, order.ID, models.OrderCompleted)
	require.NoError(t, err)
	assert.True(t, done.PaymentState)
	assert.Equal(t, 8, testutil.Reload[models.Product](t, s.db, a.ID).Quantity)

	stored := testutil.Reload[models.Order](t, s.db, order.ID)
	assert.Equal(t, models.OrderCompleted, stored.OrderState)
	assert.True(t, stored.PaymentState)
	assert.NotNil(t, stored.UpdatedDate)
}

func TestOrderService_ClosedOrderIsImmutable(t *testing.T) {
	s := newShop(t)
	svc, order, _, _ := placeOrder(t, s, nil)
	ctx := context.Background()

	_, err := svc.ChangeState(ctx, s.admin, order.ID, models.OrderCompleted)
	require.NoError(t, err)

	_, err = svc.ChangeState(ctx, s.admin, order.ID, models.OrderRejected)
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrValidation))
	assert.Contains(t, service.Message(err), "Completed")

	upd := transport.UpdateOrderRequest{Details: []transport.OrderDetailUpdate{{ID: order.Details[0].ID, Quantity: 1}}}
	_, err = svc.Update(ctx, s.buyer, order.ID, upd)
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrValidation))
	assert.Contains(t, service.Message(err), "Completed")
}

func TestOrderService_InvalidTargetState(t *testing.T) {
	s := newShop(t)
	svc, order, _, _ := placeOrder(t, s, nil)

	_, err := svc.ChangeState(context.Background(), s.admin, order.ID, models.OrderInProgress)
	assert.True(t, errors.Is(err, service.ErrValidation))
}

func TestOrderService_ClosedOrderNamesStateForAnyTarget(t *testing.T) {
	s := newShop(t)
	svc, order, _, _ := placeOrder(t, s, nil)
	ctx := context.Background()

	_, err := svc.ChangeState(ctx, s.buyer, order.ID, models.OrderRejected)
	require.NoError(t, err)

	tests := []struct {
		name   string
		caller service.Caller
		target models.OrderState
	}{
		{"admin back to in progress", s.admin, models.OrderInProgress},
		{"buyer completes", s.buyer, models.OrderCompleted},
		{"admin completes", s.admin, models.OrderCompleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ChangeState(ctx, tt.caller, order.ID, tt.target)
			require.Error(t, err)
			assert.True(t, errors.Is(err, service.ErrValidation), "got %v", err)
			assert.Contains(t, service.Message(err), "Rejected")
		})
	}
}

func TestOrderService_FailedUpdateKeepsStock(t *testing.T) {
	s := newShop(t)
	svc, order, a, _ := placeOrder(t, s, nil)
	var first uint
	for _, d := range order.Details {
		if d.ProductID == a.ID {
			first = d.ID
		}
	}

	_, err := svc.Update(context.Background(), s.buyer, order.ID, transport.UpdateOrderRequest{Details: []transport.OrderDetailUpdate{
		{ID: first, Quantity: 5},
		{ID: 999, Quantity: 1},
	}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrNotFound))

	assert.Equal(t, 8, testutil.Reload[models.Product](t, s.db, a.ID).Quantity)
	stored := testutil.Reload[models.Order](t, s.db, order.ID)
	assert.True(t, stored.Total.Equal(decimal.NewFromInt(350)), "total %s", stored.Total)
	var detail models.OrderDetail
	require.NoError(t, s.db.First(&detail, first).Error)
	assert.Equal(t, 2, detail.Quantity)
}

func TestOrderService_UpdateMovesStock(t *testing.T) {
	s := newShop(t)
	svc, order, a, b := placeOrder(t, s, nil)
	ctx := context.Background()
	detailOf := func(productID uint) uint {
		for _, d := range order.Details {
			if d.ProductID == productID {
				return d.ID
			}
		}
		t.Fatalf("no detail for product %d", productID)
		return 0
	}

	updated, err := svc.Update(ctx, s.buyer, order.ID, transport.UpdateOrderRequest{Details: []transport.OrderDetailUpdate{
		{ID: detailOf(a.ID), Quantity: 5},
		{ID: detailOf(b.ID), Quantity: 1},
	}})
	require.NoError(t, err)
	assert.True(t, updated.Total.Equal(decimal.NewFromInt(650)), "total %s", updated.Total)
	assert.Equal(t, 5, testutil.Reload[models.Product](t, s.db, a.ID).Quantity)
	assert.Equal(t, 4, testutil.Reload[models.Product](t, s.db, b.ID).Quantity)

	updated, err = svc.Update(ctx, s.buyer, order.ID, transport.UpdateOrderRequest{Details: []transport.OrderDetailUpdate{
		{ID: detailOf(a.ID), Quantity: 1},
	}})
	require.NoError(t, err)
	assert.True(t, updated.Total.Equal(decimal.NewFromInt(250)), "total %s", updated.Total)
	assert.Equal(t, 9, testutil.Reload[models.Product](t, s.db, a.ID).Quantity)

	_, err = svc.Update(ctx, s.buyer, order.ID, transport.UpdateOrderRequest{Details: []transport.OrderDetailUpdate{
		{ID: detailOf(b.ID), Quantity: 100},
	}})
	assert.True(t, errors.Is(err, service.ErrValidation))

	_, err = svc.Update(ctx, s.buyer, order.ID, transport.UpdateOrderRequest{Details: []transport.OrderDetailUpdate{
		{ID: 999, Quantity: 1},
	}})
	assert.True(t, errors.Is(err, service.ErrNotFound))
	assert.Equal(t, "OrderDetail with id 999 not found", service.Message(err))
}

func TestOrderService_OtherUsersOrderIsHidden(t *testing.T) {
	s := newShop(t)
	svc, order, _, _ := placeOrder(t, s, nil)
	bob := testutil.User(t, s.db, &s.site.ID, models.RoleUser, "bob", "secret1")
	caller := service.Caller{UserID: bob.ID, WebsiteID: &s.site.ID, Role: models.RoleUser}

	_, err := svc.Get(context.Background(), caller, order.ID)
	assert.True(t, errors.Is(err, service.ErrNotFound))

	got, err := svc.Get(context.Background(), s.admin, order.ID)
	require.NoError(t, err)
	require.NotNil(t, got.User)
	assert.Equal(t, "alice Tester", got.User.DisplayName())
}

func TestOrderService_Search(t *testing.T) {
	s := newShop(t)
	svc, order, _, _ := placeOrder(t, s, nil)
	ctx := context.Background()
	paging := repo.Paging{PageNumber: 1, PageSize: 10}

	page, err := svc.Search(ctx, s.admin, service.OrderFilter{Text: "ALICE", Paging: paging})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, order.ID, page.Items[0].ID)

	page, err = svc.Search(ctx, s.admin, service.OrderFilter{Text: "bob", Paging: paging})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	missing := order.ID + 1
	page, err = svc.Search(ctx, s.admin, service.OrderFilter{ID: &missing, Paging: paging})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	other := testutil.Website(t, s.db, "music")
	elsewhere := service.Caller{UserID: s.admin.UserID, WebsiteID: &other.ID, Role: models.RoleSuperAdmin}
	page, err = svc.Search(ctx, elsewhere, service.OrderFilter{Paging: paging})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	global := service.Caller{UserID: s.admin.UserID, Role: models.RoleSuperAdmin}
	page, err = svc.Search(ctx, global, service.OrderFilter{Paging: paging})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)

	_, err = svc.Search(ctx, s.buyer, service.OrderFilter{Paging: paging})
	assert.True(t, errors.Is(err, service.ErrForbidden))

	mine, err := svc.ListForUser(ctx, s.buyer, paging)
	require.NoError(t, err)
	assert.EqualValues(t, 1, mine.Total)
}
