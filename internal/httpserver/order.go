package httpserver

import (
	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/multisite_shop/internal/middleware/auth"
	"github.com/Skotchmaster/multisite_shop/internal/service"
	"github.com/Skotchmaster/multisite_shop/internal/transport"
	"github.com/Skotchmaster/multisite_shop/pkg/logging"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create")

	var req transport.CreateOrderRequest
	if err := bindBody(c, &req); err != nil {
		return fail(l, "create_order_error", err)
	}
	order, err := h.Svc.Create(ctx, authmw.CallerFrom(c), req)
	if err != nil {
		return fail(l, "create_order_error", err)
	}
	l.Info("create_order_success", "order_id", order.ID)
	return created(c, transport.ToOrderResponse(*order))
}

func (h *OrderHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	id, err := pathID(c, "id")
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	order, err := h.Svc.Get(ctx, authmw.CallerFrom(c), id)
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	return ok(c, transport.ToOrderResponse(*order))
}

func (h *OrderHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.search")

	var req transport.OrderSearchRequest
	var err error
	if req.PageRequest, err = bindPage(c); err != nil {
		return fail(l, "search_orders_error", err)
	}
	if req.ID, err = queryID(c, "id"); err != nil {
		return fail(l, "search_orders_error", err)
	}
	page, err := h.Svc.Search(ctx, authmw.CallerFrom(c), service.OrderFilter{
		Text:   req.Search,
		ID:     req.ID,
		Paging: req.Paging(),
	})
	if err != nil {
		return fail(l, "search_orders_error", err)
	}
	return ok(c, transport.ToPaged(page, transport.ToOrderResponse))
}

func (h *OrderHTTP) Mine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.mine")

	req, err := bindPage(c)
	if err != nil {
		return fail(l, "list_orders_error", err)
	}
	page, err := h.Svc.ListForUser(ctx, authmw.CallerFrom(c), req.Paging())
	if err != nil {
		return fail(l, "list_orders_error", err)
	}
	return ok(c, transport.ToPaged(page, transport.ToOrderResponse))
}

func (h *OrderHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update")

	id, err := pathID(c, "id")
	if err != nil {
		return fail(l, "update_order_error", err)
	}
	var req transport.UpdateOrderRequest
	if err := bindBody(c, &req); err != nil {
		return fail(l, "update_order_error", err)
	}
	order, err := h.Svc.Update(ctx, authmw.CallerFrom(c), id, req)
	if err != nil {
		return fail(l, "update_order_error", err)
	}
	return ok(c, transport.ToOrderResponse(*order))
}

func (h *OrderHTTP) ChangeState(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.change_state")

	id, err := pathID(c, "id")
	if err != nil {
		return fail(l, "change_order_state_error", err)
	}
	var req transport.ChangeOrderStateRequest
	if err := bindBody(c, &req); err != nil {
		return fail(l, "change_order_state_error", err)
	}
	if !req.State.Valid() {
		return fail(l, "change_order_state_error", service.Validationf("unknown order state %q", req.State))
	}
	order, err := h.Svc.ChangeState(ctx, authmw.CallerFrom(c), id, req.State)
	if err != nil {
		return fail(l, "change_order_state_error", err)
	}
	l.Info("change_order_state_success", "order_id", id, "state", string(order.OrderState))
	return ok(c, transport.ToOrderResponse(*order))
}
