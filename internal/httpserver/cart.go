package httpserver

import (
	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/multisite_shop/internal/middleware/auth"
	"github.com/Skotchmaster/multisite_shop/internal/service"
	"github.com/Skotchmaster/multisite_shop/internal/transport"
	"github.com/Skotchmaster/multisite_shop/pkg/logging"
)

// CartHTTP answers every cart mutation with the whole cart.
type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) render(c echo.Context) error {
	rows, err := h.Svc.Get(c.Request().Context(), authmw.CallerFrom(c))
	if err != nil {
		return err
	}
	return ok(c, transport.ToCartResponse(rows))
}

func (h *CartHTTP) Get(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "cart.get")
	if err := h.render(c); err != nil {
		return fail(l, "get_cart_error", err)
	}
	return nil
}

func (h *CartHTTP) Add(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	var req transport.CartItemRequest
	if err := bindBody(c, &req); err != nil {
		return fail(l, "add_to_cart_error", err)
	}
	if _, err := h.Svc.Add(ctx, authmw.CallerFrom(c), req.ProductID, req.Quantity); err != nil {
		return fail(l, "add_to_cart_error", err)
	}
	l.Info("add_to_cart_success", "product_id", req.ProductID, "quantity", req.Quantity)
	return h.render(c)
}

func (h *CartHTTP) UpdateQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update_quantity")

	id, err := pathID(c, "id")
	if err != nil {
		return fail(l, "update_cart_error", err)
	}
	var req transport.UpdateQuantityRequest
	if err := bindBody(c, &req); err != nil {
		return fail(l, "update_cart_error", err)
	}
	if _, err := h.Svc.UpdateQuantity(ctx, authmw.CallerFrom(c), id, req.Quantity); err != nil {
		return fail(l, "update_cart_error", err)
	}
	return h.render(c)
}

func (h *CartHTTP) Remove(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	id, err := pathID(c, "id")
	if err != nil {
		return fail(l, "remove_from_cart_error", err)
	}
	if err := h.Svc.Remove(ctx, authmw.CallerFrom(c), id); err != nil {
		return fail(l, "remove_from_cart_error", err)
	}
	return h.render(c)
}

func (h *CartHTTP) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	if err := h.Svc.Clear(ctx, authmw.CallerFrom(c)); err != nil {
		return fail(l, "clear_cart_error", err)
	}
	return h.render(c)
}

func (h *CartHTTP) Merge(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.merge")

	var req transport.MergeCartRequest
	if err := bindBody(c, &req); err != nil {
		return fail(l, "merge_cart_error", err)
	}
	rows, err := h.Svc.MergeAnonymous(ctx, authmw.CallerFrom(c), req.AnonymousID)
	if err != nil {
		return fail(l, "merge_cart_error", err)
	}
	return ok(c, transport.ToCartResponse(rows))
}

// AnonymousCartHTTP serves carts of visitors identified by the :anonymousId path segment.
type AnonymousCartHTTP struct {
	Svc *service.AnonymousCartService
}

func (h *AnonymousCartHTTP) render(c echo.Context, anonymousID string) error {
	rows, err := h.Svc.Get(c.Request().Context(), authmw.CallerFrom(c), anonymousID)
	if err != nil {
		return err
	}
	return ok(c, transport.ToAnonymousCartResponse(anonymousID, rows))
}

// New hands out an identifier for a fresh anonymous cart.
func (h *AnonymousCartHTTP) New(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "anonymous_cart.new")
	if _, err := authmw.CallerFrom(c).Website(); err != nil {
		return fail(l, "new_anonymous_cart_error", err)
	}
	return created(c, transport.ToAnonymousCartResponse(service.NewAnonymousID(), nil))
}

func (h *AnonymousCartHTTP) Get(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "anonymous_cart.get")
	if err := h.render(c, c.Param("anonymousId")); err != nil {
		return fail(l, "get_anonymous_cart_error", err)
	}
	return nil
}

func (h *AnonymousCartHTTP) Add(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "anonymous_cart.add")

	anonymousID := c.Param("anonymousId")
	var req transport.CartItemRequest
	if err := bindBody(c, &req); err != nil {
		return fail(l, "add_to_anonymous_cart_error", err)
	}
	if _, err := h.Svc.Add(ctx, authmw.CallerFrom(c), anonymousID, req.ProductID, req.Quantity); err != nil {
		return fail(l, "add_to_anonymous_cart_error", err)
	}
	return h.render(c, anonymousID)
}

func (h *AnonymousCartHTTP) UpdateQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "anonymous_cart.update_quantity")

	anonymousID := c.Param("anonymousId")
	id, err := pathID(c, "id")
	if err != nil {
		return fail(l, "update_anonymous_cart_error", err)
	}
	var req transport.UpdateQuantityRequest
	if err := bindBody(c, &req); err != nil {
		return fail(l, "update_anonymous_cart_error", err)
	}
	if _, err := h.Svc.UpdateQuantity(ctx, authmw.CallerFrom(c), anonymousID, id, req.Quantity); err != nil {
		return fail(l, "update_anonymous_cart_error", err)
	}
	return h.render(c, anonymousID)
}

func (h *AnonymousCartHTTP) Remove(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "anonymous_cart.remove")

	anonymousID := c.Param("anonymousId")
	id, err := pathID(c, "id")
	if err != nil {
		return fail(l, "remove_from_anonymous_cart_error", err)
	}
	if err := h.Svc.Remove(ctx, authmw.CallerFrom(c), anonymousID, id); err != nil {
		return fail(l, "remove_from_anonymous_cart_error", err)
	}
	return h.render(c, anonymousID)
}

func (h *AnonymousCartHTTP) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "anonymous_cart.clear")

	anonymousID := c.Param("anonymousId")
	if err := h.Svc.Clear(ctx, authmw.CallerFrom(c), anonymousID); err != nil {
		return fail(l, "clear_anonymous_cart_error", err)
	}
	return h.render(c, anonymousID)
}
