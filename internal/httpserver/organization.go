package httpserver

import (
	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/multisite_shop/internal/middleware/auth"
	"github.com/Skotchmaster/multisite_shop/internal/service"
	"github.com/Skotchmaster/multisite_shop/internal/transport"
	"github.com/Skotchmaster/multisite_shop/pkg/logging"
)

type CompanyHTTP struct {
	Svc *service.CompanyService
}

func (h *CompanyHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "company.search")

	req, err := bindPage(c)
	if err != nil {
		return fail(l, "search_companies_error", err)
	}
	page, err := h.Svc.Search(ctx, authmw.CallerFrom(c), req.Search, req.Paging())
	if err != nil {
		return fail(l, "search_companies_error", err)
	}
	return ok(c, transport.ToPaged(page, transport.ToCompanyResponse))
}

func (h *CompanyHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "company.get")

	id, err := pathID(c, "id")
	if err != nil {
		return fail(l, "get_company_error", err)
	}
	company, err := h.Svc.Get(ctx, authmw.CallerFrom(c), id)
	if err != nil {
		return fail(l, "get_company_error", err)
	}
	return ok(c, transport.ToCompanyResponse(*company))
}

func (h *CompanyHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "company.create")

	var req transport.CompanyRequest
	if err := bindBody(c, &req); err != nil {
		return fail(l, "create_company_error", err)
	}
	company, err := h.Svc.Create(ctx, authmw.CallerFrom(c), req)
	if err != nil {
		return fail(l, "create_company_error", err)
	}
	l.Info("create_company_success", "company_id", company.ID)
	return created(c, transport.ToCompanyResponse(*company))
}

func (h *CompanyHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "company.update")

	id, err := pathID(c, "id")
	if err != nil {
		return fail(l, "update_company_error", err)
	}
	var req transport.CompanyRequest
	if err := bindBody(c, &req); err != nil {
		return fail(l, "update_company_error", err)
	}
	company, err := h.Svc.Update(ctx, authmw.CallerFrom(c), id, req)
	if err != nil {
		return fail(l, "update_company_error", err)
	}
	return ok(c, transport.ToCompanyResponse(*company))
}

func (h *CompanyHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "company.delete")

	id, err := pathID(c, "id")
	if err != nil {
		return fail(l, "delete_company_error", err)
	}
	if err := h.Svc.Delete(ctx, authmw.CallerFrom(c), id); err != nil {
		return fail(l, "delete_company_error", err)
	}
	l.Info("delete_company_success", "company_id", id)
	return ok[any](c, nil)
}

type WebsiteHTTP struct {
	Svc *service.WebsiteService
}

func (h *WebsiteHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "website.search")

	req, err := bindPage(c)
	if err != nil {
		return fail(l, "search_websites_error", err)
	}
	page, err := h.Svc.Search(ctx, authmw.CallerFrom(c), req.Search, req.Paging())
	if err != nil {
		return fail(l, "search_websites_error", err)
	}
	return ok(c, transport.ToPaged(page, transport.ToWebsiteResponse))
}

func (h *WebsiteHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "website.get")

	id, err := pathID(c, "id")
	if err != nil {
		return fail(l, "get_website_error", err)
	}
	site, err := h.Svc.Get(ctx, authmw.CallerFrom(c), id)
	if err != nil {
		return fail(l, "get_website_error", err)
	}
	return ok(c, transport.ToWebsiteResponse(*site))
}

// GetByURLPath is public: storefronts use it to find their website id.
func (h *WebsiteHTTP) GetByURLPath(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "website.get_by_url_path")

	site, err := h.Svc.GetByURLPath(ctx, c.Param("urlPath"))
	if err != nil {
		return fail(l, "get_website_error", err)
	}
	return ok(c, transport.ToWebsiteResponse(*site))
}

func (h *WebsiteHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "website.create")

	var req transport.CreateWebsiteRequest
	if err := bindBody(c, &req); err != nil {
		return fail(l, "create_website_error", err)
	}
	site, err := h.Svc.Create(ctx, authmw.CallerFrom(c), req)
	if err != nil {
		return fail(l, "create_website_error", err)
	}
	l.Info("create_website_success", "website_id", site.ID)
	return created(c, transport.ToWebsiteSecretResponse(*site))
}

func (h *WebsiteHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "website.update")

	id, err := pathID(c, "id")
	if err != nil {
		return fail(l, "update_website_error", err)
	}
	var req transport.UpdateWebsiteRequest
	if err := bindBody(c, &req); err != nil {
		return fail(l, "update_website_error", err)
	}
	site, err := h.Svc.Update(ctx, authmw.CallerFrom(c), id, req)
	if err != nil {
		return fail(l, "update_website_error", err)
	}
	return ok(c, transport.ToWebsiteResponse(*site))
}

func (h *WebsiteHTTP) RegenerateSecretKey(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "website.regenerate_secret_key")

	id, err := pathID(c, "id")
	if err != nil {
		return fail(l, "regenerate_secret_key_error", err)
	}
	site, err := h.Svc.RegenerateSecretKey(ctx, authmw.CallerFrom(c), id)
	if err != nil {
		return fail(l, "regenerate_secret_key_error", err)
	}
	l.Info("regenerate_secret_key_success", "website_id", id)
	return ok(c, transport.ToWebsiteSecretResponse(*site))
}

func (h *WebsiteHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "website.delete")

	id, err := pathID(c, "id")
	if err != nil {
		return fail(l, "delete_website_error", err)
	}
	if err := h.Svc.Delete(ctx, authmw.CallerFrom(c), id); err != nil {
		return fail(l, "delete_website_error", err)
	}
	return ok[any](c, nil)
}

type UserHTTP struct {
	Svc *service.UserService
}

func (h *UserHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.search")

	req, err := bindPage(c)
	if err != nil {
		return fail(l, "search_users_error", err)
	}
	page, err := h.Svc.Search(ctx, authmw.CallerFrom(c), req.Search, req.Paging())
	if err != nil {
		return fail(l, "search_users_error", err)
	}
	return ok(c, transport.ToPaged(page, transport.ToUserResponse))
}

func (h *UserHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.me")

	caller := authmw.CallerFrom(c)
	user, err := h.Svc.Get(ctx, caller, caller.UserID)
	if err != nil {
		return fail(l, "get_user_error", err)
	}
	return ok(c, transport.ToUserResponse(*user))
}

func (h *UserHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.get")

	id, err := pathID(c, "id")
	if err != nil {
		return fail(l, "get_user_error", err)
	}
	user, err := h.Svc.Get(ctx, authmw.CallerFrom(c), id)
	if err != nil {
		return fail(l, "get_user_error", err)
	}
	return ok(c, transport.ToUserResponse(*user))
}

func (h *UserHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.create")

	var req transport.CreateUserRequest
	if err := bindBody(c, &req); err != nil {
		return fail(l, "create_user_error", err)
	}
	user, err := h.Svc.Create(ctx, authmw.CallerFrom(c), req)
	if err != nil {
		return fail(l, "create_user_error", err)
	}
	l.Info("create_user_success", "user_id", user.ID)
	return created(c, transport.ToUserResponse(*user))
}

func (h *UserHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.update")

	id, err := pathID(c, "id")
	if err != nil {
		return fail(l, "update_user_error", err)
	}
	var req transport.UpdateUserRequest
	if err := bindBody(c, &req); err != nil {
		return fail(l, "update_user_error", err)
	}
	user, err := h.Svc.Update(ctx, authmw.CallerFrom(c), id, req)
	if err != nil {
		return fail(l, "update_user_error", err)
	}
	return ok(c, transport.ToUserResponse(*user))
}

func (h *UserHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.delete")

	id, err := pathID(c, "id")
	if err != nil {
		return fail(l, "delete_user_error", err)
	}
	if err := h.Svc.Delete(ctx, authmw.CallerFrom(c), id); err != nil {
		return fail(l, "delete_user_error", err)
	}
	return ok[any](c, nil)
}

func (h *UserHTTP) ChangePassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.change_password")

	var req transport.ChangePasswordRequest
	if err := bindBody(c, &req); err != nil {
		return fail(l, "change_password_error", err)
	}
	if err := h.Svc.ChangePassword(ctx, authmw.CallerFrom(c), req); err != nil {
		return fail(l, "change_password_error", err)
	}
	l.Info("change_password_success")
	return ok[any](c, nil)
}
