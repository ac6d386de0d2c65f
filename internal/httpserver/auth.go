package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/multisite_shop/internal/middleware/auth"
	"github.com/Skotchmaster/multisite_shop/internal/service"
	"github.com/Skotchmaster/multisite_shop/internal/transport"
	"github.com/Skotchmaster/multisite_shop/pkg/logging"
)

type AuthHTTP struct {
	Svc *service.AuthService
	// SecureCookies marks the token cookies Secure; enable behind TLS.
	SecureCookies bool
}

func (h *AuthHTTP) cookie(name, value string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *AuthHTTP) setCookies(c echo.Context, res *service.LoginResult) {
	c.SetCookie(h.cookie("accessToken", res.AccessToken, res.AccessExp))
	c.SetCookie(h.cookie("refreshToken", res.RefreshToken, res.RefreshExp))
}

func (h *AuthHTTP) clearCookies(c echo.Context) {
	for _, name := range []string{"accessToken", "refreshToken"} {
		ck := h.cookie(name, "", time.Unix(0, 0))
		ck.MaxAge = -1
		c.SetCookie(ck)
	}
}

// refreshToken reads the token from the body and falls back to the cookie.
func refreshToken(c echo.Context) (string, error) {
	var req transport.RefreshRequest
	if c.Request().ContentLength > 0 {
		if err := bindBody(c, &req); err != nil {
			return "", err
		}
	}
	if req.RefreshToken == "" {
		if ck, err := c.Cookie("refreshToken"); err == nil {
			req.RefreshToken = ck.Value
		}
	}
	if req.RefreshToken == "" {
		return "", service.Unauthorized("refresh token is missing")
	}
	return req.RefreshToken, nil
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := bindBody(c, &req); err != nil {
		return fail(l, "login_error", err)
	}
	res, err := h.Svc.Login(ctx, req)
	if err != nil {
		return fail(l, "login_error", err)
	}
	h.setCookies(c, res)
	l.Info("login_success", "user_id", res.User.ID)
	return ok(c, res.Response())
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.refresh")

	token, err := refreshToken(c)
	if err != nil {
		return fail(l, "refresh_error", err)
	}
	res, err := h.Svc.Refresh(ctx, token)
	if err != nil {
		h.clearCookies(c)
		return fail(l, "refresh_error", err)
	}
	h.setCookies(c, res)
	l.Info("refresh_success", "user_id", res.User.ID)
	return ok(c, res.Response())
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	token, err := refreshToken(c)
	if err != nil {
		return fail(l, "logout_error", err)
	}
	if err := h.Svc.Logout(ctx, token); err != nil {
		return fail(l, "logout_error", err)
	}
	h.clearCookies(c)
	l.Info("logout_success")
	return ok[any](c, nil)
}

// Register creates a customer in the website named by the website-id header.
func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	websiteID, err := authmw.CallerFrom(c).Website()
	if err != nil {
		return fail(l, "register_error", err)
	}
	var req transport.RegisterRequest
	if err := bindBody(c, &req); err != nil {
		return fail(l, "register_error", err)
	}
	user, err := h.Svc.Register(ctx, websiteID, req)
	if err != nil {
		return fail(l, "register_error", err)
	}
	l.Info("register_success", "user_id", user.ID)
	return created(c, transport.ToUserResponse(*user))
}
