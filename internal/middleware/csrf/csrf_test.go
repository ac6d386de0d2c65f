package csrf

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/multisite_shop/internal/service"
)

func serve(req *http.Request) (*httptest.ResponseRecorder, bool, error) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	h := Middleware(DefaultConfig())(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	return rec, called, h(c)
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("bearer requests are not checked", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/carts", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer abc")
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: "abc"})

		_, called, err := serve(req)
		require.NoError(t, err)
		assert.True(t, called)
	})

	t.Run("anonymous requests are not checked", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)

		_, called, err := serve(req)
		require.NoError(t, err)
		assert.True(t, called)
	})

	t.Run("safe method issues the token cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/carts", nil)
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: "abc"})

		rec, called, err := serve(req)
		require.NoError(t, err)
		assert.True(t, called)

		var issued bool
		for _, ck := range rec.Result().Cookies() {
			if ck.Name == CookieName && ck.Value != "" {
				issued = true
			}
		}
		assert.True(t, issued)
	})

	t.Run("cookie request without token is forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/carts", nil)
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: "abc"})

		_, called, err := serve(req)
		require.Error(t, err)
		assert.True(t, errors.Is(err, service.ErrForbidden))
		assert.False(t, called)
	})

	t.Run("cookie request with mismatching token is forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/carts", nil)
		req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "abc"})
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "expected"})
		req.Header.Set(HeaderName, "other")

		_, called, err := serve(req)
		assert.True(t, errors.Is(err, service.ErrForbidden))
		assert.False(t, called)
	})

	t.Run("cookie request echoing the token passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", nil)
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: "abc"})
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "token-value"})
		req.Header.Set(HeaderName, "token-value")

		_, called, err := serve(req)
		require.NoError(t, err)
		assert.True(t, called)
	})
}
