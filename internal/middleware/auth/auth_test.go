package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/multisite_shop/internal/models"
	"github.com/Skotchmaster/multisite_shop/internal/service"
	"github.com/Skotchmaster/multisite_shop/pkg/tokens"
)

var secret = []byte("test-secret")

type sites map[uint]bool

func (s sites) Exists(_ context.Context, id uint) (bool, error) { return s[id], nil }

func token(t *testing.T, userID uint, role string, websiteID *uint) string {
	t.Helper()
	tok, err := tokens.SignAccessToken(strconv.Itoa(int(userID)), role, websiteID, time.Now().Add(time.Minute), secret)
	require.NoError(t, err)
	return tok
}

func ptr(v uint) *uint { return &v }

// run sends a request through login, tenant and extra middlewares and returns the resolved caller.
func run(t *testing.T, login echo.MiddlewareFunc, bearer, websiteHeader string, extra ...echo.MiddlewareFunc) (service.Caller, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	if websiteHeader != "" {
		req.Header.Set(HeaderWebsiteID, websiteHeader)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	var got service.Caller
	h := func(c echo.Context) error {
		got = CallerFrom(c)
		return nil
	}
	for i := len(extra) - 1; i >= 0; i-- {
		h = extra[i](h)
	}
	h = login(Tenant(sites{1: true, 2: true})(h))
	return got, h(c)
}

func TestTenant(t *testing.T) {
	tests := []struct {
		name     string
		login    echo.MiddlewareFunc
		token    func(t *testing.T) string
		header   string
		wantSite *uint
		wantUser uint
		wantErr  error
	}{
		{
			name:     "anonymous uses header",
			login:    OptionalLogin(secret),
			token:    func(*testing.T) string { return "" },
			header:   "1",
			wantSite: ptr(1),
		},
		{
			name:    "anonymous unknown website",
			login:   OptionalLogin(secret),
			token:   func(*testing.T) string { return "" },
			header:  "9",
			wantErr: service.ErrNotFound,
		},
		{
			name:    "malformed header",
			login:   OptionalLogin(secret),
			token:   func(*testing.T) string { return "" },
			header:  "abc",
			wantErr: service.ErrValidation,
		},
		{
			name:    "login required",
			login:   RequireLogin(secret),
			token:   func(*testing.T) string { return "" },
			wantErr: service.ErrUnauthorized,
		},
		{
			name:    "garbage token on public route",
			login:   OptionalLogin(secret),
			token:   func(*testing.T) string { return "garbage" },
			wantErr: service.ErrUnauthorized,
		},
		{
			name:     "user pinned to token website",
			login:    RequireLogin(secret),
			token:    func(t *testing.T) string { return token(t, 7, models.RoleUser, ptr(2)) },
			wantSite: ptr(2),
			wantUser: 7,
		},
		{
			name:    "user with other website header",
			login:   RequireLogin(secret),
			token:   func(t *testing.T) string { return token(t, 7, models.RoleUser, ptr(2)) },
			header:  "1",
			wantErr: service.ErrForbidden,
		},
		{
			name:     "super admin without website",
			login:    RequireLogin(secret),
			token:    func(t *testing.T) string { return token(t, 1, models.RoleSuperAdmin, nil) },
			wantUser: 1,
		},
		{
			name:     "super admin picks website",
			login:    RequireLogin(secret),
			token:    func(t *testing.T) string { return token(t, 1, models.RoleSuperAdmin, nil) },
			header:   "2",
			wantSite: ptr(2),
			wantUser: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caller, err := run(t, tt.login, tt.token(t), tt.header)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSite, caller.WebsiteID)
			assert.Equal(t, tt.wantUser, caller.UserID)
		})
	}
}

func TestRequireRoles(t *testing.T) {
	user := token(t, 7, models.RoleUser, ptr(1))
	admin := token(t, 8, models.RoleAdministrator, ptr(1))

	_, err := run(t, RequireLogin(secret), user, "", AdminOnly())
	assert.True(t, errors.Is(err, service.ErrForbidden))

	caller, err := run(t, RequireLogin(secret), admin, "", AdminOnly())
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdministrator, caller.Role)

	_, err = run(t, RequireLogin(secret), admin, "", SuperAdminOnly())
	assert.True(t, errors.Is(err, service.ErrForbidden))

	_, err = run(t, OptionalLogin(secret), "", "1", AdminOnly())
	assert.True(t, errors.Is(err, service.ErrUnauthorized))
}
