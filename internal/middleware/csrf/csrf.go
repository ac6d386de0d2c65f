package csrf

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/multisite_shop/internal/service"
	"github.com/Skotchmaster/multisite_shop/pkg/logging"
)

const (
	CookieName = "XSRF-TOKEN"
	HeaderName = "X-CSRF-Token"
)

type Config struct {
	// AuthCookies are the cookies that carry credentials. Requests without any
	// of them, or with an Authorization header, are not checked.
	AuthCookies []string
	Secure      bool
	MaxAge      time.Duration
}

func DefaultConfig() Config {
	return Config{
		AuthCookies: []string{"accessToken", "refreshToken"},
		MaxAge:      24 * time.Hour,
	}
}

// Middleware applies the double-submit cookie check to requests authenticated by cookie.
// Safe methods receive the token cookie, unsafe ones must echo it in the X-CSRF-Token header.
func Middleware(cfg Config) echo.MiddlewareFunc {
	def := DefaultConfig()
	if len(cfg.AuthCookies) == 0 {
		cfg.AuthCookies = def.AuthCookies
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = def.MaxAge
	}

	return echomw.CSRFWithConfig(echomw.CSRFConfig{
		Skipper:        func(c echo.Context) bool { return !cookieAuthenticated(c, cfg.AuthCookies) },
		TokenLookup:    "header:" + HeaderName,
		CookieName:     CookieName,
		CookiePath:     "/",
		CookieMaxAge:   int(cfg.MaxAge.Seconds()),
		CookieSecure:   cfg.Secure,
		CookieSameSite: http.SameSiteLaxMode,
		ErrorHandler: func(err error, c echo.Context) error {
			logging.FromContext(c.Request().Context()).Warn("csrf_rejected",
				"method", c.Request().Method,
				"path", c.Path(),
				"error", err,
			)
			return service.Forbidden("invalid csrf token")
		},
	})
}

func cookieAuthenticated(c echo.Context, names []string) bool {
	if c.Request().Header.Get(echo.HeaderAuthorization) != "" {
		return false
	}
	for _, name := range names {
		if ck, err := c.Cookie(name); err == nil && ck.Value != "" {
			return true
		}
	}
	return false
}
