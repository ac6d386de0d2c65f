package auth

import (
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/multisite_shop/internal/service"
	"github.com/Skotchmaster/multisite_shop/pkg/tokens"
)

const (
	tokenContextKey = "user"
	accessCookie    = "accessToken"
)

// tokenLookup accepts a bearer header and falls back to the access token cookie.
const tokenLookup = "header:Authorization:Bearer ,cookie:" + accessCookie

func jwtConfig(secret []byte) echojwt.Config {
	return echojwt.Config{
		SigningKey:    secret,
		SigningMethod: "HS256",
		ContextKey:    tokenContextKey,
		TokenLookup:   tokenLookup,
		NewClaimsFunc: func(echo.Context) jwt.Claims { return new(tokens.AccessClaims) },
		ErrorHandler: func(c echo.Context, err error) error {
			return service.Unauthorized("invalid or missing access token")
		},
	}
}

// RequireLogin rejects requests without a valid access token.
func RequireLogin(secret []byte) echo.MiddlewareFunc {
	return echojwt.WithConfig(jwtConfig(secret))
}

// OptionalLogin validates the access token when one is sent and lets anonymous requests through.
// A malformed or expired token is still rejected.
func OptionalLogin(secret []byte) echo.MiddlewareFunc {
	cfg := jwtConfig(secret)
	cfg.Skipper = func(c echo.Context) bool {
		if c.Request().Header.Get(echo.HeaderAuthorization) != "" {
			return false
		}
		if ck, err := c.Cookie(accessCookie); err == nil && ck.Value != "" {
			return false
		}
		return true
	}
	return echojwt.WithConfig(cfg)
}
