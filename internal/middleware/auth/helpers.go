package auth

import (
	"strconv"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/multisite_shop/internal/service"
	"github.com/Skotchmaster/multisite_shop/pkg/tokens"
)

const callerContextKey = "caller"

// claimsFrom returns the verified access claims or nil for anonymous requests.
func claimsFrom(c echo.Context) *tokens.AccessClaims {
	token, ok := c.Get(tokenContextKey).(*jwt.Token)
	if !ok || token == nil {
		return nil
	}
	claims, ok := token.Claims.(*tokens.AccessClaims)
	if !ok {
		return nil
	}
	return claims
}

func userID(claims *tokens.AccessClaims) (uint, error) {
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, service.Unauthorized("invalid token subject")
	}
	return uint(id), nil
}

func setCaller(c echo.Context, caller service.Caller) {
	c.Set(callerContextKey, caller)
}

// CallerFrom returns the caller resolved by Tenant. Anonymous requests get a zero UserID.
func CallerFrom(c echo.Context) service.Caller {
	caller, _ := c.Get(callerContextKey).(service.Caller)
	return caller
}
