package auth

import (
	"context"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/multisite_shop/internal/models"
	"github.com/Skotchmaster/multisite_shop/internal/service"
	"github.com/Skotchmaster/multisite_shop/pkg/logging"
)

const HeaderWebsiteID = "website-id"

type WebsiteChecker interface {
	Exists(ctx context.Context, id uint) (bool, error)
}

// Tenant resolves the website of the request and stores the service.Caller in the echo context.
//
// A super-admin may pick any existing website through the website-id header or none at all.
// Every other user is pinned to the website in its token; a different header is forbidden.
// Anonymous requests take the website from the header.
func Tenant(sites WebsiteChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header, err := headerWebsite(c)
			if err != nil {
				return err
			}

			var caller service.Caller
			claims := claimsFrom(c)
			switch {
			case claims == nil:
				caller.WebsiteID = header
			case claims.Role == models.RoleSuperAdmin:
				if caller.UserID, err = userID(claims); err != nil {
					return err
				}
				caller.Role = claims.Role
				caller.WebsiteID = header
			default:
				if caller.UserID, err = userID(claims); err != nil {
					return err
				}
				caller.Role = claims.Role
				if claims.WebsiteID == nil {
					return service.Forbidden("user is not assigned to a website")
				}
				if header != nil && *header != *claims.WebsiteID {
					return service.Forbidden("website-id header does not match the user's website")
				}
				caller.WebsiteID = claims.WebsiteID
			}

			ctx := c.Request().Context()
			if caller.WebsiteID != nil {
				ok, err := sites.Exists(ctx, *caller.WebsiteID)
				if err != nil {
					return err
				}
				if !ok {
					return service.NotFound("Website", *caller.WebsiteID)
				}
			}

			if caller.UserID != 0 {
				l := logging.FromContext(ctx).With("user_id", caller.UserID, "role", caller.Role)
				c.SetRequest(c.Request().WithContext(logging.IntoContext(ctx, l)))
			}
			setCaller(c, caller)
			return next(c)
		}
	}
}

func headerWebsite(c echo.Context) (*uint, error) {
	raw := strings.TrimSpace(c.Request().Header.Get(HeaderWebsiteID))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return nil, service.Validationf("website-id header %q is not a valid id", raw)
	}
	v := uint(id)
	return &v, nil
}
