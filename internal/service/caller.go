package service

import (
	"github.com/Skotchmaster/multisite_shop/internal/models"
)

// Caller is the authenticated user together with the website resolved for the request.
// WebsiteID is nil only for a super-admin working across all websites.
type Caller struct {
	UserID    uint
	WebsiteID *uint
	Role      string
}

func (c Caller) IsSuperAdmin() bool { return c.Role == models.RoleSuperAdmin }

func (c Caller) IsAdmin() bool {
	return c.Role == models.RoleSuperAdmin || c.Role == models.RoleAdministrator
}

// Website returns the website the caller is working in or a validation error when none was chosen.
func (c Caller) Website() (uint, error) {
	if c.WebsiteID == nil {
		return 0, Validationf("website-id header is required")
	}
	return *c.WebsiteID, nil
}

// CanAccessWebsite reports whether rows of websiteID are visible to the caller.
func (c Caller) CanAccessWebsite(websiteID uint) bool {
	if c.WebsiteID == nil {
		return c.IsSuperAdmin()
	}
	return *c.WebsiteID == websiteID
}

func (c Caller) RequireAdmin() error {
	if !c.IsAdmin() {
		return Forbidden("administrator role required")
	}
	return nil
}

func (c Caller) RequireSuperAdmin() error {
	if !c.IsSuperAdmin() {
		return Forbidden("super admin role required")
	}
	return nil
}
