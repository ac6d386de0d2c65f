package models

import (
	"strings"
	"time"
)

// Base is embedded by every tenant entity. Rows are never hard deleted by the services;
// DeletedDate marks soft deletion and Active=false marks deactivation.
type Base struct {
	ID          uint       `gorm:"primaryKey"      json:"id"`
	Active      bool       `gorm:"not null;index"  json:"active"`
	CreatedDate time.Time  `gorm:"autoCreateTime"  json:"created_date"`
	UpdatedDate *time.Time `                       json:"updated_date,omitempty"`
	DeletedDate *time.Time `gorm:"index"           json:"deleted_date,omitempty"`
}

func (b *Base) Touch(now time.Time) {
	b.UpdatedDate = &now
}

func (b *Base) MarkDeleted(now time.Time) {
	b.Active = false
	b.DeletedDate = &now
	b.UpdatedDate = &now
}

func (b Base) IsDeleted() bool { return b.DeletedDate != nil }

type Company struct {
	Base
	Name        string `gorm:"uniqueIndex:idx_companies_live_name,where:deleted_date IS NULL;size:200;not null" json:"name"`
	Description string `json:"description"`
	Email       string `gorm:"size:200" json:"email"`
	Phone       string `gorm:"size:50"  json:"phone"`

	Website *Website `gorm:"constraint:OnDelete:RESTRICT" json:"website,omitempty"`
}

type Website struct {
	Base
	// Deleted websites release their company, name and url path.
	CompanyID uint   `gorm:"uniqueIndex:idx_websites_live_company,where:deleted_date IS NULL;not null"          json:"company_id"`
	Name      string `gorm:"uniqueIndex:idx_websites_live_name,where:deleted_date IS NULL;size:200;not null"    json:"name"`
	UrlPath   string `gorm:"uniqueIndex:idx_websites_live_url_path,where:deleted_date IS NULL;size:200;not null" json:"url_path"`
	SecretKey string `gorm:"uniqueIndex;size:64;not null" json:"-"`

	Company *Company `json:"company,omitempty"`
}

const (
	RoleSuperAdmin    = "SuperAdmin"
	RoleAdministrator = "Administrator"
	RoleUser          = "User"
)

var RoleNames = []string{RoleSuperAdmin, RoleAdministrator, RoleUser}

type Role struct {
	ID   uint   `gorm:"primaryKey"                   json:"id"`
	Name string `gorm:"uniqueIndex;size:50;not null" json:"name"`
}

type User struct {
	Base
	Username     string `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Email        string `gorm:"uniqueIndex;size:200;not null" json:"email"`
	FirstName    string `gorm:"size:100"                      json:"first_name"`
	LastName     string `gorm:"size:100"                      json:"last_name"`
	Phone        string `gorm:"size:50"                       json:"phone"`
	PasswordHash string `gorm:"not null"                      json:"-"`
	RoleID       uint   `gorm:"not null;index"                json:"role_id"`
	WebsiteID    *uint  `gorm:"index"                         json:"website_id,omitempty"`

	Role          *Role          `json:"role,omitempty"`
	Website       *Website       `json:"website,omitempty"`
	RefreshTokens []RefreshToken `json:"-"`
}

func (u User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u User) RoleName() string {
	if u.Role == nil {
		return ""
	}
	return u.Role.Name
}

type RefreshToken struct {
	ID          uint      `gorm:"primaryKey"                    json:"id"`
	UserID      uint      `gorm:"index;not null"                json:"user_id"`
	TokenHash   string    `gorm:"uniqueIndex;size:64;not null"  json:"-"`
	JTI         string    `gorm:"uniqueIndex;size:64;not null"  json:"jti"`
	ExpiresAt   time.Time `gorm:"not null"                      json:"expires_at"`
	Revoked     bool      `gorm:"not null"                      json:"revoked"`
	CreatedDate time.Time `gorm:"autoCreateTime"                json:"created_date"`
}

func (t RefreshToken) Usable(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}
