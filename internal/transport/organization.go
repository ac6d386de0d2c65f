package transport

import (
	"time"

	"github.com/Skotchmaster/multisite_shop/internal/models"
)

type CompanyRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
}

func (r CompanyRequest) ToModel() models.Company {
	return models.Company{
		Base:        models.Base{Active: true},
		Name:        r.Name,
		Description: r.Description,
		Email:       r.Email,
		Phone:       r.Phone,
	}
}

type CompanyResponse struct {
	ID          uint             `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Email       string           `json:"email"`
	Phone       string           `json:"phone"`
	Active      bool             `json:"active"`
	CreatedDate time.Time        `json:"createdDate"`
	Website     *WebsiteResponse `json:"website,omitempty"`
}

func ToCompanyResponse(c models.Company) CompanyResponse {
	out := CompanyResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Email:       c.Email,
		Phone:       c.Phone,
		Active:      c.Active,
		CreatedDate: c.CreatedDate,
	}
	if c.Website != nil {
		w := ToWebsiteResponse(*c.Website)
		out.Website = &w
	}
	return out
}

type CreateWebsiteRequest struct {
	CompanyID uint   `json:"companyId"`
	Name      string `json:"name"`
	UrlPath   string `json:"urlPath"`
}

type UpdateWebsiteRequest struct {
	Name    *string `json:"name"`
	UrlPath *string `json:"urlPath"`
	Active  *bool   `json:"active"`
}

type WebsiteResponse struct {
	ID          uint      `json:"id"`
	CompanyID   uint      `json:"companyId"`
	Name        string    `json:"name"`
	UrlPath     string    `json:"urlPath"`
	Active      bool      `json:"active"`
	CreatedDate time.Time `json:"createdDate"`
}

func ToWebsiteResponse(w models.Website) WebsiteResponse {
	return WebsiteResponse{
		ID:          w.ID,
		CompanyID:   w.CompanyID,
		Name:        w.Name,
		UrlPath:     w.UrlPath,
		Active:      w.Active,
		CreatedDate: w.CreatedDate,
	}
}

// WebsiteSecretResponse is returned only to administrators of the website.
type WebsiteSecretResponse struct {
	WebsiteResponse
	SecretKey string `json:"secretKey"`
}

func ToWebsiteSecretResponse(w models.Website) WebsiteSecretResponse {
	return WebsiteSecretResponse{WebsiteResponse: ToWebsiteResponse(w), SecretKey: w.SecretKey}
}

type CreateUserRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	WebsiteID *uint  `json:"websiteId"`
}

type UpdateUserRequest struct {
	Email     *string `json:"email"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Phone     *string `json:"phone"`
	Role      *string `json:"role"`
	Active    *bool   `json:"active"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type UserResponse struct {
	ID          uint      `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	DisplayName string    `json:"displayName"`
	Phone       string    `json:"phone"`
	Role        string    `json:"role"`
	WebsiteID   *uint     `json:"websiteId,omitempty"`
	Active      bool      `json:"active"`
	CreatedDate time.Time `json:"createdDate"`
}

func ToUserResponse(u models.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		DisplayName: u.DisplayName(),
		Phone:       u.Phone,
		Role:        u.RoleName(),
		WebsiteID:   u.WebsiteID,
		Active:      u.Active,
		CreatedDate: u.CreatedDate,
	}
}
