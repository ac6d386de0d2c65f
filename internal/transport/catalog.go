package transport

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/multisite_shop/internal/models"
)

type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ParentID    *uint  `json:"parentId"`
}

func (r CategoryRequest) ToModel(websiteID uint) models.Category {
	return models.Category{
		Base:        models.Base{Active: true},
		WebsiteID:   websiteID,
		Name:        r.Name,
		Description: r.Description,
		ParentID:    r.ParentID,
	}
}

type CategoryResponse struct {
	ID          uint               `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	ParentID    *uint              `json:"parentId,omitempty"`
	Active      bool               `json:"active"`
	Children    []CategoryResponse `json:"children,omitempty"`
}

func ToCategoryResponse(c models.Category) CategoryResponse {
	out := CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		ParentID:    c.ParentID,
		Active:      c.Active,
	}
	if len(c.Children) > 0 {
		out.Children = mapSlice(c.Children, ToCategoryResponse)
	}
	return out
}

func ToCategoryTree(roots []models.Category) []CategoryResponse {
	return mapSlice(roots, ToCategoryResponse)
}

type CreateProductRequest struct {
	CategoryID  uint            `json:"categoryId"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Discount    decimal.Decimal `json:"discount"`
	Quantity    int             `json:"quantity"`
}

func (r CreateProductRequest) ToModel(websiteID uint) models.Product {
	return models.Product{
		Base:        models.Base{Active: true},
		WebsiteID:   websiteID,
		CategoryID:  r.CategoryID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Discount:    r.Discount,
		Quantity:    r.Quantity,
	}
}

// PatchProductRequest changes only the fields that are present.
type PatchProductRequest struct {
	CategoryID  *uint            `json:"categoryId"`
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Discount    *decimal.Decimal `json:"discount"`
	Quantity    *int             `json:"quantity"`
	Active      *bool            `json:"active"`
}

func (r PatchProductRequest) Apply(p *models.Product) {
	if r.CategoryID != nil {
		p.CategoryID = *r.CategoryID
	}
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Description != nil {
		p.Description = *r.Description
	}
	if r.Price != nil {
		p.Price = *r.Price
	}
	if r.Discount != nil {
		p.Discount = *r.Discount
	}
	if r.Quantity != nil {
		p.Quantity = *r.Quantity
	}
	if r.Active != nil {
		p.Active = *r.Active
	}
}

type ProductSearchRequest struct {
	PageRequest
	CategoryID *uint `query:"categoryId"`
}

type AddImagesRequest struct {
	Keys []string `json:"keys"`
}

type UploadResponse struct {
	Key string `json:"key"`
}

type ProductImageResponse struct {
	ID       uint   `json:"id"`
	Path     string `json:"path"`
	Position int    `json:"position"`
}

func ToProductImageResponse(i models.ProductImage) ProductImageResponse {
	return ProductImageResponse{ID: i.ID, Path: i.Path, Position: i.Position}
}

type ProductResponse struct {
	ID           uint                   `json:"id"`
	WebsiteID    uint                   `json:"websiteId"`
	CategoryID   uint                   `json:"categoryId"`
	CategoryName string                 `json:"categoryName,omitempty"`
	Name         string                 `json:"name"`
	Description  string                 `json:"description"`
	Price        decimal.Decimal        `json:"price"`
	Discount     decimal.Decimal        `json:"discount"`
	FinalPrice   decimal.Decimal        `json:"finalPrice"`
	Quantity     int                    `json:"quantity"`
	Active       bool                   `json:"active"`
	CreatedDate  time.Time              `json:"createdDate"`
	Images       []ProductImageResponse `json:"images"`
}

func ToProductResponse(p models.Product) ProductResponse {
	out := ProductResponse{
		ID:          p.ID,
		WebsiteID:   p.WebsiteID,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Discount:    p.Discount,
		FinalPrice:  p.FinalPrice().Round(2),
		Quantity:    p.Quantity,
		Active:      p.Active,
		CreatedDate: p.CreatedDate,
		Images:      mapSlice(p.Images, ToProductImageResponse),
	}
	if p.Category != nil {
		out.CategoryName = p.Category.Name
	}
	return out
}
