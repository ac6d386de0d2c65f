package models

import "github.com/shopspring/decimal"

type Category struct {
	Base
	WebsiteID   uint   `gorm:"index;not null"          json:"website_id"`
	Name        string `gorm:"size:200;not null"       json:"name"`
	Description string `                               json:"description"`
	ParentID    *uint  `gorm:"index"                   json:"parent_id,omitempty"`

	Website  *Website   `json:"-"`
	Parent   *Category  `json:"parent,omitempty"`
	Children []Category `gorm:"foreignKey:ParentID" json:"children,omitempty"`
}

func (c Category) IsRoot() bool { return c.ParentID == nil }

type Product struct {
	Base
	WebsiteID   uint            `gorm:"index;not null"              json:"website_id"`
	CategoryID  uint            `gorm:"index;not null"              json:"category_id"`
	Name        string          `gorm:"size:200;not null"           json:"name"`
	Description string          `                                   json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"price"`
	Discount    decimal.Decimal `gorm:"type:numeric(5,2);not null"  json:"discount"`
	Quantity    int             `gorm:"not null"                    json:"quantity"`

	Website  *Website       `json:"-"`
	Category *Category      `json:"category,omitempty"`
	Images   []ProductImage `json:"images,omitempty"`
}

// FinalPrice is the unit price after the percentage discount.
func (p Product) FinalPrice() decimal.Decimal {
	return ApplyDiscount(p.Price, p.Discount)
}

type ProductImage struct {
	ID        uint   `gorm:"primaryKey"        json:"id"`
	ProductID uint   `gorm:"index;not null"    json:"product_id"`
	Path      string `gorm:"size:500;not null" json:"path"`
	Position  int    `gorm:"not null"          json:"position"`
}

var hundred = decimal.NewFromInt(100)

func ApplyDiscount(price, discount decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(1).Sub(discount.Div(hundred)))
}
