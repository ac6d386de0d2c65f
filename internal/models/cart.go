package models

type Cart struct {
	Base
	WebsiteID uint `gorm:"index;not null" json:"website_id"`
	UserID    uint `gorm:"index;not null" json:"user_id"`
	ProductID uint `gorm:"index;not null" json:"product_id"`
	Quantity  int  `gorm:"not null"       json:"quantity"`

	User    *User    `json:"-"`
	Product *Product `json:"product,omitempty"`
}

// AnonymousCart holds the cart of a visitor identified only by a client generated uuid.
type AnonymousCart struct {
	Base
	WebsiteID   uint   `gorm:"index;not null"         json:"website_id"`
	AnonymousID string `gorm:"index;size:36;not null" json:"anonymous_id"`
	ProductID   uint   `gorm:"index;not null"         json:"product_id"`
	Quantity    int    `gorm:"not null"               json:"quantity"`

	Product *Product `json:"product,omitempty"`
}
