package models

import "github.com/shopspring/decimal"

type OrderState string

const (
	OrderInProgress OrderState = "InProgress"
	OrderCompleted  OrderState = "Completed"
	OrderRejected   OrderState = "Rejected"
)

func (s OrderState) Valid() bool {
	switch s {
	case OrderInProgress, OrderCompleted, OrderRejected:
		return true
	}
	return false
}

type Order struct {
	Base
	WebsiteID    uint            `gorm:"index;not null"              json:"website_id"`
	UserID       uint            `gorm:"index;not null"              json:"user_id"`
	ShipAddress  string          `gorm:"size:500;not null"           json:"ship_address"`
	Phone        string          `gorm:"size:50;not null"            json:"phone"`
	Total        decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"total"`
	OrderState   OrderState      `gorm:"size:20;not null;index"      json:"order_state"`
	PaymentState bool            `gorm:"not null"                    json:"payment_state"`

	Website *Website      `json:"-"`
	User    *User         `json:"user,omitempty"`
	Details []OrderDetail `json:"details,omitempty"`
}

// CalculateTotal sums Price x Quantity x (1 - Discount/100) over the details.
func (o Order) CalculateTotal() decimal.Decimal {
	total := decimal.Zero
	for _, d := range o.Details {
		total = total.Add(d.LineTotal())
	}
	return total.Round(2)
}

// OrderDetail snapshots the product price and discount at the time of ordering.
type OrderDetail struct {
	Base
	OrderID   uint            `gorm:"index;not null"              json:"order_id"`
	ProductID uint            `gorm:"index;not null"              json:"product_id"`
	Quantity  int             `gorm:"not null"                    json:"quantity"`
	Price     decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"price"`
	Discount  decimal.Decimal `gorm:"type:numeric(5,2);not null"  json:"discount"`

	Product *Product `json:"product,omitempty"`
}

func (d OrderDetail) LineTotal() decimal.Decimal {
	return ApplyDiscount(d.Price, d.Discount).Mul(decimal.NewFromInt(int64(d.Quantity)))
}
