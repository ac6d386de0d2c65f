package transport

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/multisite_shop/internal/models"
)

type CreateOrderRequest struct {
	ShipAddress string `json:"shipAddress"`
	Phone       string `json:"phone"`
}

type OrderDetailUpdate struct {
	ID       uint `json:"id"`
	Quantity int  `json:"quantity"`
}

type UpdateOrderRequest struct {
	Details []OrderDetailUpdate `json:"details"`
}

type ChangeOrderStateRequest struct {
	State models.OrderState `json:"state"`
}

type OrderSearchRequest struct {
	PageRequest
	ID *uint `query:"id"`
}

type OrderDetailResponse struct {
	ID          uint            `json:"id"`
	ProductID   uint            `json:"productId"`
	ProductName string          `json:"productName,omitempty"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Discount    decimal.Decimal `json:"discount"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

func ToOrderDetailResponse(d models.OrderDetail) OrderDetailResponse {
	out := OrderDetailResponse{
		ID:        d.ID,
		ProductID: d.ProductID,
		Quantity:  d.Quantity,
		Price:     d.Price,
		Discount:  d.Discount,
		LineTotal: d.LineTotal().Round(2),
	}
	if d.Product != nil {
		out.ProductName = d.Product.Name
	}
	return out
}

type OrderResponse struct {
	ID           uint                  `json:"id"`
	WebsiteID    uint                  `json:"websiteId"`
	UserID       uint                  `json:"userId"`
	UserName     string                `json:"userName,omitempty"`
	ShipAddress  string                `json:"shipAddress"`
	Phone        string                `json:"phone"`
	Total        decimal.Decimal       `json:"total"`
	OrderState   models.OrderState     `json:"orderState"`
	PaymentState bool                  `json:"paymentState"`
	CreatedDate  time.Time             `json:"createdDate"`
	UpdatedDate  *time.Time            `json:"updatedDate,omitempty"`
	Details      []OrderDetailResponse `json:"details"`
}

func ToOrderResponse(o models.Order) OrderResponse {
	out := OrderResponse{
		ID:           o.ID,
		WebsiteID:    o.WebsiteID,
		UserID:       o.UserID,
		ShipAddress:  o.ShipAddress,
		Phone:        o.Phone,
		Total:        o.Total,
		OrderState:   o.OrderState,
		PaymentState: o.PaymentState,
		CreatedDate:  o.CreatedDate,
		UpdatedDate:  o.UpdatedDate,
		Details:      mapSlice(o.Details, ToOrderDetailResponse),
	}
	if o.User != nil {
		out.UserName = o.User.DisplayName()
	}
	return out
}
