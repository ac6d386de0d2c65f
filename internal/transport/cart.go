package transport

import (
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/multisite_shop/internal/models"
)

type CartItemRequest struct {
	ProductID uint `json:"productId"`
	Quantity  int  `json:"quantity"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type MergeCartRequest struct {
	AnonymousID string `json:"anonymousId"`
}

type CartLineResponse struct {
	ID          uint            `json:"id"`
	ProductID   uint            `json:"productId"`
	ProductName string          `json:"productName"`
	Price       decimal.Decimal `json:"price"`
	Discount    decimal.Decimal `json:"discount"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

type CartResponse struct {
	AnonymousID string             `json:"anonymousId,omitempty"`
	Items       []CartLineResponse `json:"items"`
	Total       decimal.Decimal    `json:"total"`
}

func cartLine(id, productID uint, quantity int, p *models.Product) CartLineResponse {
	line := CartLineResponse{ID: id, ProductID: productID, Quantity: quantity}
	if p != nil {
		line.ProductName = p.Name
		line.Price = p.Price
		line.Discount = p.Discount
		line.LineTotal = p.FinalPrice().Mul(decimal.NewFromInt(int64(quantity))).Round(2)
	}
	return line
}

func ToCartResponse(rows []models.Cart) CartResponse {
	out := CartResponse{Items: make([]CartLineResponse, 0, len(rows)), Total: decimal.Zero}
	for _, r := range rows {
		line := cartLine(r.ID, r.ProductID, r.Quantity, r.Product)
		out.Items = append(out.Items, line)
		out.Total = out.Total.Add(line.LineTotal)
	}
	return out
}

func ToAnonymousCartResponse(anonymousID string, rows []models.AnonymousCart) CartResponse {
	out := CartResponse{AnonymousID: anonymousID, Items: make([]CartLineResponse, 0, len(rows)), Total: decimal.Zero}
	for _, r := range rows {
		line := cartLine(r.ID, r.ProductID, r.Quantity, r.Product)
		out.Items = append(out.Items, line)
		out.Total = out.Total.Add(line.LineTotal)
	}
	return out
}
