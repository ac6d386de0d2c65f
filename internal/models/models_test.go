package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderCalculateTotal(t *testing.T) {
	t.Parallel()

	o := Order{Details: []OrderDetail{
		{Quantity: 2, Price: decimal.NewFromInt(100), Discount: decimal.Zero},
		{Quantity: 1, Price: decimal.NewFromInt(150), Discount: decimal.Zero},
	}}
	assert.True(t, decimal.NewFromInt(350).Equal(o.CalculateTotal()), o.CalculateTotal().String())

	o.Details = append(o.Details, OrderDetail{Quantity: 3, Price: decimal.RequireFromString("19.99"), Discount: decimal.NewFromInt(10)})
	// 350 + 3 * 17.991
	assert.Equal(t, "403.97", o.CalculateTotal().StringFixed(2))
}

func TestOrderState_Valid(t *testing.T) {
	t.Parallel()

	assert.True(t, OrderInProgress.Valid())
	assert.True(t, OrderRejected.Valid())
	assert.False(t, OrderState("Shipped").Valid())
}

func TestUserDisplayName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Ada Lovelace", User{FirstName: "Ada", LastName: "Lovelace"}.DisplayName())
	assert.Equal(t, "Ada", User{FirstName: "Ada"}.DisplayName())
}

func TestBaseMarkDeleted(t *testing.T) {
	t.Parallel()

	b := Base{Active: true}
	now := time.Now()
	b.MarkDeleted(now)
	assert.False(t, b.Active)
	assert.True(t, b.IsDeleted())
	assert.Equal(t, now, *b.UpdatedDate)
}

func TestRefreshTokenUsable(t *testing.T) {
	t.Parallel()

	now := time.Now()
	assert.True(t, RefreshToken{ExpiresAt: now.Add(time.Hour)}.Usable(now))
	assert.False(t, RefreshToken{ExpiresAt: now.Add(-time.Hour)}.Usable(now))
	assert.False(t, RefreshToken{ExpiresAt: now.Add(time.Hour), Revoked: true}.Usable(now))
}
