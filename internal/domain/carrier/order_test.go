package carrier

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderStatusIsValid(t *testing.T) {
	valid := []OrderStatus{
		OrderStatusAwaitingPayment,
		OrderStatusAwaitingShipment,
		OrderStatusOnHold,
		OrderStatusPendingFulfillment,
		OrderStatusShipped,
		OrderStatusCancelled,
	}
	for _, s := range valid {
		assert.True(t, s.IsValid(), "expected %s to be valid", s)
	}
	assert.False(t, OrderStatus("delivered").IsValid())
	assert.False(t, OrderStatus("").IsValid())
}

func TestOrderItemIsDiscount(t *testing.T) {
	item := OrderItem{LineItemKey: DiscountLineKey, UnitPrice: decimal.NewFromFloat(-5.00)}
	assert.True(t, item.IsDiscount())

	regular := OrderItem{SKU: "WIDGET-1", UnitPrice: decimal.NewFromFloat(19.99)}
	assert.False(t, regular.IsDiscount())
}

func TestOrderItemNote(t *testing.T) {
	item := OrderItem{
		Options: []ItemOption{
			{Name: "Color", Value: "Red"},
			{Name: "Description", Value: "gift wrap requested"},
		},
	}
	assert.Equal(t, "gift wrap requested", item.Note())

	empty := OrderItem{Options: []ItemOption{{Name: "Color", Value: "Blue"}}}
	assert.Equal(t, "", empty.Note())
}

func TestPartyHasAddress(t *testing.T) {
	withAddr := Party{Name: "Jane Roe", Street1: "1 Main St"}
	assert.True(t, withAddr.HasAddress())

	noAddr := Party{Name: "Jane Roe", Street1: "   "}
	assert.False(t, noAddr.HasAddress())
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "jane@example.com", NormalizeEmail("  Jane@Example.COM "))
	assert.Equal(t, "", NormalizeEmail("   "))
}

func TestCountryName(t *testing.T) {
	assert.Equal(t, "United States", CountryName("US"))
	assert.Equal(t, "United States", CountryName(" us "))
	assert.Equal(t, "Germany", CountryName("DE"))
	assert.Equal(t, "", CountryName("XX"))
	assert.Equal(t, "", CountryName(""))
}

func TestOrderPageHasNext(t *testing.T) {
	assert.True(t, (&OrderPage{Page: 1, TotalPages: 3}).HasNext())
	assert.False(t, (&OrderPage{Page: 3, TotalPages: 3}).HasNext())
	assert.False(t, (&OrderPage{Page: 1, TotalPages: 0}).HasNext())
}
