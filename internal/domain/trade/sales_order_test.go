package trade

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/shipsync/internal/domain/carrier"
)

func newTestOrder(t *testing.T) *SalesOrder {
	t.Helper()
	order, err := NewSalesOrder("ss-1001", "AMZ-77", "store-1", uuid.New(), time.Now())
	require.NoError(t, err)
	return order
}

func TestNewSalesOrder(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		order := newTestOrder(t)
		assert.Equal(t, OrderStatusDraft, order.Status)
		assert.Equal(t, DocStateDraft, order.DocState)
		assert.True(t, order.GrandTotal.IsZero())
	})

	t.Run("missing carrier order id", func(t *testing.T) {
		_, err := NewSalesOrder("  ", "AMZ-77", "store-1", uuid.New(), time.Now())
		assert.Error(t, err)
	})

	t.Run("missing customer", func(t *testing.T) {
		_, err := NewSalesOrder("ss-1001", "AMZ-77", "store-1", uuid.Nil, time.Now())
		assert.Error(t, err)
	})
}

func TestSalesOrderAddItem(t *testing.T) {
	order := newTestOrder(t)

	err := order.AddItem(SalesOrderItem{
		ItemCode: "WIDGET-1",
		ItemName: "Widget",
		Quantity: 2,
		Rate:     decimal.NewFromFloat(19.99),
	})
	require.NoError(t, err)

	require.Len(t, order.Items, 1)
	assert.True(t, order.Items[0].Amount.Equal(decimal.NewFromFloat(39.98)))
	assert.True(t, order.Total.Equal(decimal.NewFromFloat(39.98)))
	assert.True(t, order.GrandTotal.Equal(decimal.NewFromFloat(39.98)))

	t.Run("zero quantity rejected", func(t *testing.T) {
		err := order.AddItem(SalesOrderItem{ItemCode: "WIDGET-2", Quantity: 0})
		assert.Error(t, err)
	})

	t.Run("empty item code rejected", func(t *testing.T) {
		err := order.AddItem(SalesOrderItem{ItemCode: " ", Quantity: 1})
		assert.Error(t, err)
	})
}

func TestSalesOrderChargesAndDiscount(t *testing.T) {
	order := newTestOrder(t)
	require.NoError(t, order.AddItem(SalesOrderItem{
		ItemCode: "WIDGET-1",
		Quantity: 1,
		Rate:     decimal.NewFromFloat(100.00),
	}))

	require.NoError(t, order.AddCharge(ChargeLine{
		AccountHead: "Sales Tax - C",
		Description: "Carrier Tax",
		Amount:      decimal.NewFromFloat(8.25),
	}))
	require.NoError(t, order.AddCharge(ChargeLine{
		AccountHead: "Freight - C",
		Description: "Carrier Shipping",
		Amount:      decimal.NewFromFloat(4.50),
	}))
	// zero-amount charges are dropped
	require.NoError(t, order.AddCharge(ChargeLine{AccountHead: "Misc - C", Amount: decimal.Zero}))
	require.Len(t, order.Charges, 2)

	require.NoError(t, order.ApplyDiscount(decimal.NewFromFloat(-10.00)))
	assert.True(t, order.DiscountAmount.Equal(decimal.NewFromFloat(10.00)))

	// 100.00 + 12.75 - 10.00
	assert.True(t, order.GrandTotal.Equal(decimal.NewFromFloat(102.75)), "got %s", order.GrandTotal)
}

func TestSalesOrderDifference(t *testing.T) {
	order := newTestOrder(t)
	require.NoError(t, order.AddItem(SalesOrderItem{
		ItemCode: "WIDGET-1",
		Quantity: 1,
		Rate:     decimal.NewFromFloat(50.00),
	}))

	t.Run("no payment reported", func(t *testing.T) {
		assert.True(t, order.Difference().IsZero())
	})

	t.Run("buyer paid less than total", func(t *testing.T) {
		order.AmountPaid = decimal.NewFromFloat(45.00)
		assert.True(t, order.Difference().Equal(decimal.NewFromFloat(-5.00)))
	})
}

func TestSalesOrderLifecycle(t *testing.T) {
	t.Run("submit empty order rejected", func(t *testing.T) {
		order := newTestOrder(t)
		err := order.Submit(OrderStatusToDeliver)
		assert.Error(t, err)
	})

	t.Run("submit then update then cancel", func(t *testing.T) {
		order := newTestOrder(t)
		require.NoError(t, order.AddItem(SalesOrderItem{ItemCode: "W", Quantity: 1, Rate: decimal.NewFromInt(10)}))
		require.NoError(t, order.Submit(OrderStatusToDeliver))
		assert.Equal(t, DocStateSubmitted, order.DocState)

		require.NoError(t, order.UpdateStatus(OrderStatusCompleted))
		assert.Equal(t, OrderStatusCompleted, order.Status)

		require.NoError(t, order.Cancel())
		assert.Equal(t, DocStateCancelled, order.DocState)
		assert.Equal(t, OrderStatusCancelled, order.Status)

		assert.Error(t, order.Cancel())
	})

	t.Run("cancel via status update", func(t *testing.T) {
		order := newTestOrder(t)
		require.NoError(t, order.AddItem(SalesOrderItem{ItemCode: "W", Quantity: 1, Rate: decimal.NewFromInt(10)}))
		require.NoError(t, order.Submit(OrderStatusToBill))
		require.NoError(t, order.UpdateStatus(OrderStatusCancelled))
		assert.Equal(t, DocStateCancelled, order.DocState)
	})

	t.Run("no item changes after submit", func(t *testing.T) {
		order := newTestOrder(t)
		require.NoError(t, order.AddItem(SalesOrderItem{ItemCode: "W", Quantity: 1, Rate: decimal.NewFromInt(10)}))
		require.NoError(t, order.Submit(OrderStatusToBill))
		assert.Error(t, order.AddItem(SalesOrderItem{ItemCode: "X", Quantity: 1}))
		assert.Error(t, order.AddCharge(ChargeLine{AccountHead: "A", Amount: decimal.NewFromInt(1)}))
		assert.Error(t, order.ApplyDiscount(decimal.NewFromInt(1)))
	})
}

func TestStatusFromCarrier(t *testing.T) {
	cases := []struct {
		carrierStatus carrier.OrderStatus
		status        OrderStatus
		docState      DocState
	}{
		{carrier.OrderStatusAwaitingPayment, OrderStatusToBill, DocStateSubmitted},
		{carrier.OrderStatusAwaitingShipment, OrderStatusToDeliver, DocStateSubmitted},
		{carrier.OrderStatusOnHold, OrderStatusOnHold, DocStateSubmitted},
		{carrier.OrderStatusPendingFulfillment, OrderStatusToDeliver, DocStateSubmitted},
		{carrier.OrderStatusShipped, OrderStatusCompleted, DocStateSubmitted},
		{carrier.OrderStatusCancelled, OrderStatusCancelled, DocStateCancelled},
	}
	for _, tc := range cases {
		t.Run(string(tc.carrierStatus), func(t *testing.T) {
			status, docState, ok := StatusFromCarrier(tc.carrierStatus)
			require.True(t, ok)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.docState, docState)
		})
	}

	_, _, ok := StatusFromCarrier(carrier.OrderStatus("delivered"))
	assert.False(t, ok)
}

func TestStatusToCarrier(t *testing.T) {
	// the To Deliver collision resolves to awaiting_shipment
	mapped, ok := StatusToCarrier(OrderStatusToDeliver)
	require.True(t, ok)
	assert.Equal(t, carrier.OrderStatusAwaitingShipment, mapped)

	// shipped round-trips through Completed
	mapped, ok = StatusToCarrier(OrderStatusCompleted)
	require.True(t, ok)
	assert.Equal(t, carrier.OrderStatusShipped, mapped)

	_, ok = StatusToCarrier(OrderStatusDraft)
	assert.False(t, ok)
}
