package sync

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/erp/shipsync/internal/domain/carrier"
	"github.com/erp/shipsync/internal/domain/integration"
	"github.com/erp/shipsync/internal/domain/partner"
	"github.com/erp/shipsync/internal/domain/trade"
)

func submittedOrder(t *testing.T) *trade.SalesOrder {
	t.Helper()
	order, err := trade.NewSalesOrder("ss-3001", "EBAY-90", "store-1", uuid.New(),
		time.Date(2026, 3, 10, 12, 30, 45, 0, time.UTC))
	require.NoError(t, err)
	order.Marketplace = "ebay"
	require.NoError(t, order.AddItem(trade.SalesOrderItem{
		ItemCode: "WIDGET-1", Quantity: 1, Rate: decimal.NewFromInt(50),
	}))
	require.NoError(t, order.Submit(trade.OrderStatusCompleted))
	return order
}

func newReconciler(t *testing.T, store *memStore, client *fakeClient, requests *fakeRequestRepo) *StatusReconciler {
	t.Helper()
	return NewStatusReconciler(
		&fakeSettingsRepo{store: store},
		&fakeAddressRepo{store: store},
		requests,
		func(settings *integration.CarrierSettings) carrier.Client { return client },
		zap.NewNop(),
	)
}

func TestStatusPush(t *testing.T) {
	store := newMemStore()
	store.settings = []*integration.CarrierSettings{testSettings(testStore())}
	client := &fakeClient{}
	requests := &fakeRequestRepo{}
	reconciler := newReconciler(t, store, client, requests)

	billing, err := partner.NewAddress(partner.AddressTypeBilling, "Jane Roe", "1 Main St", "Springfield")
	require.NoError(t, err)
	billing.State = "IL"
	billing.PostalCode = "62701"
	billing.Country = "United States"
	store.addresses = append(store.addresses, billing)

	order := submittedOrder(t)
	order.CustomerName = "Jane Roe"
	billingID := billing.GetID()
	order.BillingAddressID = &billingID
	order.ShippingAddressID = &billingID

	require.NoError(t, reconciler.OnOrderStatusChanged(context.Background(), order))

	require.Len(t, client.updates, 1)
	update := client.updates[0]
	assert.Equal(t, "ss-3001", update.OrderID)
	assert.Equal(t, carrier.OrderStatusShipped, update.Status)
	// the wire call carries the resolved address blocks
	assert.Equal(t, "Jane Roe", update.BillTo.Name)
	assert.Equal(t, "1 Main St", update.BillTo.Street1)
	assert.Equal(t, "Springfield", update.BillTo.City)
	assert.Equal(t, "62701", update.BillTo.PostalCode)
	assert.Equal(t, update.BillTo, update.ShipTo)

	require.Len(t, requests.saved, 1)
	request := requests.saved[0]
	assert.Equal(t, integration.RequestStatusCompleted, request.Status)
	assert.Equal(t, "Main Account", request.Service)
	assert.Equal(t, "ss-3001", request.Reference)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(request.Payload), &payload))
	assert.Equal(t, "ss-3001", payload["orderId"])
	assert.Equal(t, "EBAY-90", payload["orderNumber"])
	assert.Equal(t, "shipped", payload["orderStatus"])
	assert.Equal(t, "store-1", payload["storeId"])
	assert.Equal(t, "2026-03-10T12:30:45.000000", payload["orderDate"])
	billToPayload, ok := payload["billTo"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "1 Main St", billToPayload["street1"])
}

func TestStatusPushFailureRecorded(t *testing.T) {
	store := newMemStore()
	store.settings = []*integration.CarrierSettings{testSettings(testStore())}
	client := &fakeClient{updateErr: carrier.ErrCarrierRequestFailed}
	requests := &fakeRequestRepo{}
	reconciler := newReconciler(t, store, client, requests)

	err := reconciler.OnOrderStatusChanged(context.Background(), submittedOrder(t))
	require.Error(t, err)

	require.Len(t, requests.saved, 1)
	assert.Equal(t, integration.RequestStatusFailed, requests.saved[0].Status)
	assert.Contains(t, requests.saved[0].Error, "request failed")
}

func TestStatusPushSkipsDraft(t *testing.T) {
	store := newMemStore()
	store.settings = []*integration.CarrierSettings{testSettings(testStore())}
	client := &fakeClient{}
	requests := &fakeRequestRepo{}
	reconciler := newReconciler(t, store, client, requests)

	draft, err := trade.NewSalesOrder("ss-3002", "EBAY-91", "store-1", uuid.New(), time.Now())
	require.NoError(t, err)
	draft.Marketplace = "ebay"

	require.NoError(t, reconciler.OnOrderStatusChanged(context.Background(), draft))
	assert.Empty(t, client.updates)
	assert.Empty(t, requests.saved)
}

func TestStatusPushRespectsSyncFlag(t *testing.T) {
	store := newMemStore()
	settings := testSettings(testStore())
	settings.SyncOrderStatus = false
	store.settings = []*integration.CarrierSettings{settings}
	client := &fakeClient{}
	requests := &fakeRequestRepo{}
	reconciler := newReconciler(t, store, client, requests)

	require.NoError(t, reconciler.OnOrderStatusChanged(context.Background(), submittedOrder(t)))
	assert.Empty(t, client.updates)
	assert.Empty(t, requests.saved)
}
