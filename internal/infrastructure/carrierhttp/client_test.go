package carrierhttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/shipsync/internal/domain/carrier"
	"github.com/erp/shipsync/internal/domain/integration"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	settings, err := integration.NewCarrierSettings("Test Connection", server.URL, "key-1", "secret-1")
	require.NoError(t, err)
	return NewClient(settings), server
}

func TestListOrders(t *testing.T) {
	ctx := context.Background()

	t.Run("decodes an order page", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			require.True(t, ok)
			assert.Equal(t, "key-1", user)
			assert.Equal(t, "secret-1", pass)

			assert.Equal(t, "/orders", r.URL.Path)
			assert.Equal(t, "200", r.URL.Query().Get("storeId"))
			assert.Equal(t, "1", r.URL.Query().Get("page"))

			_, _ = w.Write([]byte(`{
				"orders": [{
					"orderId": 8001,
					"orderNumber": "SO-8001",
					"orderDate": "2026-03-10T12:30:45.0000000",
					"orderStatus": "awaiting_shipment",
					"customerId": 42,
					"customerEmail": "buyer@example.com",
					"billTo": {"name": "Dana Buyer", "street1": "1 Main St", "city": "Austin", "country": "US"},
					"shipTo": {"name": "Dana Buyer", "street1": "1 Main St", "city": "Austin", "country": "US"},
					"items": [{
						"orderItemId": 9001,
						"sku": "WIDGET-1",
						"name": "Widget",
						"quantity": 2,
						"unitPrice": 19.99,
						"options": [{"name": "Description", "value": "Blue"}]
					}],
					"taxAmount": 3.20,
					"shippingAmount": 5.00,
					"amountPaid": 48.18,
					"advancedOptions": {"warehouseId": 7, "storeId": 200}
				}],
				"total": 1,
				"page": 1,
				"pages": 1
			}`))
		})

		page, err := client.ListOrders(ctx, carrier.ListOrdersParams{StoreID: "200", Page: 1, PageSize: 100})
		require.NoError(t, err)
		require.Len(t, page.Orders, 1)
		assert.False(t, page.HasNext())

		order := page.Orders[0]
		assert.Equal(t, "8001", order.OrderID)
		assert.Equal(t, "SO-8001", order.OrderNumber)
		assert.Equal(t, "42", order.CustomerID)
		assert.Equal(t, "200", order.StoreID)
		assert.Equal(t, "7", order.AdvancedOptions.WarehouseID)
		assert.Equal(t, carrier.OrderStatusAwaitingShipment, order.Status)
		assert.Equal(t, time.Date(2026, 3, 10, 12, 30, 45, 0, time.UTC), order.OrderDate)
		assert.Equal(t, "48.18", order.AmountPaid.StringFixed(2))

		require.Len(t, order.Items, 1)
		assert.Equal(t, "WIDGET-1", order.Items[0].SKU)
		assert.Equal(t, "19.99", order.Items[0].UnitPrice.StringFixed(2))
		assert.Equal(t, "Blue", order.Items[0].Note())
	})

	t.Run("maps rate limiting", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})

		_, err := client.ListOrders(ctx, carrier.ListOrdersParams{})
		assert.ErrorIs(t, err, carrier.ErrRateLimited)
	})

	t.Run("maps invalid credentials", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		_, err := client.ListOrders(ctx, carrier.ListOrdersParams{})
		assert.ErrorIs(t, err, carrier.ErrInvalidCredentials)
	})

	t.Run("maps server errors as unavailable", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := client.ListOrders(ctx, carrier.ListOrdersParams{})
		assert.ErrorIs(t, err, carrier.ErrCarrierUnavailable)
	})

	t.Run("unreachable server is unavailable", func(t *testing.T) {
		settings, err := integration.NewCarrierSettings("Dead", "http://127.0.0.1:1", "k", "s")
		require.NoError(t, err)
		client := NewClient(settings, WithHTTPClient(&http.Client{Timeout: 100 * time.Millisecond}))

		_, err = client.ListOrders(ctx, carrier.ListOrdersParams{})
		assert.ErrorIs(t, err, carrier.ErrCarrierUnavailable)
	})
}

func TestGetCustomer(t *testing.T) {
	ctx := context.Background()

	t.Run("decodes a customer profile", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/customers/42", r.URL.Path)
			_, _ = w.Write([]byte(`{
				"customerId": 42,
				"name": "Dana Buyer",
				"street1": "1 Main St",
				"city": "Austin",
				"state": "TX",
				"postalCode": "78701",
				"countryCode": "US",
				"email": "buyer@example.com"
			}`))
		})

		profile, err := client.GetCustomer(ctx, "42")
		require.NoError(t, err)
		assert.Equal(t, "42", profile.CustomerID)
		assert.Equal(t, "Dana Buyer", profile.Name)
		assert.Equal(t, "US", profile.Country)
	})

	t.Run("not found", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		_, err := client.GetCustomer(ctx, "99")
		assert.ErrorIs(t, err, carrier.ErrCustomerNotFound)
	})

	t.Run("empty id short circuits", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("no request expected")
		})

		_, err := client.GetCustomer(ctx, "")
		assert.ErrorIs(t, err, carrier.ErrCustomerNotFound)
	})
}

func TestListStores(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stores", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"storeId": 200, "storeName": "Main Store", "marketplaceId": 3, "marketplaceName": "Amazon", "active": true},
			{"storeId": 201, "storeName": "Outlet", "marketplaceId": 5, "marketplaceName": "Shopify", "active": false}
		]`))
	})

	stores, err := client.ListStores(context.Background())
	require.NoError(t, err)
	require.Len(t, stores, 2)
	assert.Equal(t, "200", stores[0].StoreID)
	assert.Equal(t, "Amazon", stores[0].Marketplace)
	assert.False(t, stores[1].Active)
}

func TestUpdateOrderStatus(t *testing.T) {
	var received statusUpdateRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders/createorder", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		_, _ = w.Write([]byte(`{"orderId": 8001, "orderStatus": "shipped", "modifyDate": "2026-03-11T08:00:00.0000000"}`))
	})

	result, err := client.UpdateOrderStatus(context.Background(), carrier.StatusUpdate{
		OrderID:     "8001",
		OrderNumber: "SO-8001",
		StoreID:     "200",
		OrderDate:   time.Date(2026, 3, 10, 12, 30, 45, 0, time.UTC),
		Status:      carrier.OrderStatusShipped,
		ShipTo:      carrier.Party{Name: "Dana Buyer", Street1: "1 Main St", City: "Austin"},
	})
	require.NoError(t, err)

	assert.Equal(t, "8001", received.OrderID)
	assert.Equal(t, "shipped", received.OrderStatus)
	assert.Equal(t, "2026-03-10T12:30:45.000000", received.OrderDate)
	assert.Equal(t, "Dana Buyer", received.ShipTo.Name)

	assert.Equal(t, "8001", result.OrderID)
	assert.Equal(t, carrier.OrderStatusShipped, result.Status)
	assert.Equal(t, 2026, result.ModifyDate.Year())
}
