package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/shipsync/internal/domain/carrier"
)

func TestNewCarrierSettings(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		s, err := NewCarrierSettings("Main Account", "https://api.example.com", "key", "secret")
		require.NoError(t, err)
		assert.True(t, s.Enabled)
		assert.Equal(t, "Individual", s.DefaultCustomerGroup)
	})

	t.Run("missing credentials rejected", func(t *testing.T) {
		_, err := NewCarrierSettings("Main Account", "https://api.example.com", "", "secret")
		assert.Error(t, err)
	})
}

func TestEnabledStores(t *testing.T) {
	s, err := NewCarrierSettings("Main Account", "", "key", "secret")
	require.NoError(t, err)
	s.Stores = []CarrierStore{
		{StoreID: "1", Enabled: true},
		{StoreID: "2", Enabled: false},
		{StoreID: "3", Enabled: true},
	}

	enabled := s.EnabledStores()
	require.Len(t, enabled, 2)
	assert.Equal(t, "1", enabled[0].StoreID)
	assert.Equal(t, "3", enabled[1].StoreID)

	store, ok := s.FindStore("2")
	require.True(t, ok)
	assert.False(t, store.Enabled)

	_, ok = s.FindStore("99")
	assert.False(t, ok)
}

func TestAcceptsWarehouse(t *testing.T) {
	s, err := NewCarrierSettings("Main Account", "", "key", "secret")
	require.NoError(t, err)

	t.Run("no restriction accepts everything", func(t *testing.T) {
		assert.True(t, s.AcceptsWarehouse("wh-1"))
	})

	t.Run("restricted list", func(t *testing.T) {
		s.ActiveWarehouseIDs = []string{"wh-1", "wh-2"}
		assert.True(t, s.AcceptsWarehouse("wh-2"))
		assert.False(t, s.AcceptsWarehouse("wh-9"))
	})

	t.Run("order without warehouse always passes", func(t *testing.T) {
		assert.True(t, s.AcceptsWarehouse(""))
	})
}

func TestIntegrationRequestLifecycle(t *testing.T) {
	req := NewIntegrationRequest("Main Account", "SO-0001", "https://api.example.com/orders", `{"orderId":"1"}`)
	assert.Equal(t, RequestStatusQueued, req.Status)

	req.MarkFailed("connection refused")
	assert.Equal(t, RequestStatusFailed, req.Status)
	assert.Equal(t, "connection refused", req.Error)

	req.MarkCompleted(`{"ok":true}`)
	assert.Equal(t, RequestStatusCompleted, req.Status)
	assert.Empty(t, req.Error)
}

func TestNewHooksDefaults(t *testing.T) {
	hooks := NewHooks()
	ctx := context.Background()
	store := &CarrierStore{StoreID: "1"}
	order := &carrier.Order{OrderID: "ss-1"}

	assert.False(t, hooks.VetoOrder(ctx, store, order))
	assert.NoError(t, hooks.Enrich(ctx, store, order))
	items := []carrier.OrderItem{{SKU: "A"}}
	assert.Equal(t, items, hooks.Items(ctx, store, order, items))
	assert.NoError(t, hooks.PreSubmit(ctx, store, order, nil))
	assert.NoError(t, hooks.PostSubmit(ctx, store, order, nil))
}
