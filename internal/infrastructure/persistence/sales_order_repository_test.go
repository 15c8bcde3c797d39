package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/erp/shipsync/internal/domain/shared"
	"github.com/erp/shipsync/internal/domain/trade"
)

func TestGormSalesOrderRepository_FindByCarrierOrderID(t *testing.T) {
	t.Run("rehydrates items and charges from jsonb", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormSalesOrderRepository(db)

		orderID := uuid.New()
		customerID := uuid.New()
		items := `[{"carrier_order_item_id":"9001","item_code":"WIDGET-1","item_name":"Widget","quantity":2,"rate":"19.99","amount":"39.98","uom":"Nos","conversion_factor":"1"}]`
		charges := `[{"type":"Actual","account_head":"Sales Tax - A","description":"Sales Tax","amount":"3.2"}]`

		rows := sqlmock.NewRows([]string{
			"id", "version", "carrier_order_id", "order_number", "store_id",
			"customer_id", "customer_name", "status", "doc_state",
			"items", "charges", "total", "total_taxes_and_charges", "grand_total",
		}).AddRow(
			orderID, 2, "8001", "SO-8001", "200",
			customerID, "Dana Buyer", "To Deliver", "submitted",
			items, charges, "39.98", "3.2", "43.18",
		)

		mock.ExpectQuery(`SELECT \* FROM "sales_orders" WHERE carrier_order_id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("8001", 1).
			WillReturnRows(rows)

		order, err := repo.FindByCarrierOrderID(context.Background(), "8001")

		require.NoError(t, err)
		assert.Equal(t, "8001", order.CarrierOrderID)
		assert.Equal(t, trade.OrderStatusToDeliver, order.Status)
		assert.Equal(t, trade.DocStateSubmitted, order.DocState)
		require.Len(t, order.Items, 1)
		assert.Equal(t, "WIDGET-1", order.Items[0].ItemCode)
		assert.Equal(t, "39.98", order.Items[0].Amount.StringFixed(2))
		require.Len(t, order.Charges, 1)
		assert.Equal(t, "Sales Tax - A", order.Charges[0].AccountHead)
		assert.Equal(t, "43.18", order.GrandTotal.StringFixed(2))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps missing order to not found", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormSalesOrderRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "sales_orders" WHERE carrier_order_id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("9999", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		order, err := repo.FindByCarrierOrderID(context.Background(), "9999")

		assert.Nil(t, order)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))
	assert.ErrorIs(t, translateError(gorm.ErrRecordNotFound), shared.ErrNotFound)
	assert.ErrorIs(t, translateError(gorm.ErrDuplicatedKey), shared.ErrAlreadyExists)
	assert.ErrorIs(t,
		translateError(errors.New(`ERROR: duplicate key value violates unique constraint "idx_customers_carrier_customer_id"`)),
		shared.ErrAlreadyExists)

	opaque := errors.New("connection reset")
	assert.Equal(t, opaque, translateError(opaque))
}

func TestIsSafeColumn(t *testing.T) {
	assert.True(t, isSafeColumn("created_at"))
	assert.True(t, isSafeColumn("grand_total"))
	assert.False(t, isSafeColumn(""))
	assert.False(t, isSafeColumn("created_at; DROP TABLE customers"))
	assert.False(t, isSafeColumn("name DESC"))
}
