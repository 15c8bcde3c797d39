package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/erp/shipsync/internal/domain/shared"
)

// newMockDB creates a GORM connection backed by sqlmock
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func TestGormCustomerRepository_FindByID(t *testing.T) {
	t.Run("finds existing customer", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormCustomerRepository(db)

		customerID := uuid.New()
		rows := sqlmock.NewRows([]string{"id", "version", "carrier_customer_id", "name", "type", "customer_group", "territory"}).
			AddRow(customerID, 1, "cust-42", "Dana Buyer", "Individual", "Individual", "All Territories")

		mock.ExpectQuery(`SELECT \* FROM "customers" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(customerID, 1).
			WillReturnRows(rows)

		customer, err := repo.FindByID(context.Background(), customerID)

		require.NoError(t, err)
		assert.Equal(t, customerID, customer.ID)
		assert.Equal(t, "cust-42", customer.CarrierCustomerID)
		assert.Equal(t, "Dana Buyer", customer.Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps missing customer to not found", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormCustomerRepository(db)

		customerID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "customers" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(customerID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		customer, err := repo.FindByID(context.Background(), customerID)

		assert.Nil(t, customer)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCustomerRepository_FindByCarrierCustomerID(t *testing.T) {
	t.Run("finds by carrier identity", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormCustomerRepository(db)

		customerID := uuid.New()
		rows := sqlmock.NewRows([]string{"id", "version", "carrier_customer_id", "name", "type"}).
			AddRow(customerID, 1, "cust-42", "Dana Buyer", "Individual")

		mock.ExpectQuery(`SELECT \* FROM "customers" WHERE carrier_customer_id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("cust-42", 1).
			WillReturnRows(rows)

		customer, err := repo.FindByCarrierCustomerID(context.Background(), "cust-42")

		require.NoError(t, err)
		assert.Equal(t, "cust-42", customer.CarrierCustomerID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty id short circuits without querying", func(t *testing.T) {
		db, _, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormCustomerRepository(db)

		_, err := repo.FindByCarrierCustomerID(context.Background(), "")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormContactRepository_FindByEmail(t *testing.T) {
	t.Run("matches by jsonb containment", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormContactRepository(db)

		contactID := uuid.New()
		customerID := uuid.New()
		rows := sqlmock.NewRows([]string{"id", "version", "customer_id", "first_name", "last_name", "emails"}).
			AddRow(contactID, 1, customerID, "Dana", "Buyer", `[{"email":"dana@example.com","is_primary":true}]`)

		mock.ExpectQuery(`SELECT \* FROM "contacts" WHERE emails @> \$1 ORDER BY .* LIMIT .*`).
			WithArgs(`[{"email":"dana@example.com"}]`, 1).
			WillReturnRows(rows)

		contact, err := repo.FindByEmail(context.Background(), "Dana@Example.com")

		require.NoError(t, err)
		assert.Equal(t, customerID, contact.CustomerID)
		assert.Equal(t, "dana@example.com", contact.PrimaryEmail())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormAddressRepository_FindByLocation(t *testing.T) {
	t.Run("matches normalized line and city", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormAddressRepository(db)

		addressID := uuid.New()
		rows := sqlmock.NewRows([]string{"id", "version", "type", "title", "line1", "city", "links"}).
			AddRow(addressID, 1, "Shipping", "Dana Buyer", "1 Main St", "Austin", `[]`)

		mock.ExpectQuery(`SELECT \* FROM "addresses" WHERE .*line1.* ORDER BY .* LIMIT .*`).
			WithArgs("1 main st", "austin", 1).
			WillReturnRows(rows)

		address, err := repo.FindByLocation(context.Background(), " 1 Main St ", "Austin", "", false)

		require.NoError(t, err)
		assert.Equal(t, addressID, address.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("strict mode includes the postal code", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormAddressRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "addresses" WHERE .*postal_code.* ORDER BY .* LIMIT .*`).
			WithArgs("1 main st", "austin", "78701", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		_, err := repo.FindByLocation(context.Background(), "1 Main St", "Austin", "78701", true)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
