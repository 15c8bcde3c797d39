package trade

import (
	"context"

	"github.com/erp/shipsync/internal/domain/shared"
)

// SalesOrderRepository provides sales order persistence
type SalesOrderRepository interface {
	shared.Repository[SalesOrder]
	// FindByCarrierOrderID looks up the sales order materialized from a
	// given carrier order; the idempotency check of the sync flow
	FindByCarrierOrderID(ctx context.Context, carrierOrderID string) (*SalesOrder, error)
	// FindByStatus lists submitted orders in a given status, used by the
	// reverse status push
	FindByStatus(ctx context.Context, status OrderStatus, filter shared.Filter) ([]SalesOrder, error)
}
