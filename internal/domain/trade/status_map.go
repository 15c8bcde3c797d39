package trade

import "github.com/erp/shipsync/internal/domain/carrier"

// statusFromCarrier maps carrier order statuses to sales order statuses.
// Two carrier statuses fold into To Deliver; the reverse map resolves
// that collision in favor of awaiting_shipment.
var statusFromCarrier = map[carrier.OrderStatus]OrderStatus{
	carrier.OrderStatusAwaitingPayment:    OrderStatusToBill,
	carrier.OrderStatusAwaitingShipment:   OrderStatusToDeliver,
	carrier.OrderStatusOnHold:             OrderStatusOnHold,
	carrier.OrderStatusPendingFulfillment: OrderStatusToDeliver,
	carrier.OrderStatusShipped:            OrderStatusCompleted,
	carrier.OrderStatusCancelled:          OrderStatusCancelled,
}

var statusToCarrier = map[OrderStatus]carrier.OrderStatus{
	OrderStatusToBill:    carrier.OrderStatusAwaitingPayment,
	OrderStatusToDeliver: carrier.OrderStatusAwaitingShipment,
	OrderStatusOnHold:    carrier.OrderStatusOnHold,
	OrderStatusCompleted: carrier.OrderStatusShipped,
	OrderStatusCancelled: carrier.OrderStatusCancelled,
}

// StatusFromCarrier translates a carrier status into the sales order
// status and document state a synced order should carry
func StatusFromCarrier(status carrier.OrderStatus) (OrderStatus, DocState, bool) {
	mapped, ok := statusFromCarrier[status]
	if !ok {
		return "", "", false
	}
	if mapped == OrderStatusCancelled {
		return mapped, DocStateCancelled, true
	}
	return mapped, DocStateSubmitted, true
}

// StatusToCarrier translates a sales order status into the carrier
// status to push back. Draft orders have no carrier equivalent.
func StatusToCarrier(status OrderStatus) (carrier.OrderStatus, bool) {
	mapped, ok := statusToCarrier[status]
	return mapped, ok
}
