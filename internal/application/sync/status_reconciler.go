package sync

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erp/shipsync/internal/domain/carrier"
	"github.com/erp/shipsync/internal/domain/integration"
	"github.com/erp/shipsync/internal/domain/partner"
	"github.com/erp/shipsync/internal/domain/trade"
)

// orderDateFormat matches the carrier API's fractional-second timestamps
const orderDateFormat = "2006-01-02T15:04:05.000000"

// statusPushParty is the wire shape of an address block in a status push
type statusPushParty struct {
	Name       string `json:"name"`
	Company    string `json:"company,omitempty"`
	Street1    string `json:"street1,omitempty"`
	Street2    string `json:"street2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// statusPushPayload is the wire shape of a reverse status push
type statusPushPayload struct {
	OrderID     string           `json:"orderId"`
	OrderNumber string           `json:"orderNumber"`
	OrderStatus string           `json:"orderStatus"`
	StoreID     string           `json:"storeId"`
	OrderDate   string           `json:"orderDate"`
	BillTo      *statusPushParty `json:"billTo,omitempty"`
	ShipTo      *statusPushParty `json:"shipTo,omitempty"`
}

// StatusReconciler pushes sales order status changes back to the carrier
// platform and leaves an IntegrationRequest audit record per attempt.
type StatusReconciler struct {
	settings  integration.SettingsRepository
	addresses partner.AddressRepository
	requests  integration.IntegrationRequestRepository
	clients   ClientFactory
	logger    *zap.Logger
}

// NewStatusReconciler creates a status reconciler
func NewStatusReconciler(
	settings integration.SettingsRepository,
	addresses partner.AddressRepository,
	requests integration.IntegrationRequestRepository,
	clients ClientFactory,
	logger *zap.Logger,
) *StatusReconciler {
	return &StatusReconciler{
		settings:  settings,
		addresses: addresses,
		requests:  requests,
		clients:   clients,
		logger:    logger,
	}
}

// OnOrderStatusChanged pushes the order's current status to the carrier.
// Draft orders and orders whose store has outbound sync disabled are
// ignored silently.
func (r *StatusReconciler) OnOrderStatusChanged(ctx context.Context, order *trade.SalesOrder) error {
	if order.DocState == trade.DocStateDraft {
		return nil
	}
	mapped, ok := trade.StatusToCarrier(order.Status)
	if !ok {
		return nil
	}

	settings, _, err := r.settings.FindByStore(ctx, order.StoreID, order.Marketplace)
	if err != nil {
		return fmt.Errorf("find settings for store %s: %w", order.StoreID, err)
	}
	if !settings.Enabled || !settings.SyncOrderStatus {
		return nil
	}

	billTo := r.partyFor(ctx, order.BillingAddressID, order.CustomerName)
	shipTo := r.partyFor(ctx, order.ShippingAddressID, order.CustomerName)

	payload := statusPushPayload{
		OrderID:     order.CarrierOrderID,
		OrderNumber: order.OrderNumber,
		OrderStatus: mapped.String(),
		StoreID:     order.StoreID,
		OrderDate:   order.OrderDate.Format(orderDateFormat),
		BillTo:      pushParty(billTo),
		ShipTo:      pushParty(shipTo),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal status push: %w", err)
	}

	request := integration.NewIntegrationRequest(settings.Name, order.CarrierOrderID,
		settings.BaseURL+"/orders/createorder", string(body))
	if err := r.requests.Save(ctx, request); err != nil {
		return fmt.Errorf("queue integration request: %w", err)
	}

	// the carrier rejects order updates without both address blocks
	update := carrier.StatusUpdate{
		OrderID:     order.CarrierOrderID,
		OrderNumber: order.OrderNumber,
		StoreID:     order.StoreID,
		OrderDate:   order.OrderDate,
		Status:      mapped,
	}
	if billTo != nil {
		update.BillTo = *billTo
	}
	if shipTo != nil {
		update.ShipTo = *shipTo
	}
	result, err := r.clients(settings).UpdateOrderStatus(ctx, update)
	if err != nil {
		request.MarkFailed(err.Error())
		if saveErr := r.requests.Save(ctx, request); saveErr != nil {
			r.logger.Error("failed to record push failure",
				zap.String("carrier_order_id", order.CarrierOrderID), zap.Error(saveErr))
		}
		return fmt.Errorf("push order status: %w", err)
	}

	output, _ := json.Marshal(result)
	request.MarkCompleted(string(output))
	if err := r.requests.Save(ctx, request); err != nil {
		r.logger.Error("failed to record push result",
			zap.String("carrier_order_id", order.CarrierOrderID), zap.Error(err))
	}

	r.logger.Info("order status pushed to carrier",
		zap.String("carrier_order_id", order.CarrierOrderID),
		zap.String("status", mapped.String()))
	return nil
}

// partyFor rebuilds a carrier party block from a stored address
// reference
func (r *StatusReconciler) partyFor(ctx context.Context, addressID *uuid.UUID, name string) *carrier.Party {
	if addressID == nil {
		return nil
	}
	address, err := r.addresses.FindByID(ctx, *addressID)
	if err != nil {
		return nil
	}
	title := address.Title
	if title == "" {
		title = name
	}
	return &carrier.Party{
		Name:       title,
		Street1:    address.Line1,
		Street2:    address.Line2,
		City:       address.City,
		State:      address.State,
		PostalCode: address.PostalCode,
		Country:    address.Country,
		Phone:      address.Phone,
	}
}

// pushParty converts a carrier party to its audit payload shape
func pushParty(party *carrier.Party) *statusPushParty {
	if party == nil {
		return nil
	}
	return &statusPushParty{
		Name:       party.Name,
		Company:    party.Company,
		Street1:    party.Street1,
		Street2:    party.Street2,
		City:       party.City,
		State:      party.State,
		PostalCode: party.PostalCode,
		Country:    party.Country,
		Phone:      party.Phone,
	}
}
