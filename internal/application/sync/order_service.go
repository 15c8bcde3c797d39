package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/erp/shipsync/internal/domain/carrier"
	"github.com/erp/shipsync/internal/domain/catalog"
	"github.com/erp/shipsync/internal/domain/integration"
	"github.com/erp/shipsync/internal/domain/partner"
	"github.com/erp/shipsync/internal/domain/shared"
	"github.com/erp/shipsync/internal/domain/trade"
)

// defaultLookback bounds the pull window when a store has never synced
const defaultLookback = 24 * time.Hour

// ClientFactory builds a carrier client for one settings record. Each
// connection carries its own credentials and base URL.
type ClientFactory func(settings *integration.CarrierSettings) carrier.Client

// Report summarizes one ingestion run
type Report struct {
	OrdersSeen    int `json:"orders_seen"`
	Created       int `json:"created"`
	StatusUpdated int `json:"status_updated"`
	Skipped       int `json:"skipped"`
	Failed        int `json:"failed"`
}

// outcome classifies the handling of a single carrier order
type outcome int

const (
	outcomeCreated outcome = iota
	outcomeStatusUpdated
	outcomeSkipped
)

// OrderIngestionService pulls orders from the carrier platform and
// materializes sales orders. One failing order never aborts the run; a
// transport failure aborts only the affected store's batch.
type OrderIngestionService struct {
	settings    integration.SettingsRepository
	orders      trade.SalesOrderRepository
	items       catalog.ItemRepository
	uom         catalog.UOMConverter
	customers   *CustomerResolver
	contacts    *ContactResolver
	addresses   *AddressResolver
	commission  *CommissionEvaluator
	clients     ClientFactory
	hooks       *integration.Hooks
	logger      *zap.Logger
	lookback    time.Duration
	pageSize    int
}

// NewOrderIngestionService wires the ingestion pipeline
func NewOrderIngestionService(
	settings integration.SettingsRepository,
	orders trade.SalesOrderRepository,
	items catalog.ItemRepository,
	uom catalog.UOMConverter,
	customers *CustomerResolver,
	contacts *ContactResolver,
	addresses *AddressResolver,
	commission *CommissionEvaluator,
	clients ClientFactory,
	hooks *integration.Hooks,
	logger *zap.Logger,
	lookback time.Duration,
	pageSize int,
) *OrderIngestionService {
	if lookback <= 0 {
		lookback = defaultLookback
	}
	if pageSize <= 0 {
		pageSize = 100
	}
	if hooks == nil {
		hooks = integration.NewHooks()
	}
	return &OrderIngestionService{
		settings:   settings,
		orders:     orders,
		items:      items,
		uom:        uom,
		customers:  customers,
		contacts:   contacts,
		addresses:  addresses,
		commission: commission,
		clients:    clients,
		hooks:      hooks,
		logger:     logger,
		lookback:   lookback,
		pageSize:   pageSize,
	}
}

// Run executes one full ingestion pass over every enabled connection and
// store
func (s *OrderIngestionService) Run(ctx context.Context) (*Report, error) {
	connections, err := s.settings.FindEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("load carrier settings: %w", err)
	}

	report := &Report{}
	for i := range connections {
		settings := &connections[i]
		client := s.clients(settings)
		for _, store := range settings.EnabledStores() {
			store := store
			if err := s.ingestStore(ctx, client, settings, &store, report); err != nil {
				s.logger.Error("store ingestion aborted",
					zap.String("settings", settings.Name),
					zap.String("store_id", store.StoreID),
					zap.Error(err))
			}
		}
	}

	s.logger.Info("ingestion run finished",
		zap.Int("orders_seen", report.OrdersSeen),
		zap.Int("created", report.Created),
		zap.Int("status_updated", report.StatusUpdated),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed))
	return report, nil
}

func (s *OrderIngestionService) ingestStore(ctx context.Context, client carrier.Client, settings *integration.CarrierSettings, store *integration.CarrierStore, report *Report) error {
	params := carrier.ListOrdersParams{
		StoreID:       store.StoreID,
		ModifiedAfter: time.Now().Add(-s.lookback),
		Page:          1,
		PageSize:      s.pageSize,
	}
	s.hooks.ListParams(ctx, settings, store, &params)

	for {
		page, err := client.ListOrders(ctx, params)
		if err != nil {
			return fmt.Errorf("list orders: %w", err)
		}

		for i := range page.Orders {
			order := &page.Orders[i]
			report.OrdersSeen++

			result, err := s.processOrder(ctx, client, settings, store, order)
			if err != nil {
				report.Failed++
				s.logger.Error("order ingestion failed",
					zap.String("carrier_order_id", order.OrderID),
					zap.String("order_number", order.OrderNumber),
					zap.String("store_id", store.StoreID),
					zap.Error(err))
				continue
			}
			switch result {
			case outcomeCreated:
				report.Created++
			case outcomeStatusUpdated:
				report.StatusUpdated++
			case outcomeSkipped:
				report.Skipped++
			}
		}

		if !page.HasNext() {
			return nil
		}
		params.Page = page.Page + 1
	}
}

// processOrder handles one carrier order with panic isolation
func (s *OrderIngestionService) processOrder(ctx context.Context, client carrier.Client, settings *integration.CarrierSettings, store *integration.CarrierStore, order *carrier.Order) (result outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic handling order %s: %v", order.OrderID, r)
		}
	}()

	proceed, result, err := s.validate(ctx, settings, store, order)
	if err != nil || !proceed {
		return result, err
	}
	return s.materialize(ctx, client, settings, store, order)
}

// validate decides whether an order should materialize. Known orders get
// a status-only update; filtered orders are skipped.
func (s *OrderIngestionService) validate(ctx context.Context, settings *integration.CarrierSettings, store *integration.CarrierStore, order *carrier.Order) (bool, outcome, error) {
	if !order.Status.IsValid() {
		s.logger.Warn("skipping order with unknown status",
			zap.String("carrier_order_id", order.OrderID),
			zap.String("status", order.Status.String()))
		return false, outcomeSkipped, nil
	}

	existing, err := s.orders.FindByCarrierOrderID(ctx, order.OrderID)
	if err == nil {
		return false, s.updateExistingStatus(ctx, existing, order), nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return false, outcomeSkipped, fmt.Errorf("find existing order: %w", err)
	}

	if !settings.AcceptsWarehouse(order.AdvancedOptions.WarehouseID) {
		return false, outcomeSkipped, nil
	}
	if !settings.SinceDate.IsZero() && order.OrderDate.Before(settings.SinceDate) {
		return false, outcomeSkipped, nil
	}
	if s.hooks.VetoOrder(ctx, store, order) {
		return false, outcomeSkipped, nil
	}
	return true, outcomeCreated, nil
}

// updateExistingStatus applies the mapped carrier status to an already
// materialized order; re-ingestion never touches lines or totals
func (s *OrderIngestionService) updateExistingStatus(ctx context.Context, existing *trade.SalesOrder, order *carrier.Order) outcome {
	mapped, docState, ok := trade.StatusFromCarrier(order.Status)
	if !ok {
		return outcomeSkipped
	}
	if existing.Status == mapped && existing.DocState == docState {
		return outcomeSkipped
	}

	var err error
	if docState == trade.DocStateCancelled {
		err = existing.Cancel()
	} else {
		err = existing.UpdateStatus(mapped)
	}
	if err != nil {
		s.logger.Warn("status transition rejected",
			zap.String("carrier_order_id", order.OrderID),
			zap.String("from", existing.Status.String()),
			zap.String("to", mapped.String()),
			zap.Error(err))
		return outcomeSkipped
	}
	if err := s.orders.Save(ctx, existing); err != nil {
		s.logger.Error("failed to save status update",
			zap.String("carrier_order_id", order.OrderID), zap.Error(err))
		return outcomeSkipped
	}
	return outcomeStatusUpdated
}

// materialize builds, prices, and submits the sales order for a carrier
// order
func (s *OrderIngestionService) materialize(ctx context.Context, client carrier.Client, settings *integration.CarrierSettings, store *integration.CarrierStore, order *carrier.Order) (outcome, error) {
	if err := s.hooks.Enrich(ctx, store, order); err != nil {
		return outcomeSkipped, fmt.Errorf("enrich order: %w", err)
	}

	customer, err := s.customers.Resolve(ctx, client, settings, store, order)
	if err != nil {
		return outcomeSkipped, fmt.Errorf("resolve customer: %w", err)
	}

	billing, shipping := s.resolveAddresses(ctx, customer, store, order)

	salesOrder, err := trade.NewSalesOrder(order.OrderID, order.OrderNumber, store.StoreID, customer.GetID(), order.OrderDate)
	if err != nil {
		return outcomeSkipped, err
	}
	salesOrder.Marketplace = store.Marketplace
	salesOrder.CustomerName = customer.Name
	salesOrder.Currency = store.Currency
	salesOrder.SalesPartner = store.SalesPartner
	salesOrder.CustomerNotes = order.CustomerNotes
	salesOrder.InternalNotes = order.InternalNotes
	salesOrder.AmountPaid = order.AmountPaid
	salesOrder.DeliveryDate = order.ShipDate
	if salesOrder.DeliveryDate.IsZero() {
		salesOrder.DeliveryDate = order.OrderDate
	}
	if billing != nil {
		id := billing.GetID()
		salesOrder.BillingAddressID = &id
	}
	if shipping != nil {
		id := shipping.GetID()
		salesOrder.ShippingAddressID = &id
	}

	discount, err := s.addItems(ctx, salesOrder, store, order)
	if err != nil {
		return outcomeSkipped, err
	}
	if len(salesOrder.Items) == 0 {
		s.logger.Warn("skipping order with no sellable lines",
			zap.String("carrier_order_id", order.OrderID))
		return outcomeSkipped, nil
	}

	// the payment gap is measured against the grand total before the
	// discount, withholding reversal, and commission adjust it
	s.addCharges(salesOrder, store, order)
	s.reconcileDifference(salesOrder, store, order)
	s.reverseWithheldTax(salesOrder, store, order)
	if discount.IsPositive() {
		if err := salesOrder.ApplyDiscount(discount); err != nil {
			return outcomeSkipped, err
		}
	}
	s.applyCommission(salesOrder, store)

	if err := s.hooks.PreSubmit(ctx, store, order, salesOrder); err != nil {
		return outcomeSkipped, fmt.Errorf("pre-submit hook: %w", err)
	}

	mapped, docState, ok := trade.StatusFromCarrier(order.Status)
	if !ok {
		return outcomeSkipped, fmt.Errorf("unmapped carrier status %q", order.Status)
	}
	if docState == trade.DocStateCancelled {
		if err := salesOrder.Cancel(); err != nil {
			return outcomeSkipped, err
		}
	} else {
		if err := salesOrder.Submit(mapped); err != nil {
			return outcomeSkipped, err
		}
	}

	if err := s.orders.Save(ctx, salesOrder); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			// concurrent run materialized it first
			return outcomeSkipped, nil
		}
		return outcomeSkipped, fmt.Errorf("save sales order: %w", err)
	}

	if err := s.hooks.PostSubmit(ctx, store, order, salesOrder); err != nil {
		s.logger.Warn("post-submit hook failed",
			zap.String("carrier_order_id", order.OrderID), zap.Error(err))
	}

	s.logger.Info("sales order created",
		zap.String("carrier_order_id", order.OrderID),
		zap.String("order_number", order.OrderNumber),
		zap.String("status", salesOrder.Status.String()),
		zap.String("grand_total", salesOrder.GrandTotal.String()))
	return outcomeCreated, nil
}

// resolveAddresses resolves billing and shipping addresses; failures are
// logged and leave the order without the affected reference
func (s *OrderIngestionService) resolveAddresses(ctx context.Context, customer *partner.Customer, store *integration.CarrierStore, order *carrier.Order) (*partner.Address, *partner.Address) {
	billing, err := s.addresses.Resolve(ctx, customer, &order.BillTo, partner.AddressTypeBilling, order.CustomerEmail, store.StrictAddressMatch)
	if err != nil {
		s.logger.Warn("billing address resolution failed",
			zap.String("carrier_order_id", order.OrderID), zap.Error(err))
		billing = nil
	}
	shipping, err := s.addresses.Resolve(ctx, customer, &order.ShipTo, partner.AddressTypeShipping, order.CustomerEmail, store.StrictAddressMatch)
	if err != nil {
		s.logger.Warn("shipping address resolution failed",
			zap.String("carrier_order_id", order.OrderID), zap.Error(err))
		shipping = nil
	}
	return billing, shipping
}

// addItems turns sellable carrier lines into order items and returns the
// accumulated discount from synthetic discount lines. The discount is
// applied to the order only after the payment gap is reconciled. Lines
// with quantity below one are dropped.
func (s *OrderIngestionService) addItems(ctx context.Context, salesOrder *trade.SalesOrder, store *integration.CarrierStore, order *carrier.Order) (decimal.Decimal, error) {
	discount := decimal.Zero
	sellable := make([]carrier.OrderItem, 0, len(order.Items))
	for _, line := range order.Items {
		if line.IsDiscount() {
			discount = discount.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))).Abs())
			continue
		}
		if line.Quantity < 1 {
			continue
		}
		sellable = append(sellable, line)
	}

	sellable = s.hooks.Items(ctx, store, order, sellable)

	warehouseID := order.AdvancedOptions.WarehouseID
	if warehouseID == "" {
		warehouseID = store.WarehouseID
	}

	for _, line := range sellable {
		item, err := s.resolveItem(ctx, line)
		if err != nil {
			return decimal.Zero, fmt.Errorf("resolve item %q: %w", line.SKU, err)
		}

		factor := decimal.NewFromInt(1)
		if item.OrderUOM() != item.StockUOM {
			if f, err := s.uom.ConversionFactor(ctx, item.Code, item.OrderUOM(), item.StockUOM); err == nil {
				factor = f
			}
		}

		if err := salesOrder.AddItem(trade.SalesOrderItem{
			CarrierOrderItemID: line.OrderItemID,
			ItemCode:           item.Code,
			ItemName:           item.Name,
			Quantity:           line.Quantity,
			Rate:               line.UnitPrice,
			UOM:                item.OrderUOM(),
			ConversionFactor:   factor,
			WarehouseID:        warehouseID,
			Note:               line.Note(),
		}); err != nil {
			return decimal.Zero, err
		}
	}
	return discount, nil
}

// resolveItem finds the catalog item for a carrier SKU, creating a
// placeholder when the catalog has never seen it
func (s *OrderIngestionService) resolveItem(ctx context.Context, line carrier.OrderItem) (*catalog.Item, error) {
	item, err := s.items.FindBySKU(ctx, line.SKU)
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, catalog.ErrItemNotFound) && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	name := line.Name
	if name == "" {
		name = line.SKU
	}
	created, err := catalog.NewItem(line.SKU, name, line.SKU, "")
	if err != nil {
		return nil, err
	}
	if err := s.items.Save(ctx, created); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return s.items.FindBySKU(ctx, line.SKU)
		}
		return nil, err
	}
	s.logger.Info("catalog item created from carrier line",
		zap.String("sku", line.SKU), zap.String("name", name))
	return created, nil
}

// addCharges posts tax and shipping charge lines per the store's
// accounts
func (s *OrderIngestionService) addCharges(salesOrder *trade.SalesOrder, store *integration.CarrierStore, order *carrier.Order) {
	if !order.TaxAmount.IsZero() {
		_ = salesOrder.AddCharge(trade.ChargeLine{
			AccountHead: store.TaxAccount,
			Description: "Carrier Tax",
			Amount:      order.TaxAmount,
			CostCenter:  store.CostCenter,
		})
	}
	if !order.ShippingAmount.IsZero() {
		_ = salesOrder.AddCharge(trade.ChargeLine{
			AccountHead: store.ShippingIncomeAccount,
			Description: "Carrier Shipping",
			Amount:      order.ShippingAmount,
			CostCenter:  store.CostCenter,
		})
	}
}

// reverseWithheldTax negates the tax charge for marketplaces that
// withhold and remit the tax themselves
func (s *OrderIngestionService) reverseWithheldTax(salesOrder *trade.SalesOrder, store *integration.CarrierStore, order *carrier.Order) {
	if !store.ReverseTaxOnWithholding || order.TaxAmount.IsZero() {
		return
	}
	_ = salesOrder.AddCharge(trade.ChargeLine{
		AccountHead: store.TaxAccount,
		Description: "Tax Withheld by Marketplace",
		Amount:      order.TaxAmount.Neg(),
		CostCenter:  store.CostCenter,
	})
}

// applyCommission evaluates the store's commission formula and posts the
// result as a negative charge the buyer's payment already covers.
// Evaluation failure leaves the order without a commission line.
func (s *OrderIngestionService) applyCommission(salesOrder *trade.SalesOrder, store *integration.CarrierStore) {
	if !store.ApplyCommission || store.CommissionFormula == "" || s.commission == nil {
		return
	}
	amount, ok := s.commission.Evaluate(store.CommissionFormula, salesOrder)
	if !ok || amount.IsZero() {
		return
	}
	_ = salesOrder.SetCommission(amount)
	_ = salesOrder.AddCharge(trade.ChargeLine{
		AccountHead:    store.CommissionAccount,
		Description:    fmt.Sprintf("Commission of %s", amount.StringFixed(2)),
		Amount:         amount.Neg(),
		CostCenter:     store.CostCenter,
		IncludedInPaid: true,
	})
}

// reconcileDifference closes the gap between the computed grand total
// and what the buyer actually paid. When the gap equals the shipping
// amount the shipping income account absorbs it; otherwise the store's
// difference account does.
func (s *OrderIngestionService) reconcileDifference(salesOrder *trade.SalesOrder, store *integration.CarrierStore, order *carrier.Order) {
	difference := salesOrder.Difference()
	if difference.IsZero() {
		return
	}

	account := store.DifferenceAccount
	if difference.Abs().Equal(order.ShippingAmount.Abs()) && !order.ShippingAmount.IsZero() {
		account = store.ShippingIncomeAccount
	}

	_ = salesOrder.AddCharge(trade.ChargeLine{
		AccountHead: account,
		Description: "Carrier Payment Difference",
		Amount:      difference,
		CostCenter:  store.CostCenter,
	})
}
