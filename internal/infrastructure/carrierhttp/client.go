package carrierhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/erp/shipsync/internal/domain/carrier"
	"github.com/erp/shipsync/internal/domain/integration"
)

// defaultMaxResponseSize caps carrier API response bodies (10MB)
const defaultMaxResponseSize = 10 * 1024 * 1024

const orderDateLayout = "2006-01-02T15:04:05.000000"

// Client talks to the carrier REST API using basic authentication.
// It implements the carrier.Client port.
type Client struct {
	baseURL         string
	apiKey          string
	apiSecret       string
	httpClient      *http.Client
	maxResponseSize int64
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithMaxResponseSize overrides the response body size cap
func WithMaxResponseSize(size int64) Option {
	return func(c *Client) {
		if size > 0 {
			c.maxResponseSize = size
		}
	}
}

// NewClient creates a carrier API client from a connection's settings
func NewClient(settings *integration.CarrierSettings, opts ...Option) *Client {
	timeout := settings.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		baseURL:         settings.BaseURL,
		apiKey:          settings.APIKey,
		apiSecret:       settings.APISecret,
		httpClient:      &http.Client{Timeout: timeout},
		maxResponseSize: defaultMaxResponseSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListOrders pulls one page of orders matching the given filters
func (c *Client) ListOrders(ctx context.Context, params carrier.ListOrdersParams) (*carrier.OrderPage, error) {
	query := url.Values{}
	if params.StoreID != "" {
		query.Set("storeId", params.StoreID)
	}
	if !params.ModifiedAfter.IsZero() {
		query.Set("modifyDateStart", params.ModifiedAfter.UTC().Format(orderDateLayout))
	}
	if !params.ModifiedBefore.IsZero() {
		query.Set("modifyDateEnd", params.ModifiedBefore.UTC().Format(orderDateLayout))
	}
	if params.Status != "" {
		query.Set("orderStatus", params.Status.String())
	}
	if params.Page > 0 {
		query.Set("page", strconv.Itoa(params.Page))
	}
	if params.PageSize > 0 {
		query.Set("pageSize", strconv.Itoa(params.PageSize))
	}

	body, err := c.doRequest(ctx, http.MethodGet, "/orders", query, nil)
	if err != nil {
		return nil, err
	}

	var list wireOrderList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("%w: failed to parse order listing: %v", carrier.ErrCarrierRequestFailed, err)
	}

	page := &carrier.OrderPage{
		Orders:     make([]carrier.Order, 0, len(list.Orders)),
		Page:       list.Page,
		TotalPages: list.Pages,
	}
	for i := range list.Orders {
		page.Orders = append(page.Orders, list.Orders[i].toDomain())
	}
	return page, nil
}

// GetCustomer fetches the carrier's customer record by its ID
func (c *Client) GetCustomer(ctx context.Context, customerID string) (*carrier.CustomerProfile, error) {
	if customerID == "" {
		return nil, carrier.ErrCustomerNotFound
	}

	body, err := c.doRequest(ctx, http.MethodGet, "/customers/"+url.PathEscape(customerID), nil, nil)
	if err != nil {
		if isNotFound(err) {
			return nil, carrier.ErrCustomerNotFound
		}
		return nil, err
	}

	var customer wireCustomer
	if err := json.Unmarshal(body, &customer); err != nil {
		return nil, fmt.Errorf("%w: failed to parse customer: %v", carrier.ErrCarrierRequestFailed, err)
	}
	return customer.toDomain(), nil
}

// ListStores lists the storefronts available on the connected account
func (c *Client) ListStores(ctx context.Context) ([]carrier.Store, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/stores", nil, nil)
	if err != nil {
		return nil, err
	}

	var wireStores []wireStore
	if err := json.Unmarshal(body, &wireStores); err != nil {
		return nil, fmt.Errorf("%w: failed to parse store listing: %v", carrier.ErrCarrierRequestFailed, err)
	}

	stores := make([]carrier.Store, 0, len(wireStores))
	for i := range wireStores {
		stores = append(stores, wireStores[i].toDomain())
	}
	return stores, nil
}

// UpdateOrderStatus pushes a status change back to the carrier. The
// carrier upserts by order key, so an existing order is updated in
// place rather than duplicated.
func (c *Client) UpdateOrderStatus(ctx context.Context, update carrier.StatusUpdate) (*carrier.StatusUpdateResult, error) {
	payload := statusUpdateRequest{
		OrderID:     update.OrderID,
		OrderNumber: update.OrderNumber,
		OrderKey:    update.OrderID,
		OrderDate:   update.OrderDate.Format(orderDateLayout),
		OrderStatus: update.Status.String(),
		StoreID:     update.StoreID,
		BillTo:      partyToWire(update.BillTo),
		ShipTo:      partyToWire(update.ShipTo),
	}

	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode status update: %v", carrier.ErrCarrierRequestFailed, err)
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/orders/createorder", nil, reqBody)
	if err != nil {
		if isNotFound(err) {
			return nil, carrier.ErrOrderNotFound
		}
		return nil, err
	}

	var resp statusUpdateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse status update response: %v", carrier.ErrCarrierRequestFailed, err)
	}

	return &carrier.StatusUpdateResult{
		OrderID:    strconv.FormatInt(resp.OrderID, 10),
		Status:     carrier.OrderStatus(resp.OrderStatus),
		ModifyDate: parseWireTime(resp.ModifyDate),
	}, nil
}

type httpStatusError struct {
	code int
	err  error
}

func (e *httpStatusError) Error() string { return e.err.Error() }
func (e *httpStatusError) Unwrap() error { return e.err }

func isNotFound(err error) bool {
	if se, ok := err.(*httpStatusError); ok {
		return se.code == http.StatusNotFound
	}
	return false
}

// doRequest performs a single authenticated HTTP request against the
// carrier API and returns the raw response body
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body []byte) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", carrier.ErrCarrierRequestFailed, err)
	}
	req.SetBasicAuth(c.apiKey, c.apiSecret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", carrier.ErrCarrierUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", carrier.ErrCarrierUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &httpStatusError{code: resp.StatusCode, err: fmt.Errorf("%w: HTTP %d", carrier.ErrInvalidCredentials, resp.StatusCode)}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &httpStatusError{code: resp.StatusCode, err: fmt.Errorf("%w: HTTP %d", carrier.ErrRateLimited, resp.StatusCode)}
	case resp.StatusCode >= 500:
		return nil, &httpStatusError{code: resp.StatusCode, err: fmt.Errorf("%w: HTTP %d", carrier.ErrCarrierUnavailable, resp.StatusCode)}
	case resp.StatusCode >= 400:
		return nil, &httpStatusError{code: resp.StatusCode, err: fmt.Errorf("%w: HTTP %d", carrier.ErrCarrierRequestFailed, resp.StatusCode)}
	}

	return respBody, nil
}

// Ensure Client implements the carrier.Client port
var _ carrier.Client = (*Client)(nil)
