package integration

import (
	"context"

	"github.com/erp/shipsync/internal/domain/shared"
)

// RequestStatus tracks the lifecycle of an outbound integration call
type RequestStatus string

const (
	RequestStatusQueued    RequestStatus = "Queued"
	RequestStatusCompleted RequestStatus = "Completed"
	RequestStatusFailed    RequestStatus = "Failed"
)

// IntegrationRequest is the audit record for one outbound call to the
// carrier platform. Every reverse status push leaves one behind.
type IntegrationRequest struct {
	shared.BaseEntity
	// Service names the integration, e.g. the carrier connection name
	Service string
	// Reference identifies the document that triggered the call
	Reference string
	URL       string
	// Payload is the serialized request body
	Payload string
	Status  RequestStatus
	// Output holds the serialized response on success
	Output string
	// Error holds the failure message on failure
	Error string
}

// NewIntegrationRequest creates a queued audit record
func NewIntegrationRequest(service, reference, url, payload string) *IntegrationRequest {
	return &IntegrationRequest{
		BaseEntity: shared.NewBaseEntity(),
		Service:    service,
		Reference:  reference,
		URL:        url,
		Payload:    payload,
		Status:     RequestStatusQueued,
	}
}

// MarkCompleted records a successful response
func (r *IntegrationRequest) MarkCompleted(output string) {
	r.Status = RequestStatusCompleted
	r.Output = output
	r.Error = ""
}

// MarkFailed records a failure
func (r *IntegrationRequest) MarkFailed(errMsg string) {
	r.Status = RequestStatusFailed
	r.Error = errMsg
}

// IntegrationRequestRepository provides audit record persistence
type IntegrationRequestRepository interface {
	Save(ctx context.Context, request *IntegrationRequest) error
	List(ctx context.Context, filter shared.Filter) (shared.Paginated[IntegrationRequest], error)
}
