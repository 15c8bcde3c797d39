package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	syncapp "github.com/erp/shipsync/internal/application/sync"
	"github.com/erp/shipsync/internal/domain/integration"
	"github.com/erp/shipsync/internal/domain/shared"
	"github.com/erp/shipsync/internal/infrastructure/logger"
	"github.com/erp/shipsync/internal/interfaces/http/dto"
)

// IngestionRunner executes one ingestion pass on demand
type IngestionRunner interface {
	Run(ctx context.Context) (*syncapp.Report, error)
}

// SyncHandler serves the manual sync trigger and the integration audit
// trail
type SyncHandler struct {
	runner   IngestionRunner
	requests integration.IntegrationRequestRepository
	logger   *zap.Logger
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(runner IngestionRunner, requests integration.IntegrationRequestRepository, log *zap.Logger) *SyncHandler {
	return &SyncHandler{
		runner:   runner,
		requests: requests,
		logger:   log,
	}
}

// RegisterRoutes registers sync routes on the API group
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sync/run", h.RunSync)
	rg.GET("/integration-requests", h.ListIntegrationRequests)
}

// RunSync triggers one synchronous ingestion pass and returns its report
func (h *SyncHandler) RunSync(c *gin.Context) {
	start := time.Now()
	report, err := h.runner.Run(c.Request.Context())
	if err != nil {
		logger.GetGinLogger(c).Error("Manual sync run failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("SYNC_FAILED", err.Error()))
		return
	}

	logger.GetGinLogger(c).Info("Manual sync run finished",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("orders_seen", report.OrdersSeen),
		zap.Int("created", report.Created),
	)
	c.JSON(http.StatusOK, dto.NewSuccessResponse(report))
}

// integrationRequestResponse is the JSON shape of one audit record
type integrationRequestResponse struct {
	ID        string `json:"id"`
	Service   string `json:"service"`
	Reference string `json:"reference"`
	URL       string `json:"url"`
	Payload   string `json:"payload"`
	Status    string `json:"status"`
	Output    string `json:"output,omitempty"`
	Error     string `json:"error,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ListIntegrationRequests returns a page of outbound call audit records
func (h *SyncHandler) ListIntegrationRequests(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("BAD_REQUEST", err.Error()))
		return
	}

	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
		Filters:  map[string]interface{}{},
	}
	if req.Status != "" {
		filter.Filters["status"] = req.Status
	}
	if req.Service != "" {
		filter.Filters["service"] = req.Service
	}

	page, err := h.requests.List(c.Request.Context(), filter)
	if err != nil {
		logger.GetGinLogger(c).Error("Failed to list integration requests", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("INTERNAL_ERROR", "Failed to list integration requests"))
		return
	}

	records := make([]integrationRequestResponse, 0, len(page.Items))
	for _, item := range page.Items {
		records = append(records, integrationRequestResponse{
			ID:        item.ID.String(),
			Service:   item.Service,
			Reference: item.Reference,
			URL:       item.URL,
			Payload:   item.Payload,
			Status:    string(item.Status),
			Output:    item.Output,
			Error:     item.Error,
			CreatedAt: item.CreatedAt.Format(time.RFC3339),
			UpdatedAt: item.UpdatedAt.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(records, page.Total, page.Page, page.PageSize))
}
