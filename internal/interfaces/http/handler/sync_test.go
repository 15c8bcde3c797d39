package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	syncapp "github.com/erp/shipsync/internal/application/sync"
	"github.com/erp/shipsync/internal/domain/integration"
	"github.com/erp/shipsync/internal/domain/shared"
)

type fakeRunner struct {
	report *syncapp.Report
	err    error
	runs   int
}

func (f *fakeRunner) Run(ctx context.Context) (*syncapp.Report, error) {
	f.runs++
	return f.report, f.err
}

type fakeRequestRepo struct {
	records []integration.IntegrationRequest
	lastErr error
}

func (f *fakeRequestRepo) Save(ctx context.Context, request *integration.IntegrationRequest) error {
	f.records = append(f.records, *request)
	return nil
}

func (f *fakeRequestRepo) List(ctx context.Context, filter shared.Filter) (shared.Paginated[integration.IntegrationRequest], error) {
	if f.lastErr != nil {
		return shared.Paginated[integration.IntegrationRequest]{}, f.lastErr
	}
	filtered := make([]integration.IntegrationRequest, 0, len(f.records))
	for _, r := range f.records {
		if status, ok := filter.Filters["status"].(string); ok && string(r.Status) != status {
			continue
		}
		filtered = append(filtered, r)
	}
	return shared.NewPaginated(filtered, int64(len(filtered)), filter.Page, filter.PageSize), nil
}

var (
	_ IngestionRunner                          = (*fakeRunner)(nil)
	_ integration.IntegrationRequestRepository = (*fakeRequestRepo)(nil)
)

func newTestRouter(h *SyncHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	h.RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func TestRunSync(t *testing.T) {
	t.Run("returns the ingestion report", func(t *testing.T) {
		runner := &fakeRunner{report: &syncapp.Report{OrdersSeen: 5, Created: 3, Skipped: 2}}
		h := NewSyncHandler(runner, &fakeRequestRepo{}, zap.NewNop())
		router := newTestRouter(h)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/sync/run", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, runner.runs)

		var body struct {
			Success bool           `json:"success"`
			Data    syncapp.Report `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Equal(t, 5, body.Data.OrdersSeen)
		assert.Equal(t, 3, body.Data.Created)
	})

	t.Run("surfaces run failures", func(t *testing.T) {
		runner := &fakeRunner{err: errors.New("settings unavailable")}
		h := NewSyncHandler(runner, &fakeRequestRepo{}, zap.NewNop())
		router := newTestRouter(h)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/sync/run", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "SYNC_FAILED")
	})
}

func TestListIntegrationRequests(t *testing.T) {
	seeded := func() *fakeRequestRepo {
		repo := &fakeRequestRepo{}
		ok := integration.NewIntegrationRequest("Main Connection", "SO-8001", "https://api.example.com/orders/createorder", `{"orderId":"8001"}`)
		ok.MarkCompleted(`{"orderId":8001}`)
		failed := integration.NewIntegrationRequest("Main Connection", "SO-8002", "https://api.example.com/orders/createorder", `{"orderId":"8002"}`)
		failed.MarkFailed("carrier: platform unavailable")
		repo.records = append(repo.records, *ok, *failed)
		return repo
	}

	t.Run("lists records with pagination meta", func(t *testing.T) {
		h := NewSyncHandler(&fakeRunner{report: &syncapp.Report{}}, seeded(), zap.NewNop())
		router := newTestRouter(h)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/integration-requests?page=1&page_size=10", nil))

		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Success bool                         `json:"success"`
			Data    []integrationRequestResponse `json:"data"`
			Meta    struct {
				Total int64 `json:"total"`
			} `json:"meta"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.True(t, body.Success)
		require.Len(t, body.Data, 2)
		assert.Equal(t, int64(2), body.Meta.Total)
		assert.Equal(t, "SO-8001", body.Data[0].Reference)
		assert.Equal(t, "Completed", body.Data[0].Status)
	})

	t.Run("filters by status", func(t *testing.T) {
		h := NewSyncHandler(&fakeRunner{report: &syncapp.Report{}}, seeded(), zap.NewNop())
		router := newTestRouter(h)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/integration-requests?status=Failed", nil))

		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Data []integrationRequestResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Len(t, body.Data, 1)
		assert.Equal(t, "SO-8002", body.Data[0].Reference)
		assert.Contains(t, body.Data[0].Error, "unavailable")
	})

	t.Run("rejects invalid pagination", func(t *testing.T) {
		h := NewSyncHandler(&fakeRunner{report: &syncapp.Report{}}, seeded(), zap.NewNop())
		router := newTestRouter(h)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/integration-requests?page_size=5000", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
