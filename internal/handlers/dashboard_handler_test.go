package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stwalsh4118/procur/internal/datasource"
	apierrors "github.com/stwalsh4118/procur/internal/errors"
	"github.com/stwalsh4118/procur/internal/logger"
	"github.com/stwalsh4118/procur/internal/middleware"
	"github.com/stwalsh4118/procur/internal/models"
	"github.com/stwalsh4118/procur/internal/services"
	"github.com/stwalsh4118/procur/internal/viewengine"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockDashboardService is a mock implementation of services.DashboardService for testing
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) HarvestTimeline(ctx context.Context, params viewengine.FilterParams) (viewengine.View[models.Harvest], error) {
	args := m.Called(ctx, params)
	return args.Get(0).(viewengine.View[models.Harvest]), args.Error(1)
}

func (m *MockDashboardService) LandUtilization(ctx context.Context, params viewengine.FilterParams, groupBy string) (viewengine.View[models.LandAllocation], error) {
	args := m.Called(ctx, params, groupBy)
	return args.Get(0).(viewengine.View[models.LandAllocation]), args.Error(1)
}

func (m *MockDashboardService) Compliance(ctx context.Context, params viewengine.FilterParams) (viewengine.View[models.ComplianceEntry], error) {
	args := m.Called(ctx, params)
	return args.Get(0).(viewengine.View[models.ComplianceEntry]), args.Error(1)
}

func (m *MockDashboardService) Programs(ctx context.Context, params viewengine.FilterParams) (viewengine.View[models.Program], error) {
	args := m.Called(ctx, params)
	return args.Get(0).(viewengine.View[models.Program]), args.Error(1)
}

func (m *MockDashboardService) Summarize(ctx context.Context, collection datasource.Collection) (services.CollectionSummary, error) {
	args := m.Called(ctx, collection)
	return args.Get(0).(services.CollectionSummary), args.Error(1)
}

func (m *MockDashboardService) Overview(ctx context.Context) (*services.Overview, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Overview), args.Error(1)
}

func (m *MockDashboardService) Invalidate() {
	m.Called()
}

func (m *MockDashboardService) CacheStats() map[datasource.Collection]services.CacheStats {
	return m.Called().Get(0).(map[datasource.Collection]services.CacheStats)
}

// setupRouter mounts every route with the given services behind the
// request-scoped middleware the handlers rely on.
func setupRouter(dashboards services.DashboardService, snapshots services.SnapshotService) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logger(logger.Nop()))
	RegisterRoutes(router,
		NewHealthHandler(nil, "fixture", "test"),
		NewDashboardHandler(dashboards),
		NewReportHandler(snapshots))
	return router
}

func doRequest(router *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apierrors.ErrorResponse {
	var resp apierrors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestDashboardHandler_Land(t *testing.T) {
	view := viewengine.View[models.LandAllocation]{
		Groups: []viewengine.GroupView[models.LandAllocation]{{
			Key:     "Kingston",
			Items:   []models.LandAllocation{{ID: "la-01", VendorName: "Alpha Farms"}},
			Summary: viewengine.Summary{Count: 1, UtilizationRate: 60},
		}},
		Overall:      viewengine.Summary{Count: 1, UtilizationRate: 60},
		SourceCount:  3,
		MatchedCount: 1,
	}

	svc := new(MockDashboardService)
	svc.On("LandUtilization", mock.Anything, viewengine.FilterParams{
		SearchText:  "alpha",
		Categorical: map[string]string{"region": "Kingston"},
		DateRange:   viewengine.DateRange{Start: "2025-01-01", End: "2025-03-31"},
		Tier:        "medium",
	}, "date").Return(view, nil)

	w := doRequest(setupRouter(svc, nil), http.MethodGet,
		"/api/v1/dashboards/land?search=alpha&region=Kingston&crop=Yam&tier=medium&from=2025-01-01&to=2025-03-31&group_by=date")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got viewengine.View[models.LandAllocation]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 1, got.MatchedCount)
	assert.Equal(t, "Kingston", got.Groups[0].Key)
	assert.Equal(t, "la-01", got.Groups[0].Items[0].ID)
	svc.AssertExpectations(t)
}

func TestDashboardHandler_DefaultParams(t *testing.T) {
	empty := viewengine.FilterParams{Categorical: map[string]string{}}

	svc := new(MockDashboardService)
	svc.On("HarvestTimeline", mock.Anything, empty).Return(viewengine.View[models.Harvest]{Groups: []viewengine.GroupView[models.Harvest]{}}, nil)
	svc.On("LandUtilization", mock.Anything, empty, "").Return(viewengine.View[models.LandAllocation]{}, nil)
	svc.On("Compliance", mock.Anything, empty).Return(viewengine.View[models.ComplianceEntry]{}, nil)
	svc.On("Programs", mock.Anything, empty).Return(viewengine.View[models.Program]{}, nil)
	router := setupRouter(svc, nil)

	for _, path := range []string{"harvests", "land", "compliance", "programs"} {
		t.Run(path, func(t *testing.T) {
			w := doRequest(router, http.MethodGet, "/api/v1/dashboards/"+path)
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
	svc.AssertExpectations(t)
}

func TestDashboardHandler_CategoricalFieldsPerDashboard(t *testing.T) {
	query := "?status=active&region=Kingston&crop=Yam&category=inputs"

	svc := new(MockDashboardService)
	svc.On("HarvestTimeline", mock.Anything, mock.MatchedBy(func(p viewengine.FilterParams) bool {
		return len(p.Categorical) == 3 && p.Categorical["crop"] == "Yam" && p.Categorical["category"] == ""
	})).Return(viewengine.View[models.Harvest]{}, nil)
	svc.On("Compliance", mock.Anything, mock.MatchedBy(func(p viewengine.FilterParams) bool {
		return len(p.Categorical) == 3 && p.Categorical["category"] == "inputs" && p.Categorical["crop"] == ""
	})).Return(viewengine.View[models.ComplianceEntry]{}, nil)
	svc.On("Programs", mock.Anything, mock.MatchedBy(func(p viewengine.FilterParams) bool {
		return len(p.Categorical) == 3 && p.Categorical["status"] == "active"
	})).Return(viewengine.View[models.Program]{}, nil)
	router := setupRouter(svc, nil)

	for _, path := range []string{"harvests", "compliance", "programs"} {
		w := doRequest(router, http.MethodGet, "/api/v1/dashboards/"+path+query)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
	svc.AssertExpectations(t)
}

func TestDashboardHandler_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		field string
	}{
		{"unknown tier", "/api/v1/dashboards/programs?tier=extreme", "Tier"},
		{"malformed from date", "/api/v1/dashboards/harvests?from=03/01/2025", "From"},
		{"malformed to date", "/api/v1/dashboards/compliance?to=2025-13-01", "To"},
		{"unknown grouping", "/api/v1/dashboards/land?group_by=crop", "GroupBy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockDashboardService)

			w := doRequest(setupRouter(svc, nil), http.MethodGet, tt.path)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, apierrors.ErrValidation, resp.Error.Code)
			assert.Contains(t, resp.Error.Details, tt.field)
			assert.NotEmpty(t, resp.Error.RequestID)
			svc.AssertNotCalled(t, "LandUtilization", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestDashboardHandler_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid filter", fmt.Errorf("%w: harvests has no tiers", services.ErrInvalidFilter), http.StatusBadRequest, apierrors.ErrBadRequest},
		{"source unavailable", fmt.Errorf("%w: harvests: timeout", services.ErrSourceUnavailable), http.StatusBadGateway, apierrors.ErrDataSource},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, apierrors.ErrInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockDashboardService)
			svc.On("HarvestTimeline", mock.Anything, mock.Anything).Return(viewengine.View[models.Harvest]{}, tt.err)

			w := doRequest(setupRouter(svc, nil), http.MethodGet, "/api/v1/dashboards/harvests?tier=high")

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, w).Error.Code)
		})
	}
}

func TestDashboardHandler_Overview(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := new(MockDashboardService)
		svc.On("Overview", mock.Anything).Return(&services.Overview{
			Collections: []services.CollectionSummary{{Collection: datasource.Programs, GroupedBy: services.GroupByCategory}},
		}, nil)

		w := doRequest(setupRouter(svc, nil), http.MethodGet, "/api/v1/dashboards/overview")

		require.Equal(t, http.StatusOK, w.Code)
		var got services.Overview
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Len(t, got.Collections, 1)
		assert.Equal(t, datasource.Programs, got.Collections[0].Collection)
	})

	t.Run("source failure", func(t *testing.T) {
		svc := new(MockDashboardService)
		svc.On("Overview", mock.Anything).Return(nil, services.ErrSourceUnavailable)

		w := doRequest(setupRouter(svc, nil), http.MethodGet, "/api/v1/dashboards/overview")
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestDashboardHandler_Cache(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("CacheStats").Return(map[datasource.Collection]services.CacheStats{
		datasource.LandAllocations: {Hits: 4, Misses: 1},
	})
	svc.On("Invalidate").Return()
	router := setupRouter(svc, nil)

	w := doRequest(router, http.MethodGet, "/api/v1/dashboards/cache")
	require.Equal(t, http.StatusOK, w.Code)
	var stats map[string]services.CacheStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, uint64(4), stats["land-allocations"].Hits)

	w = doRequest(router, http.MethodDelete, "/api/v1/dashboards/cache")
	assert.Equal(t, http.StatusNoContent, w.Code)
	svc.AssertCalled(t, "Invalidate")
}
