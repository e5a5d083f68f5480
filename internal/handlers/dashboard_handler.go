package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/stwalsh4118/procur/internal/datasource"
	apierrors "github.com/stwalsh4118/procur/internal/errors"
	"github.com/stwalsh4118/procur/internal/middleware"
	"github.com/stwalsh4118/procur/internal/services"
	"github.com/stwalsh4118/procur/internal/viewengine"
)

// DashboardHandler serves the dashboard view models.
type DashboardHandler struct {
	service services.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler instance.
func NewDashboardHandler(service services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		service: service,
	}
}

// ViewQuery holds the filter query parameters shared by every dashboard.
// Categorical values are matched exactly; "all" or an empty value means no
// constraint.
type ViewQuery struct {
	Search   string `form:"search" binding:"omitempty,max=200"`
	Status   string `form:"status"`
	Region   string `form:"region"`
	Crop     string `form:"crop"`
	Category string `form:"category"`
	Tier     string `form:"tier" binding:"omitempty,oneof=high medium low compliant warning alert all"`
	From     string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To       string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

// LandQuery adds the grouping selector to the land dashboard.
type LandQuery struct {
	ViewQuery
	GroupBy string `form:"group_by" binding:"omitempty,oneof=region date"`
}

// params converts the query into engine filter params, keeping only the
// categorical fields the dashboard supports.
func (q ViewQuery) params(fields ...string) viewengine.FilterParams {
	values := map[string]string{
		"status":   q.Status,
		"region":   q.Region,
		"crop":     q.Crop,
		"category": q.Category,
	}

	categorical := make(map[string]string, len(fields))
	for _, f := range fields {
		if v := values[f]; v != "" {
			categorical[f] = v
		}
	}

	return viewengine.FilterParams{
		SearchText:  q.Search,
		Categorical: categorical,
		DateRange:   viewengine.DateRange{Start: q.From, End: q.To},
		Tier:        q.Tier,
	}
}

// bindQuery binds and validates query parameters into dst, writing the error
// response itself when binding fails.
func bindQuery(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			apierrors.ValidationError(c, validationErrors)
			return false
		}
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return false
	}
	return true
}

// writeServiceError maps service errors onto the API error envelope.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidFilter),
		errors.Is(err, services.ErrInvalidGroupBy),
		errors.Is(err, datasource.ErrUnknownCollection):
		apierrors.BadRequest(c, err.Error(), nil)
	case errors.Is(err, services.ErrSourceUnavailable):
		apierrors.SourceUnavailable(c, "Dashboard data is unavailable", err)
	default:
		apierrors.InternalServerError(c, "Failed to build dashboard", err)
	}
}

func logQuery(c *gin.Context, dashboard string, q ViewQuery) {
	if log := middleware.GetLogger(c); log != nil {
		log.Debug("Processing dashboard request", map[string]interface{}{
			"dashboard": dashboard,
			"search":    q.Search,
			"tier":      q.Tier,
			"from":      q.From,
			"to":        q.To,
		})
	}
}

// Harvests handles GET /api/v1/dashboards/harvests.
// Harvests are grouped by day, most recent first.
func (h *DashboardHandler) Harvests(c *gin.Context) {
	var q ViewQuery
	if !bindQuery(c, &q) {
		return
	}
	logQuery(c, "harvests", q)

	view, err := h.service.HarvestTimeline(c.Request.Context(), q.params("status", "region", "crop"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Land handles GET /api/v1/dashboards/land.
// Allocations are grouped by region unless group_by=date is given.
func (h *DashboardHandler) Land(c *gin.Context) {
	var q LandQuery
	if !bindQuery(c, &q) {
		return
	}
	logQuery(c, "land", q.ViewQuery)

	view, err := h.service.LandUtilization(c.Request.Context(), q.params("region", "status"), q.GroupBy)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Compliance handles GET /api/v1/dashboards/compliance.
func (h *DashboardHandler) Compliance(c *gin.Context) {
	var q ViewQuery
	if !bindQuery(c, &q) {
		return
	}
	logQuery(c, "compliance", q)

	view, err := h.service.Compliance(c.Request.Context(), q.params("status", "region", "category"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Programs handles GET /api/v1/dashboards/programs.
func (h *DashboardHandler) Programs(c *gin.Context) {
	var q ViewQuery
	if !bindQuery(c, &q) {
		return
	}
	logQuery(c, "programs", q)

	view, err := h.service.Programs(c.Request.Context(), q.params("category", "status", "region"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Overview handles GET /api/v1/dashboards/overview.
func (h *DashboardHandler) Overview(c *gin.Context) {
	overview, err := h.service.Overview(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

// CacheStats handles GET /api/v1/dashboards/cache.
func (h *DashboardHandler) CacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.CacheStats())
}

// InvalidateCache handles DELETE /api/v1/dashboards/cache. The next request
// for each dashboard refetches from the data source.
func (h *DashboardHandler) InvalidateCache(c *gin.Context) {
	h.service.Invalidate()
	c.Status(http.StatusNoContent)
}
