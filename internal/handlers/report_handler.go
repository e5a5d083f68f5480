package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/stwalsh4118/procur/internal/datasource"
	apierrors "github.com/stwalsh4118/procur/internal/errors"
	"github.com/stwalsh4118/procur/internal/middleware"
	"github.com/stwalsh4118/procur/internal/models"
	"github.com/stwalsh4118/procur/internal/services"
)

// DefaultSnapshotLimit is used when the list request gives no limit.
const DefaultSnapshotLimit = 20

// ReportHandler lists and captures report snapshots. A nil service means the
// snapshot archive is not configured and every request gets a 503.
type ReportHandler struct {
	service services.SnapshotService
}

// NewReportHandler creates a new ReportHandler instance.
func NewReportHandler(service services.SnapshotService) *ReportHandler {
	return &ReportHandler{
		service: service,
	}
}

// SnapshotQuery represents the query parameters for listing snapshots.
type SnapshotQuery struct {
	Collection string `form:"collection" binding:"omitempty,oneof=harvests land-allocations compliance programs"`
	Limit      int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

// CaptureRequest is the optional body of a capture request. No collections
// captures all of them.
type CaptureRequest struct {
	Collections []string `json:"collections" binding:"omitempty,dive,oneof=harvests land-allocations compliance programs"`
}

// SnapshotsResponse wraps a list of snapshots.
type SnapshotsResponse struct {
	Snapshots []models.ReportSnapshot `json:"snapshots"`
	Count     int                     `json:"count"`
}

func (h *ReportHandler) available(c *gin.Context) bool {
	if h.service == nil {
		apierrors.ServiceUnavailable(c, "Report snapshots are not enabled")
		return false
	}
	return true
}

// List handles GET /api/v1/reports/snapshots.
func (h *ReportHandler) List(c *gin.Context) {
	if !h.available(c) {
		return
	}

	var q SnapshotQuery
	if !bindQuery(c, &q) {
		return
	}
	if q.Limit == 0 {
		q.Limit = DefaultSnapshotLimit
	}

	snapshots, err := h.service.Recent(c.Request.Context(), q.Collection, q.Limit)
	if err != nil {
		if errors.Is(err, datasource.ErrUnknownCollection) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		apierrors.InternalServerError(c, "Failed to list report snapshots", err)
		return
	}

	c.JSON(http.StatusOK, SnapshotsResponse{Snapshots: snapshots, Count: len(snapshots)})
}

// Capture handles POST /api/v1/reports/snapshots.
func (h *ReportHandler) Capture(c *gin.Context) {
	if !h.available(c) {
		return
	}

	var req CaptureRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			var validationErrors validator.ValidationErrors
			if errors.As(err, &validationErrors) {
				apierrors.ValidationError(c, validationErrors)
				return
			}
			apierrors.BadRequest(c, "Invalid request body", nil)
			return
		}
	}

	collections := make([]datasource.Collection, 0, len(req.Collections))
	for _, name := range req.Collections {
		col, err := datasource.ParseCollection(name)
		if err != nil {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		collections = append(collections, col)
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Info("Capturing report snapshots", map[string]interface{}{
			"collections": req.Collections,
		})
	}

	snapshots, err := h.service.Capture(c.Request.Context(), collections...)
	if err != nil {
		if errors.Is(err, services.ErrSourceUnavailable) {
			apierrors.SourceUnavailable(c, "Dashboard data is unavailable", err)
			return
		}
		apierrors.InternalServerError(c, "Failed to capture report snapshots", err)
		return
	}

	c.JSON(http.StatusCreated, SnapshotsResponse{Snapshots: snapshots, Count: len(snapshots)})
}
