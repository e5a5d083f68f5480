package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stwalsh4118/procur/internal/datasource"
	"github.com/stwalsh4118/procur/internal/logger"
	"github.com/stwalsh4118/procur/internal/models"
	"github.com/stwalsh4118/procur/internal/repository"
)

// SnapshotService archives collection summaries for trend reporting.
type SnapshotService interface {
	// Capture summarizes and stores the given collections, or every
	// collection when none are given. Collections are captured in order and
	// the first failure stops the run.
	Capture(ctx context.Context, collections ...datasource.Collection) ([]models.ReportSnapshot, error)

	// Recent lists stored snapshots, newest first. An empty collection
	// lists every collection.
	Recent(ctx context.Context, collection string, limit int) ([]models.ReportSnapshot, error)
}

type snapshotService struct {
	dashboards DashboardService
	repo       repository.SnapshotRepository
	log        *logger.Logger
	now        func() time.Time
}

// NewSnapshotService creates a new instance of SnapshotService.
func NewSnapshotService(dashboards DashboardService, repo repository.SnapshotRepository, log *logger.Logger) SnapshotService {
	return &snapshotService{
		dashboards: dashboards,
		repo:       repo,
		log:        log,
		now:        time.Now,
	}
}

func (s *snapshotService) Capture(ctx context.Context, collections ...datasource.Collection) ([]models.ReportSnapshot, error) {
	if len(collections) == 0 {
		collections = datasource.Collections
	}

	takenAt := s.now().UTC()
	snapshots := make([]models.ReportSnapshot, 0, len(collections))

	for _, c := range collections {
		summary, err := s.dashboards.Summarize(ctx, c)
		if err != nil {
			s.log.Error("Failed to summarize collection for snapshot", err, map[string]interface{}{
				"collection": c,
			})
			return nil, fmt.Errorf("failed to summarize %s: %w", c, err)
		}

		snapshot := models.ReportSnapshot{
			ID:         uuid.NewString(),
			Collection: string(c),
			TakenAt:    takenAt,
			Overall:    summary.Overall,
			Groups:     summary.Groups,
		}
		if err := s.repo.Save(ctx, snapshot); err != nil {
			s.log.Error("Failed to save snapshot", err, map[string]interface{}{
				"collection": c,
			})
			return nil, fmt.Errorf("failed to save %s snapshot: %w", c, err)
		}
		snapshots = append(snapshots, snapshot)
	}

	s.log.Info("Report snapshots captured", map[string]interface{}{
		"count":    len(snapshots),
		"taken_at": takenAt,
	})
	return snapshots, nil
}

func (s *snapshotService) Recent(ctx context.Context, collection string, limit int) ([]models.ReportSnapshot, error) {
	if collection != "" {
		if _, err := datasource.ParseCollection(collection); err != nil {
			return nil, err
		}
	}

	snapshots, err := s.repo.Recent(ctx, collection, limit)
	if err != nil {
		s.log.Error("Failed to list snapshots", err, map[string]interface{}{
			"collection": collection,
			"limit":      limit,
		})
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	if snapshots == nil {
		snapshots = []models.ReportSnapshot{}
	}
	return snapshots, nil
}
