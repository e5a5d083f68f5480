package services

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stwalsh4118/procur/internal/datasource"
	"github.com/stwalsh4118/procur/internal/logger"
	"github.com/stwalsh4118/procur/internal/models"
	"github.com/stwalsh4118/procur/internal/viewengine"
)

// Groupings accepted by the dashboards.
const (
	GroupByDate     = "date"
	GroupByRegion   = "region"
	GroupByCategory = "category"
)

// Service-level errors
var (
	ErrInvalidFilter     = errors.New("invalid filter")
	ErrInvalidGroupBy    = errors.New("invalid group_by")
	ErrSourceUnavailable = errors.New("data source unavailable")
)

// CollectionSummary is the headline of one collection: its overall summary and
// the summary of each group under the collection's primary grouping.
type CollectionSummary struct {
	Collection datasource.Collection `json:"collection"`
	GroupedBy  string                `json:"groupedBy"`
	Overall    viewengine.Summary    `json:"overall"`
	Groups     []models.GroupSummary `json:"groups"`
}

// Overview is the landing-page rollup across every collection.
type Overview struct {
	GeneratedAt time.Time           `json:"generatedAt"`
	Collections []CollectionSummary `json:"collections"`
}

// CacheStats reports view cache effectiveness per collection.
type CacheStats struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
}

// DashboardService builds the dashboard view models.
type DashboardService interface {
	// HarvestTimeline groups harvests by day, most recent first.
	HarvestTimeline(ctx context.Context, params viewengine.FilterParams) (viewengine.View[models.Harvest], error)

	// LandUtilization groups land allocations by region (default) or by date.
	// Returns ErrInvalidGroupBy for any other grouping.
	LandUtilization(ctx context.Context, params viewengine.FilterParams, groupBy string) (viewengine.View[models.LandAllocation], error)

	// Compliance groups compliance entries by region.
	Compliance(ctx context.Context, params viewengine.FilterParams) (viewengine.View[models.ComplianceEntry], error)

	// Programs groups agency programs by category.
	Programs(ctx context.Context, params viewengine.FilterParams) (viewengine.View[models.Program], error)

	// Summarize returns the unfiltered summary of one collection.
	Summarize(ctx context.Context, collection datasource.Collection) (CollectionSummary, error)

	// Overview summarizes every collection concurrently. Any failing
	// collection fails the whole overview.
	Overview(ctx context.Context) (*Overview, error)

	// Invalidate drops every cached view, and any records the source caches,
	// forcing the next request to rebuild.
	Invalidate()

	// CacheStats returns view cache counters keyed by collection.
	CacheStats() map[datasource.Collection]CacheStats
}

type dashboardService struct {
	src datasource.DataSource
	log *logger.Logger

	harvests   *pipeline[models.Harvest]
	land       *pipeline[models.LandAllocation]
	compliance *pipeline[models.ComplianceEntry]
	programs   *pipeline[models.Program]
}

// NewDashboardService creates a new instance of DashboardService.
func NewDashboardService(src datasource.DataSource, log *logger.Logger) DashboardService {
	return &dashboardService{
		src: src,
		log: log,
		harvests: newPipeline(datasource.Harvests, models.NormalizeHarvests, models.HarvestSchema,
			nil, GroupByDate,
			map[string]viewengine.Grouping[models.Harvest]{GroupByDate: models.HarvestTimeline}),
		land: newPipeline(datasource.LandAllocations, models.NormalizeLandAllocations, models.LandSchema,
			&models.LandUtilizationTiers, GroupByRegion,
			map[string]viewengine.Grouping[models.LandAllocation]{
				GroupByRegion: models.LandByRegion,
				GroupByDate:   models.LandByDate,
			}),
		compliance: newPipeline(datasource.Compliance, models.NormalizeComplianceEntries, models.ComplianceSchema,
			&models.ComplianceScoreTiers, GroupByRegion,
			map[string]viewengine.Grouping[models.ComplianceEntry]{GroupByRegion: models.ComplianceByRegion}),
		programs: newPipeline(datasource.Programs, models.NormalizePrograms, models.ProgramSchema,
			&models.ProgramBudgetTiers, GroupByCategory,
			map[string]viewengine.Grouping[models.Program]{GroupByCategory: models.ProgramsByCategory}),
	}
}

func (s *dashboardService) HarvestTimeline(ctx context.Context, params viewengine.FilterParams) (viewengine.View[models.Harvest], error) {
	v, err := s.harvests.view(ctx, s.src, params, GroupByDate)
	s.logView(datasource.Harvests, params, GroupByDate, v.MatchedCount, v.SourceCount, len(v.Groups), err)
	return v, err
}

func (s *dashboardService) LandUtilization(ctx context.Context, params viewengine.FilterParams, groupBy string) (viewengine.View[models.LandAllocation], error) {
	if groupBy == "" {
		groupBy = GroupByRegion
	}
	v, err := s.land.view(ctx, s.src, params, groupBy)
	s.logView(datasource.LandAllocations, params, groupBy, v.MatchedCount, v.SourceCount, len(v.Groups), err)
	return v, err
}

func (s *dashboardService) Compliance(ctx context.Context, params viewengine.FilterParams) (viewengine.View[models.ComplianceEntry], error) {
	v, err := s.compliance.view(ctx, s.src, params, GroupByRegion)
	s.logView(datasource.Compliance, params, GroupByRegion, v.MatchedCount, v.SourceCount, len(v.Groups), err)
	return v, err
}

func (s *dashboardService) Programs(ctx context.Context, params viewengine.FilterParams) (viewengine.View[models.Program], error) {
	v, err := s.programs.view(ctx, s.src, params, GroupByCategory)
	s.logView(datasource.Programs, params, GroupByCategory, v.MatchedCount, v.SourceCount, len(v.Groups), err)
	return v, err
}

func (s *dashboardService) Summarize(ctx context.Context, collection datasource.Collection) (CollectionSummary, error) {
	switch collection {
	case datasource.Harvests:
		return s.harvests.summarize(ctx, s.src)
	case datasource.LandAllocations:
		return s.land.summarize(ctx, s.src)
	case datasource.Compliance:
		return s.compliance.summarize(ctx, s.src)
	case datasource.Programs:
		return s.programs.summarize(ctx, s.src)
	default:
		return CollectionSummary{}, datasource.ErrUnknownCollection
	}
}

func (s *dashboardService) Overview(ctx context.Context) (*Overview, error) {
	summaries := make([]CollectionSummary, len(datasource.Collections))

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range datasource.Collections {
		g.Go(func() error {
			summary, err := s.Summarize(gctx, c)
			if err != nil {
				return err
			}
			summaries[i] = summary
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.log.Error("Failed to build overview", err, nil)
		return nil, err
	}

	s.log.Info("Overview built", map[string]interface{}{
		"collections": len(summaries),
	})

	return &Overview{
		GeneratedAt: time.Now().UTC(),
		Collections: summaries,
	}, nil
}

func (s *dashboardService) Invalidate() {
	s.harvests.invalidate()
	s.land.invalidate()
	s.compliance.invalidate()
	s.programs.invalidate()
	if r, ok := s.src.(datasource.Reloader); ok {
		r.Reload()
	}
	s.log.Info("Dashboard caches invalidated", nil)
}

func (s *dashboardService) CacheStats() map[datasource.Collection]CacheStats {
	out := make(map[datasource.Collection]CacheStats, 4)
	add := func(c datasource.Collection, hits, misses uint64) {
		out[c] = CacheStats{Hits: hits, Misses: misses}
	}
	h, m := s.harvests.stats()
	add(datasource.Harvests, h, m)
	h, m = s.land.stats()
	add(datasource.LandAllocations, h, m)
	h, m = s.compliance.stats()
	add(datasource.Compliance, h, m)
	h, m = s.programs.stats()
	add(datasource.Programs, h, m)
	return out
}

func (s *dashboardService) logView(collection datasource.Collection, params viewengine.FilterParams, groupBy string, matched, total, groups int, err error) {
	fields := map[string]interface{}{
		"collection": collection,
		"group_by":   groupBy,
		"search":     params.SearchText,
		"filters":    params.Categorical,
		"tier":       params.Tier,
	}
	if err != nil {
		if errors.Is(err, ErrInvalidFilter) || errors.Is(err, ErrInvalidGroupBy) {
			s.log.Warn("Rejected dashboard query", withErr(fields, err))
			return
		}
		s.log.Error("Failed to build dashboard view", err, fields)
		return
	}

	fields["matched"] = matched
	fields["total"] = total
	fields["groups"] = groups
	s.log.Debug("Dashboard view built", fields)
}

func withErr(fields map[string]interface{}, err error) map[string]interface{} {
	fields["error"] = err.Error()
	return fields
}
