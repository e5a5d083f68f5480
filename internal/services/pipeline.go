package services

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/procur/internal/datasource"
	"github.com/stwalsh4118/procur/internal/models"
	"github.com/stwalsh4118/procur/internal/viewengine"
)

// pipeline turns one raw collection into memoized views. The normalized
// records are cached per source slice, and each grouping caches its last view
// per (records, params), so repeated requests against an unchanged fixture
// set do no work.
//
// Views returned from the cache share their slices with later callers and
// must be treated as read-only.
type pipeline[T any] struct {
	collection datasource.Collection
	normalize  func([]models.RawRecord) []T
	schema     viewengine.Schema[T]
	tiers      *viewengine.TierScale
	groupings  map[string]viewengine.Grouping[T]
	primary    string

	records viewengine.Memo[models.RawRecord, []T]
	views   map[string]*viewengine.Memo[T, viewengine.View[T]]
}

func newPipeline[T any](
	collection datasource.Collection,
	normalize func([]models.RawRecord) []T,
	schema viewengine.Schema[T],
	tiers *viewengine.TierScale,
	primary string,
	groupings map[string]viewengine.Grouping[T],
) *pipeline[T] {
	views := make(map[string]*viewengine.Memo[T, viewengine.View[T]], len(groupings))
	for name := range groupings {
		views[name] = &viewengine.Memo[T, viewengine.View[T]]{}
	}
	return &pipeline[T]{
		collection: collection,
		normalize:  normalize,
		schema:     schema,
		tiers:      tiers,
		groupings:  groupings,
		primary:    primary,
		views:      views,
	}
}

// load fetches and normalizes the collection.
func (p *pipeline[T]) load(ctx context.Context, src datasource.DataSource) ([]T, error) {
	raws, err := src.Fetch(ctx, p.collection)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, p.collection, err)
	}
	return p.records.Get(raws, nil, func() []T { return p.normalize(raws) }), nil
}

// validate rejects params the schema cannot evaluate, so user input never
// reaches the engine's contract checks.
func (p *pipeline[T]) validate(params viewengine.FilterParams) error {
	for field := range params.Categorical {
		if _, ok := p.schema.Categories[field]; !ok {
			return fmt.Errorf("%w: %s cannot be filtered by %q", ErrInvalidFilter, p.collection, field)
		}
	}
	if params.Tier != "" && params.Tier != viewengine.All {
		if p.tiers == nil || p.schema.Tier == nil {
			return fmt.Errorf("%w: %s has no tiers", ErrInvalidFilter, p.collection)
		}
		if !p.tiers.Valid(params.Tier) {
			return fmt.Errorf("%w: unknown tier %q", ErrInvalidFilter, params.Tier)
		}
	}
	r := params.DateRange
	for _, bound := range []string{r.Start, r.End} {
		if bound != "" && viewengine.SafeDate(bound) != bound {
			return fmt.Errorf("%w: date bound %q is not YYYY-MM-DD", ErrInvalidFilter, bound)
		}
	}
	if r.Start != "" && r.End != "" && r.Start > r.End {
		return fmt.Errorf("%w: date range starts after it ends", ErrInvalidFilter)
	}
	return nil
}

// view builds the grouped view for params. An empty grouping name selects the
// primary grouping.
func (p *pipeline[T]) view(ctx context.Context, src datasource.DataSource, params viewengine.FilterParams, grouping string) (viewengine.View[T], error) {
	if grouping == "" {
		grouping = p.primary
	}
	g, ok := p.groupings[grouping]
	if !ok {
		return viewengine.View[T]{}, fmt.Errorf("%w: %s cannot be grouped by %q", ErrInvalidGroupBy, p.collection, grouping)
	}
	if err := p.validate(params); err != nil {
		return viewengine.View[T]{}, err
	}

	recs, err := p.load(ctx, src)
	if err != nil {
		return viewengine.View[T]{}, err
	}

	return p.views[grouping].Get(recs, params, func() viewengine.View[T] {
		return viewengine.BuildView(recs, params, p.schema, g)
	}), nil
}

// summarize reduces the unfiltered collection to its overall and per-group
// summaries under the primary grouping.
func (p *pipeline[T]) summarize(ctx context.Context, src datasource.DataSource) (CollectionSummary, error) {
	v, err := p.view(ctx, src, viewengine.FilterParams{}, p.primary)
	if err != nil {
		return CollectionSummary{}, err
	}

	groups := make([]models.GroupSummary, 0, len(v.Groups))
	for _, g := range v.Groups {
		groups = append(groups, models.GroupSummary{Key: g.Key, Summary: g.Summary})
	}
	return CollectionSummary{
		Collection: p.collection,
		GroupedBy:  p.primary,
		Overall:    v.Overall,
		Groups:     groups,
	}, nil
}

// invalidate drops every cached value.
func (p *pipeline[T]) invalidate() {
	p.records.Invalidate()
	for _, m := range p.views {
		m.Invalidate()
	}
}

// stats sums hit and miss counters over the pipeline's view caches.
func (p *pipeline[T]) stats() (hits, misses uint64) {
	for _, m := range p.views {
		h, mi := m.Stats()
		hits += h
		misses += mi
	}
	return hits, misses
}
