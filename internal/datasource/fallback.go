package datasource

import (
	"context"
	"errors"

	"github.com/stwalsh4118/procur/internal/logger"
	"github.com/stwalsh4118/procur/internal/models"
)

// FallbackSource serves the fallback's records whenever the primary source
// fails or returns an empty collection, so dashboards always have sample data
// in development and demo environments.
type FallbackSource struct {
	primary  DataSource
	fallback DataSource
	log      *logger.Logger
}

// NewFallbackSource wraps primary with fallback.
func NewFallbackSource(primary, fallback DataSource, log *logger.Logger) *FallbackSource {
	return &FallbackSource{primary: primary, fallback: fallback, log: log}
}

// Fetch tries the primary source first.
func (s *FallbackSource) Fetch(ctx context.Context, collection Collection) ([]models.RawRecord, error) {
	recs, err := s.primary.Fetch(ctx, collection)
	switch {
	case err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)):
		return nil, err
	case err != nil:
		s.log.Warn("primary source failed, using fallback", map[string]interface{}{
			"collection": collection,
			"error":      err.Error(),
		})
	case len(recs) == 0:
		s.log.Debug("primary source empty, using fallback", map[string]interface{}{
			"collection": collection,
		})
	default:
		return recs, nil
	}
	return s.fallback.Fetch(ctx, collection)
}

// Ping reports the primary source's health when it can be checked.
func (s *FallbackSource) Ping(ctx context.Context) error {
	if p, ok := s.primary.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Reload drops cached records on both sides.
func (s *FallbackSource) Reload() {
	for _, src := range []DataSource{s.primary, s.fallback} {
		if r, ok := src.(Reloader); ok {
			r.Reload()
		}
	}
}
