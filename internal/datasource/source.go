// Package datasource loads raw dashboard collections from the configured
// backend: embedded YAML fixtures, the Procur REST API, a Postgres record
// store or a Google spreadsheet.
package datasource

import (
	"context"
	"errors"
	"fmt"

	"github.com/stwalsh4118/procur/internal/models"
)

// Collection names a record collection.
type Collection string

// Known collections.
const (
	Harvests        Collection = "harvests"
	LandAllocations Collection = "land-allocations"
	Compliance      Collection = "compliance"
	Programs        Collection = "programs"
)

// Collections lists every known collection in display order.
var Collections = []Collection{Harvests, LandAllocations, Compliance, Programs}

var (
	// ErrMalformedCollection is returned when a payload is not a list of objects.
	ErrMalformedCollection = errors.New("collection payload is not a list of records")

	// ErrUnknownCollection is returned for a collection name that is not known.
	ErrUnknownCollection = errors.New("unknown collection")
)

// DataSource fetches the raw records of a collection. Implementations must
// return a non-nil slice on success and never mutate it afterwards. Callers
// treat the slice as read-only, since a caching source hands the same slice
// to every caller.
type DataSource interface {
	Fetch(ctx context.Context, collection Collection) ([]models.RawRecord, error)
}

// Pinger is implemented by sources that can report their own health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Reloader is implemented by sources that cache records in process.
type Reloader interface {
	Reload()
}

// ParseCollection validates a collection name.
func ParseCollection(name string) (Collection, error) {
	for _, c := range Collections {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCollection, name)
}

// records converts a decoded list into raw records. Non-object elements are
// dropped; a value that is not a list at all is malformed.
func records(v any) ([]models.RawRecord, error) {
	switch list := v.(type) {
	case nil:
		return []models.RawRecord{}, nil
	case []models.RawRecord:
		return list, nil
	case []any:
		out := make([]models.RawRecord, 0, len(list))
		for _, item := range list {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out, nil
	default:
		return nil, ErrMalformedCollection
	}
}
