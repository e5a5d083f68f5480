package datasource

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/stwalsh4118/procur/internal/models"
)

//go:embed fixtures/*.yaml
var embeddedFixtures embed.FS

// FixtureSource serves collections from YAML files named <collection>.yaml.
// Each file is parsed once; later fetches return the same slice so that
// memoized views stay warm.
type FixtureSource struct {
	fsys fs.FS

	mu    sync.Mutex
	cache map[Collection][]models.RawRecord
}

// NewFixtureSource reads fixtures from dir, or from the embedded sample set
// when dir is empty.
func NewFixtureSource(dir string) (*FixtureSource, error) {
	if dir == "" {
		sub, err := fs.Sub(embeddedFixtures, "fixtures")
		if err != nil {
			return nil, fmt.Errorf("failed to open embedded fixtures: %w", err)
		}
		return NewFixtureSourceFS(sub), nil
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open fixtures dir %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("fixtures path %s is not a directory", dir)
	}
	return NewFixtureSourceFS(os.DirFS(dir)), nil
}

// NewFixtureSourceFS serves fixtures from an arbitrary file system.
func NewFixtureSourceFS(fsys fs.FS) *FixtureSource {
	return &FixtureSource{
		fsys:  fsys,
		cache: make(map[Collection][]models.RawRecord),
	}
}

// Fetch returns the records of collection. A missing fixture file yields an
// empty collection.
func (s *FixtureSource) Fetch(ctx context.Context, collection Collection) ([]models.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if cached, ok := s.cache[collection]; ok {
		return cached, nil
	}

	recs, err := s.load(collection)
	if err != nil {
		return nil, err
	}
	s.cache[collection] = recs
	return recs, nil
}

func (s *FixtureSource) load(collection Collection) ([]models.RawRecord, error) {
	data, err := fs.ReadFile(s.fsys, string(collection)+".yaml")
	if errors.Is(err, fs.ErrNotExist) {
		return []models.RawRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture %s: %w", collection, err)
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse fixture %s: %w", collection, err)
	}

	recs, err := records(doc)
	if err != nil {
		return nil, fmt.Errorf("fixture %s: %w", collection, err)
	}
	return recs, nil
}

// Reload drops every cached collection so the next fetch rereads the files.
func (s *FixtureSource) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[Collection][]models.RawRecord)
}
