package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/stwalsh4118/procur/internal/datasource"
	"github.com/stwalsh4118/procur/internal/models"
)

// recordsSchema creates the record store. Each row is one raw record; position
// preserves the order the collection was written in.
const recordsSchema = `
	CREATE TABLE IF NOT EXISTS dashboard_records (
		collection TEXT    NOT NULL,
		position   INTEGER NOT NULL,
		payload    JSONB   NOT NULL,
		PRIMARY KEY (collection, position)
	)
`

// DBTX is the subset of pgxpool.Pool the record store needs.
type DBTX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

// RecordRepository stores raw dashboard records as JSONB documents and serves
// them as a datasource.DataSource.
type RecordRepository interface {
	datasource.DataSource
	datasource.Pinger

	// EnsureSchema creates the backing table if it does not exist.
	EnsureSchema(ctx context.Context) error

	// Replace atomically swaps the stored records of a collection.
	Replace(ctx context.Context, collection datasource.Collection, records []models.RawRecord) error
}

type recordRepository struct {
	db DBTX
}

// NewRecordRepository creates a RecordRepository over a pgx pool.
func NewRecordRepository(db DBTX) RecordRepository {
	return &recordRepository{db: db}
}

func (r *recordRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, recordsSchema); err != nil {
		return fmt.Errorf("failed to create dashboard_records: %w", err)
	}
	return nil
}

// Fetch returns the collection's records in stored order. An unknown or empty
// collection yields an empty slice.
func (r *recordRepository) Fetch(ctx context.Context, collection datasource.Collection) ([]models.RawRecord, error) {
	query := `
		SELECT payload
		FROM dashboard_records
		WHERE collection = $1
		ORDER BY position
	`

	rows, err := r.db.Query(ctx, query, string(collection))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s records: %w", collection, err)
	}
	defer rows.Close()

	out := make([]models.RawRecord, 0)
	for rows.Next() {
		var payload map[string]any
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan %s record: %w", collection, err)
		}
		if payload == nil {
			continue
		}
		out = append(out, payload)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s records: %w", collection, err)
	}

	return out, nil
}

func (r *recordRepository) Replace(ctx context.Context, collection datasource.Collection, records []models.RawRecord) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM dashboard_records WHERE collection = $1`, string(collection)); err != nil {
		return fmt.Errorf("failed to clear %s records: %w", collection, err)
	}

	batch := &pgx.Batch{}
	for i, rec := range records {
		batch.Queue(
			`INSERT INTO dashboard_records (collection, position, payload) VALUES ($1, $2, $3)`,
			string(collection), i, rec,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert %s records: %w", collection, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit %s records: %w", collection, err)
	}
	return nil
}

func (r *recordRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
