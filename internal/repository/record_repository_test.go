package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stwalsh4118/procur/internal/datasource"
)

// fakeRows replays payloads through the pgx.Rows interface.
type fakeRows struct {
	payloads []map[string]any
	idx      int
	scanErr  error
	iterErr  error
	closed   bool
}

func (r *fakeRows) Close()                                       { r.closed = true }
func (r *fakeRows) Err() error                                   { return r.iterErr }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.idx >= len(r.payloads) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	*(dest[0].(*map[string]any)) = r.payloads[r.idx-1]
	return nil
}

type fakeDB struct {
	rows     *fakeRows
	queryErr error
	lastArgs []any
	execSQL  []string
	pingErr  error
}

func (db *fakeDB) Query(_ context.Context, _ string, args ...any) (pgx.Rows, error) {
	db.lastArgs = args
	if db.queryErr != nil {
		return nil, db.queryErr
	}
	return db.rows, nil
}

func (db *fakeDB) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	db.execSQL = append(db.execSQL, sql)
	return pgconn.CommandTag{}, nil
}

func (db *fakeDB) Begin(context.Context) (pgx.Tx, error) {
	return nil, errors.New("transactions not supported by fake")
}

func (db *fakeDB) Ping(context.Context) error { return db.pingErr }

func TestRecordRepository_Fetch(t *testing.T) {
	rows := &fakeRows{payloads: []map[string]any{
		{"id": "la-1", "totalAcreage": 10.0},
		nil,
		{"id": "la-2"},
	}}
	db := &fakeDB{rows: rows}
	repo := NewRecordRepository(db)

	recs, err := repo.Fetch(context.Background(), datasource.LandAllocations)
	require.NoError(t, err)

	assert.Equal(t, []any{"land-allocations"}, db.lastArgs)
	require.Len(t, recs, 2)
	assert.Equal(t, "la-1", recs[0]["id"])
	assert.Equal(t, "la-2", recs[1]["id"])
	assert.True(t, rows.closed)
}

func TestRecordRepository_FetchEmpty(t *testing.T) {
	repo := NewRecordRepository(&fakeDB{rows: &fakeRows{}})

	recs, err := repo.Fetch(context.Background(), datasource.Programs)
	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestRecordRepository_FetchErrors(t *testing.T) {
	tests := []struct {
		name string
		db   *fakeDB
	}{
		{"query fails", &fakeDB{queryErr: errors.New("connection reset")}},
		{"scan fails", &fakeDB{rows: &fakeRows{payloads: []map[string]any{{}}, scanErr: errors.New("bad json")}}},
		{"iteration fails", &fakeDB{rows: &fakeRows{iterErr: errors.New("timeout")}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRecordRepository(tt.db).Fetch(context.Background(), datasource.Harvests)
			assert.Error(t, err)
		})
	}
}

func TestRecordRepository_EnsureSchemaAndPing(t *testing.T) {
	db := &fakeDB{pingErr: errors.New("down")}
	repo := NewRecordRepository(db)

	require.NoError(t, repo.EnsureSchema(context.Background()))
	require.Len(t, db.execSQL, 1)
	assert.Contains(t, db.execSQL[0], "CREATE TABLE IF NOT EXISTS dashboard_records")

	assert.EqualError(t, repo.Ping(context.Background()), "down")
}

func TestRecordRepository_ReplaceBeginFails(t *testing.T) {
	err := NewRecordRepository(&fakeDB{}).Replace(context.Background(), datasource.Harvests, nil)
	assert.Error(t, err)
}
