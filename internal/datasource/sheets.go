package datasource

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/stwalsh4118/procur/internal/models"
)

// listSuffix marks a header whose cells hold a ';'-separated list.
const listSuffix = "[]"

// RangeReader reads a rectangular range of cell values.
type RangeReader interface {
	ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error)
}

// SheetsConfig configures a Google Sheets backed source.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// SheetsSource reads each collection from the spreadsheet tab of the same
// name. The first row holds field names; every following non-empty row is a
// record.
type SheetsSource struct {
	reader RangeReader
}

// googleSheetsReader implements RangeReader with the official Sheets API.
type googleSheetsReader struct {
	service       *sheetsapi.Service
	spreadsheetID string
}

// NewSheetsSource connects to the Google Sheets API with a service account.
func NewSheetsSource(ctx context.Context, cfg SheetsConfig) (*SheetsSource, error) {
	service, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsPath),
		option.WithScopes(sheetsapi.SpreadsheetsReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return NewSheetsSourceWithReader(&googleSheetsReader{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
	}), nil
}

// NewSheetsSourceWithReader builds a source over any RangeReader.
func NewSheetsSourceWithReader(reader RangeReader) *SheetsSource {
	return &SheetsSource{reader: reader}
}

func (r *googleSheetsReader) ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error) {
	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, sheetRange).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", sheetRange, err)
	}
	return resp.Values, nil
}

// Fetch reads the collection's tab.
func (s *SheetsSource) Fetch(ctx context.Context, collection Collection) ([]models.RawRecord, error) {
	rows, err := s.reader.ReadRange(ctx, fmt.Sprintf("'%s'!A:ZZ", collection))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", collection, err)
	}
	return rowsToRecords(rows), nil
}

// rowsToRecords maps rows onto the header row. Blank header cells and blank
// rows are skipped; short rows leave trailing fields unset.
func rowsToRecords(rows [][]interface{}) []models.RawRecord {
	if len(rows) == 0 {
		return []models.RawRecord{}
	}

	headers := make([]string, len(rows[0]))
	for i, cell := range rows[0] {
		headers[i] = strings.TrimSpace(fmt.Sprint(cell))
	}

	out := make([]models.RawRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(models.RawRecord, len(headers))
		for i, cell := range row {
			if i >= len(headers) || headers[i] == "" {
				continue
			}
			if s, ok := cell.(string); ok && strings.TrimSpace(s) == "" {
				continue
			}
			key := headers[i]
			if name, isList := strings.CutSuffix(key, listSuffix); isList {
				rec[name] = splitList(fmt.Sprint(cell))
				continue
			}
			rec[key] = cell
		}
		if len(rec) > 0 {
			out = append(out, rec)
		}
	}
	return out
}

func splitList(cell string) []any {
	parts := strings.Split(cell, ";")
	out := make([]any, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
