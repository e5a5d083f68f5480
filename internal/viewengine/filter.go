package viewengine

import (
	"strings"
)

// All is the sentinel value meaning "no constraint" for categorical and tier
// filters.
const All = "all"

// DateRange bounds a record's ISO date inclusively. An empty bound imposes no
// constraint on that side.
type DateRange struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// IsZero reports whether neither bound is set.
func (r DateRange) IsZero() bool {
	return r.Start == "" && r.End == ""
}

// Contains reports whether date lies within the range. ISO 8601 dates sort
// lexicographically, so plain string comparison is sufficient.
func (r DateRange) Contains(date string) bool {
	if r.Start != "" && (date == "" || date < r.Start) {
		return false
	}
	if r.End != "" && (date == "" || date > r.End) {
		return false
	}
	return true
}

// FilterParams is the caller-owned filter state passed into every engine call.
type FilterParams struct {
	SearchText  string            `json:"searchText,omitempty"`
	Categorical map[string]string `json:"categorical,omitempty"`
	DateRange   DateRange         `json:"dateRange"`
	Tier        string            `json:"tier,omitempty"`
}

// IsEmpty reports whether the params constrain nothing.
func (p FilterParams) IsEmpty() bool {
	if strings.TrimSpace(p.SearchText) != "" || !p.DateRange.IsZero() || active(p.Tier) {
		return false
	}
	for _, v := range p.Categorical {
		if active(v) {
			return false
		}
	}
	return true
}

func active(v string) bool {
	return v != "" && v != All
}

// compiledFilter is FilterParams resolved against a schema once per call.
type compiledFilter[T any] struct {
	search     string
	text       func(T) []string
	categories []categoryConstraint[T]
	dateRange  DateRange
	date       func(T) string
	tier       string
	tierFn     func(T) string
}

type categoryConstraint[T any] struct {
	field string
	value string
	get   func(T) string
}

func compile[T any](params FilterParams, schema Schema[T]) compiledFilter[T] {
	cf := compiledFilter[T]{
		search:    strings.ToLower(strings.TrimSpace(params.SearchText)),
		dateRange: params.DateRange,
	}

	if cf.search != "" {
		if schema.Text == nil {
			panic("viewengine: search requested but schema has no Text accessor")
		}
		cf.text = schema.Text
	}

	for field, value := range params.Categorical {
		if !active(value) {
			continue
		}
		cf.categories = append(cf.categories, categoryConstraint[T]{
			field: field,
			value: value,
			get:   schema.category(field),
		})
	}

	if !cf.dateRange.IsZero() {
		if schema.Date == nil {
			panic("viewengine: date range requested but schema has no Date accessor")
		}
		cf.date = schema.Date
	}

	if active(params.Tier) {
		if schema.Tier == nil {
			panic("viewengine: tier filter requested but schema has no Tier accessor")
		}
		cf.tier = params.Tier
		cf.tierFn = schema.Tier
	}

	return cf
}

func (cf compiledFilter[T]) match(r T) bool {
	if cf.search != "" {
		haystack := strings.ToLower(strings.Join(cf.text(r), " "))
		if !strings.Contains(haystack, cf.search) {
			return false
		}
	}
	for _, c := range cf.categories {
		if c.get(r) != c.value {
			return false
		}
	}
	if cf.date != nil && !cf.dateRange.Contains(cf.date(r)) {
		return false
	}
	if cf.tierFn != nil && cf.tierFn(r) != cf.tier {
		return false
	}
	return true
}

// Filter returns a new slice holding the records that satisfy every constraint
// in params. The input slice and its elements are never modified.
//
// Filtering on a categorical field the schema does not declare is a
// programming error and panics.
func Filter[T any](records []T, params FilterParams, schema Schema[T]) []T {
	cf := compile(params, schema)

	out := make([]T, 0, len(records))
	for _, r := range records {
		if cf.match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Match reports whether a single record satisfies params.
func Match[T any](record T, params FilterParams, schema Schema[T]) bool {
	return compile(params, schema).match(record)
}
