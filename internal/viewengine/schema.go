package viewengine

import "strconv"

// Capacity is the total/utilized pair a record contributes to utilization
// figures. Available is derived and never negative.
type Capacity struct {
	Total    float64
	Utilized float64
}

// Available returns Total - Utilized clamped to zero.
func (c Capacity) Available() float64 {
	return NonNegative(c.Total - c.Utilized)
}

// Rate returns the utilization percentage of this capacity, rounded for display.
func (c Capacity) Rate() float64 {
	return SafePercentage(c.Utilized, c.Total)
}

// Ratio returns the unrounded utilization percentage. Tiers classify on this
// so a rate that only rounds up to a threshold stays below it.
func (c Capacity) Ratio() float64 {
	return Ratio(c.Utilized, c.Total)
}

// Schema describes how the engine reads a record type T. Only Text and Date
// are required for filtering; the rest are optional and enable the matching
// filter or aggregate when set.
//
// Declare a schema once per record type and reuse it; it holds no state.
type Schema[T any] struct {
	// Text returns the free-text fields searched by FilterParams.SearchText.
	Text func(T) []string
	// Categories maps a field name to its accessor for equality filtering.
	Categories map[string]func(T) string
	// Date returns the record's normalized YYYY-MM-DD date.
	Date func(T) string
	// Capacity returns the total/utilized pair for utilization summaries.
	Capacity func(T) Capacity
	// Measures are additional numeric fields summed into Summary.Sums.
	Measures map[string]func(T) float64
	// Tier classifies a record into a discrete bucket.
	Tier func(T) string
}

func (s Schema[T]) category(field string) func(T) string {
	fn, ok := s.Categories[field]
	if !ok || fn == nil {
		panic("viewengine: schema has no categorical field " + strconv.Quote(field))
	}
	return fn
}
