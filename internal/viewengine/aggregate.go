package viewengine

// Summary holds aggregate statistics over a record collection.
type Summary struct {
	Count           int                `json:"count"`
	Total           float64            `json:"total"`
	Utilized        float64            `json:"utilized"`
	Available       float64            `json:"available"`
	UtilizationRate float64            `json:"utilizationRate"`
	Sums            map[string]float64 `json:"sums,omitempty"`
	Tiers           map[string]int     `json:"tiers,omitempty"`
}

// Aggregate reduces records into a Summary using the schema's capacity,
// measure and tier accessors. The utilization rate is weighted by size:
// SafePercentage(sum utilized, sum total), not the mean of per-record rates.
func Aggregate[T any](records []T, schema Schema[T]) Summary {
	s := Summary{Count: len(records)}

	if len(schema.Measures) > 0 {
		s.Sums = make(map[string]float64, len(schema.Measures))
		for name := range schema.Measures {
			s.Sums[name] = 0
		}
	}
	if schema.Tier != nil {
		s.Tiers = make(map[string]int)
	}

	for _, r := range records {
		if schema.Capacity != nil {
			c := schema.Capacity(r)
			total := NonNegative(SafeNumber(c.Total))
			utilized := NonNegative(SafeNumber(c.Utilized))
			s.Total += total
			s.Utilized += utilized
			s.Available += NonNegative(total - utilized)
		}
		for name, fn := range schema.Measures {
			s.Sums[name] += SafeNumber(fn(r))
		}
		if schema.Tier != nil {
			s.Tiers[schema.Tier(r)]++
		}
	}

	s.UtilizationRate = SafePercentage(s.Utilized, s.Total)
	return s
}

// TierCounts is the tier histogram of records under classify.
func TierCounts[T any](records []T, classify func(T) string) map[string]int {
	counts := make(map[string]int)
	for _, r := range records {
		counts[classify(r)]++
	}
	return counts
}
