package viewengine

// Tier labels shared by the utilization scales.
const (
	TierHigh   = "high"
	TierMedium = "medium"
	TierLow    = "low"
)

// TierScale buckets a continuous metric into three discrete tiers:
// value >= Upper is Labels[0], Lower <= value < Upper is Labels[1], and
// anything below Lower is Labels[2].
type TierScale struct {
	Upper  float64
	Lower  float64
	Labels [3]string
}

// Classify returns the tier label for value.
func (s TierScale) Classify(value float64) string {
	switch {
	case value >= s.Upper:
		return s.Labels[0]
	case value >= s.Lower:
		return s.Labels[1]
	default:
		return s.Labels[2]
	}
}

// Valid reports whether label is one of the scale's tiers.
func (s TierScale) Valid(label string) bool {
	for _, l := range s.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// UtilizationScale returns a high/medium/low scale with the given thresholds.
func UtilizationScale(upper, lower float64) TierScale {
	return TierScale{
		Upper:  upper,
		Lower:  lower,
		Labels: [3]string{TierHigh, TierMedium, TierLow},
	}
}
