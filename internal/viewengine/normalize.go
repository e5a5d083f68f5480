package viewengine

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayoutLen = len("2006-01-02")

// SafeNumber returns the numeric value of v when it can be coerced to a finite
// float64, and 0 otherwise. Numeric strings and json.Number are parsed.
func SafeNumber(v any) float64 {
	var f float64
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// NonNegative clamps v to zero from below.
func NonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// SafeString returns v as a trimmed string. Numbers are formatted without a
// trailing exponent and timestamps as RFC 3339 in UTC; nil and composite
// values become "".
func SafeString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(s), 'f', -1, 32)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(s)
	case bool:
		return strconv.FormatBool(s)
	case time.Time:
		if s.IsZero() {
			return ""
		}
		return s.UTC().Format(time.RFC3339)
	default:
		return ""
	}
}

// SafeDate returns the YYYY-MM-DD prefix of an ISO 8601 date or timestamp.
// Anything that does not start with a well-formed date becomes "".
func SafeDate(v any) string {
	s := SafeString(v)
	if len(s) < dateLayoutLen {
		return ""
	}
	s = s[:dateLayoutLen]
	for i := 0; i < dateLayoutLen; i++ {
		c := s[i]
		if i == 4 || i == 7 {
			if c != '-' {
				return ""
			}
			continue
		}
		if c < '0' || c > '9' {
			return ""
		}
	}
	return s
}

// clockLayouts are the time-of-day forms SafeTime accepts, tried in order.
var clockLayouts = []string{
	"15:04",
	"15:04:05",
	"15:04:05.999999999",
	"3:04 PM",
	"3:04PM",
	"3:04:05 PM",
	"3:04:05PM",
}

// SafeTime normalizes a time of day to 24-hour "HH:MM". It accepts 24-hour and
// 12-hour clock values, with or without seconds, and the wall-clock portion of
// a full timestamp. Anything else becomes "".
func SafeTime(v any) string {
	s := strings.ToUpper(SafeString(v))
	if len(s) > dateLayoutLen && SafeDate(s) != "" {
		s = s[dateLayoutLen+1:]
		if i := strings.IndexAny(s, "Z+-"); i >= 0 {
			s = s[:i]
		}
	}
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04")
		}
	}
	return ""
}

// SafeArray returns v when it is already a []T. A []any is filtered down to the
// elements that are T. Any other value yields an empty, non-nil slice.
func SafeArray[T any](v any) []T {
	switch arr := v.(type) {
	case []T:
		if arr == nil {
			return []T{}
		}
		return arr
	case []any:
		out := make([]T, 0, len(arr))
		for _, item := range arr {
			if typed, ok := item.(T); ok {
				out = append(out, typed)
			}
		}
		return out
	default:
		return []T{}
	}
}

// SafeStrings is SafeArray for strings, with blank entries dropped.
func SafeStrings(v any) []string {
	raw := SafeArray[string](v)
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Ratio returns numerator/denominator as an unrounded percentage. A
// non-positive denominator or a non-finite ratio yields 0.
func Ratio(numerator, denominator float64) float64 {
	if denominator <= 0 || math.IsNaN(denominator) || math.IsInf(denominator, 0) {
		return 0
	}
	ratio := SafeNumber(numerator) * 100 / denominator
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return 0
	}
	return ratio
}

// SafePercentage is Ratio rounded to one decimal place for display.
// The result may exceed 100 when numerator > denominator.
func SafePercentage(numerator, denominator float64) float64 {
	return decimal.NewFromFloat(Ratio(numerator, denominator)).Round(1).InexactFloat64()
}

// Field returns the first value present in raw under any of the given keys.
// It lets normalizers accept both camelCase and snake_case payloads.
func Field(raw map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := raw[key]; ok && v != nil {
			return v
		}
	}
	return nil
}
