package viewengine

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSafeNumber(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  float64
	}{
		{name: "nil", input: nil, want: 0},
		{name: "float64", input: 12.5, want: 12.5},
		{name: "int", input: 42, want: 42},
		{name: "int64", input: int64(-7), want: -7},
		{name: "uint8", input: uint8(3), want: 3},
		{name: "numeric string", input: " 100.25 ", want: 100.25},
		{name: "non-numeric string", input: "twelve", want: 0},
		{name: "empty string", input: "", want: 0},
		{name: "json number", input: json.Number("8.5"), want: 8.5},
		{name: "bad json number", input: json.Number("x"), want: 0},
		{name: "NaN", input: math.NaN(), want: 0},
		{name: "positive infinity", input: math.Inf(1), want: 0},
		{name: "infinite string", input: "Inf", want: 0},
		{name: "bool", input: true, want: 0},
		{name: "slice", input: []any{1, 2}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeNumber(tt.input))
		})
	}
}

func TestSafeArray(t *testing.T) {
	t.Run("typed slice returned as is", func(t *testing.T) {
		in := []string{"maize", "cassava"}
		assert.Equal(t, in, SafeArray[string](in))
	})

	t.Run("any slice keeps matching elements", func(t *testing.T) {
		in := []any{"maize", 3, nil, "yam"}
		assert.Equal(t, []string{"maize", "yam"}, SafeArray[string](in))
	})

	t.Run("non-array becomes empty", func(t *testing.T) {
		for _, in := range []any{nil, "maize", 12, map[string]any{"a": 1}} {
			out := SafeArray[string](in)
			assert.NotNil(t, out)
			assert.Empty(t, out)
		}
	})

	t.Run("nil typed slice becomes empty", func(t *testing.T) {
		var in []string
		out := SafeArray[string](in)
		assert.NotNil(t, out)
		assert.Empty(t, out)
	})
}

func TestSafeStrings_DropsBlanks(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SafeStrings([]any{" a ", "", "  ", "b"}))
}

func TestSafeDate(t *testing.T) {
	assert.Equal(t, "2025-10-10", SafeDate("2025-10-10"))
	assert.Equal(t, "2025-10-10", SafeDate("2025-10-10T14:30:00Z"))
	assert.Equal(t, "", SafeDate("10/10/2025"))
	assert.Equal(t, "", SafeDate("2025-1-1"))
	assert.Equal(t, "", SafeDate(nil))
	assert.Equal(t, "", SafeDate(20251010))
}

func TestSafeTime(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"14:30", "14:30"},
		{"09:05:59", "09:05"},
		{"14:30:59", "14:30"},
		{"9:30", "09:30"},
		{"2:30 PM", "14:30"},
		{"2:30pm", "14:30"},
		{"08:00 AM", "08:00"},
		{"12:15 AM", "00:15"},
		{"12:45 PM", "12:45"},
		{"11:20:05 PM", "23:20"},
		{"2025-10-10T14:30:00Z", "14:30"},
		{"2025-10-10T06:45:00-05:00", "06:45"},
		{"2025-10-10 07:15", "07:15"},
		{"morning", ""},
		{"25:00", ""},
		{"13:30 PM", ""},
		{"9:3", ""},
		{nil, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SafeTime(tt.in), "SafeTime(%v)", tt.in)
	}
}

func TestSafeTime_OrdersAcrossClockFormats(t *testing.T) {
	times := []string{SafeTime("9:30"), SafeTime("2:30 PM"), SafeTime("08:00 AM")}
	assert.Equal(t, []string{"09:30", "14:30", "08:00"}, times)
	assert.Greater(t, times[1], times[0])
	assert.Greater(t, times[0], times[2])
}

func TestSafeString(t *testing.T) {
	assert.Equal(t, "North", SafeString("  North "))
	assert.Equal(t, "12", SafeString(12))
	assert.Equal(t, "12.5", SafeString(12.5))
	assert.Equal(t, "5", SafeString(int8(5)))
	assert.Equal(t, "-300", SafeString(int16(-300)))
	assert.Equal(t, "7", SafeString(uint8(7)))
	assert.Equal(t, "65535", SafeString(uint16(65535)))
	assert.Equal(t, "1.5", SafeString(float32(1.5)))
	assert.Equal(t, "0.1", SafeString(float32(0.1)))
	assert.Equal(t, "", SafeString(nil))
	assert.Equal(t, "", SafeString([]any{"x"}))
	assert.Equal(t, "", SafeString(time.Time{}))

	ts := time.Date(2025, 3, 14, 9, 5, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-14T09:05:00Z", SafeString(ts))
	assert.Equal(t, "2025-03-14", SafeDate(ts))
	assert.Equal(t, "09:05", SafeTime(ts))
}

func TestSafePercentage(t *testing.T) {
	t.Run("zero denominator is always zero", func(t *testing.T) {
		for _, x := range []float64{0, 1, 50, 1e9, -3} {
			assert.Equal(t, 0.0, SafePercentage(x, 0))
		}
	})

	t.Run("negative denominator is zero", func(t *testing.T) {
		assert.Equal(t, 0.0, SafePercentage(10, -5))
	})

	t.Run("rounds to one decimal", func(t *testing.T) {
		assert.Equal(t, 65.7, SafePercentage(230, 350))
		assert.Equal(t, 33.3, SafePercentage(1, 3))
		assert.Equal(t, 66.7, SafePercentage(2, 3))
		assert.Equal(t, 60.0, SafePercentage(180, 300))
	})

	t.Run("within bounds when utilized does not exceed total", func(t *testing.T) {
		for total := 1.0; total <= 200; total += 7 {
			for utilized := 0.0; utilized <= total; utilized += 3 {
				p := SafePercentage(utilized, total)
				assert.GreaterOrEqual(t, p, 0.0)
				assert.LessOrEqual(t, p, 100.0)
			}
		}
	})

	t.Run("exceeds 100 only when over-utilized", func(t *testing.T) {
		assert.Equal(t, 150.0, SafePercentage(150, 100))
		assert.Equal(t, 100.0, SafePercentage(100, 100))
	})

	t.Run("non-finite inputs", func(t *testing.T) {
		assert.Equal(t, 0.0, SafePercentage(math.NaN(), 10))
		assert.Equal(t, 0.0, SafePercentage(10, math.Inf(1)))
		assert.Equal(t, 0.0, SafePercentage(math.MaxFloat64, 1e-300))
	})
}

func TestRatio_Unrounded(t *testing.T) {
	assert.InDelta(t, 79.96, Ratio(7996, 10000), 1e-9)
	assert.Equal(t, 80.0, Ratio(8000, 10000))
	assert.Equal(t, 60.0, Ratio(60, 100))
	assert.Equal(t, 0.0, Ratio(5, 0))
	assert.Equal(t, 80.0, SafePercentage(7996, 10000))
	assert.InDelta(t, 79.96, Capacity{Total: 10000, Utilized: 7996}.Ratio(), 1e-9)
}

func TestCapacity_AvailableNeverNegative(t *testing.T) {
	assert.Equal(t, 20.0, Capacity{Total: 100, Utilized: 80}.Available())
	assert.Equal(t, 0.0, Capacity{Total: 50, Utilized: 80}.Available())
}

func TestField_FirstPresentKey(t *testing.T) {
	raw := map[string]any{"total_acreage": 12, "name": nil}
	assert.Equal(t, 12, Field(raw, "totalAcreage", "total_acreage"))
	assert.Nil(t, Field(raw, "name"))
	assert.Nil(t, Field(raw, "missing"))
}
