package models

import (
	"strings"

	"github.com/stwalsh4118/procur/internal/viewengine"
)

// RawRecord is an undecoded record as delivered by a data source: a decoded
// JSON object, a YAML mapping or a spreadsheet row keyed by header.
type RawRecord = map[string]any

// normalizeAll applies fn to every raw record. The result is never nil.
func normalizeAll[T any](raws []RawRecord, fn func(RawRecord) T) []T {
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		out = append(out, fn(raw))
	}
	return out
}

// enum lower-cases v and returns it when it is one of allowed, else fallback.
func enum(v any, fallback string, allowed ...string) string {
	s := strings.ToLower(viewengine.SafeString(v))
	s = strings.ReplaceAll(strings.ReplaceAll(s, " ", "_"), "-", "_")
	for _, a := range allowed {
		if s == a {
			return s
		}
	}
	return fallback
}

// region prefers an explicit region field and falls back to the second
// segment of the location string.
func region(raw RawRecord, location string) string {
	if r := viewengine.SafeString(viewengine.Field(raw, "region", "parish")); r != "" {
		return r
	}
	return viewengine.RegionFromLocation(location)
}

func text(raw RawRecord, keys ...string) string {
	return viewengine.SafeString(viewengine.Field(raw, keys...))
}

func number(raw RawRecord, keys ...string) float64 {
	return viewengine.NonNegative(viewengine.SafeNumber(viewengine.Field(raw, keys...)))
}
