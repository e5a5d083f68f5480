package viewengine

import (
	"sort"
	"strings"
)

// Unknown is the group key used when a record has no usable key.
const Unknown = "Unknown"

// GroupOrder selects how groups are ordered after grouping.
type GroupOrder int

const (
	// OrderFirstSeen keeps groups in discovery order.
	OrderFirstSeen GroupOrder = iota
	// OrderDateDesc sorts groups by descending key, most recent date first.
	// The Unknown group always sorts last.
	OrderDateDesc
)

// Grouping configures View assembly: the key a record is grouped under, the
// order of the groups and the order of items inside a group.
type Grouping[T any] struct {
	Key   func(T) string
	Order GroupOrder
	// Less orders items within a group. Nil keeps input order. Sorting is
	// stable, so items comparing equal keep their relative input order.
	Less func(a, b T) bool
}

// Group is a keyed bucket of records.
type Group[T any] struct {
	Key   string
	Items []T
}

// GroupKey normalizes a raw key: blank keys become Unknown.
func GroupKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return Unknown
	}
	return key
}

// GroupBy buckets records by keyFn, returning groups in first-seen order with
// items in input order. Every record lands in exactly one group.
func GroupBy[T any](records []T, keyFn func(T) string) []Group[T] {
	if keyFn == nil {
		panic("viewengine: GroupBy requires a key function")
	}

	index := make(map[string]int)
	groups := make([]Group[T], 0)
	for _, r := range records {
		key := GroupKey(keyFn(r))
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group[T]{Key: key})
		}
		groups[i].Items = append(groups[i].Items, r)
	}
	return groups
}

// SortGroups orders groups in place according to order.
func SortGroups[T any](groups []Group[T], order GroupOrder) {
	switch order {
	case OrderDateDesc:
		sort.SliceStable(groups, func(i, j int) bool {
			a, b := groups[i].Key, groups[j].Key
			if a == Unknown || b == Unknown {
				return b == Unknown && a != Unknown
			}
			return a > b
		})
	default:
		// preserve discovery order
	}
}

// SortItems stably orders items in place with less. A nil less is a no-op.
func SortItems[T any](items []T, less func(a, b T) bool) {
	if less == nil {
		return
	}
	sort.SliceStable(items, func(i, j int) bool {
		return less(items[i], items[j])
	})
}

// RegionFromLocation derives a region from a "Town, Region" location string.
// It returns Unknown when the location has no second segment.
func RegionFromLocation(location string) string {
	parts := strings.Split(location, ",")
	if len(parts) < 2 {
		return Unknown
	}
	return GroupKey(parts[1])
}

// ByDate groups records by date, most recent first.
func ByDate[T any](date func(T) string) Grouping[T] {
	return Grouping[T]{Key: date, Order: OrderDateDesc}
}

// ByField groups on a categorical accessor in first-seen order.
func ByField[T any](field func(T) string) Grouping[T] {
	return Grouping[T]{Key: field, Order: OrderFirstSeen}
}
