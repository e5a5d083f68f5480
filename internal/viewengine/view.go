package viewengine

// GroupView is one rendered group: its key, ordered items and summary.
type GroupView[T any] struct {
	Key     string  `json:"key"`
	Items   []T     `json:"items"`
	Summary Summary `json:"summary"`
}

// View is the structure the presentation layer consumes.
type View[T any] struct {
	Groups       []GroupView[T] `json:"groups"`
	Overall      Summary        `json:"overall"`
	SourceCount  int            `json:"sourceCount"`
	MatchedCount int            `json:"matchedCount"`
}

// BuildView runs the full pipeline: filter, group, order and aggregate.
// It holds no cache and never mutates records; callers that want to avoid
// recomputation wrap it in a Memo.
//
// An empty result is not an error: Groups is an empty slice and Overall is a
// zero-count summary.
func BuildView[T any](records []T, params FilterParams, schema Schema[T], grouping Grouping[T]) View[T] {
	if grouping.Key == nil {
		panic("viewengine: BuildView requires a grouping key")
	}

	filtered := Filter(records, params, schema)

	groups := GroupBy(filtered, grouping.Key)
	SortGroups(groups, grouping.Order)

	views := make([]GroupView[T], 0, len(groups))
	for _, g := range groups {
		SortItems(g.Items, grouping.Less)
		views = append(views, GroupView[T]{
			Key:     g.Key,
			Items:   g.Items,
			Summary: Aggregate(g.Items, schema),
		})
	}

	return View[T]{
		Groups:       views,
		Overall:      Aggregate(filtered, schema),
		SourceCount:  len(records),
		MatchedCount: len(filtered),
	}
}
