package viewengine

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// plot is a minimal land-allocation-like record used across the engine tests.
type plot struct {
	ID       string
	Name     string
	Date     string
	Time     string
	Region   string
	Status   string
	Total    float64
	Utilized float64
	Crops    []string
}

var landTiers = UtilizationScale(80, 60)

var plotSchema = Schema[plot]{
	Text: func(p plot) []string { return []string{p.Name, p.Region} },
	Categories: map[string]func(plot) string{
		"region": func(p plot) string { return p.Region },
		"status": func(p plot) string { return p.Status },
	},
	Date:     func(p plot) string { return p.Date },
	Capacity: func(p plot) Capacity { return Capacity{Total: p.Total, Utilized: p.Utilized} },
	Measures: map[string]func(plot) float64{
		"crops": func(p plot) float64 { return float64(len(p.Crops)) },
	},
	Tier: func(p plot) string {
		return landTiers.Classify(Capacity{Total: p.Total, Utilized: p.Utilized}.Rate())
	},
}

func examplePlots() []plot {
	return []plot{
		{ID: "1", Name: "Green Acres", Date: "2025-10-10", Time: "09:00", Region: "A", Status: "active", Total: 100, Utilized: 80, Crops: []string{"maize"}},
		{ID: "2", Name: "Hill Farm", Date: "2025-10-10", Time: "14:30", Region: "B", Status: "active", Total: 50, Utilized: 50},
		{ID: "3", Name: "River Plot", Date: "2025-10-09", Time: "11:15", Region: "A", Status: "idle", Total: 200, Utilized: 100, Crops: []string{"yam", "okra"}},
	}
}

func byDate() Grouping[plot] {
	g := ByDate(func(p plot) string { return p.Date })
	g.Less = func(a, b plot) bool { return a.Time > b.Time }
	return g
}

func TestBuildView_ExampleScenario(t *testing.T) {
	view := BuildView(examplePlots(), FilterParams{}, plotSchema, byDate())

	require.Len(t, view.Groups, 2)
	assert.Equal(t, "2025-10-10", view.Groups[0].Key)
	assert.Len(t, view.Groups[0].Items, 2)
	assert.Equal(t, "2025-10-09", view.Groups[1].Key)
	assert.Len(t, view.Groups[1].Items, 1)

	// most recent time first within a date
	assert.Equal(t, "2", view.Groups[0].Items[0].ID)
	assert.Equal(t, "1", view.Groups[0].Items[1].ID)

	assert.Equal(t, 350.0, view.Overall.Total)
	assert.Equal(t, 230.0, view.Overall.Utilized)
	assert.Equal(t, 120.0, view.Overall.Available)
	assert.Equal(t, 65.7, view.Overall.UtilizationRate)
	assert.Equal(t, 3, view.SourceCount)
	assert.Equal(t, 3, view.MatchedCount)
}

func TestBuildView_RegionFilterScenario(t *testing.T) {
	params := FilterParams{Categorical: map[string]string{"region": "A"}}

	view := BuildView(examplePlots(), params, plotSchema, ByField(func(p plot) string { return p.Region }))

	assert.Equal(t, 2, view.MatchedCount)
	assert.Equal(t, 300.0, view.Overall.Total)
	assert.Equal(t, 180.0, view.Overall.Utilized)
	assert.Equal(t, 60.0, view.Overall.UtilizationRate)
	require.Len(t, view.Groups, 1)
	assert.Equal(t, "A", view.Groups[0].Key)
}

func TestBuildView_EmptyResult(t *testing.T) {
	params := FilterParams{SearchText: "does-not-exist"}

	view := BuildView(examplePlots(), params, plotSchema, byDate())

	assert.NotNil(t, view.Groups)
	assert.Empty(t, view.Groups)
	assert.Equal(t, 0, view.Overall.Count)
	assert.Equal(t, 0.0, view.Overall.UtilizationRate)
	assert.Equal(t, 3, view.SourceCount)
}

func TestBuildView_Idempotent(t *testing.T) {
	records := examplePlots()
	params := FilterParams{SearchText: "farm", DateRange: DateRange{Start: "2025-10-01"}}

	first := BuildView(records, params, plotSchema, byDate())
	second := BuildView(records, params, plotSchema, byDate())

	assert.Empty(t, cmp.Diff(first, second))
	assert.Empty(t, cmp.Diff(
		Aggregate(Filter(records, params, plotSchema), plotSchema),
		Aggregate(Filter(records, params, plotSchema), plotSchema),
	))
}

func TestBuildView_DoesNotMutateInput(t *testing.T) {
	records := examplePlots()
	snapshot := examplePlots()

	_ = BuildView(records, FilterParams{Categorical: map[string]string{"status": "active"}}, plotSchema, byDate())
	_ = Filter(records, FilterParams{SearchText: "hill"}, plotSchema)
	_ = Aggregate(records, plotSchema)
	groups := GroupBy(records, func(p plot) string { return p.Region })
	SortGroups(groups, OrderDateDesc)

	if diff := cmp.Diff(snapshot, records); diff != "" {
		t.Errorf("input mutated (-want +got):\n%s", diff)
	}
}

func TestBuildView_GroupingCompleteness(t *testing.T) {
	records := make([]plot, 0, 60)
	for i := 0; i < 60; i++ {
		records = append(records, plot{
			ID:     fmt.Sprint(i),
			Date:   fmt.Sprintf("2025-10-%02d", i%7+1),
			Region: []string{"A", "B", "", "C"}[i%4],
			Total:  float64(i),
		})
	}

	for _, grouping := range []Grouping[plot]{
		byDate(),
		ByField(func(p plot) string { return p.Region }),
	} {
		view := BuildView(records, FilterParams{DateRange: DateRange{End: "2025-10-05"}}, plotSchema, grouping)

		seen := make(map[string]int)
		total := 0
		for _, g := range view.Groups {
			total += len(g.Items)
			assert.Equal(t, len(g.Items), g.Summary.Count)
			for _, item := range g.Items {
				seen[item.ID]++
			}
		}
		assert.Equal(t, view.MatchedCount, total)
		for id, n := range seen {
			assert.Equal(t, 1, n, "record %s duplicated", id)
		}
	}
}

func TestBuildView_TierCounts(t *testing.T) {
	view := BuildView(examplePlots(), FilterParams{}, plotSchema, byDate())

	// 80% high, 100% high, 50% low
	assert.Equal(t, map[string]int{TierHigh: 2, TierLow: 1}, view.Overall.Tiers)
	assert.Equal(t, 3.0, view.Overall.Sums["crops"])
}

func TestBuildView_PanicsWithoutGroupingKey(t *testing.T) {
	assert.PanicsWithValue(t, "viewengine: BuildView requires a grouping key", func() {
		BuildView(examplePlots(), FilterParams{}, plotSchema, Grouping[plot]{})
	})
}

func TestAggregate_WeightedRateNotMean(t *testing.T) {
	records := []plot{
		{Total: 1, Utilized: 1},    // 100%
		{Total: 1000, Utilized: 0}, // 0%
	}

	s := Aggregate(records, plotSchema)

	// naive mean would be 50
	assert.Equal(t, 0.1, s.UtilizationRate)
}

func TestAggregate_ClampsInconsistentInputs(t *testing.T) {
	records := []plot{
		{Total: 10, Utilized: 15},
		{Total: -5, Utilized: 2},
	}

	s := Aggregate(records, plotSchema)

	assert.Equal(t, 10.0, s.Total)
	assert.Equal(t, 17.0, s.Utilized)
	assert.Equal(t, 0.0, s.Available)
	assert.Equal(t, 170.0, s.UtilizationRate)
}

func TestAggregate_NoCapacityAccessor(t *testing.T) {
	schema := Schema[plot]{Date: plotSchema.Date}

	s := Aggregate(examplePlots(), schema)

	assert.Equal(t, 3, s.Count)
	assert.Zero(t, s.Total)
	assert.Nil(t, s.Sums)
	assert.Nil(t, s.Tiers)
}

func TestTierCounts(t *testing.T) {
	counts := TierCounts(examplePlots(), func(p plot) string { return p.Status })
	assert.Equal(t, map[string]int{"active": 2, "idle": 1}, counts)
}
