package models

import (
	"github.com/stwalsh4118/procur/internal/viewengine"
)

// Harvest statuses.
const (
	HarvestScheduled  = "scheduled"
	HarvestInProgress = "in_progress"
	HarvestCompleted  = "completed"
	HarvestCancelled  = "cancelled"
)

// Harvest is a scheduled or completed harvest event on a seller's farm.
type Harvest struct {
	ID       string  `json:"id"`
	Crop     string  `json:"crop"`
	FarmName string  `json:"farmName"`
	Location string  `json:"location"`
	Region   string  `json:"region"`
	Date     string  `json:"date"`
	Time     string  `json:"time"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Status   string  `json:"status"`
	Notes    string  `json:"notes"`
}

// NormalizeHarvest builds a fully-populated Harvest from a raw record.
func NormalizeHarvest(raw RawRecord) Harvest {
	location := text(raw, "location", "farmLocation", "farm_location")
	date := viewengine.Field(raw, "date", "harvestDate", "harvest_date", "scheduledAt", "scheduled_at")

	h := Harvest{
		ID:       text(raw, "id", "_id"),
		Crop:     text(raw, "crop", "cropName", "crop_name"),
		FarmName: text(raw, "farmName", "farm_name", "farm"),
		Location: location,
		Region:   region(raw, location),
		Date:     viewengine.SafeDate(date),
		Time:     viewengine.SafeTime(viewengine.Field(raw, "time")),
		Quantity: number(raw, "quantity", "expectedQuantity", "expected_quantity"),
		Unit:     text(raw, "unit"),
		Status:   enum(viewengine.Field(raw, "status"), HarvestScheduled, HarvestScheduled, HarvestInProgress, HarvestCompleted, HarvestCancelled),
		Notes:    text(raw, "notes"),
	}
	if h.Time == "" {
		h.Time = viewengine.SafeTime(date)
	}
	if h.Unit == "" {
		h.Unit = "kg"
	}
	return h
}

// NormalizeHarvests normalizes a raw collection.
func NormalizeHarvests(raws []RawRecord) []Harvest {
	return normalizeAll(raws, NormalizeHarvest)
}

// HarvestSchema drives filtering and aggregation for the harvest timeline.
var HarvestSchema = viewengine.Schema[Harvest]{
	Text: func(h Harvest) []string { return []string{h.Crop, h.FarmName, h.Location, h.Notes} },
	Categories: map[string]func(Harvest) string{
		"status": func(h Harvest) string { return h.Status },
		"region": func(h Harvest) string { return h.Region },
		"crop":   func(h Harvest) string { return h.Crop },
	},
	Date: func(h Harvest) string { return h.Date },
	Measures: map[string]func(Harvest) float64{
		"quantity": func(h Harvest) float64 { return h.Quantity },
	},
	Tier: func(h Harvest) string { return h.Status },
}

// HarvestTimeline groups harvests by date, most recent first, and orders
// each day by time, latest first.
var HarvestTimeline = viewengine.Grouping[Harvest]{
	Key:   func(h Harvest) string { return h.Date },
	Order: viewengine.OrderDateDesc,
	Less:  func(a, b Harvest) bool { return a.Time > b.Time },
}
