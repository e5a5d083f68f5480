package models

import (
	"time"

	"github.com/stwalsh4118/procur/internal/viewengine"
)

// GroupSummary is one group's summary inside a report snapshot.
type GroupSummary struct {
	Key     string             `bson:"key" json:"key"`
	Summary viewengine.Summary `bson:"summary" json:"summary"`
}

// ReportSnapshot archives the summaries of one collection at a point in time
// so reporting pages can chart trends.
type ReportSnapshot struct {
	ID         string             `bson:"_id" json:"id"`
	Collection string             `bson:"collection" json:"collection"`
	TakenAt    time.Time          `bson:"taken_at" json:"takenAt"`
	Overall    viewengine.Summary `bson:"overall" json:"overall"`
	Groups     []GroupSummary     `bson:"groups" json:"groups"`
}
