package models

import (
	"github.com/stwalsh4118/procur/internal/viewengine"
)

// ProgramBudgetTiers buckets a program by the share of its budget disbursed.
var ProgramBudgetTiers = viewengine.UtilizationScale(75, 40)

// Program statuses.
const (
	ProgramActive   = "active"
	ProgramUpcoming = "upcoming"
	ProgramClosed   = "closed"
)

// Program is a government agency support program sellers can enroll in.
type Program struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Category      string   `json:"category"`
	Status        string   `json:"status"`
	Region        string   `json:"region"`
	StartDate     string   `json:"startDate"`
	EndDate       string   `json:"endDate"`
	Budget        float64  `json:"budget"`
	Spent         float64  `json:"spent"`
	Enrolled      float64  `json:"enrolled"`
	Seats         float64  `json:"seats"`
	BudgetUsed    float64  `json:"budgetUsed"`
	EligibleCrops []string `json:"eligibleCrops"`
}

// NormalizeProgram builds a fully-populated Program.
func NormalizeProgram(raw RawRecord) Program {
	p := Program{
		ID:            text(raw, "id", "_id"),
		Name:          text(raw, "name", "title"),
		Description:   text(raw, "description"),
		Category:      text(raw, "category"),
		Status:        enum(viewengine.Field(raw, "status"), ProgramActive, ProgramActive, ProgramUpcoming, ProgramClosed),
		Region:        text(raw, "region"),
		StartDate:     viewengine.SafeDate(viewengine.Field(raw, "startDate", "start_date")),
		EndDate:       viewengine.SafeDate(viewengine.Field(raw, "endDate", "end_date")),
		Budget:        number(raw, "budget"),
		Spent:         number(raw, "spent", "disbursed"),
		Enrolled:      number(raw, "enrolled", "participants"),
		Seats:         number(raw, "capacity", "seats", "maxParticipants", "max_participants"),
		EligibleCrops: viewengine.SafeStrings(viewengine.Field(raw, "eligibleCrops", "eligible_crops", "crops")),
	}
	if p.Category == "" {
		p.Category = "general"
	}
	if p.Region == "" {
		p.Region = "National"
	}
	p.BudgetUsed = viewengine.SafePercentage(p.Spent, p.Budget)
	return p
}

// NormalizePrograms normalizes a raw collection.
func NormalizePrograms(raws []RawRecord) []Program {
	return normalizeAll(raws, NormalizeProgram)
}

// ProgramSchema drives the programs listing and agency reporting.
var ProgramSchema = viewengine.Schema[Program]{
	Text: func(p Program) []string {
		return append([]string{p.Name, p.Description, p.Category}, p.EligibleCrops...)
	},
	Categories: map[string]func(Program) string{
		"category": func(p Program) string { return p.Category },
		"status":   func(p Program) string { return p.Status },
		"region":   func(p Program) string { return p.Region },
	},
	Date: func(p Program) string { return p.StartDate },
	Capacity: func(p Program) viewengine.Capacity {
		return viewengine.Capacity{Total: p.Budget, Utilized: p.Spent}
	},
	Measures: map[string]func(Program) float64{
		"enrolled": func(p Program) float64 { return p.Enrolled },
		"seats":    func(p Program) float64 { return p.Seats },
	},
	Tier: func(p Program) string { return ProgramBudgetTiers.Classify(viewengine.Ratio(p.Spent, p.Budget)) },
}

// ProgramsByCategory groups programs by category, soonest start first.
var ProgramsByCategory = viewengine.Grouping[Program]{
	Key:   func(p Program) string { return p.Category },
	Order: viewengine.OrderFirstSeen,
	Less:  func(a, b Program) bool { return a.StartDate < b.StartDate },
}
