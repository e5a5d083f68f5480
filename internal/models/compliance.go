package models

import (
	"github.com/stwalsh4118/procur/internal/viewengine"
)

// Compliance statuses, ordered from best to worst.
const (
	ComplianceCompliant = "compliant"
	ComplianceWarning   = "warning"
	ComplianceAlert     = "alert"
)

// Document statuses.
const (
	DocumentValid    = "valid"
	DocumentExpiring = "expiring"
	DocumentExpired  = "expired"
	DocumentMissing  = "missing"
)

// ComplianceScoreTiers derives a status from an inspection score when the
// source does not supply one. These thresholds are specific to compliance and
// intentionally separate from the utilization scales.
var ComplianceScoreTiers = viewengine.TierScale{
	Upper:  90,
	Lower:  70,
	Labels: [3]string{ComplianceCompliant, ComplianceWarning, ComplianceAlert},
}

// DocumentStatus is one required document on a compliance record.
type DocumentStatus struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// ComplianceEntry is an agency's view of one vendor's regulatory standing.
type ComplianceEntry struct {
	ID             string           `json:"id"`
	VendorID       string           `json:"vendorId"`
	VendorName     string           `json:"vendorName"`
	Region         string           `json:"region"`
	Category       string           `json:"category"`
	Status         string           `json:"status"`
	Score          float64          `json:"score"`
	LastInspection string           `json:"lastInspection"`
	Documents      []DocumentStatus `json:"documents"`
	Notes          string           `json:"notes"`
}

// MissingDocuments counts documents that are missing or expired.
func (c ComplianceEntry) MissingDocuments() int {
	n := 0
	for _, d := range c.Documents {
		if d.Status == DocumentMissing || d.Status == DocumentExpired {
			n++
		}
	}
	return n
}

// NormalizeComplianceEntry builds a fully-populated ComplianceEntry.
func NormalizeComplianceEntry(raw RawRecord) ComplianceEntry {
	location := text(raw, "location")

	c := ComplianceEntry{
		ID:             text(raw, "id", "_id"),
		VendorID:       text(raw, "vendorId", "vendor_id"),
		VendorName:     text(raw, "vendorName", "vendor_name", "name"),
		Region:         region(raw, location),
		Category:       text(raw, "category", "type"),
		Score:          number(raw, "score", "complianceScore", "compliance_score"),
		LastInspection: viewengine.SafeDate(viewengine.Field(raw, "lastInspection", "last_inspection", "inspectionDate", "inspection_date")),
		Documents:      normalizeDocuments(viewengine.Field(raw, "documents")),
		Notes:          text(raw, "notes"),
	}
	if c.Category == "" {
		c.Category = "general"
	}
	c.Status = enum(viewengine.Field(raw, "status"), ComplianceScoreTiers.Classify(c.Score),
		ComplianceCompliant, ComplianceWarning, ComplianceAlert)
	return c
}

// normalizeDocuments accepts a list of {name, status} objects or bare names.
func normalizeDocuments(v any) []DocumentStatus {
	items := viewengine.SafeArray[any](v)
	docs := make([]DocumentStatus, 0, len(items))
	for _, item := range items {
		switch d := item.(type) {
		case map[string]any:
			name := text(d, "name", "type")
			if name == "" {
				continue
			}
			docs = append(docs, DocumentStatus{
				Name:   name,
				Status: enum(d["status"], DocumentMissing, DocumentValid, DocumentExpiring, DocumentExpired, DocumentMissing),
			})
		case string:
			if name := viewengine.SafeString(d); name != "" {
				docs = append(docs, DocumentStatus{Name: name, Status: DocumentValid})
			}
		}
	}
	return docs
}

// NormalizeComplianceEntries normalizes a raw collection.
func NormalizeComplianceEntries(raws []RawRecord) []ComplianceEntry {
	return normalizeAll(raws, NormalizeComplianceEntry)
}

// ComplianceSchema drives the agency compliance dashboard.
var ComplianceSchema = viewengine.Schema[ComplianceEntry]{
	Text: func(c ComplianceEntry) []string { return []string{c.VendorName, c.Category, c.Notes} },
	Categories: map[string]func(ComplianceEntry) string{
		"status":   func(c ComplianceEntry) string { return c.Status },
		"region":   func(c ComplianceEntry) string { return c.Region },
		"category": func(c ComplianceEntry) string { return c.Category },
	},
	Date: func(c ComplianceEntry) string { return c.LastInspection },
	Measures: map[string]func(ComplianceEntry) float64{
		"score":            func(c ComplianceEntry) float64 { return c.Score },
		"missingDocuments": func(c ComplianceEntry) float64 { return float64(c.MissingDocuments()) },
	},
	Tier: func(c ComplianceEntry) string { return c.Status },
}

// ComplianceByRegion groups entries per region, worst score first.
var ComplianceByRegion = viewengine.Grouping[ComplianceEntry]{
	Key:   func(c ComplianceEntry) string { return c.Region },
	Order: viewengine.OrderFirstSeen,
	Less:  func(a, b ComplianceEntry) bool { return a.Score < b.Score },
}
