package models

import (
	"github.com/stwalsh4118/procur/internal/viewengine"
)

// LandUtilizationTiers buckets a vendor's acreage utilization.
// high >= 80%, medium 60-79.9%, low < 60%.
var LandUtilizationTiers = viewengine.UtilizationScale(80, 60)

// Land allocation statuses.
const (
	LandActive   = "active"
	LandInactive = "inactive"
	LandPending  = "pending"
)

// LandAllocation is a vendor's farmland and how much of it is under
// cultivation.
type LandAllocation struct {
	ID               string   `json:"id"`
	VendorID         string   `json:"vendorId"`
	VendorName       string   `json:"vendorName"`
	Location         string   `json:"location"`
	Region           string   `json:"region"`
	Status           string   `json:"status"`
	TotalAcreage     float64  `json:"totalAcreage"`
	UtilizedAcreage  float64  `json:"utilizedAcreage"`
	AvailableAcreage float64  `json:"availableAcreage"`
	UtilizationRate  float64  `json:"utilizationRate"`
	Tier             string   `json:"tier"`
	Crops            []string `json:"crops"`
	LastUpdated      string   `json:"lastUpdated"`
}

// Capacity returns the allocation's acreage pair.
func (l LandAllocation) Capacity() viewengine.Capacity {
	return viewengine.Capacity{Total: l.TotalAcreage, Utilized: l.UtilizedAcreage}
}

// NormalizeLandAllocation builds a fully-populated LandAllocation from a raw
// record. Available acreage is always recomputed from total and utilized;
// any value supplied by the source is ignored.
func NormalizeLandAllocation(raw RawRecord) LandAllocation {
	location := text(raw, "location", "address")

	l := LandAllocation{
		ID:              text(raw, "id", "_id"),
		VendorID:        text(raw, "vendorId", "vendor_id", "sellerId", "seller_id"),
		VendorName:      text(raw, "vendorName", "vendor_name", "businessName", "business_name", "name"),
		Location:        location,
		Region:          region(raw, location),
		Status:          enum(viewengine.Field(raw, "status"), LandActive, LandActive, LandInactive, LandPending),
		TotalAcreage:    number(raw, "totalAcreage", "total_acreage", "totalAcres", "total_acres"),
		UtilizedAcreage: number(raw, "utilizedAcreage", "utilized_acreage", "utilizedAcres", "utilized_acres"),
		Crops:           viewengine.SafeStrings(viewengine.Field(raw, "crops", "currentCrops", "current_crops")),
		LastUpdated:     viewengine.SafeDate(viewengine.Field(raw, "lastUpdated", "last_updated", "updatedAt", "updated_at")),
	}

	c := l.Capacity()
	l.AvailableAcreage = c.Available()
	l.UtilizationRate = c.Rate()
	l.Tier = LandUtilizationTiers.Classify(c.Ratio())
	return l
}

// NormalizeLandAllocations normalizes a raw collection.
func NormalizeLandAllocations(raws []RawRecord) []LandAllocation {
	return normalizeAll(raws, NormalizeLandAllocation)
}

// LandSchema drives the land utilization dashboard.
var LandSchema = viewengine.Schema[LandAllocation]{
	Text: func(l LandAllocation) []string {
		return append([]string{l.VendorName, l.Location}, l.Crops...)
	},
	Categories: map[string]func(LandAllocation) string{
		"region": func(l LandAllocation) string { return l.Region },
		"status": func(l LandAllocation) string { return l.Status },
	},
	Date:     func(l LandAllocation) string { return l.LastUpdated },
	Capacity: LandAllocation.Capacity,
	Measures: map[string]func(LandAllocation) float64{
		"crops": func(l LandAllocation) float64 { return float64(len(l.Crops)) },
	},
	Tier: func(l LandAllocation) string { return l.Tier },
}

// LandByRegion rolls allocations up per region in discovery order.
var LandByRegion = viewengine.Grouping[LandAllocation]{
	Key:   func(l LandAllocation) string { return l.Region },
	Order: viewengine.OrderFirstSeen,
	Less:  func(a, b LandAllocation) bool { return a.UtilizationRate > b.UtilizationRate },
}

// LandByDate groups allocations by last update, most recent first.
var LandByDate = viewengine.Grouping[LandAllocation]{
	Key:   func(l LandAllocation) string { return l.LastUpdated },
	Order: viewengine.OrderDateDesc,
}
