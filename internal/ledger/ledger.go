// Package ledger derives per-month resource demand from a timeline and
// reports utilization against monthly capacities. Reports are pure derived
// data: recomputable from the same timeline at any time, no side effects.
package ledger

import (
	"math"
	"sort"

	"github.com/joshharrison/planloom/internal/phase"
	"github.com/joshharrison/planloom/internal/portfolio"
)

// Summary describes one resource type's demand over the whole timeline.
type Summary struct {
	ResourceType       string  `json:"resource_type"`
	Capacity           float64 `json:"capacity"`
	PeakUsage          float64 `json:"peak_usage"`
	AvgUsage           float64 `json:"avg_usage"`
	PeakUtilizationPct float64 `json:"peak_utilization_pct"`
	AvgUtilizationPct  float64 `json:"avg_utilization_pct"`
	Overallocated      bool    `json:"is_overallocated"`
}

// Report is the full utilization report.
type Report struct {
	// Months is the number of whole months covered, ceil of the latest
	// project end.
	Months int `json:"months"`

	// Monthly[m] maps resource type to FTE demand during month m.
	Monthly []map[string]float64 `json:"monthly_usage"`

	// Summaries holds one entry per resource type with a supplied capacity,
	// sorted by resource type.
	Summaries []Summary `json:"summary"`
}

// Compute aggregates each project's resource requirements over its
// scheduled interval. Requirements are total FTE-months spread at constant
// intensity across the project's own duration; months partially covered by
// a project contribute pro rata.
func Compute(projects map[string]*portfolio.Project, plan *phase.Plan, capacities map[string]float64) *Report {
	months := 0
	for _, te := range plan.Timeline {
		if m := int(math.Ceil(te.EndMonth)); m > months {
			months = m
		}
	}

	monthly := make([]map[string]float64, months)
	for m := range monthly {
		monthly[m] = make(map[string]float64)
	}

	for id, te := range plan.Timeline {
		proj, ok := projects[id]
		if !ok {
			continue
		}
		duration := te.EndMonth - te.StartMonth
		if duration <= 0 {
			continue
		}
		first := int(math.Floor(te.StartMonth))
		last := int(math.Ceil(te.EndMonth))
		for rtype, total := range proj.Requirements {
			rate := total / duration // FTE per month while running
			for m := first; m < last && m < months; m++ {
				overlap := math.Min(te.EndMonth, float64(m+1)) - math.Max(te.StartMonth, float64(m))
				if overlap > 0 {
					monthly[m][rtype] += rate * overlap
				}
			}
		}
	}

	report := &Report{Months: months, Monthly: monthly}

	rtypes := make([]string, 0, len(capacities))
	for rtype := range capacities {
		rtypes = append(rtypes, rtype)
	}
	sort.Strings(rtypes)

	for _, rtype := range rtypes {
		capacity := capacities[rtype]
		s := Summary{ResourceType: rtype, Capacity: capacity}
		total := 0.0
		for m := 0; m < months; m++ {
			u := monthly[m][rtype]
			total += u
			if u > s.PeakUsage {
				s.PeakUsage = u
			}
		}
		if months > 0 {
			s.AvgUsage = total / float64(months)
		}
		if capacity > 0 {
			s.PeakUtilizationPct = s.PeakUsage / capacity * 100
			s.AvgUtilizationPct = s.AvgUsage / capacity * 100
		}
		s.Overallocated = s.PeakUsage > capacity
		report.Summaries = append(report.Summaries, s)
	}

	return report
}
