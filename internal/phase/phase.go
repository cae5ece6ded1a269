// Package phase partitions a scheduled project graph into ordered groups of
// concurrent work and lays them out on a month timeline.
package phase

import (
	"fmt"
	"sort"

	"github.com/joshharrison/planloom/internal/cpm"
	"github.com/joshharrison/planloom/internal/graph"
)

// Build produces execution phases from a validated graph and its CPM
// result. It repeatedly drains the set of ready projects (all dependencies
// completed), taking up to MaxParallel per phase, critical path projects
// first and higher priority scores next.
//
// The packing is a deliberate greedy heuristic: it does not backtrack to
// level resources, it fills slots and lets the ledger report any
// overallocation for the caller to react to (shrink MaxParallel or adjust
// priorities). Downstream consumers depend on this exact ranking, so keep
// it when touching this code.
func Build(g *graph.Graph, res *cpm.Result, opts Options) (*Plan, error) {
	if !g.Validated() {
		return nil, fmt.Errorf("graph has not been validated")
	}
	maxParallel := opts.MaxParallel
	if maxParallel < 1 {
		maxParallel = DefaultMaxParallel
	}

	plan := &Plan{
		Timeline:     make(map[string]*TimelineEntry, g.Count()),
		CriticalPath: res.CriticalPath,
		NumProjects:  g.Count(),
	}
	for _, p := range g.Projects {
		plan.TotalStrategicValue += p.StrategicValue
		plan.TotalNPV += p.NPV
	}

	remaining := make(map[string]bool, g.Count())
	for id := range g.Projects {
		remaining[id] = true
	}
	completed := make(map[string]bool, g.Count())

	currentMonth := 0.0
	for len(remaining) > 0 {
		ready := readyProjects(g, remaining, completed)
		if len(ready) == 0 {
			// Unreachable after Validate: ready can only dry up mid-run if
			// the dependency edges contain a cycle.
			return nil, fmt.Errorf("no schedulable projects remain with %d unscheduled", len(remaining))
		}

		rankCandidates(g, res, ready)
		if len(ready) > maxParallel {
			ready = ready[:maxParallel]
		}

		idx := len(plan.Phases)
		ph := Phase{Index: idx, ProjectIDs: ready, StartMonth: currentMonth}

		phaseDuration := 0.0
		for _, id := range ready {
			d := g.Projects[id].DurationMonths
			if d > phaseDuration {
				phaseDuration = d
			}
			plan.Timeline[id] = &TimelineEntry{
				ProjectID:  id,
				StartMonth: currentMonth,
				EndMonth:   currentMonth + d,
				Phase:      idx,
				Parallel:   others(ready, id),
			}
		}
		ph.EndMonth = currentMonth + phaseDuration
		plan.Phases = append(plan.Phases, ph)

		currentMonth += phaseDuration
		for _, id := range ready {
			delete(remaining, id)
			completed[id] = true
		}
	}

	plan.TotalDuration = currentMonth
	plan.NumPhases = len(plan.Phases)
	return plan, nil
}

// readyProjects returns the unscheduled projects whose dependencies have
// all completed, sorted by id for determinism.
func readyProjects(g *graph.Graph, remaining, completed map[string]bool) []string {
	var ready []string
	for id := range remaining {
		ok := true
		for _, dep := range g.Dependencies(id) {
			if !completed[dep] {
				ok = false
				break
			}
		}
		if ok {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)
	return ready
}

// rankCandidates orders ready projects for phase packing: critical path
// first, then priority score descending, then id.
func rankCandidates(g *graph.Graph, res *cpm.Result, ready []string) {
	sort.SliceStable(ready, func(a, b int) bool {
		ea, eb := res.Entries[ready[a]], res.Entries[ready[b]]
		if ea.IsCritical != eb.IsCritical {
			return ea.IsCritical
		}
		pa, pb := g.Projects[ready[a]].PriorityScore, g.Projects[ready[b]].PriorityScore
		if pa != pb {
			return pa > pb
		}
		return ready[a] < ready[b]
	})
}

func others(members []string, self string) []string {
	var out []string
	for _, id := range members {
		if id != self {
			out = append(out, id)
		}
	}
	return out
}

// GanttRows returns chart-ready rows for the plan, sorted by start month
// then project id.
func (p *Plan) GanttRows(g *graph.Graph) []GanttRow {
	rows := make([]GanttRow, 0, len(p.Timeline))
	for id, te := range p.Timeline {
		proj := g.Projects[id]
		rows = append(rows, GanttRow{
			ProjectID:     id,
			StartMonth:    te.StartMonth,
			EndMonth:      te.EndMonth,
			Duration:      te.EndMonth - te.StartMonth,
			Dependencies:  proj.Dependencies,
			PriorityScore: proj.PriorityScore,
			IsCritical:    isOnPath(p.CriticalPath, id),
			Parallel:      te.Parallel,
		})
	}
	sort.Slice(rows, func(a, b int) bool {
		if rows[a].StartMonth != rows[b].StartMonth {
			return rows[a].StartMonth < rows[b].StartMonth
		}
		return rows[a].ProjectID < rows[b].ProjectID
	})
	return rows
}

func isOnPath(path []string, id string) bool {
	for _, p := range path {
		if p == id {
			return true
		}
	}
	return false
}
