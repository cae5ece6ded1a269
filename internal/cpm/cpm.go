// Package cpm implements critical path method scheduling over a validated
// project graph: forward and backward passes in topological order, slack,
// and the critical path.
package cpm

import (
	"fmt"
	"sort"

	"github.com/joshharrison/planloom/internal/graph"
)

// slackTolerance is the absolute tolerance, in months, used when testing
// slack against zero. Durations are float64 months; dependency chains add
// at most a few hundred terms, which keeps accumulated error orders of
// magnitude below this.
const slackTolerance = 1e-6

// Analyze performs critical path analysis on a validated graph. The graph
// must have passed Validate; scheduling an unvalidated graph is refused
// because the passes assume a DAG.
func Analyze(g *graph.Graph) (*Result, error) {
	if !g.Validated() {
		return nil, fmt.Errorf("graph has not been validated")
	}

	order, err := topoSort(g)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Entries: make(map[string]*Entry, len(order)),
		Order:   order,
	}
	for _, id := range order {
		result.Entries[id] = &Entry{ProjectID: id}
	}

	// Forward pass: ES = max(EF of dependencies), EF = ES + duration.
	for _, id := range order {
		e := result.Entries[id]
		for _, dep := range g.Dependencies(id) {
			if f := result.Entries[dep].EarliestFinish; f > e.EarliestStart {
				e.EarliestStart = f
			}
		}
		e.EarliestFinish = e.EarliestStart + g.Projects[id].DurationMonths
		if e.EarliestFinish > result.Horizon {
			result.Horizon = e.EarliestFinish
		}
	}

	// Backward pass: LF = min(LS of dependents), LS = LF - duration.
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		e := result.Entries[id]

		dependents := g.Dependents(id)
		if len(dependents) == 0 {
			e.LatestFinish = result.Horizon
		} else {
			e.LatestFinish = result.Entries[dependents[0]].LatestStart
			for _, succ := range dependents[1:] {
				if s := result.Entries[succ].LatestStart; s < e.LatestFinish {
					e.LatestFinish = s
				}
			}
		}
		e.LatestStart = e.LatestFinish - g.Projects[id].DurationMonths

		e.Slack = e.LatestStart - e.EarliestStart
		e.IsCritical = e.Slack < slackTolerance
	}

	for _, id := range order {
		if result.Entries[id].IsCritical {
			result.CriticalPath = append(result.CriticalPath, id)
		}
	}

	return result, nil
}

// topoSort runs Kahn's algorithm. Among simultaneously eligible projects it
// picks the highest priority score first; this only affects
// ordering determinism, not the computed schedule, since earliest starts
// derive purely from dependency finish times.
func topoSort(g *graph.Graph) ([]string, error) {
	inDegree := make(map[string]int, len(g.Projects))
	var ready []string
	for id := range g.Projects {
		inDegree[id] = len(g.Dependencies(id))
		if inDegree[id] == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(g.Projects))
	for len(ready) > 0 {
		best := 0
		for i := 1; i < len(ready); i++ {
			if g.Projects[ready[i]].PriorityScore > g.Projects[ready[best]].PriorityScore {
				best = i
			}
		}
		node := ready[best]
		ready = append(ready[:best], ready[best+1:]...)
		order = append(order, node)

		var unblocked []string
		for _, succ := range g.Dependents(node) {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				unblocked = append(unblocked, succ)
			}
		}
		sort.Strings(unblocked)
		ready = append(ready, unblocked...)
	}

	if len(order) != g.Count() {
		// Unreachable once Validate has passed.
		return nil, fmt.Errorf("topological sort failed: graph has a cycle (%d of %d projects sorted)", len(order), g.Count())
	}

	return order, nil
}
