package selector

import (
	"context"
	"fmt"
	"sync"
)

// Scenario is one named constraint/objective combination to evaluate.
type Scenario struct {
	Name        string
	Constraints Constraints
	Objective   Objective
	Weights     Weights
}

// Comparison summarizes several selection runs over the same candidates.
type Comparison struct {
	Results map[string]*Decision `json:"scenarios"`

	BestByNPV       string `json:"best_by_npv"`
	BestByStrategic string `json:"best_by_strategic"`
	MostProjects    string `json:"most_projects"`
	LowestRisk      string `json:"lowest_risk"`
}

// CompareScenarios runs each scenario as an independent selection and ranks
// the outcomes. Scenarios share no state, so they run concurrently, each
// against its own solver instance; one failing run fails the comparison.
func CompareScenarios(ctx context.Context, candidates []Candidate, scenarios []Scenario) (*Comparison, error) {
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("no scenarios to compare")
	}

	type outcome struct {
		name     string
		decision *Decision
		err      error
	}
	results := make([]outcome, len(scenarios))

	var wg sync.WaitGroup
	for i, sc := range scenarios {
		wg.Add(1)
		go func(i int, sc Scenario) {
			defer wg.Done()
			d, err := Select(ctx, candidates, sc.Constraints, Options{
				Objective: sc.Objective,
				Weights:   sc.Weights,
			})
			results[i] = outcome{name: sc.Name, decision: d, err: err}
		}(i, sc)
	}
	wg.Wait()

	cmp := &Comparison{Results: make(map[string]*Decision, len(scenarios))}
	for _, r := range results {
		if r.err != nil {
			return nil, fmt.Errorf("scenario %s: %w", r.name, r.err)
		}
		cmp.Results[r.name] = r.decision
	}

	// Rank successful scenarios only; a comparison of all-failed runs
	// leaves the bests empty.
	bestNPV, bestStrategic, mostProjects := -1.0, -1.0, -1
	lowestRisk := -1.0
	for _, r := range results {
		d := r.decision
		if d.Status != StatusSuccess {
			continue
		}
		if d.TotalNPV > bestNPV {
			bestNPV = d.TotalNPV
			cmp.BestByNPV = r.name
		}
		if d.TotalStrategic > bestStrategic {
			bestStrategic = d.TotalStrategic
			cmp.BestByStrategic = r.name
		}
		if d.NumSelected > mostProjects {
			mostProjects = d.NumSelected
			cmp.MostProjects = r.name
		}
		if d.NumSelected > 0 && (lowestRisk < 0 || d.AvgRisk < lowestRisk) {
			lowestRisk = d.AvgRisk
			cmp.LowestRisk = r.name
		}
	}

	return cmp, nil
}
