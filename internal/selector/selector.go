// Package selector chooses a value-maximizing subset of candidate
// initiatives under budget, concurrency and risk constraints by formulating
// a binary linear program: one 0/1 variable per candidate.
package selector

import (
	"context"
	"errors"
	"log/slog"

	"github.com/joshharrison/planloom/internal/milp"
)

// Select solves one portfolio selection run as a pure function of its
// inputs. Infeasibility, timeout and empty input are reported through
// Decision.Status, not the error; the error is reserved for broken
// formulations and solver faults. Timeouts come from the context: on
// expiry the run returns StatusTimedOut with no partial selection.
func Select(ctx context.Context, candidates []Candidate, cons Constraints, opts Options) (*Decision, error) {
	if len(candidates) == 0 {
		return &Decision{
			Status:      StatusNoDemands,
			SelectedIDs: []string{},
			Message:     "no candidates to optimize",
		}, nil
	}

	solver := opts.Solver
	if solver == nil {
		solver = &milp.BranchBound{}
	}

	problem := buildProblem(candidates, cons, opts)

	solution, err := solver.Solve(ctx, problem)
	switch {
	case errors.Is(err, milp.ErrInfeasible):
		return &Decision{
			Status:      StatusInfeasible,
			SelectedIDs: []string{},
			Message:     "no feasible selection under the supplied constraints",
		}, nil
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return &Decision{
			Status:      StatusTimedOut,
			SelectedIDs: []string{},
			Message:     "solver deadline exceeded",
		}, nil
	case err != nil:
		return nil, err
	}

	d := &Decision{
		Status:         StatusSuccess,
		SelectedIDs:    []string{},
		ObjectiveValue: -solution.Objective, // back to maximization
	}
	for i, c := range candidates {
		if solution.X[i] < 0.5 {
			continue
		}
		d.SelectedIDs = append(d.SelectedIDs, c.ID)
		d.TotalNPV += c.NPV
		d.TotalCost += c.Cost
		d.TotalStrategic += c.StrategicScore
		d.AvgRisk += c.RiskScore
		d.Details = append(d.Details, Detail{
			ProjectID:      c.ID,
			NPV:            c.NPV,
			Cost:           c.Cost,
			StrategicScore: c.StrategicScore,
			RiskScore:      c.RiskScore,
			PriorityScore:  c.PriorityScore,
		})
	}
	d.NumSelected = len(d.SelectedIDs)
	d.NumRejected = len(candidates) - d.NumSelected
	if d.NumSelected > 0 {
		d.AvgRisk /= float64(d.NumSelected)
		d.AvgStrategicScore = d.TotalStrategic / float64(d.NumSelected)
	}

	slog.Debug("portfolio selection solved",
		"objective", opts.Objective.String(),
		"candidates", len(candidates),
		"selected", d.NumSelected,
		"objective_value", d.ObjectiveValue)

	return d, nil
}

// buildProblem formulates the selection as a minimization over negated
// objective coefficients, mirroring linprog-style solvers.
func buildProblem(candidates []Candidate, cons Constraints, opts Options) milp.Problem {
	n := len(candidates)

	cost := make([]float64, n)
	switch opts.Objective {
	case MaximizeStrategic:
		for i, c := range candidates {
			cost[i] = -c.StrategicScore
		}
	case Balanced:
		w := opts.Weights
		if w == (Weights{}) {
			w = DefaultWeights
		}
		maxNPV := 0.0
		for _, c := range candidates {
			if c.NPV > maxNPV {
				maxNPV = c.NPV
			}
		}
		if maxNPV <= 0 {
			maxNPV = 1
		}
		for i, c := range candidates {
			cost[i] = -(w.NPV*(c.NPV/maxNPV) + w.Strategic*(c.StrategicScore/100))
		}
	default: // MaximizeNPV
		for i, c := range candidates {
			cost[i] = -c.NPV
		}
	}

	problem := milp.Problem{Cost: cost}

	if cons.TotalBudget > 0 {
		coeffs := make([]float64, n)
		for i, c := range candidates {
			coeffs[i] = c.Cost
		}
		problem.Constraints = append(problem.Constraints, milp.Constraint{Coeffs: coeffs, Bound: cons.TotalBudget})
	}
	if cons.MaxConcurrentProjects > 0 {
		coeffs := make([]float64, n)
		for i := range coeffs {
			coeffs[i] = 1
		}
		problem.Constraints = append(problem.Constraints, milp.Constraint{Coeffs: coeffs, Bound: float64(cons.MaxConcurrentProjects)})
	}
	if cons.MaxAvgRisk > 0 {
		coeffs := make([]float64, n)
		for i, c := range candidates {
			coeffs[i] = c.RiskScore - cons.MaxAvgRisk
		}
		problem.Constraints = append(problem.Constraints, milp.Constraint{Coeffs: coeffs, Bound: 0})
	}

	return problem
}
