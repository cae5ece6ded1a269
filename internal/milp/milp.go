// Package milp defines a solver-agnostic contract for binary (0/1) linear
// programs and ships an exact branch-and-bound implementation backed by
// gonum's simplex LP solver. The allocation optimizers formulate their
// problems against the Solver interface, so a different backend (a HiGHS or
// CBC binding, say) can be swapped in without touching the formulations.
package milp

import (
	"context"
	"errors"
)

// Constraint is a single linear inequality: Coeffs·x <= Bound.
type Constraint struct {
	Coeffs []float64
	Bound  float64
}

// Problem is a binary linear program in minimization form: minimize Cost·x
// subject to every Constraint, with each variable restricted to {0, 1}.
// Maximizing callers negate their objective coefficients.
type Problem struct {
	Cost        []float64
	Constraints []Constraint
}

// Solution is the proven-optimal assignment. X holds exactly 0 or 1 per
// variable; Objective is Cost·X.
type Solution struct {
	X         []float64
	Objective float64
}

// ErrInfeasible reports that the solver proved no feasible point exists.
var ErrInfeasible = errors.New("milp: problem is infeasible")

// ErrUnbounded reports an unbounded relaxation. It cannot occur for
// well-formed binary problems and indicates a broken formulation.
var ErrUnbounded = errors.New("milp: relaxation is unbounded")

// Solver solves binary linear programs. Implementations must be safe for
// concurrent use by independent runs, honor context cancellation between
// units of work, and never return a partial solution: the outcome is an
// optimal Solution, ErrInfeasible, or the context's error.
type Solver interface {
	Solve(ctx context.Context, p Problem) (Solution, error)
}
