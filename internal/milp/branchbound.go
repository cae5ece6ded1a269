package milp

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// BranchBound is an exact depth-first branch-and-bound solver for binary
// linear programs. Each node solves the LP relaxation (variables free in
// [0,1], fixed variables substituted out) with gonum's simplex and prunes
// on infeasibility or on a bound no better than the incumbent. The zero
// value is ready to use.
//
// Intended for the problem sizes this module produces, tens of variables;
// it is exact, not fast.
type BranchBound struct {
	// Tol is the integrality tolerance. Relaxation values within Tol of an
	// integer count as integral. Zero means 1e-6.
	Tol float64
}

const (
	boundSlack = 1e-9 // pruning slack against the incumbent objective
	feasSlack  = 1e-9 // feasibility slack for fully fixed constraints
)

// Solve implements Solver.
func (bb *BranchBound) Solve(ctx context.Context, p Problem) (Solution, error) {
	n := len(p.Cost)
	for i, c := range p.Constraints {
		if len(c.Coeffs) != n {
			return Solution{}, fmt.Errorf("milp: constraint %d has %d coefficients for %d variables", i, len(c.Coeffs), n)
		}
	}
	if n == 0 {
		return Solution{}, nil
	}

	tol := bb.Tol
	if tol <= 0 {
		tol = 1e-6
	}

	best := math.Inf(1)
	var bestX []float64

	fixed := make([]int8, n) // -1 free, 0 or 1 fixed
	for i := range fixed {
		fixed[i] = -1
	}

	var visit func() error
	visit = func() error {
		if err := ctx.Err(); err != nil {
			return err
		}

		obj, x, err := relax(p, fixed)
		switch {
		case errors.Is(err, lp.ErrInfeasible):
			return nil // prune: no feasible point below this node
		case errors.Is(err, lp.ErrUnbounded):
			return ErrUnbounded
		case err != nil:
			return fmt.Errorf("milp: lp relaxation: %w", err)
		}
		if obj >= best-boundSlack {
			return nil // prune: relaxation cannot beat the incumbent
		}

		// Branch on the most fractional variable, if any.
		branch := -1
		worst := tol
		for i, v := range x {
			if f := math.Abs(v - math.Round(v)); f > worst {
				worst = f
				branch = i
			}
		}

		if branch < 0 {
			rounded := make([]float64, n)
			exact := 0.0
			for i, v := range x {
				rounded[i] = math.Round(v)
				exact += p.Cost[i] * rounded[i]
			}
			if exact < best {
				best = exact
				bestX = rounded
			}
			return nil
		}

		// Explore the branch nearest the relaxation value first.
		first := int8(0)
		if x[branch] >= 0.5 {
			first = 1
		}
		for _, v := range []int8{first, 1 - first} {
			fixed[branch] = v
			if err := visit(); err != nil {
				fixed[branch] = -1
				return err
			}
		}
		fixed[branch] = -1
		return nil
	}

	if err := visit(); err != nil {
		return Solution{}, err
	}
	if bestX == nil {
		return Solution{}, ErrInfeasible
	}
	return Solution{X: bestX, Objective: best}, nil
}

// relax solves the LP relaxation of p under the given variable fixings and
// returns the relaxed objective plus a full-length point (fixed values
// filled in). Fixed variables are substituted out before the simplex call;
// the remaining program is put in standard equality form with one slack
// per inequality, which keeps the constraint matrix full row rank.
func relax(p Problem, fixed []int8) (float64, []float64, error) {
	n := len(p.Cost)

	free := make([]int, 0, n)
	base := 0.0
	for i, f := range fixed {
		if f == -1 {
			free = append(free, i)
		} else if f == 1 {
			base += p.Cost[i]
		}
	}

	// Reduce constraints to the free variables.
	type row struct {
		coeffs []float64
		bound  float64
	}
	rows := make([]row, 0, len(p.Constraints)+len(free))
	for _, c := range p.Constraints {
		rhs := c.Bound
		coeffs := make([]float64, len(free))
		nonzero := false
		for j, idx := range free {
			coeffs[j] = c.Coeffs[idx]
			if coeffs[j] != 0 {
				nonzero = true
			}
		}
		for i, f := range fixed {
			if f == 1 {
				rhs -= c.Coeffs[i]
			}
		}
		if !nonzero {
			if rhs < -feasSlack {
				return 0, nil, lp.ErrInfeasible
			}
			continue
		}
		rows = append(rows, row{coeffs: coeffs, bound: rhs})
	}

	if len(free) == 0 {
		x := make([]float64, n)
		for i, f := range fixed {
			x[i] = float64(f)
		}
		return base, x, nil
	}

	// Upper bounds x_j <= 1 as explicit rows.
	for j := range free {
		coeffs := make([]float64, len(free))
		coeffs[j] = 1
		rows = append(rows, row{coeffs: coeffs, bound: 1})
	}

	nRows := len(rows)
	nCols := len(free) + nRows // one slack per row

	c := make([]float64, nCols)
	for j, idx := range free {
		c[j] = p.Cost[idx]
	}

	a := mat.NewDense(nRows, nCols, nil)
	b := make([]float64, nRows)
	for r, rw := range rows {
		for j, v := range rw.coeffs {
			a.Set(r, j, v)
		}
		a.Set(r, len(free)+r, 1)
		b[r] = rw.bound
	}

	opt, optX, err := lp.Simplex(c, a, b, 0, nil)
	if err != nil {
		return 0, nil, err
	}

	x := make([]float64, n)
	for i, f := range fixed {
		if f != -1 {
			x[i] = float64(f)
		}
	}
	for j, idx := range free {
		x[idx] = optX[j]
	}
	return base + opt, x, nil
}
