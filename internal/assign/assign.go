// Package assign extends portfolio selection with a placement dimension:
// each selected project is assigned to at most one of its allowed
// locations, subject to per-location per-resource-type capacity. One binary
// variable exists per viable (project, location) pair.
package assign

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/joshharrison/planloom/internal/milp"
	"github.com/joshharrison/planloom/internal/portfolio"
)

// Assigner holds one placement problem: an immutable snapshot of projects
// and location pools, built fresh per run. It owns no state across runs.
type Assigner struct {
	projects []portfolio.Project
	pools    map[string]map[string]portfolio.ResourcePool // location -> resource type
}

// New builds an Assigner from candidate projects and location pools. Pool
// cost multipliers default to 1.0 when unset. Duplicate project IDs and
// duplicate (location, resource type) pools are rejected.
func New(projects []portfolio.Project, pools []portfolio.ResourcePool) (*Assigner, error) {
	a := &Assigner{
		projects: make([]portfolio.Project, len(projects)),
		pools:    make(map[string]map[string]portfolio.ResourcePool),
	}
	copy(a.projects, projects)

	seen := make(map[string]bool, len(projects))
	for _, p := range a.projects {
		if p.ID == "" {
			return nil, fmt.Errorf("project with empty id")
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("duplicate project id %s", p.ID)
		}
		seen[p.ID] = true
	}

	for _, pool := range pools {
		if pool.Location == "" || pool.ResourceType == "" {
			return nil, fmt.Errorf("resource pool with empty location or resource type")
		}
		byType, ok := a.pools[pool.Location]
		if !ok {
			byType = make(map[string]portfolio.ResourcePool)
			a.pools[pool.Location] = byType
		}
		if _, dup := byType[pool.ResourceType]; dup {
			return nil, fmt.Errorf("duplicate pool %s/%s", pool.Location, pool.ResourceType)
		}
		if pool.CostMultiplier == 0 {
			pool.CostMultiplier = 1.0
		}
		byType[pool.ResourceType] = pool
	}

	return a, nil
}

// ValidateFeasibility checks, before optimizing, that every project has at
// least one allowed location stocking all of its required resource types.
// Violations are reported per project as structured issues; none of them
// aborts a subsequent Optimize, which simply leaves the affected projects
// unselected.
func (a *Assigner) ValidateFeasibility() *FeasibilityReport {
	report := &FeasibilityReport{Feasible: true}

	for _, p := range a.projects {
		valid := 0
		for _, loc := range p.AllowedLocations {
			byType, ok := a.pools[loc]
			if !ok {
				report.Issues = append(report.Issues, Issue{
					Type:      IssueInvalidLocation,
					ProjectID: p.ID,
					Location:  loc,
					Message:   fmt.Sprintf("location %s not defined in resource pools", loc),
				})
				continue
			}
			missing := missingResources(p, byType)
			if len(missing) > 0 {
				report.Issues = append(report.Issues, Issue{
					Type:             IssueMissingResources,
					ProjectID:        p.ID,
					Location:         loc,
					MissingResources: missing,
					Message:          fmt.Sprintf("location %s missing resources: %s", loc, strings.Join(missing, ", ")),
				})
				continue
			}
			valid++
		}
		if valid == 0 {
			report.Issues = append(report.Issues, Issue{
				Type:      IssueNoValidLocation,
				ProjectID: p.ID,
				Message:   fmt.Sprintf("project %s has no valid location assignments", p.ID),
			})
		}
	}

	report.Feasible = len(report.Issues) == 0
	return report
}

// Optimize solves the placement problem. Variables exist only for viable
// pairs: the location must be defined and stock every resource type the
// project requires, so projects flagged by ValidateFeasibility fall out of
// the selection instead of failing the run.
func (a *Assigner) Optimize(ctx context.Context, opts Options) (*Placement, error) {
	if len(a.projects) == 0 {
		return &Placement{
			Status:      StatusNoDemands,
			SelectedIDs: []string{},
			Message:     "no projects to optimize",
		}, nil
	}

	solver := opts.Solver
	if solver == nil {
		solver = &milp.BranchBound{}
	}
	bonus := opts.PreferredBonus
	if bonus == 0 {
		bonus = DefaultPreferredBonus
	}

	vars := a.buildVariables()
	problem := a.buildProblem(vars, opts.Objective, bonus, opts.MaxProjects)

	solution, err := solver.Solve(ctx, problem)
	switch {
	case errors.Is(err, milp.ErrInfeasible):
		return &Placement{
			Status:      StatusInfeasible,
			SelectedIDs: []string{},
			Message:     "no feasible placement under the location constraints",
		}, nil
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return &Placement{
			Status:      StatusTimedOut,
			SelectedIDs: []string{},
			Message:     "solver deadline exceeded",
		}, nil
	case err != nil:
		return nil, err
	}

	return a.buildPlacement(vars, solution, opts.Objective), nil
}

// variable is one (project, location) decision.
type variable struct {
	project  int // index into a.projects
	location string
}

func (a *Assigner) buildVariables() []variable {
	var vars []variable
	for i, p := range a.projects {
		for _, loc := range p.AllowedLocations {
			byType, ok := a.pools[loc]
			if !ok || len(missingResources(p, byType)) > 0 {
				continue
			}
			vars = append(vars, variable{project: i, location: loc})
		}
	}
	return vars
}

func (a *Assigner) buildProblem(vars []variable, objective Objective, bonus float64, maxProjects int) milp.Problem {
	n := len(vars)
	cost := make([]float64, n)

	for idx, v := range vars {
		p := a.projects[v.project]

		var value float64
		switch objective {
		case MaximizeNPV:
			value = p.NPV
		case MinimizeCost:
			total := 0.0
			for rtype, fte := range p.Requirements {
				total += a.pools[v.location][rtype].CostMultiplier * fte
			}
			value = -total
		default: // MaximizeValue
			value = p.NPV + p.StrategicValue
		}

		if p.PreferredLocation == v.location {
			value *= bonus
		}
		cost[idx] = -value // minimize
	}

	problem := milp.Problem{Cost: cost}

	// At most one location per project.
	for i := range a.projects {
		coeffs := make([]float64, n)
		hit := false
		for idx, v := range vars {
			if v.project == i {
				coeffs[idx] = 1
				hit = true
			}
		}
		if hit {
			problem.Constraints = append(problem.Constraints, milp.Constraint{Coeffs: coeffs, Bound: 1})
		}
	}

	// Per-location per-resource-type capacity.
	for _, loc := range a.sortedLocations() {
		for _, rtype := range sortedTypes(a.pools[loc]) {
			coeffs := make([]float64, n)
			hit := false
			for idx, v := range vars {
				if v.location != loc {
					continue
				}
				if req, ok := a.projects[v.project].Requirements[rtype]; ok && req > 0 {
					coeffs[idx] = req
					hit = true
				}
			}
			if hit {
				problem.Constraints = append(problem.Constraints, milp.Constraint{
					Coeffs: coeffs,
					Bound:  a.pools[loc][rtype].Capacity,
				})
			}
		}
	}

	// Optional cap on total placed projects. Each project contributes at
	// most one variable, so the plain sum counts projects.
	if maxProjects > 0 {
		coeffs := make([]float64, n)
		for i := range coeffs {
			coeffs[i] = 1
		}
		problem.Constraints = append(problem.Constraints, milp.Constraint{Coeffs: coeffs, Bound: float64(maxProjects)})
	}

	return problem
}

func (a *Assigner) buildPlacement(vars []variable, solution milp.Solution, objective Objective) *Placement {
	pl := &Placement{
		Status:             StatusSuccess,
		SelectedIDs:        []string{},
		Locations:          make(map[string]string),
		ProjectsByLocation: make(map[string][]string),
		ObjectiveValue:     -solution.Objective,
	}

	for idx, v := range vars {
		if solution.X[idx] < 0.5 {
			continue
		}
		p := a.projects[v.project]
		pl.SelectedIDs = append(pl.SelectedIDs, p.ID)
		pl.Assignments = append(pl.Assignments, portfolio.Assignment{ProjectID: p.ID, Location: v.location})
		pl.Locations[p.ID] = v.location
		pl.ProjectsByLocation[v.location] = append(pl.ProjectsByLocation[v.location], p.ID)
		pl.TotalNPV += p.NPV
		pl.TotalStrategic += p.StrategicValue
	}
	sort.Strings(pl.SelectedIDs)
	pl.NumSelected = len(pl.SelectedIDs)

	// Per-pool usage, including untouched pools.
	pl.Utilization = make(map[string]map[string]PoolUsage, len(a.pools))
	for loc, byType := range a.pools {
		pl.Utilization[loc] = make(map[string]PoolUsage, len(byType))
		for rtype, pool := range byType {
			used := 0.0
			for _, id := range pl.ProjectsByLocation[loc] {
				used += a.projectByID(id).Requirements[rtype]
			}
			usage := PoolUsage{
				Capacity:  pool.Capacity,
				Used:      used,
				Available: pool.Capacity - used,
			}
			if pool.Capacity > 0 {
				usage.UtilizationPct = used / pool.Capacity * 100
			}
			pl.Utilization[loc][rtype] = usage
		}
	}

	slog.Debug("location placement solved",
		"objective", objective.String(),
		"projects", len(a.projects),
		"placed", pl.NumSelected,
		"objective_value", pl.ObjectiveValue)

	return pl
}

// Summarize describes the problem inputs without solving anything.
func (a *Assigner) Summarize() *Summary {
	s := &Summary{
		NumLocations:        len(a.pools),
		Locations:           make(map[string]LocationInfo, len(a.pools)),
		ProjectDistribution: make(map[string]int),
	}

	for loc, byType := range a.pools {
		info := LocationInfo{Pools: make(map[string]PoolInfo, len(byType))}
		for _, rtype := range sortedTypes(byType) {
			pool := byType[rtype]
			info.ResourceTypes = append(info.ResourceTypes, rtype)
			info.TotalCapacity += pool.Capacity
			info.Pools[rtype] = PoolInfo{
				Capacity:       pool.Capacity,
				CostMultiplier: pool.CostMultiplier,
				TimeZone:       pool.TimeZone,
			}
		}
		s.Locations[loc] = info
	}

	for _, p := range a.projects {
		locs := append([]string(nil), p.AllowedLocations...)
		sort.Strings(locs)
		s.ProjectDistribution[strings.Join(locs, ",")]++
	}

	return s
}

func (a *Assigner) projectByID(id string) *portfolio.Project {
	for i := range a.projects {
		if a.projects[i].ID == id {
			return &a.projects[i]
		}
	}
	return nil
}

func (a *Assigner) sortedLocations() []string {
	locs := make([]string, 0, len(a.pools))
	for loc := range a.pools {
		locs = append(locs, loc)
	}
	sort.Strings(locs)
	return locs
}

func sortedTypes(byType map[string]portfolio.ResourcePool) []string {
	types := make([]string, 0, len(byType))
	for rtype := range byType {
		types = append(types, rtype)
	}
	sort.Strings(types)
	return types
}

func missingResources(p portfolio.Project, byType map[string]portfolio.ResourcePool) []string {
	var missing []string
	for rtype := range p.Requirements {
		if _, ok := byType[rtype]; !ok {
			missing = append(missing, rtype)
		}
	}
	sort.Strings(missing)
	return missing
}
