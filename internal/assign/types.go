package assign

import (
	"github.com/joshharrison/planloom/internal/milp"
	"github.com/joshharrison/planloom/internal/portfolio"
)

// Objective selects what the placement optimizer maximizes.
type Objective int

const (
	// MaximizeValue maximizes NPV plus strategic value.
	MaximizeValue Objective = iota
	// MaximizeNPV maximizes NPV only.
	MaximizeNPV
	// MinimizeCost minimizes cost-multiplier-weighted resource cost,
	// steering work toward cheaper locations.
	MinimizeCost
)

func (o Objective) String() string {
	switch o {
	case MaximizeValue:
		return "maximize_value"
	case MaximizeNPV:
		return "maximize_npv"
	case MinimizeCost:
		return "minimize_cost"
	default:
		return "unknown"
	}
}

// DefaultPreferredBonus is the multiplicative bonus applied to a
// variable's objective coefficient when its location matches the project's
// preferred location.
const DefaultPreferredBonus = 1.1

// Options configures a placement run. The zero value maximizes value with
// the default preferred-location bonus and solver.
type Options struct {
	Objective Objective

	// PreferredBonus overrides DefaultPreferredBonus; set to 1 to disable
	// the bonus. Zero means the default.
	PreferredBonus float64

	// MaxProjects caps how many projects may be placed in total; a
	// non-positive value disables the cap.
	MaxProjects int

	// Solver overrides the MILP backend; nil means a fresh BranchBound.
	Solver milp.Solver
}

// Status is the terminal state of one placement run.
type Status string

const (
	StatusSuccess    Status = "SUCCESS"
	StatusInfeasible Status = "INFEASIBLE"
	StatusTimedOut   Status = "TIMED_OUT"
	StatusNoDemands  Status = "NO_DEMANDS"
)

// PoolUsage reports one resource pool's load after placement.
type PoolUsage struct {
	Capacity       float64 `json:"capacity"`
	Used           float64 `json:"used"`
	UtilizationPct float64 `json:"utilization_pct"`
	Available      float64 `json:"available"`
}

// Placement is the outcome of one placement run.
type Placement struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`

	SelectedIDs []string               `json:"selected_projects"`
	Assignments []portfolio.Assignment `json:"assignments"`
	// Locations maps project ID to its chosen location.
	Locations   map[string]string `json:"location_assignments"`
	NumSelected int               `json:"num_selected"`

	TotalNPV       float64 `json:"total_npv"`
	TotalStrategic float64 `json:"total_strategic_value"`
	ObjectiveValue float64 `json:"objective_value"`

	// Utilization maps location then resource type to pool usage.
	Utilization        map[string]map[string]PoolUsage `json:"location_utilization"`
	ProjectsByLocation map[string][]string             `json:"projects_by_location"`
}

// IssueType classifies one feasibility violation.
type IssueType string

const (
	// IssueInvalidLocation flags an allowed location with no defined
	// resource pools.
	IssueInvalidLocation IssueType = "INVALID_LOCATION"
	// IssueMissingResources flags an allowed location that does not stock
	// every resource type the project requires.
	IssueMissingResources IssueType = "MISSING_RESOURCES"
	// IssueNoValidLocation flags a project with no location that could
	// host it at all.
	IssueNoValidLocation IssueType = "NO_VALID_LOCATION"
)

// Issue is one per-project feasibility violation. Issues are collected and
// reported, never fatal: the optimizer proceeds and leaves infeasible
// projects unselected.
type Issue struct {
	Type             IssueType `json:"type"`
	ProjectID        string    `json:"project_id"`
	Location         string    `json:"location,omitempty"`
	MissingResources []string  `json:"missing_resources,omitempty"`
	Message          string    `json:"message"`
}

// FeasibilityReport is the outcome of ValidateFeasibility.
type FeasibilityReport struct {
	Feasible bool    `json:"is_feasible"`
	Issues   []Issue `json:"issues"`
}

// PoolInfo describes one pool in a location summary.
type PoolInfo struct {
	Capacity       float64 `json:"capacity"`
	CostMultiplier float64 `json:"cost_multiplier"`
	TimeZone       string  `json:"time_zone,omitempty"`
}

// LocationInfo summarizes one location's pools.
type LocationInfo struct {
	ResourceTypes []string            `json:"resource_types"`
	TotalCapacity float64             `json:"total_capacity"`
	Pools         map[string]PoolInfo `json:"resources"`
}

// Summary describes the assigner's inputs: the locations, their pools, and
// how projects distribute over allowed-location sets.
type Summary struct {
	NumLocations int                     `json:"num_locations"`
	Locations    map[string]LocationInfo `json:"locations"`
	// ProjectDistribution counts projects per distinct sorted
	// allowed-location set, keyed by the comma-joined set.
	ProjectDistribution map[string]int `json:"project_distribution"`
}
