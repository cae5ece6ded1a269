package selector

import "github.com/joshharrison/planloom/internal/milp"

// Candidate is one initiative competing for a portfolio slot. Valuation
// fields come from external providers and are consumed as opaque numbers.
type Candidate struct {
	ID             string  `json:"project_id"`
	Cost           float64 `json:"cost"`
	NPV            float64 `json:"npv"`
	StrategicScore float64 `json:"strategic_score"` // 0-100
	RiskScore      float64 `json:"risk_score"`      // 0-100
	PriorityScore  float64 `json:"priority_score"`
}

// Objective selects what the optimizer maximizes.
type Objective int

const (
	// MaximizeNPV maximizes total net present value.
	MaximizeNPV Objective = iota
	// MaximizeStrategic maximizes total strategic score.
	MaximizeStrategic
	// Balanced maximizes a weighted blend of NPV and strategic score, each
	// min-max normalized so NPV's larger numeric scale cannot dominate.
	Balanced
)

func (o Objective) String() string {
	switch o {
	case MaximizeNPV:
		return "maximize_npv"
	case MaximizeStrategic:
		return "maximize_strategic"
	case Balanced:
		return "balanced"
	default:
		return "unknown"
	}
}

// Weights blends the Balanced objective. The zero value means
// DefaultWeights.
type Weights struct {
	NPV       float64
	Strategic float64
}

// DefaultWeights is the Balanced blend used when none is supplied.
var DefaultWeights = Weights{NPV: 0.6, Strategic: 0.4}

// Constraints bounds the selection. Each constraint is independent and a
// non-positive value disables it.
type Constraints struct {
	// TotalBudget caps the summed cost of selected candidates.
	TotalBudget float64
	// MaxConcurrentProjects caps how many candidates may be selected.
	MaxConcurrentProjects int
	// MaxAvgRisk caps the mean risk score of the selected set. The ratio is
	// linearized as sum((risk_i - cap) * x_i) <= 0, which the empty
	// selection satisfies vacuously.
	MaxAvgRisk float64
}

// Options configures a selection run. The zero value solves with the
// default solver and the NPV objective.
type Options struct {
	Objective Objective
	// Weights applies only to the Balanced objective; zero means
	// DefaultWeights.
	Weights Weights
	// Solver overrides the MILP backend; nil means a fresh BranchBound.
	Solver milp.Solver
}

// Status is the terminal state of one selection run. Callers must branch on
// it rather than assuming a non-empty selection.
type Status string

const (
	StatusSuccess    Status = "SUCCESS"
	StatusInfeasible Status = "INFEASIBLE"
	StatusTimedOut   Status = "TIMED_OUT"
	StatusNoDemands  Status = "NO_DEMANDS"
)

// Detail is the per-selected-candidate breakdown.
type Detail struct {
	ProjectID      string  `json:"project_id"`
	NPV            float64 `json:"npv"`
	Cost           float64 `json:"cost"`
	StrategicScore float64 `json:"strategic_score"`
	RiskScore      float64 `json:"risk_score"`
	PriorityScore  float64 `json:"priority_score"`
}

// Decision is the outcome of one selection run.
type Decision struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`

	SelectedIDs []string `json:"selected_projects"`
	NumSelected int      `json:"num_selected"`
	NumRejected int      `json:"num_rejected"`

	TotalNPV          float64 `json:"total_npv"`
	TotalCost         float64 `json:"total_cost"`
	TotalStrategic    float64 `json:"total_strategic_value"`
	AvgStrategicScore float64 `json:"avg_strategic_score"`
	AvgRisk           float64 `json:"avg_risk"`
	ObjectiveValue    float64 `json:"objective_value"`

	Details []Detail `json:"selected_details,omitempty"`
}
