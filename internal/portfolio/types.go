package portfolio

// Project is a single unit of work in the portfolio. The sequencing path
// (graph, cpm, phase, ledger) uses durations, dependencies and resource
// requirements; the allocation path (selector, assign) uses the valuation
// and location fields. Valuation fields (NPV, StrategicValue, RiskScore,
// Cost) come from external providers and are treated as opaque scores.
type Project struct {
	ID             string  `json:"id"`
	DurationMonths float64 `json:"duration_months"`
	PriorityScore  float64 `json:"priority_score"`

	// Dependencies lists project IDs that must fully complete before this
	// project may start.
	Dependencies []string `json:"dependencies,omitempty"`

	// Requirements maps resource type to total FTE-months needed over the
	// whole project duration, consumed at constant intensity.
	Requirements map[string]float64 `json:"resource_requirements,omitempty"`

	StrategicValue float64 `json:"strategic_value,omitempty"` // 0-100
	NPV            float64 `json:"npv,omitempty"`
	Cost           float64 `json:"cost,omitempty"`
	RiskScore      float64 `json:"risk_score,omitempty"` // 0-100

	// AllowedLocations lists resource pool sites where the project may
	// execute. Only the allocation path reads these.
	AllowedLocations  []string `json:"allowed_locations,omitempty"`
	PreferredLocation string   `json:"preferred_location,omitempty"`
}

// ResourcePool is the capacity of one resource type at one location.
type ResourcePool struct {
	Location     string  `json:"location"`
	ResourceType string  `json:"resource_type"`
	Capacity     float64 `json:"capacity"` // FTE

	// CostMultiplier is the relative cost weight of this pool; 1.0 is the
	// baseline and the default when omitted.
	CostMultiplier float64 `json:"cost_multiplier,omitempty"`

	TimeZone string `json:"time_zone,omitempty"`
}

// Assignment pairs a selected project with the location it was placed at.
type Assignment struct {
	ProjectID string `json:"project_id"`
	Location  string `json:"location"`
}

// Portfolio is the full input document: the candidate projects, the
// per-location resource pools, and optional portfolio-wide monthly
// capacities used by the resource ledger.
type Portfolio struct {
	Projects []Project      `json:"projects"`
	Pools    []ResourcePool `json:"resource_pools,omitempty"`

	// Capacities maps resource type to portfolio-wide monthly FTE capacity,
	// independent of location.
	Capacities map[string]float64 `json:"resource_capacity,omitempty"`
}
