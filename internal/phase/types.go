package phase

// Options configures phase construction.
type Options struct {
	// MaxParallel bounds how many projects may run concurrently in one
	// phase. Values < 1 fall back to DefaultMaxParallel.
	MaxParallel int
}

// DefaultMaxParallel is the phase width used when Options leaves it unset.
const DefaultMaxParallel = 5

// Phase is an ordered group of projects whose dependencies are all
// satisfied by earlier phases and which execute concurrently.
type Phase struct {
	Index      int      `json:"index"`
	ProjectIDs []string `json:"project_ids"`
	StartMonth float64  `json:"start_month"`
	EndMonth   float64  `json:"end_month"`
}

// TimelineEntry is the concrete placement of one project.
type TimelineEntry struct {
	ProjectID  string   `json:"project_id"`
	StartMonth float64  `json:"start_month"`
	EndMonth   float64  `json:"end_month"`
	Phase      int      `json:"phase"`
	Parallel   []string `json:"parallel_projects,omitempty"` // other members of the same phase
}

// Plan is the full sequencing output: ordered phases plus the per-project
// timeline. Plans are pure output; they are produced once per run and never
// mutated afterward.
type Plan struct {
	Phases        []Phase                   `json:"phases"`
	Timeline      map[string]*TimelineEntry `json:"timeline"`
	CriticalPath  []string                  `json:"critical_path"`
	TotalDuration float64                   `json:"total_duration_months"`
	NumProjects   int                       `json:"num_projects"`
	NumPhases     int                       `json:"num_phases"`

	TotalStrategicValue float64 `json:"total_strategic_value"`
	TotalNPV            float64 `json:"total_npv"`
}

// GanttRow is one row of chart-ready timeline data for external
// visualization layers.
type GanttRow struct {
	ProjectID     string   `json:"project_id"`
	StartMonth    float64  `json:"start_month"`
	EndMonth      float64  `json:"end_month"`
	Duration      float64  `json:"duration"`
	Dependencies  []string `json:"dependencies,omitempty"`
	PriorityScore float64  `json:"priority_score"`
	IsCritical    bool     `json:"is_critical"`
	Parallel      []string `json:"parallel_projects,omitempty"`
}
