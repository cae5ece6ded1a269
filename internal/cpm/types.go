package cpm

// Entry holds the computed schedule for a single project, in months from
// portfolio start.
type Entry struct {
	ProjectID      string
	EarliestStart  float64
	EarliestFinish float64
	LatestStart    float64
	LatestFinish   float64
	Slack          float64
	IsCritical     bool
}

// Result holds the complete critical path analysis.
type Result struct {
	Entries      map[string]*Entry
	Order        []string // topological order used for the passes
	CriticalPath []string // zero-slack projects in topological order
	Horizon      float64  // total portfolio duration in months
}
