package phase

import (
	"math"
	"testing"

	"github.com/joshharrison/planloom/internal/cpm"
	"github.com/joshharrison/planloom/internal/graph"
	"github.com/joshharrison/planloom/internal/portfolio"
)

func buildPlan(t *testing.T, projects []portfolio.Project, opts Options) (*graph.Graph, *cpm.Result, *Plan) {
	t.Helper()
	g, err := graph.Build(projects)
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	res, err := cpm.Analyze(g)
	if err != nil {
		t.Fatalf("cpm: %v", err)
	}
	plan, err := Build(g, res, opts)
	if err != nil {
		t.Fatalf("build plan: %v", err)
	}
	return g, res, plan
}

func TestBuild_RespectsDependenciesAndWidth(t *testing.T) {
	projects := []portfolio.Project{
		{ID: "a", DurationMonths: 2},
		{ID: "b", DurationMonths: 1},
		{ID: "c", DurationMonths: 1},
		{ID: "d", DurationMonths: 1, Dependencies: []string{"a", "b", "c"}},
	}
	_, _, plan := buildPlan(t, projects, Options{MaxParallel: 2})

	seen := make(map[string]int)
	for _, ph := range plan.Phases {
		if len(ph.ProjectIDs) > 2 {
			t.Errorf("phase %d has %d projects, max is 2", ph.Index, len(ph.ProjectIDs))
		}
		for _, id := range ph.ProjectIDs {
			seen[id]++
		}
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("project %s appears in %d phases", id, n)
		}
	}
	if len(seen) != len(projects) {
		t.Errorf("scheduled %d of %d projects", len(seen), len(projects))
	}

	// d must start after every dependency ends.
	dStart := plan.Timeline["d"].StartMonth
	for _, dep := range []string{"a", "b", "c"} {
		if plan.Timeline[dep].EndMonth > dStart {
			t.Errorf("d starts at %v before %s ends at %v", dStart, dep, plan.Timeline[dep].EndMonth)
		}
	}
}

func TestBuild_CriticalProjectsPackFirst(t *testing.T) {
	// Three roots, one slot per phase: the critical one must lead.
	projects := []portfolio.Project{
		{ID: "long", DurationMonths: 5, PriorityScore: 1},
		{ID: "mid", DurationMonths: 1, PriorityScore: 80},
		{ID: "short", DurationMonths: 1, PriorityScore: 99},
	}
	_, res, plan := buildPlan(t, projects, Options{MaxParallel: 1})

	if !res.Entries["long"].IsCritical {
		t.Fatal("expected long to be critical")
	}
	if plan.Phases[0].ProjectIDs[0] != "long" {
		t.Errorf("expected critical project first, got %v", plan.Phases[0].ProjectIDs)
	}
	// After criticality, higher priority wins.
	if plan.Phases[1].ProjectIDs[0] != "short" {
		t.Errorf("expected short (priority 99) second, got %v", plan.Phases[1].ProjectIDs)
	}
}

func TestBuild_PhaseAdvanceByLongestMember(t *testing.T) {
	projects := []portfolio.Project{
		{ID: "a", DurationMonths: 3},
		{ID: "b", DurationMonths: 1},
		{ID: "c", DurationMonths: 2, Dependencies: []string{"a", "b"}},
	}
	_, _, plan := buildPlan(t, projects, Options{MaxParallel: 5})

	if plan.Timeline["c"].StartMonth != 3 {
		t.Errorf("expected c to start at month 3, got %v", plan.Timeline["c"].StartMonth)
	}
	if plan.TotalDuration != 5 {
		t.Errorf("expected total duration 5, got %v", plan.TotalDuration)
	}
}

func TestBuild_ParallelPartnersRecorded(t *testing.T) {
	projects := []portfolio.Project{
		{ID: "a", DurationMonths: 1},
		{ID: "b", DurationMonths: 1},
	}
	_, _, plan := buildPlan(t, projects, Options{MaxParallel: 2})

	got := plan.Timeline["a"].Parallel
	if len(got) != 1 || got[0] != "b" {
		t.Errorf("expected a's parallel partners [b], got %v", got)
	}
}

func TestBuild_DefaultMaxParallel(t *testing.T) {
	var projects []portfolio.Project
	for _, id := range []string{"p1", "p2", "p3", "p4", "p5", "p6", "p7"} {
		projects = append(projects, portfolio.Project{ID: id, DurationMonths: 1})
	}
	_, _, plan := buildPlan(t, projects, Options{})

	if len(plan.Phases[0].ProjectIDs) != DefaultMaxParallel {
		t.Errorf("expected first phase width %d, got %d", DefaultMaxParallel, len(plan.Phases[0].ProjectIDs))
	}
}

func TestBuild_RequiresValidation(t *testing.T) {
	g := graph.New()
	if err := g.Add(portfolio.Project{ID: "a", DurationMonths: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := Build(g, &cpm.Result{}, Options{}); err == nil {
		t.Fatal("expected error building phases for unvalidated graph")
	}
}

func TestGanttRows_SortedByStart(t *testing.T) {
	projects := []portfolio.Project{
		{ID: "a", DurationMonths: 2},
		{ID: "b", DurationMonths: 1.5, Dependencies: []string{"a"}},
		{ID: "c", DurationMonths: 1, Dependencies: []string{"a"}},
	}
	g, _, plan := buildPlan(t, projects, Options{MaxParallel: 2})

	rows := plan.GanttRows(g)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	for i := 1; i < len(rows); i++ {
		if rows[i].StartMonth < rows[i-1].StartMonth {
			t.Errorf("rows not sorted by start month: %v before %v", rows[i-1], rows[i])
		}
	}
	if math.Abs(rows[1].Duration-1.5) > 1e-9 && math.Abs(rows[2].Duration-1.5) > 1e-9 {
		t.Error("expected one later row with duration 1.5")
	}
	if !rows[0].IsCritical {
		t.Errorf("expected first row (a) critical, got %+v", rows[0])
	}
}
