package cpm

import (
	"math"
	"testing"

	"github.com/joshharrison/planloom/internal/graph"
	"github.com/joshharrison/planloom/internal/portfolio"
)

func buildGraph(t *testing.T, projects []portfolio.Project) *graph.Graph {
	t.Helper()
	g, err := graph.Build(projects)
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	return g
}

func assertEntry(t *testing.T, e *Entry, es, ef, ls, lf, slack float64, critical bool) {
	t.Helper()
	const eps = 1e-9
	if math.Abs(e.EarliestStart-es) > eps || math.Abs(e.EarliestFinish-ef) > eps {
		t.Errorf("%s: expected ES/EF %v/%v, got %v/%v", e.ProjectID, es, ef, e.EarliestStart, e.EarliestFinish)
	}
	if math.Abs(e.LatestStart-ls) > eps || math.Abs(e.LatestFinish-lf) > eps {
		t.Errorf("%s: expected LS/LF %v/%v, got %v/%v", e.ProjectID, ls, lf, e.LatestStart, e.LatestFinish)
	}
	if math.Abs(e.Slack-slack) > eps {
		t.Errorf("%s: expected slack %v, got %v", e.ProjectID, slack, e.Slack)
	}
	if e.IsCritical != critical {
		t.Errorf("%s: expected critical=%v, got %v", e.ProjectID, critical, e.IsCritical)
	}
}

func TestAnalyze_ForkJoin(t *testing.T) {
	// A (3 months) feeds B (4 months) and C (2 months).
	g := buildGraph(t, []portfolio.Project{
		{ID: "A", DurationMonths: 3},
		{ID: "B", DurationMonths: 4, Dependencies: []string{"A"}},
		{ID: "C", DurationMonths: 2, Dependencies: []string{"A"}},
	})

	result, err := Analyze(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Horizon != 7 {
		t.Errorf("expected horizon 7, got %v", result.Horizon)
	}

	assertEntry(t, result.Entries["A"], 0, 3, 0, 3, 0, true)
	assertEntry(t, result.Entries["B"], 3, 7, 3, 7, 0, true)
	assertEntry(t, result.Entries["C"], 3, 5, 5, 7, 2, false)

	if len(result.CriticalPath) != 2 || result.CriticalPath[0] != "A" || result.CriticalPath[1] != "B" {
		t.Errorf("expected critical path [A B], got %v", result.CriticalPath)
	}
}

func TestAnalyze_LinearChain(t *testing.T) {
	g := buildGraph(t, []portfolio.Project{
		{ID: "a", DurationMonths: 1},
		{ID: "b", DurationMonths: 1, Dependencies: []string{"a"}},
		{ID: "c", DurationMonths: 1, Dependencies: []string{"b"}},
	})

	result, err := Analyze(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Horizon != 3 {
		t.Errorf("expected horizon 3, got %v", result.Horizon)
	}
	if len(result.CriticalPath) != 3 {
		t.Errorf("expected all 3 projects critical, got %v", result.CriticalPath)
	}
	assertEntry(t, result.Entries["b"], 1, 2, 1, 2, 0, true)
}

func TestAnalyze_DiamondDAG(t *testing.T) {
	// a -> b -> d and a -> c -> d, b longer than c.
	g := buildGraph(t, []portfolio.Project{
		{ID: "a", DurationMonths: 1},
		{ID: "b", DurationMonths: 3, Dependencies: []string{"a"}},
		{ID: "c", DurationMonths: 1, Dependencies: []string{"a"}},
		{ID: "d", DurationMonths: 1, Dependencies: []string{"b", "c"}},
	})

	result, err := Analyze(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Horizon != 5 {
		t.Errorf("expected horizon 5, got %v", result.Horizon)
	}
	assertEntry(t, result.Entries["c"], 1, 2, 3, 4, 2, false)
	assertEntry(t, result.Entries["d"], 4, 5, 4, 5, 0, true)
}

func TestAnalyze_TopologicalOrderRespectsDependencies(t *testing.T) {
	g := buildGraph(t, []portfolio.Project{
		{ID: "a", DurationMonths: 1},
		{ID: "b", DurationMonths: 1, Dependencies: []string{"a"}},
		{ID: "c", DurationMonths: 1, Dependencies: []string{"a", "b"}},
		{ID: "d", DurationMonths: 1},
		{ID: "e", DurationMonths: 1, Dependencies: []string{"c", "d"}},
	})

	result, err := Analyze(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pos := make(map[string]int, len(result.Order))
	for i, id := range result.Order {
		pos[id] = i
	}
	for id := range g.Projects {
		for _, dep := range g.Dependencies(id) {
			if pos[dep] >= pos[id] {
				t.Errorf("%s scheduled before its dependency %s", id, dep)
			}
		}
	}
}

func TestAnalyze_PriorityTieBreak(t *testing.T) {
	// Both roots eligible at once; the higher priority one sorts first.
	g := buildGraph(t, []portfolio.Project{
		{ID: "low", DurationMonths: 1, PriorityScore: 10},
		{ID: "high", DurationMonths: 1, PriorityScore: 90},
	})

	result, err := Analyze(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Order[0] != "high" {
		t.Errorf("expected high-priority project first, got %v", result.Order)
	}
	// Ordering must not change the schedule itself.
	assertEntry(t, result.Entries["low"], 0, 1, 0, 1, 0, true)
	assertEntry(t, result.Entries["high"], 0, 1, 0, 1, 0, true)
}

func TestAnalyze_ZeroDuration(t *testing.T) {
	g := buildGraph(t, []portfolio.Project{
		{ID: "gate", DurationMonths: 0},
		{ID: "work", DurationMonths: 2, Dependencies: []string{"gate"}},
	})

	result, err := Analyze(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e := result.Entries["gate"]
	if e.EarliestStart != e.EarliestFinish {
		t.Errorf("zero-duration project: ES %v != EF %v", e.EarliestStart, e.EarliestFinish)
	}
}

func TestAnalyze_FractionalDurations(t *testing.T) {
	g := buildGraph(t, []portfolio.Project{
		{ID: "a", DurationMonths: 1.5},
		{ID: "b", DurationMonths: 2.25, Dependencies: []string{"a"}},
	})

	result, err := Analyze(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(result.Horizon-3.75) > 1e-9 {
		t.Errorf("expected horizon 3.75, got %v", result.Horizon)
	}
	assertEntry(t, result.Entries["b"], 1.5, 3.75, 1.5, 3.75, 0, true)
}

func TestAnalyze_DisconnectedSubgraphs(t *testing.T) {
	g := buildGraph(t, []portfolio.Project{
		{ID: "a", DurationMonths: 4},
		{ID: "x", DurationMonths: 1},
		{ID: "y", DurationMonths: 1, Dependencies: []string{"x"}},
	})

	result, err := Analyze(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Horizon != 4 {
		t.Errorf("expected horizon 4, got %v", result.Horizon)
	}
	// The short chain floats inside the long project's window.
	assertEntry(t, result.Entries["x"], 0, 1, 2, 3, 2, false)
}

func TestAnalyze_CriticalPathDurationsSumToHorizon(t *testing.T) {
	g := buildGraph(t, []portfolio.Project{
		{ID: "a", DurationMonths: 2},
		{ID: "b", DurationMonths: 3, Dependencies: []string{"a"}},
		{ID: "c", DurationMonths: 1, Dependencies: []string{"a"}},
		{ID: "d", DurationMonths: 4, Dependencies: []string{"b"}},
	})

	result, err := Analyze(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sum := 0.0
	for _, id := range result.CriticalPath {
		sum += g.Projects[id].DurationMonths
	}
	if math.Abs(sum-result.Horizon) > 1e-9 {
		t.Errorf("critical path durations sum to %v, horizon is %v", sum, result.Horizon)
	}
	for _, id := range result.Order {
		if result.Entries[id].Slack < 0 {
			t.Errorf("%s has negative slack %v", id, result.Entries[id].Slack)
		}
	}
}

func TestAnalyze_RequiresValidation(t *testing.T) {
	g := graph.New()
	if err := g.Add(portfolio.Project{ID: "a", DurationMonths: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}

	if _, err := Analyze(g); err == nil {
		t.Fatal("expected error analyzing unvalidated graph")
	}
}
