package selector

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelect_BudgetPicksBestNPV(t *testing.T) {
	// p1 fits the budget alone; p2 is too expensive and both together are
	// way over. The optimizer must take p1 even though p2 looks secondary.
	candidates := []Candidate{
		{ID: "p1", Cost: 100, NPV: 500, StrategicScore: 50, RiskScore: 30},
		{ID: "p2", Cost: 200, NPV: 300, StrategicScore: 80, RiskScore: 20},
	}

	d, err := Select(context.Background(), candidates, Constraints{TotalBudget: 150}, Options{})
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, d.Status)
	assert.Equal(t, []string{"p1"}, d.SelectedIDs)
	assert.Equal(t, 1, d.NumSelected)
	assert.Equal(t, 1, d.NumRejected)
	assert.InDelta(t, 500, d.TotalNPV, 1e-9)
	assert.InDelta(t, 100, d.TotalCost, 1e-9)
	assert.InDelta(t, 500, d.ObjectiveValue, 1e-9)
}

func TestSelect_NoConstraintsTakesEverything(t *testing.T) {
	candidates := []Candidate{
		{ID: "p1", Cost: 100, NPV: 500},
		{ID: "p2", Cost: 200, NPV: 300},
		{ID: "p3", Cost: 50, NPV: 100},
	}

	d, err := Select(context.Background(), candidates, Constraints{}, Options{})
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, d.Status)
	assert.Len(t, d.SelectedIDs, 3)
	assert.InDelta(t, 900, d.TotalNPV, 1e-9)
	assert.Zero(t, d.NumRejected)
}

func TestSelect_EmptyCandidates(t *testing.T) {
	d, err := Select(context.Background(), nil, Constraints{TotalBudget: 100}, Options{})
	require.NoError(t, err)

	assert.Equal(t, StatusNoDemands, d.Status)
	assert.Empty(t, d.SelectedIDs)
	assert.NotEmpty(t, d.Message)
}

func TestSelect_ExpiredContextTimesOut(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	candidates := []Candidate{{ID: "p1", Cost: 100, NPV: 500}}
	d, err := Select(ctx, candidates, Constraints{}, Options{})
	require.NoError(t, err)

	assert.Equal(t, StatusTimedOut, d.Status)
	assert.Empty(t, d.SelectedIDs)
}

func TestSelect_MaxConcurrent(t *testing.T) {
	candidates := []Candidate{
		{ID: "p1", NPV: 500},
		{ID: "p2", NPV: 300},
		{ID: "p3", NPV: 400},
	}

	d, err := Select(context.Background(), candidates, Constraints{MaxConcurrentProjects: 2}, Options{})
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, d.Status)
	assert.ElementsMatch(t, []string{"p1", "p3"}, d.SelectedIDs)
	assert.InDelta(t, 900, d.TotalNPV, 1e-9)
}

func TestSelect_RiskCapExcludesRiskyProject(t *testing.T) {
	// Taking both puts the average risk at 50, over the cap of 40; the
	// optimizer keeps the high-NPV low-risk candidate alone.
	candidates := []Candidate{
		{ID: "safe", NPV: 500, RiskScore: 20},
		{ID: "risky", NPV: 400, RiskScore: 80},
	}

	d, err := Select(context.Background(), candidates, Constraints{MaxAvgRisk: 40}, Options{})
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, d.Status)
	assert.Equal(t, []string{"safe"}, d.SelectedIDs)
	assert.InDelta(t, 20, d.AvgRisk, 1e-9)
}

func TestSelect_RiskCapAllowsBlending(t *testing.T) {
	// The risky candidate is admissible in combination: (20 + 60) / 2 = 40
	// meets the cap exactly, and both together beat either alone.
	candidates := []Candidate{
		{ID: "safe", NPV: 500, RiskScore: 20},
		{ID: "risky", NPV: 400, RiskScore: 60},
	}

	d, err := Select(context.Background(), candidates, Constraints{MaxAvgRisk: 40}, Options{})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"safe", "risky"}, d.SelectedIDs)
	assert.InDelta(t, 40, d.AvgRisk, 1e-9)
}

func TestSelect_StrategicObjective(t *testing.T) {
	candidates := []Candidate{
		{ID: "p1", Cost: 100, NPV: 500, StrategicScore: 30},
		{ID: "p2", Cost: 100, NPV: 100, StrategicScore: 90},
	}

	d, err := Select(context.Background(), candidates, Constraints{TotalBudget: 100},
		Options{Objective: MaximizeStrategic})
	require.NoError(t, err)

	assert.Equal(t, []string{"p2"}, d.SelectedIDs)
	assert.InDelta(t, 90, d.ObjectiveValue, 1e-9)
}

func TestSelect_BalancedObjectiveNormalizes(t *testing.T) {
	// Under raw NPV p1 dominates, but normalization puts both NPV and
	// strategic score on [0,1] so p2's near-perfect strategic score wins
	// once the blend leans strategic.
	candidates := []Candidate{
		{ID: "p1", Cost: 100, NPV: 1000, StrategicScore: 10},
		{ID: "p2", Cost: 100, NPV: 900, StrategicScore: 95},
	}

	d, err := Select(context.Background(), candidates, Constraints{TotalBudget: 100},
		Options{Objective: Balanced, Weights: Weights{NPV: 0.3, Strategic: 0.7}})
	require.NoError(t, err)

	assert.Equal(t, []string{"p2"}, d.SelectedIDs)
}

func TestSelect_RelaxingBudgetNeverHurts(t *testing.T) {
	candidates := []Candidate{
		{ID: "p1", Cost: 100, NPV: 500},
		{ID: "p2", Cost: 200, NPV: 300},
		{ID: "p3", Cost: 150, NPV: 450},
	}

	prev := -1.0
	for _, budget := range []float64{100, 250, 500} {
		d, err := Select(context.Background(), candidates, Constraints{TotalBudget: budget}, Options{})
		require.NoError(t, err)
		require.Equal(t, StatusSuccess, d.Status)
		assert.GreaterOrEqual(t, d.TotalNPV, prev, "budget %v", budget)
		prev = d.TotalNPV
	}
}

func TestCompareScenarios(t *testing.T) {
	candidates := []Candidate{
		{ID: "p1", Cost: 100, NPV: 500, StrategicScore: 30, RiskScore: 60},
		{ID: "p2", Cost: 200, NPV: 300, StrategicScore: 80, RiskScore: 20},
		{ID: "p3", Cost: 150, NPV: 450, StrategicScore: 50, RiskScore: 40},
	}

	cmp, err := CompareScenarios(context.Background(), candidates, []Scenario{
		{Name: "tight", Constraints: Constraints{TotalBudget: 150}},
		{Name: "loose", Constraints: Constraints{TotalBudget: 500}},
		{Name: "strategic", Constraints: Constraints{TotalBudget: 500}, Objective: MaximizeStrategic},
	})
	require.NoError(t, err)
	require.Len(t, cmp.Results, 3)

	assert.Equal(t, StatusSuccess, cmp.Results["tight"].Status)
	assert.Equal(t, []string{"p1"}, cmp.Results["tight"].SelectedIDs)
	assert.Len(t, cmp.Results["loose"].SelectedIDs, 3)

	// Loose and strategic both select everything; ranking keeps the first
	// strict improvement, so any all-in scenario is a valid best.
	assert.Contains(t, []string{"loose", "strategic"}, cmp.BestByNPV)
	assert.InDelta(t, 1250, cmp.Results["loose"].TotalNPV, 1e-9)
}

func TestCompareScenarios_Empty(t *testing.T) {
	_, err := CompareScenarios(context.Background(), []Candidate{{ID: "p1", NPV: 1}}, nil)
	require.Error(t, err)
}
