package optimizer

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/roi-modeler/internal/model"
)

func twoChannelBaseline() []model.ChannelBaseline {
	return []model.ChannelBaseline{
		{Channel: "a", BaselineSpend: 5000, Beta: 0.8, AlphaPipeline: 50, AlphaRevenue: 20, AlphaHQLs: 0.5, AlphaLeads: 2},
		{Channel: "b", BaselineSpend: 5000, Beta: 0.9, AlphaPipeline: 10, AlphaRevenue: 8, AlphaHQLs: 0.2, AlphaLeads: 1},
	}
}

func pipelineRequest(budget float64) model.RunRequest {
	return model.RunRequest{
		ClientID:    "acme",
		TotalBudget: budget,
		Objective:   "pipeline",
	}
}

func TestOptimize_BudgetConservation(t *testing.T) {
	constraints := []model.Constraint{
		{Channel: "a", Enabled: true, MaxSpend: fptr(8000)},
		{Channel: "b", Enabled: true, MaxSpend: fptr(8000)},
	}

	res, err := Optimize(twoChannelBaseline(), constraints, pipelineRequest(10_000), DefaultCatalog())
	require.NoError(t, err)

	var total float64
	for _, a := range res.Allocation {
		total += a.RecommendedSpend
	}
	assert.InDelta(t, 10_000, total+res.Summary.UnallocatedBudget, 1e-2,
		"recommended spend plus residual must equal the budget")
}

func TestOptimize_BoundRespect(t *testing.T) {
	constraints := []model.Constraint{
		{Channel: "a", Enabled: true, MinSpend: fptr(1000), MaxSpend: fptr(8000)},
		{Channel: "b", Enabled: true, MinSpend: fptr(500), MaxSpend: fptr(8000)},
	}

	res, err := Optimize(twoChannelBaseline(), constraints, pipelineRequest(10_000), DefaultCatalog())
	require.NoError(t, err)

	for _, a := range res.Allocation {
		assert.GreaterOrEqual(t, a.RecommendedSpend, a.MinSpend, "channel %s under min", a.Channel)
		assert.LessOrEqual(t, a.RecommendedSpend, a.MaxSpend, "channel %s over max", a.Channel)
	}
}

func TestOptimize_FavorsHigherMarginalChannel(t *testing.T) {
	// Channel a's marginal pipeline-per-step dominates channel b's across the
	// whole range, so the greedy loop should give a the majority of spend
	// without exceeding its 8000 cap.
	constraints := []model.Constraint{
		{Channel: "a", Enabled: true, MaxSpend: fptr(8000)},
		{Channel: "b", Enabled: true, MaxSpend: fptr(8000)},
	}

	res, err := Optimize(twoChannelBaseline(), constraints, pipelineRequest(10_000), DefaultCatalog())
	require.NoError(t, err)

	byChannel := map[string]model.Allocation{}
	for _, a := range res.Allocation {
		byChannel[a.Channel] = a
	}
	assert.GreaterOrEqual(t, byChannel["a"].RecommendedSpend, byChannel["b"].RecommendedSpend)
	assert.LessOrEqual(t, byChannel["a"].RecommendedSpend, 8000.0)
}

func TestOptimize_DisabledChannelGetsNothing(t *testing.T) {
	constraints := []model.Constraint{
		{Channel: "a", Enabled: true, MaxSpend: fptr(10_000)},
		{Channel: "b", Enabled: false},
	}

	res, err := Optimize(twoChannelBaseline(), constraints, pipelineRequest(10_000), DefaultCatalog())
	require.NoError(t, err)

	for _, a := range res.Allocation {
		if a.Channel == "b" {
			assert.Zero(t, a.RecommendedSpend)
		}
	}
}

func TestOptimize_LockedChannelPinned(t *testing.T) {
	constraints := []model.Constraint{
		{Channel: "a", Enabled: true, MaxSpend: fptr(10_000)},
		{Channel: "b", Enabled: true, LockedSpend: fptr(3000)},
	}

	res, err := Optimize(twoChannelBaseline(), constraints, pipelineRequest(10_000), DefaultCatalog())
	require.NoError(t, err)

	for _, a := range res.Allocation {
		if a.Channel == "b" {
			assert.Equal(t, 3000.0, a.RecommendedSpend)
		}
	}
}

func TestOptimize_InfeasibleMins(t *testing.T) {
	constraints := []model.Constraint{
		{Channel: "a", Enabled: true, MinSpend: fptr(6000)},
		{Channel: "b", Enabled: true, MinSpend: fptr(6000)},
	}

	_, err := Optimize(twoChannelBaseline(), constraints, pipelineRequest(10_000), DefaultCatalog())
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrInfeasibleConstraints))
}

func TestOptimize_UnknownObjective(t *testing.T) {
	req := pipelineRequest(10_000)
	req.Objective = "world-domination"

	_, err := Optimize(twoChannelBaseline(), nil, req, DefaultCatalog())
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrUnknownObjective))
}

func TestOptimize_Deterministic(t *testing.T) {
	constraints := []model.Constraint{
		{Channel: "a", Enabled: true, MaxSpend: fptr(8000)},
		{Channel: "b", Enabled: true, MaxSpend: fptr(8000)},
	}

	first, err := Optimize(twoChannelBaseline(), constraints, pipelineRequest(10_000), DefaultCatalog())
	require.NoError(t, err)
	second, err := Optimize(twoChannelBaseline(), constraints, pipelineRequest(10_000), DefaultCatalog())
	require.NoError(t, err)

	assert.Equal(t, first.Allocation, second.Allocation)

	// The summary carries a wall-clock timestamp; everything else must match.
	a, b := first.Summary, second.Summary
	a.GeneratedAt = b.GeneratedAt
	assert.Equal(t, b, a)
}

func TestOptimize_DefaultBudgetFromBaseline(t *testing.T) {
	req := pipelineRequest(0)

	res, err := Optimize(twoChannelBaseline(), nil, req, DefaultCatalog())
	require.NoError(t, err)
	assert.InDelta(t, 10_000, res.Summary.TotalBudget, 1e-9)
}

func TestOptimize_SortedBySpendDescending(t *testing.T) {
	constraints := []model.Constraint{
		{Channel: "a", Enabled: true, MaxSpend: fptr(8000)},
		{Channel: "b", Enabled: true, MaxSpend: fptr(8000)},
	}

	res, err := Optimize(twoChannelBaseline(), constraints, pipelineRequest(10_000), DefaultCatalog())
	require.NoError(t, err)
	for i := 1; i < len(res.Allocation); i++ {
		assert.GreaterOrEqual(t, res.Allocation[i-1].RecommendedSpend, res.Allocation[i].RecommendedSpend)
	}
}

func TestOptimize_GuardrailStamped(t *testing.T) {
	req := pipelineRequest(10_000)
	req.Guardrails = model.Guardrails{MinROAS: fptr(1e9)} // impossible floor

	res, err := Optimize(twoChannelBaseline(), nil, req, DefaultCatalog())
	require.NoError(t, err, "guardrail failure is advisory, not an error")
	assert.Equal(t, GuardrailFail, res.Summary.GuardrailStatus)
}
