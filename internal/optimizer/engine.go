package optimizer

import (
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/roi-modeler/internal/model"
)

const (
	// maxRounds caps the greedy loop. With realistic channel counts and step
	// sizes the loop terminates in a few thousand rounds at most.
	maxRounds = 100_000

	// spendTolerance decides whether a channel still has headroom.
	spendTolerance = 1e-9

	// residualTolerance decides whether leftover budget is worth
	// redistributing after the greedy loop.
	residualTolerance = 1e-6
)

// Result holds the full output of one optimization run.
type Result struct {
	Allocation []model.Allocation `json:"allocation"`
	Summary    model.Summary      `json:"summary"`
}

// Optimize allocates the requested budget across the baseline channels.
//
// Every channel starts at its effective minimum; the remaining budget is then
// moved in fixed-size increments to whichever channel yields the greatest
// marginal score gain, iterating channels in baseline-table order so ties
// break on encounter order. Any residual left when all channels are pinned at
// max is redistributed once, proportionally to remaining headroom; residual
// that no channel can absorb is reported as unallocated, not an error.
//
// The search is a deterministic greedy hill-climb: with diminishing-returns
// curves each channel's marginal value is strictly decreasing in spend, so
// step-wise marginal-gain allocation closely tracks the optimum for separable
// concave objectives, and it stays feasible and budget-respecting when the
// objective is not strictly concave.
func Optimize(baseline []model.ChannelBaseline, constraints []model.Constraint, req model.RunRequest, catalog *Catalog) (*Result, error) {
	totalBudget := req.TotalBudget
	if totalBudget <= 0 {
		for _, ch := range baseline {
			totalBudget += ch.BaselineSpend
		}
	}

	objective := strings.ToLower(strings.TrimSpace(req.Objective))
	if objective == "" {
		objective = "pipeline"
	}
	weights, err := catalog.ResolveWeights(objective, req.Overrides)
	if err != nil {
		return nil, err
	}

	bounds, err := ResolveConstraints(baseline, constraints, totalBudget)
	if err != nil {
		return nil, err
	}

	spends := make([]float64, len(bounds))
	remaining := totalBudget
	for i, b := range bounds {
		spends[i] = b.Min
		remaining -= b.Min
	}

	step := math.Max(totalBudget/400, 50)

	rounds := 0
	for ; rounds < maxRounds; rounds++ {
		if remaining <= spendTolerance {
			break
		}

		best := -1
		bestGain := math.Inf(-1)
		bestDelta := 0.0
		for i, b := range bounds {
			if !b.Enabled {
				continue
			}
			current := spends[i]
			if current >= b.Max-spendTolerance {
				continue
			}

			delta := math.Min(step, math.Min(remaining, b.Max-current))
			gain := Score(Predict(baseline[i], current+delta), weights) -
				Score(Predict(baseline[i], current), weights)
			if gain > bestGain {
				best = i
				bestGain = gain
				bestDelta = delta
			}
		}

		if best < 0 {
			break
		}
		spends[best] += bestDelta
		remaining -= bestDelta
	}

	if remaining > residualTolerance {
		var headroom float64
		for i, b := range bounds {
			headroom += math.Max(b.Max-spends[i], 0)
		}
		if headroom > 0 {
			residual := remaining
			for i, b := range bounds {
				spends[i] += math.Max(b.Max-spends[i], 0) / headroom * residual
			}
			remaining = 0
		}
	}

	allocation := make([]model.Allocation, len(bounds))
	for i, b := range bounds {
		spend := spends[i]
		pred := Predict(baseline[i], spend)

		share := 0.0
		if totalBudget > 0 {
			share = spend / totalBudget
		}

		allocation[i] = model.Allocation{
			ClientID:         req.ClientID,
			Channel:          b.Channel,
			RecommendedSpend: round2(spend),
			RecommendedShare: round4(share),
			PredPipeline:     round2(pred.Pipeline),
			PredRevenue:      round2(pred.Revenue),
			PredHQLs:         round2(pred.HQLs),
			PredLeads:        round2(pred.Leads),
			PredROAS:         round4(pred.ROAS),
			PredCAC:          round4(pred.CAC),
			MinSpend:         round2(b.Min),
			MaxSpend:         round2(b.Max),
		}
	}
	sort.SliceStable(allocation, func(i, j int) bool {
		return allocation[i].RecommendedSpend > allocation[j].RecommendedSpend
	})

	var totalPipeline, totalRevenue, totalHQLs float64
	for _, a := range allocation {
		totalPipeline += a.PredPipeline
		totalRevenue += a.PredRevenue
		totalHQLs += a.PredHQLs
	}

	overallROAS := 0.0
	if totalBudget > 0 {
		overallROAS = totalRevenue / totalBudget
	}
	overallCAC := 0.0
	if totalHQLs > 0 {
		overallCAC = totalBudget / totalHQLs
	}

	summary := model.Summary{
		GeneratedAt:       time.Now().UTC(),
		ClientID:          req.ClientID,
		Objective:         objective,
		Weights:           weights,
		TotalBudget:       round2(totalBudget),
		TotalPipeline:     round2(totalPipeline),
		TotalRevenue:      round2(totalRevenue),
		TotalHQLs:         round2(totalHQLs),
		OverallROAS:       round4(overallROAS),
		OverallCAC:        round4(overallCAC),
		GuardrailStatus:   EvaluateGuardrails(overallROAS, overallCAC, req.Guardrails),
		UnallocatedBudget: round6(remaining),
	}

	zap.L().Debug("optimizer: run complete",
		zap.String("client", req.ClientID),
		zap.String("objective", objective),
		zap.Float64("total_budget", totalBudget),
		zap.Int("channels", len(allocation)),
		zap.Int("rounds", rounds),
		zap.Float64("unallocated", remaining),
		zap.String("guardrail_status", summary.GuardrailStatus),
	)

	return &Result{Allocation: allocation, Summary: summary}, nil
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round4(v float64) float64 { return math.Round(v*10_000) / 10_000 }
func round6(v float64) float64 { return math.Round(v*1_000_000) / 1_000_000 }
