// Package optimizer implements the constrained budget allocation engine:
// per-channel diminishing-returns response curves, objective scoring,
// constraint resolution, a greedy marginal-gain search, and aggregate
// guardrail evaluation.
package optimizer

import (
	"math"

	"github.com/sells-group/roi-modeler/internal/model"
)

// Prediction holds the modeled outcomes for one channel at a given spend.
type Prediction struct {
	Pipeline float64 `json:"pipeline"`
	Revenue  float64 `json:"revenue"`
	HQLs     float64 `json:"hqls"`
	Leads    float64 `json:"leads"`
	ROAS     float64 `json:"roas"`
	CAC      float64 `json:"cac"`
}

// Predict evaluates a channel's response curves at the given spend level.
// Non-positive spend yields all-zero outcomes. Beta is expected in (0,1] but
// is not validated; out-of-range values produce degenerate predictions
// rather than an error.
func Predict(ch model.ChannelBaseline, spend float64) Prediction {
	if spend <= 0 {
		return Prediction{}
	}

	curve := math.Pow(spend, ch.Beta)
	p := Prediction{
		Pipeline: ch.AlphaPipeline * curve,
		Revenue:  ch.AlphaRevenue * curve,
		HQLs:     ch.AlphaHQLs * curve,
		Leads:    ch.AlphaLeads * curve,
	}
	p.ROAS = p.Revenue / spend
	if p.HQLs > 0 {
		p.CAC = spend / p.HQLs
	}

	return p
}
