package ingest

import (
	"math"

	"github.com/sells-group/roi-modeler/internal/model"
)

// Default-constraint policy, applied when a client has no hand-edited
// constraint table yet.
const (
	defaultMinSpendRatio  = 0.40 // floor at 40% of baseline spend
	defaultMaxSpendRatio  = 1.8  // cap at 180% of baseline spend...
	defaultMaxBudgetShare = 0.10 // ...or 10% of budget, whichever is larger
	defaultMaxBudgetCap   = 0.75 // never above 75% of the budget
	defaultMinROASRatio   = 0.70
	defaultMaxCACRatio    = 1.40
)

// DefaultConstraints derives an editable starting constraint table from a
// channel baseline. A channel is enabled iff it carried baseline spend.
func DefaultConstraints(baseline []model.ChannelBaseline, clientID string, totalBudget float64) []model.Constraint {
	rows := make([]model.Constraint, 0, len(baseline))
	for _, b := range baseline {
		minSpend := 0.0
		if b.BaselineSpend > 0 {
			minSpend = round2(b.BaselineSpend * defaultMinSpendRatio)
		}

		var maxSpend float64
		if totalBudget <= 0 {
			maxSpend = round2(b.BaselineSpend * defaultMaxSpendRatio)
		} else {
			limit := math.Max(b.BaselineSpend*defaultMaxSpendRatio, totalBudget*defaultMaxBudgetShare)
			maxSpend = round2(math.Min(limit, totalBudget*defaultMaxBudgetCap))
		}

		c := model.Constraint{
			ClientID: clientID,
			Channel:  b.Channel,
			Enabled:  b.BaselineSpend > 0,
			MinSpend: &minSpend,
			MaxSpend: &maxSpend,
			Notes:    "User-editable hard caps and guardrails.",
		}

		if totalBudget > 0 {
			minShare := minSpend / totalBudget
			maxShare := maxSpend / totalBudget
			c.MinShare = &minShare
			c.MaxShare = &maxShare
		}
		if v := b.ROASBaseline * defaultMinROASRatio; v != 0 {
			c.MinROAS = &v
		}
		if v := b.CACBaseline * defaultMaxCACRatio; v != 0 {
			c.MaxCAC = &v
		}

		rows = append(rows, c)
	}

	return rows
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
