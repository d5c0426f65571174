package optimizer

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/sells-group/roi-modeler/internal/model"
)

// ErrInfeasibleConstraints is returned when the resolved per-channel bounds
// cannot absorb (or cannot reach) the total budget.
var ErrInfeasibleConstraints = eris.New("optimizer: infeasible constraints")

// feasibilityTolerance absorbs float noise when comparing aggregate bounds
// against the budget.
const feasibilityTolerance = 1e-6

// Bounds is one channel's effective spend interval after constraint
// resolution. MinROAS/MaxCAC are carried through as informational targets
// and never enforced by the engine.
type Bounds struct {
	Channel string
	Enabled bool
	Min     float64
	Max     float64
	MinROAS *float64
	MaxCAC  *float64
}

// ResolveConstraints merges raw constraint rows into one effective [min, max]
// spend interval per baseline channel, then checks aggregate feasibility
// against the total budget. Channels keep the order of the baseline table.
//
// Resolution per channel: a missing row defaults to enabled with [0, budget];
// a disabled row pins both bounds to zero; a locked spend >= 0 pins both
// bounds to the locked value; otherwise absolute bounds are tightened by any
// share-of-budget bounds, and a max below min is corrected up to min.
func ResolveConstraints(baseline []model.ChannelBaseline, constraints []model.Constraint, totalBudget float64) ([]Bounds, error) {
	byChannel := make(map[string]model.Constraint, len(constraints))
	for _, c := range constraints {
		byChannel[c.Channel] = c
	}

	bounds := make([]Bounds, 0, len(baseline))
	for _, ch := range baseline {
		c, ok := byChannel[ch.Channel]
		if !ok {
			c = model.Constraint{Channel: ch.Channel, Enabled: true}
		}

		b := Bounds{
			Channel: ch.Channel,
			Enabled: c.Enabled,
			MinROAS: c.MinROAS,
			MaxCAC:  c.MaxCAC,
		}

		switch {
		case !c.Enabled:
			// Disabled channels receive no spend and cannot gain budget later.

		case c.LockedSpend != nil && *c.LockedSpend >= 0:
			b.Min = *c.LockedSpend
			b.Max = *c.LockedSpend

		default:
			minSpend := 0.0
			if c.MinSpend != nil {
				minSpend = *c.MinSpend
			}
			maxSpend := totalBudget
			if c.MaxSpend != nil {
				maxSpend = *c.MaxSpend
			}
			if c.MinShare != nil {
				minSpend = math.Max(minSpend, *c.MinShare*totalBudget)
			}
			if c.MaxShare != nil {
				maxSpend = math.Min(maxSpend, *c.MaxShare*totalBudget)
			}
			if maxSpend < minSpend {
				maxSpend = minSpend
			}
			b.Min = minSpend
			b.Max = maxSpend
		}

		bounds = append(bounds, b)
	}

	var minTotal, maxTotal float64
	for _, b := range bounds {
		minTotal += b.Min
		maxTotal += b.Max
	}
	if minTotal-totalBudget > feasibilityTolerance {
		return nil, eris.Wrapf(ErrInfeasibleConstraints, "min spend %.2f exceeds budget %.2f", minTotal, totalBudget)
	}
	if maxTotal+feasibilityTolerance < totalBudget {
		return nil, eris.Wrapf(ErrInfeasibleConstraints, "max spend %.2f below budget %.2f", maxTotal, totalBudget)
	}

	return bounds, nil
}
