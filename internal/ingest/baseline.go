package ingest

import (
	"math"
	"sort"
	"strings"

	"github.com/sells-group/roi-modeler/internal/model"
)

// fallbackPipelinePerDollar is used as the pipeline-per-dollar rate when no
// productive channel with known spend exists to derive a median from.
const fallbackPipelinePerDollar = 40.0

// proxySpendFloorShare floors proxy spend for productive zero-spend channels
// at this share of the total budget.
const proxySpendFloorShare = 0.01

// BetaConfig selects the diminishing-returns exponent per channel.
type BetaConfig struct {
	Default    float64
	PerChannel map[string]float64
}

func (b BetaConfig) forChannel(channel string) float64 {
	if v, ok := b.PerChannel[strings.ToLower(channel)]; ok {
		return v
	}
	if b.Default > 0 {
		return b.Default
	}
	return 0.72
}

// channelTotals is one channel's summed historical outcomes.
type channelTotals struct {
	channel  string
	engaged  float64
	hqls     float64
	opps     float64
	pipeline float64
	revenue  float64
}

// BuildBaseline aggregates performance rows per channel, assigns each channel
// a baseline spend from the extracted splits, and fits the response-curve
// parameters against that spend.
//
// Channels without a split get spend in three fallback stages: first the
// unassigned budget is spread proportionally to pipeline (or HQLs), then any
// still-unspent productive channel gets a proxy spend from the median
// pipeline-per-dollar of its peers, and finally all spends are rescaled so
// they sum to the budget. With no usable signal at all the budget is split
// equally.
func BuildBaseline(perf []model.PerformanceRow, splits []Split, clientID string, totalBudget float64, betas BetaConfig) []model.ChannelBaseline {
	byChannel := make(map[string]*channelTotals)
	for _, row := range perf {
		t, ok := byChannel[row.Channel]
		if !ok {
			t = &channelTotals{channel: row.Channel}
			byChannel[row.Channel] = t
		}
		t.engaged += row.EngagedLeads
		t.hqls += row.HQLs
		t.opps += row.OppsSourced
		t.pipeline += row.PipelineSourced
		t.revenue += row.CWACVSourced
	}

	channels := make([]string, 0, len(byChannel))
	for ch := range byChannel {
		channels = append(channels, ch)
	}
	sort.Strings(channels)

	totals := make([]*channelTotals, len(channels))
	spends := make([]float64, len(channels))
	splitByChannel := make(map[string]Split, len(splits))
	for _, s := range splits {
		splitByChannel[strings.ToLower(s.Channel)] = s
	}
	for i, ch := range channels {
		totals[i] = byChannel[ch]
		if s, ok := splitByChannel[strings.ToLower(ch)]; ok && s.Spend != nil {
			spends[i] = *s.Spend
		}
	}

	if totalBudget > 0 {
		fillFromSignal(totals, spends, totalBudget)
		fillProxySpend(totals, spends, totalBudget)

		var spendTotal float64
		for _, s := range spends {
			spendTotal += s
		}
		if spendTotal > 0 {
			scale := totalBudget / spendTotal
			for i := range spends {
				spends[i] *= scale
			}
		}
	}

	var spendTotal float64
	for _, s := range spends {
		spendTotal += s
	}
	if spendTotal <= 0 && totalBudget > 0 && len(spends) > 0 {
		equal := totalBudget / float64(len(spends))
		for i := range spends {
			spends[i] = equal
		}
		spendTotal = totalBudget
	}

	rows := make([]model.ChannelBaseline, len(channels))
	for i, t := range totals {
		spend := spends[i]
		beta := betas.forChannel(t.channel)

		share := 0.0
		if spendTotal > 0 {
			share = spend / spendTotal
		}

		alpha := func(metric float64) float64 {
			if spend <= 0 {
				return 0
			}
			return metric / math.Pow(spend, beta)
		}

		roas := 0.0
		if spend > 0 {
			roas = t.revenue / spend
		}
		cac := 0.0
		if t.hqls > 0 {
			cac = spend / t.hqls
		}

		rows[i] = model.ChannelBaseline{
			ClientID:        clientID,
			Channel:         t.channel,
			BaselineSpend:   spend,
			BaselineShare:   share,
			EngagedLeads:    t.engaged,
			HQLs:            t.hqls,
			OppsSourced:     t.opps,
			PipelineSourced: t.pipeline,
			RevenueSourced:  t.revenue,
			ROASBaseline:    roas,
			CACBaseline:     cac,
			Beta:            beta,
			AlphaPipeline:   alpha(t.pipeline),
			AlphaRevenue:    alpha(t.revenue),
			AlphaHQLs:       alpha(t.hqls),
			AlphaLeads:      alpha(t.engaged),
			Notes:           "Derived from workbook history and modeled diminishing returns.",
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].BaselineSpend > rows[j].BaselineSpend
	})

	return rows
}

// fillFromSignal spreads the unassigned budget across channels without a
// split, proportionally to their pipeline (or HQLs when pipeline is zero).
func fillFromSignal(totals []*channelTotals, spends []float64, totalBudget float64) {
	var assigned, signalTotal float64
	signals := make([]float64, len(spends))
	for i, t := range totals {
		assigned += spends[i]
		if spends[i] > 0 {
			continue
		}
		signal := t.pipeline
		if signal <= 0 {
			signal = t.hqls
		}
		signals[i] = signal
		signalTotal += signal
	}

	remaining := math.Max(totalBudget-assigned, 0)
	if signalTotal <= 0 || remaining <= 0 {
		return
	}
	for i := range spends {
		if spends[i] <= 0 {
			spends[i] = signals[i] / signalTotal * remaining
		}
	}
}

// fillProxySpend gives productive channels that still have no spend a proxy
// derived from the median pipeline-per-dollar of their priced peers, floored
// at a small share of the budget.
func fillProxySpend(totals []*channelTotals, spends []float64, totalBudget float64) {
	var rates []float64
	for i, t := range totals {
		if spends[i] > 0 && t.pipeline > 0 {
			rates = append(rates, t.pipeline/spends[i])
		}
	}
	perDollar := median(rates)
	if perDollar <= 0 {
		perDollar = fallbackPipelinePerDollar
	}

	floor := totalBudget * proxySpendFloorShare
	for i, t := range totals {
		if spends[i] > 0 || (t.pipeline <= 0 && t.hqls <= 0) {
			continue
		}
		proxy := t.pipeline / perDollar
		if proxy < floor {
			proxy = floor
		}
		spends[i] = proxy
	}
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
