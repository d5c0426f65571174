// Package sample generates synthetic client datasets for demos by scaling
// and noising an existing client's canonical tables.
package sample

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/roi-modeler/internal/config"
	"github.com/sells-group/roi-modeler/internal/ingest"
	"github.com/sells-group/roi-modeler/internal/model"
	"github.com/sells-group/roi-modeler/internal/report"
)

// Options configures one synthetic dataset generation.
type Options struct {
	SourceClient   string
	TargetClient   string
	PerformanceCSV string
	BaselineCSV    string
	OutputDir      string
	ClientsDir     string
	Scale          float64
	Noise          float64
	Seed           int64
}

// Outputs lists the files produced by Generate.
type Outputs struct {
	PerformanceCSV string `json:"performance_csv"`
	BaselineCSV    string `json:"baseline_csv"`
	ConstraintsCSV string `json:"constraints_csv"`
	ClientConfig   string `json:"config_yaml"`
}

// Generate builds a synthetic client dataset from a source client's canonical
// tables: every numeric column is scaled and multiplied by lognormal noise,
// derived columns are recomputed, default constraints are derived, and a
// client config with run defaults is written. Output is deterministic for a
// fixed seed.
func Generate(opts Options) (*Outputs, error) {
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, eris.Wrap(err, "sample: create output dir")
	}

	performance, err := report.ReadPerformance(opts.PerformanceCSV)
	if err != nil {
		return nil, err
	}
	performance = filterPerformance(performance, opts.SourceClient)
	if len(performance) == 0 {
		return nil, eris.Errorf("sample: no source performance rows for client %q", opts.SourceClient)
	}

	baseline, err := report.ReadBaseline(opts.BaselineCSV)
	if err != nil {
		return nil, err
	}
	baseline = filterBaseline(baseline, opts.SourceClient)
	if len(baseline) == 0 {
		return nil, eris.Errorf("sample: no source baseline rows for client %q", opts.SourceClient)
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	lognormal := func(sigma float64) float64 {
		return math.Exp(rng.NormFloat64() * sigma)
	}

	for i := range performance {
		p := &performance[i]
		noised := func(v float64) float64 { return v * opts.Scale * lognormal(opts.Noise) }

		p.EngagedLeads = math.Round(noised(p.EngagedLeads))
		p.HQLs = math.Round(noised(p.HQLs))
		p.OppsSourced = math.Round(noised(p.OppsSourced))
		p.CWOppsSourced = math.Round(noised(p.CWOppsSourced))
		p.PipelineSourced = round2(noised(p.PipelineSourced))
		p.PipelineInfluenced = round2(noised(p.PipelineInfluenced))
		p.CWACVSourced = round2(noised(p.CWACVSourced))
		p.CWACVInfluenced = round2(noised(p.CWACVInfluenced))

		p.HQLToOppConversion = 0
		if p.HQLs > 0 {
			p.HQLToOppConversion = p.OppsSourced / p.HQLs
		}
		p.ClientID = opts.TargetClient
	}

	var spendTotal float64
	for i := range baseline {
		b := &baseline[i]
		sigma := opts.Noise * 0.8
		noised := func(v float64) float64 { return round2(v * opts.Scale * lognormal(sigma)) }

		b.BaselineSpend = noised(b.BaselineSpend)
		b.EngagedLeads = noised(b.EngagedLeads)
		b.HQLs = noised(b.HQLs)
		b.OppsSourced = noised(b.OppsSourced)
		b.PipelineSourced = noised(b.PipelineSourced)
		b.RevenueSourced = noised(b.RevenueSourced)
		spendTotal += b.BaselineSpend
	}

	for i := range baseline {
		b := &baseline[i]
		b.BaselineShare = 0
		if spendTotal > 0 {
			b.BaselineShare = b.BaselineSpend / spendTotal
		}

		alpha := func(metric float64) float64 {
			if b.BaselineSpend <= 0 {
				return 0
			}
			return metric / math.Pow(b.BaselineSpend, b.Beta)
		}
		b.AlphaPipeline = alpha(b.PipelineSourced)
		b.AlphaRevenue = alpha(b.RevenueSourced)
		b.AlphaHQLs = alpha(b.HQLs)
		b.AlphaLeads = alpha(b.EngagedLeads)

		b.ROASBaseline = 0
		if b.BaselineSpend > 0 {
			b.ROASBaseline = b.RevenueSourced / b.BaselineSpend
		}
		b.CACBaseline = 0
		if b.HQLs > 0 {
			b.CACBaseline = b.BaselineSpend / b.HQLs
		}

		b.ClientID = opts.TargetClient
		b.Notes = fmt.Sprintf("Synthetic sample scaled from %s patterns.", opts.SourceClient)
	}

	constraints := ingest.DefaultConstraints(baseline, opts.TargetClient, spendTotal)

	out := &Outputs{
		PerformanceCSV: filepath.Join(opts.OutputDir, opts.TargetClient+"_performance.csv"),
		BaselineCSV:    filepath.Join(opts.OutputDir, opts.TargetClient+"_channel_baseline.csv"),
		ConstraintsCSV: filepath.Join(opts.OutputDir, opts.TargetClient+"_constraints.csv"),
	}
	if err := report.WritePerformance(out.PerformanceCSV, performance); err != nil {
		return nil, err
	}
	if err := report.WriteBaseline(out.BaselineCSV, baseline); err != nil {
		return nil, err
	}
	if err := report.WriteConstraints(out.ConstraintsCSV, constraints); err != nil {
		return nil, err
	}

	cc := &config.ClientConfig{
		ClientID:    opts.TargetClient,
		Description: fmt.Sprintf("Synthetic demo dataset generated from %s.", opts.SourceClient),
		Data: config.ClientDataPaths{
			PerformanceCSV: filepath.ToSlash(out.PerformanceCSV),
			BaselineCSV:    filepath.ToSlash(out.BaselineCSV),
			ConstraintsCSV: filepath.ToSlash(out.ConstraintsCSV),
		},
		RunDefaults: config.RunDefaults{
			Objective:   "pipeline",
			TotalBudget: round2(spendTotal),
			Guardrails:  defaultGuardrails(baseline),
		},
	}
	configPath, err := config.SaveClient(opts.ClientsDir, cc)
	if err != nil {
		return nil, err
	}
	out.ClientConfig = configPath

	zap.L().Info("sample: dataset generated",
		zap.String("source", opts.SourceClient),
		zap.String("target", opts.TargetClient),
		zap.Int("channels", len(baseline)),
		zap.Float64("total_budget", spendTotal),
	)

	return out, nil
}

// defaultGuardrails derives run-default guardrails from the synthetic
// baseline: 70% of mean historical ROAS and 140% of mean nonzero CAC.
func defaultGuardrails(baseline []model.ChannelBaseline) model.Guardrails {
	var g model.Guardrails

	var roasSum float64
	for _, b := range baseline {
		roasSum += b.ROASBaseline
	}
	if len(baseline) > 0 {
		if v := round4(roasSum / float64(len(baseline)) * 0.70); v > 0 {
			g.MinROAS = &v
		}
	}

	var cacSum float64
	var cacCount int
	for _, b := range baseline {
		if b.CACBaseline > 0 {
			cacSum += b.CACBaseline
			cacCount++
		}
	}
	if cacCount > 0 {
		v := round4(cacSum / float64(cacCount) * 1.4)
		g.MaxCAC = &v
	}

	return g
}

func filterPerformance(rows []model.PerformanceRow, clientID string) []model.PerformanceRow {
	var out []model.PerformanceRow
	for _, r := range rows {
		if r.ClientID == clientID {
			out = append(out, r)
		}
	}
	return out
}

func filterBaseline(rows []model.ChannelBaseline, clientID string) []model.ChannelBaseline {
	var out []model.ChannelBaseline
	for _, r := range rows {
		if r.ClientID == clientID {
			out = append(out, r)
		}
	}
	return out
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round4(v float64) float64 { return math.Round(v*10_000) / 10_000 }
