package ingest

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/roi-modeler/internal/model"
	"github.com/sells-group/roi-modeler/internal/report"
)

// Options configures one workbook ingestion.
type Options struct {
	WorkbookPath     string
	OutputDir        string
	ClientID         string
	PerformanceSheet string
	ModellerSheet    string
	Betas            BetaConfig
}

// Metadata summarizes one completed ingestion.
type Metadata struct {
	ClientID           string  `json:"client_id"`
	WorkbookPath       string  `json:"workbook_path"`
	GeneratedAt        string  `json:"generated_at"`
	PerformanceRows    int     `json:"rows_performance"`
	Channels           int     `json:"channels"`
	ModeledTotalBudget float64 `json:"modeled_total_budget"`
	PerformanceCSV     string  `json:"performance_csv"`
	BaselineCSV        string  `json:"baseline_csv"`
	ConstraintsCSV     string  `json:"constraints_csv"`
	RequestTemplate    string  `json:"run_request_template"`
}

// Run ingests a source workbook into the canonical per-client tables:
// performance, channel baseline, and default constraints, plus a metadata
// JSON describing the ingestion.
func Run(opts Options) (*Metadata, error) {
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, eris.Wrap(err, "ingest: create output dir")
	}

	wb, err := OpenWorkbook(opts.WorkbookPath)
	if err != nil {
		return nil, err
	}

	perf, err := wb.LoadPerformance(opts.PerformanceSheet, opts.ClientID)
	if err != nil {
		return nil, err
	}
	if len(perf) == 0 {
		return nil, eris.Errorf("ingest: no modeled channel rows in sheet %q", opts.PerformanceSheet)
	}

	channelSet := make(map[string]bool)
	for _, row := range perf {
		channelSet[row.Channel] = true
	}
	channels := make([]string, 0, len(channelSet))
	for ch := range channelSet {
		channels = append(channels, ch)
	}
	sort.Strings(channels)

	totalBudget, splits, err := wb.ExtractBudgetAndSplits(opts.ModellerSheet, channels)
	if err != nil {
		return nil, err
	}

	baseline := BuildBaseline(perf, splits, opts.ClientID, totalBudget, opts.Betas)

	constraintBudget := totalBudget
	if constraintBudget <= 0 {
		for _, b := range baseline {
			constraintBudget += b.BaselineSpend
		}
	}
	constraints := DefaultConstraints(baseline, opts.ClientID, constraintBudget)

	meta := &Metadata{
		ClientID:           opts.ClientID,
		WorkbookPath:       opts.WorkbookPath,
		GeneratedAt:        time.Now().UTC().Format(time.RFC3339),
		PerformanceRows:    len(perf),
		Channels:           len(baseline),
		ModeledTotalBudget: totalBudget,
		PerformanceCSV:     filepath.Join(opts.OutputDir, opts.ClientID+"_performance.csv"),
		BaselineCSV:        filepath.Join(opts.OutputDir, opts.ClientID+"_channel_baseline.csv"),
		ConstraintsCSV:     filepath.Join(opts.OutputDir, opts.ClientID+"_constraints.csv"),
		RequestTemplate:    filepath.Join(opts.OutputDir, opts.ClientID+"_run_request_template.json"),
	}

	if err := report.WritePerformance(meta.PerformanceCSV, perf); err != nil {
		return nil, err
	}
	if err := report.WriteBaseline(meta.BaselineCSV, baseline); err != nil {
		return nil, err
	}
	if err := report.WriteConstraints(meta.ConstraintsCSV, constraints); err != nil {
		return nil, err
	}

	// Starter request for the optimize command; callers edit and pass it back
	// with --request.
	template := model.RunRequest{
		ClientID:    opts.ClientID,
		TotalBudget: constraintBudget,
		Objective:   "pipeline",
	}
	if err := report.WriteJSON(meta.RequestTemplate, template); err != nil {
		return nil, err
	}

	metadataPath := filepath.Join(opts.OutputDir, opts.ClientID+"_ingestion_metadata.json")
	if err := report.WriteJSON(metadataPath, meta); err != nil {
		return nil, err
	}

	zap.L().Info("ingest: workbook processed",
		zap.String("client", opts.ClientID),
		zap.String("workbook", opts.WorkbookPath),
		zap.Int("rows", meta.PerformanceRows),
		zap.Int("channels", meta.Channels),
		zap.Float64("modeled_total_budget", totalBudget),
	)

	return meta, nil
}
