package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/roi-modeler/internal/config"
	"github.com/sells-group/roi-modeler/internal/model"
	"github.com/sells-group/roi-modeler/internal/optimizer"
	"github.com/sells-group/roi-modeler/internal/report"
	"github.com/sells-group/roi-modeler/internal/store"
)

var (
	optimizeClient      string
	optimizeObjective   string
	optimizeBudget      float64
	optimizeRequestFile string
	optimizeOutputDir   string
	optimizeNoStore     bool
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Run a budget allocation optimization for a client",
	Long:  "Loads the client's baseline and constraint tables, runs the greedy allocation search for the requested objective, and writes the recommendation CSV and summary JSON.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		req, err := buildRequest()
		if err != nil {
			return err
		}

		var st store.Store
		if !optimizeNoStore {
			st, err = store.Open(ctx, cfg.Store)
			if err != nil {
				return err
			}
			defer st.Close()
		}

		catalog, err := optimizer.LoadCatalog(cfg.Paths.Objectives)
		if err != nil {
			return err
		}

		result, run, err := executeRun(ctx, st, catalog, req)
		if err != nil {
			return err
		}

		outputDir := optimizeOutputDir
		if outputDir == "" {
			outputDir = cfg.Paths.OutputDir
		}
		csvPath, jsonPath, err := writeRunOutputs(outputDir, req.ClientID, result)
		if err != nil {
			return err
		}

		zap.L().Info("optimization complete",
			zap.String("client", req.ClientID),
			zap.String("objective", result.Summary.Objective),
			zap.String("guardrail_status", result.Summary.GuardrailStatus),
			zap.String("recommendation_csv", csvPath),
			zap.String("summary_json", jsonPath),
		)
		if run != nil {
			zap.L().Info("run recorded", zap.String("run_id", run.ID))
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Summary)
	},
}

func init() {
	optimizeCmd.Flags().StringVar(&optimizeClient, "client", "", "client identifier (required)")
	optimizeCmd.Flags().StringVar(&optimizeObjective, "objective", "", "objective name (default from client config)")
	optimizeCmd.Flags().Float64Var(&optimizeBudget, "budget", 0, "total budget (default from client config, else sum of baseline spend)")
	optimizeCmd.Flags().StringVar(&optimizeRequestFile, "request", "", "path to a JSON run request (flags override its fields)")
	optimizeCmd.Flags().StringVar(&optimizeOutputDir, "output-dir", "", "directory for recommendation outputs (default from config)")
	optimizeCmd.Flags().BoolVar(&optimizeNoStore, "no-store", false, "skip recording the run in the database")
	_ = optimizeCmd.MarkFlagRequired("client")
	rootCmd.AddCommand(optimizeCmd)
}

// buildRequest assembles the run request from the optional request file and
// the command flags. Flags win over file fields.
func buildRequest() (model.RunRequest, error) {
	var req model.RunRequest

	if optimizeRequestFile != "" {
		if err := report.ReadJSON(optimizeRequestFile, &req); err != nil {
			return req, err
		}
	}

	req.ClientID = optimizeClient
	if optimizeObjective != "" {
		req.Objective = optimizeObjective
	}
	if optimizeBudget > 0 {
		req.TotalBudget = optimizeBudget
	}

	return req, nil
}

// resolveRequest fills empty request fields from the client's run defaults.
func resolveRequest(cc *config.ClientConfig, req model.RunRequest) model.RunRequest {
	if req.Objective == "" {
		req.Objective = cc.RunDefaults.Objective
	}
	if req.Objective == "" {
		req.Objective = "pipeline"
	}
	if req.TotalBudget <= 0 {
		req.TotalBudget = cc.RunDefaults.TotalBudget
	}
	if req.Guardrails.MinROAS == nil {
		req.Guardrails.MinROAS = cc.RunDefaults.Guardrails.MinROAS
	}
	if req.Guardrails.MaxCAC == nil {
		req.Guardrails.MaxCAC = cc.RunDefaults.Guardrails.MaxCAC
	}
	return req
}

// executeRun loads the client's canonical tables, records the run, and
// performs the optimization. A nil store skips run history.
func executeRun(ctx context.Context, st store.Store, catalog *optimizer.Catalog, req model.RunRequest) (*optimizer.Result, *model.Run, error) {
	cc, err := config.LoadClient(cfg.Paths.ClientsDir, req.ClientID)
	if err != nil {
		return nil, nil, err
	}
	req = resolveRequest(cc, req)

	baseline, err := report.ReadBaseline(cc.Data.BaselineCSV)
	if err != nil {
		return nil, nil, err
	}
	constraints, err := report.ReadConstraints(cc.Data.ConstraintsCSV)
	if err != nil {
		return nil, nil, err
	}

	var run *model.Run
	if st != nil {
		run, err = st.CreateRun(ctx, req)
		if err != nil {
			return nil, nil, err
		}
	}

	result, err := optimizer.Optimize(baseline, constraints, req, catalog)
	if st != nil && run != nil {
		if err != nil {
			if cerr := st.CompleteRun(ctx, run.ID, model.RunStatusFailed, nil, err.Error()); cerr != nil {
				zap.L().Warn("failed to record run failure", zap.String("run_id", run.ID), zap.Error(cerr))
			}
		} else {
			if cerr := st.CompleteRun(ctx, run.ID, model.RunStatusSucceeded, &result.Summary, ""); cerr != nil {
				zap.L().Warn("failed to record run completion", zap.String("run_id", run.ID), zap.Error(cerr))
			}
		}
	}
	if err != nil {
		return nil, run, err
	}

	return result, run, nil
}

// writeRunOutputs writes the recommendation CSV and summary JSON with a
// timestamped name so successive runs never overwrite each other.
func writeRunOutputs(outputDir, clientID string, result *optimizer.Result) (string, string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", "", eris.Wrap(err, "optimize: create output dir")
	}

	stamp := result.Summary.GeneratedAt.UTC().Format("20060102T150405Z")

	csvPath := filepath.Join(outputDir, fmt.Sprintf("%s_%s_recommendation_%s.csv", clientID, result.Summary.Objective, stamp))
	if err := report.WriteAllocation(csvPath, result.Allocation); err != nil {
		return "", "", err
	}

	jsonPath := filepath.Join(outputDir, fmt.Sprintf("%s_%s_summary_%s.json", clientID, result.Summary.Objective, stamp))
	if err := report.WriteJSON(jsonPath, result.Summary); err != nil {
		return "", "", err
	}

	return csvPath, jsonPath, nil
}
