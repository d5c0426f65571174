package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/roi-modeler/internal/ingest"
)

var (
	ingestWorkbook  string
	ingestClient    string
	ingestOutputDir string
	ingestPerfSheet string
	ingestModSheet  string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest a channel performance workbook into canonical tables",
	Long:  "Parses the performance and modeller sheets of an Excel workbook, fits per-channel response curves, derives default constraints, and writes the canonical CSV tables.",
	RunE: func(cmd *cobra.Command, args []string) error {
		outputDir := ingestOutputDir
		if outputDir == "" {
			outputDir = cfg.Paths.CanonicalDir
		}
		perfSheet := ingestPerfSheet
		if perfSheet == "" {
			perfSheet = cfg.Ingest.PerformanceSheet
		}
		modSheet := ingestModSheet
		if modSheet == "" {
			modSheet = cfg.Ingest.ModellerSheet
		}

		meta, err := ingest.Run(ingest.Options{
			WorkbookPath:     ingestWorkbook,
			OutputDir:        outputDir,
			ClientID:         ingestClient,
			PerformanceSheet: perfSheet,
			ModellerSheet:    modSheet,
			Betas: ingest.BetaConfig{
				Default:    cfg.Ingest.DefaultBeta,
				PerChannel: cfg.Ingest.ChannelBetas,
			},
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestWorkbook, "workbook", "", "path to the source .xlsx workbook (required)")
	ingestCmd.Flags().StringVar(&ingestClient, "client", "", "client identifier for the canonical tables (required)")
	ingestCmd.Flags().StringVar(&ingestOutputDir, "output-dir", "", "directory for canonical CSVs (default from config)")
	ingestCmd.Flags().StringVar(&ingestPerfSheet, "performance-sheet", "", "performance sheet name (default from config)")
	ingestCmd.Flags().StringVar(&ingestModSheet, "modeller-sheet", "", "modeller sheet name (default from config)")
	_ = ingestCmd.MarkFlagRequired("workbook")
	_ = ingestCmd.MarkFlagRequired("client")
	rootCmd.AddCommand(ingestCmd)
}
