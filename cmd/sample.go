package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sells-group/roi-modeler/internal/sample"
)

var (
	sampleSource    string
	sampleTarget    string
	sampleScale     float64
	sampleNoise     float64
	sampleSeed      int64
	sampleOutputDir string
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Generate a synthetic client dataset from an existing client",
	Long:  "Scales and noises an existing client's canonical tables into a new synthetic client, complete with default constraints and a client config.",
	RunE: func(cmd *cobra.Command, args []string) error {
		outputDir := sampleOutputDir
		if outputDir == "" {
			outputDir = cfg.Paths.SampleDir
		}

		out, err := sample.Generate(sample.Options{
			SourceClient:   sampleSource,
			TargetClient:   sampleTarget,
			PerformanceCSV: filepath.Join(cfg.Paths.CanonicalDir, sampleSource+"_performance.csv"),
			BaselineCSV:    filepath.Join(cfg.Paths.CanonicalDir, sampleSource+"_channel_baseline.csv"),
			OutputDir:      outputDir,
			ClientsDir:     cfg.Paths.ClientsDir,
			Scale:          sampleScale,
			Noise:          sampleNoise,
			Seed:           sampleSeed,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	sampleCmd.Flags().StringVar(&sampleSource, "source", "", "source client identifier (required)")
	sampleCmd.Flags().StringVar(&sampleTarget, "target", "", "synthetic client identifier (required)")
	sampleCmd.Flags().Float64Var(&sampleScale, "scale", 0.85, "multiplier applied to every metric")
	sampleCmd.Flags().Float64Var(&sampleNoise, "noise", 0.12, "lognormal noise sigma")
	sampleCmd.Flags().Int64Var(&sampleSeed, "seed", 42, "random seed for reproducible output")
	sampleCmd.Flags().StringVar(&sampleOutputDir, "output-dir", "", "directory for sample CSVs (default from config)")
	_ = sampleCmd.MarkFlagRequired("source")
	_ = sampleCmd.MarkFlagRequired("target")
	rootCmd.AddCommand(sampleCmd)
}
