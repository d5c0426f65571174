package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/roi-modeler/internal/model"
)

func TestClientConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	minROAS := 3.5

	in := &ClientConfig{
		ClientID:    "acme",
		Description: "Acme Corp canonical dataset",
		Data: ClientDataPaths{
			PerformanceCSV: "data/canonical/acme_performance.csv",
			BaselineCSV:    "data/canonical/acme_channel_baseline.csv",
			ConstraintsCSV: "data/canonical/acme_constraints.csv",
		},
		RunDefaults: RunDefaults{
			Objective:   "pipeline",
			TotalBudget: 250_000,
			Guardrails:  model.Guardrails{MinROAS: &minROAS},
		},
	}

	path, err := SaveClient(dir, in)
	require.NoError(t, err)
	assert.Contains(t, path, "acme.yaml")

	out, err := LoadClient(dir, "acme")
	require.NoError(t, err)
	assert.Equal(t, in.Data, out.Data)
	assert.Equal(t, "pipeline", out.RunDefaults.Objective)
	assert.Equal(t, 250_000.0, out.RunDefaults.TotalBudget)
	require.NotNil(t, out.RunDefaults.Guardrails.MinROAS)
	assert.Equal(t, 3.5, *out.RunDefaults.Guardrails.MinROAS)
	assert.Nil(t, out.RunDefaults.Guardrails.MaxCAC)
}

func TestLoadClient_Missing(t *testing.T) {
	_, err := LoadClient(t.TempDir(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "All Data", cfg.Ingest.PerformanceSheet)
	assert.Equal(t, "ROI Modeller", cfg.Ingest.ModellerSheet)
	assert.Equal(t, 0.72, cfg.Ingest.DefaultBeta)
	assert.Equal(t, 0.78, cfg.Ingest.ChannelBetas["paid search"])
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "json", cfg.Log.Format)
}
