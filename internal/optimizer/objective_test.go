package optimizer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/roi-modeler/internal/model"
)

func TestResolveWeights_UnknownObjective(t *testing.T) {
	c := DefaultCatalog()

	_, err := c.ResolveWeights("market-share", nil)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrUnknownObjective))
}

func TestResolveWeights_CaseInsensitive(t *testing.T) {
	c := DefaultCatalog()

	w, err := c.ResolveWeights("  Pipeline ", nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, w.Pipeline)
}

func TestResolveWeights_Overrides(t *testing.T) {
	c := DefaultCatalog()

	w, err := c.ResolveWeights("pipeline", map[string]float64{
		"revenue":  0.5,
		"cac":      0.1,
		"nonsense": 99, // unrecognized keys are ignored, not errors
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, w.Pipeline)
	assert.Equal(t, 0.5, w.Revenue)
	assert.Equal(t, 0.1, w.CAC)
}

func TestScore_WeightedSum(t *testing.T) {
	p := Prediction{Pipeline: 100, Revenue: 50, HQLs: 10, Leads: 40, ROAS: 2, CAC: 25}
	w := model.Weights{Pipeline: 1, Revenue: 2, HQLs: 3, Leads: 0.5, ROAS: 10, CAC: 4}

	// 100 + 100 + 30 + 20 + 20 - 100
	assert.InDelta(t, 170.0, Score(p, w), 1e-9)
}

func TestLoadCatalog_MissingFileFallsBack(t *testing.T) {
	c, err := LoadCatalog(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	_, ok := c.Objectives["pipeline"]
	assert.True(t, ok)
}

func TestLoadCatalog_FromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "objectives.yaml")
	content := `objectives:
  Pipeline:
    pipeline: 1.0
  growth:
    revenue: 0.7
    leads: 0.3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c, err := LoadCatalog(path)
	require.NoError(t, err)

	// Keys are lower-cased on load.
	w, err := c.ResolveWeights("pipeline", nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, w.Pipeline)

	w, err = c.ResolveWeights("growth", nil)
	require.NoError(t, err)
	assert.Equal(t, 0.7, w.Revenue)
	assert.Equal(t, 0.3, w.Leads)
}
