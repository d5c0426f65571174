package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/roi-modeler/internal/model"
)

func TestBaselineRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baseline.csv")

	in := []model.ChannelBaseline{
		{
			ClientID: "acme", Channel: "paid search",
			BaselineSpend: 120_000, BaselineShare: 0.4,
			EngagedLeads: 900, HQLs: 300, OppsSourced: 40,
			PipelineSourced: 2_000_000, RevenueSourced: 500_000,
			ROASBaseline: 4.17, CACBaseline: 400, Beta: 0.78,
			AlphaPipeline: 212.5, AlphaRevenue: 53.1, AlphaHQLs: 0.03, AlphaLeads: 0.1,
			Notes: "fitted from history",
		},
	}
	require.NoError(t, WriteBaseline(path, in))

	out, err := ReadBaseline(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestConstraintsRoundTrip_OptionalFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "constraints.csv")
	locked := 5000.0
	minShare := 0.05

	in := []model.Constraint{
		{ClientID: "acme", Channel: "paid search", Enabled: true, LockedSpend: &locked, Notes: "pinned"},
		{ClientID: "acme", Channel: "paid social", Enabled: false, MinShare: &minShare},
	}
	require.NoError(t, WriteConstraints(path, in))

	out, err := ReadConstraints(path)
	require.NoError(t, err)
	require.Len(t, out, 2)

	require.NotNil(t, out[0].LockedSpend)
	assert.Equal(t, 5000.0, *out[0].LockedSpend)
	assert.Nil(t, out[0].MinSpend)

	assert.False(t, out[1].Enabled)
	require.NotNil(t, out[1].MinShare)
	assert.Equal(t, 0.05, *out[1].MinShare)
	assert.Nil(t, out[1].MaxCAC)
}

func TestReadConstraints_MessyUserEdits(t *testing.T) {
	// Hand-edited constraint files come back with currency formatting.
	path := filepath.Join(t.TempDir(), "constraints.csv")
	content := `client_id,channel,enabled,min_spend,max_spend,locked_spend,min_share,max_share,min_roas,max_cac,notes
acme,paid search,yes,"$1,200.00","$9,000",,,,"2.5",,caps
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	out, err := ReadConstraints(path)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.True(t, out[0].Enabled)
	require.NotNil(t, out[0].MinSpend)
	assert.Equal(t, 1200.0, *out[0].MinSpend)
	require.NotNil(t, out[0].MaxSpend)
	assert.Equal(t, 9000.0, *out[0].MaxSpend)
	assert.Nil(t, out[0].LockedSpend)
	require.NotNil(t, out[0].MinROAS)
	assert.Equal(t, 2.5, *out[0].MinROAS)
}

func TestReadBaseline_MissingFile(t *testing.T) {
	_, err := ReadBaseline(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
}

func TestWriteAllocation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "allocation.csv")

	rows := []model.Allocation{
		{ClientID: "acme", Channel: "paid search", RecommendedSpend: 8000, RecommendedShare: 0.8, MinSpend: 0, MaxSpend: 8000},
	}
	require.NoError(t, WriteAllocation(path, rows))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "recommended_spend")
	assert.Contains(t, string(data), "paid search")
}
