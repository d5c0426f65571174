package ingest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

var perfHeaders = []string{
	"Quarter", "Fiscal Year", "Starting Quarter Date", "Quarter2",
	"Geo", "Channel", "Sub Channel", "Platform",
	"Engaged Leads", "HQLs", "Opps Sourced", "Pipeline Sourced",
}

func addRow(sheet *xlsx.Sheet, values ...string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}

func writeTestWorkbook(t *testing.T) string {
	t.Helper()

	f := xlsx.NewFile()
	perf, err := f.AddSheet("All Data")
	require.NoError(t, err)

	addRow(perf, perfHeaders...)
	addRow(perf, "Q1", "2025", "2024-02-01", "FY25-Q1", "AMER", "Paid Search", "Search", "Google",
		"1,200", "300", "40", "$2,000,000")
	addRow(perf, "Q1", "2025", "2024-02-01", "FY25-Q1", "AMER", "Content Syndication", "Syndication", "Integrate",
		"800", "150", "20", "$900,000")
	addRow(perf, "Q1", "2025", "2024-02-01", "FY25-Q1", "AMER", "Organic Search", "SEO", "Web",
		"5,000", "900", "100", "$4,000,000")

	modeller, err := f.AddSheet("ROI Modeller")
	require.NoError(t, err)
	addRow(modeller, "", "Budget", "500000")
	addRow(modeller, "", "", "Paid Search", "60%", "300000")
	addRow(modeller, "", "", "Content Syndication", "40%", "200000")

	path := filepath.Join(t.TempDir(), "workbook.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestLoadPerformance(t *testing.T) {
	wb, err := OpenWorkbook(writeTestWorkbook(t))
	require.NoError(t, err)

	rows, err := wb.LoadPerformance("All Data", "acme")
	require.NoError(t, err)

	// Organic Search is not a modeled channel and must be dropped.
	require.Len(t, rows, 2)
	assert.Equal(t, "Paid Search", rows[0].Channel)
	assert.Equal(t, "Content Syndication", rows[1].Channel)

	assert.Equal(t, "acme", rows[0].ClientID)
	assert.Equal(t, 2025, rows[0].FiscalYear)
	assert.Equal(t, "2024-02-01", rows[0].PeriodStart)
	assert.Equal(t, 1200.0, rows[0].EngagedLeads)
	assert.Equal(t, 2_000_000.0, rows[0].PipelineSourced)
	assert.Equal(t, "workbook.xlsx", rows[0].SourceFile)
	assert.NotEmpty(t, rows[0].IngestedAt)
}

func TestLoadPerformance_MissingColumns(t *testing.T) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("All Data")
	require.NoError(t, err)
	addRow(sheet, "Channel", "HQLs")

	path := filepath.Join(t.TempDir(), "partial.xlsx")
	require.NoError(t, f.Save(path))

	wb, err := OpenWorkbook(path)
	require.NoError(t, err)

	_, err = wb.LoadPerformance("All Data", "acme")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required columns")
	assert.Contains(t, err.Error(), "geo")
}

func TestLoadPerformance_MissingSheet(t *testing.T) {
	wb, err := OpenWorkbook(writeTestWorkbook(t))
	require.NoError(t, err)

	_, err = wb.LoadPerformance("Nope", "acme")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `sheet "Nope" not found`)
}

func TestExtractBudgetAndSplits(t *testing.T) {
	wb, err := OpenWorkbook(writeTestWorkbook(t))
	require.NoError(t, err)

	budget, splits, err := wb.ExtractBudgetAndSplits("ROI Modeller", []string{"Paid Search", "Content Syndication", "Paid Video"})
	require.NoError(t, err)

	assert.Equal(t, 500_000.0, budget)
	require.Len(t, splits, 3)

	// Percentages above 1 are scaled to fractions.
	require.NotNil(t, splits[0].Pct)
	assert.InDelta(t, 0.60, *splits[0].Pct, 1e-9)
	require.NotNil(t, splits[0].Spend)
	assert.Equal(t, 300_000.0, *splits[0].Spend)

	// A channel with no modeller row has no split.
	assert.Nil(t, splits[2].Pct)
	assert.Nil(t, splits[2].Spend)
}

func TestExtractBudgetAndSplits_DeriveSpendFromPct(t *testing.T) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("ROI Modeller")
	require.NoError(t, err)
	addRow(sheet, "Budget", "100000")
	addRow(sheet, "", "", "Paid Search", "75%", "")
	addRow(sheet, "", "", "Paid Social", "25%", "")

	path := filepath.Join(t.TempDir(), "splits.xlsx")
	require.NoError(t, f.Save(path))

	wb, err := OpenWorkbook(path)
	require.NoError(t, err)

	budget, splits, err := wb.ExtractBudgetAndSplits("ROI Modeller", []string{"Paid Search", "Paid Social"})
	require.NoError(t, err)

	assert.Equal(t, 100_000.0, budget)
	require.NotNil(t, splits[0].Spend)
	assert.InDelta(t, 75_000, *splits[0].Spend, 1e-6)
	require.NotNil(t, splits[1].Spend)
	assert.InDelta(t, 25_000, *splits[1].Spend, 1e-6)
}
