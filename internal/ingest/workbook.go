// Package ingest turns source marketing workbooks into the canonical
// baseline, constraint, and performance tables the optimizer consumes.
package ingest

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/roi-modeler/internal/model"
	"github.com/sells-group/roi-modeler/internal/report"
)

// columnRenames maps normalized workbook headers to canonical column names.
var columnRenames = map[string]string{
	"quarter":                "fiscal_quarter",
	"fiscal year":            "fiscal_year",
	"starting quarter date":  "period_start",
	"quarter2":               "quarter_label",
	"geo":                    "geo",
	"channel":                "channel",
	"sub channel":            "sub_channel",
	"platform":               "platform",
	"engaged leads":          "engaged_leads",
	"hqls":                   "hqls",
	"opps sourced":           "opps_sourced",
	"pipeline sourced":       "pipeline_sourced",
	"pipeline influenced":    "pipeline_influenced",
	"cw opps sourced":        "cw_opps_sourced",
	"cw acv sourced":         "cw_acv_sourced",
	"cw acv influenced":      "cw_acv_influenced",
	"hql-to-opp conversion":  "hql_to_opp_conversion",
}

var requiredColumns = []string{
	"fiscal_quarter", "fiscal_year", "period_start", "quarter_label",
	"geo", "channel", "sub_channel", "platform",
}

// Split is one channel's budget share extracted from the modeller sheet.
type Split struct {
	Channel string
	Pct     *float64
	Spend   *float64
}

// Workbook wraps an opened source XLSX file.
type Workbook struct {
	file *xlsx.File
	path string
}

// OpenWorkbook opens a source workbook for ingestion.
func OpenWorkbook(path string) (*Workbook, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open workbook %s", path)
	}
	return &Workbook{file: f, path: path}, nil
}

func (w *Workbook) sheet(name string) (*xlsx.Sheet, error) {
	sheet, ok := w.file.Sheet[name]
	if !ok {
		return nil, eris.Errorf("ingest: sheet %q not found in %s", name, w.path)
	}
	return sheet, nil
}

func normalizeHeader(name string) string {
	text := strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(text, "  ", " ")
}

func cellString(row *xlsx.Row, idx int) string {
	if row == nil || idx < 0 || idx >= len(row.Cells) {
		return ""
	}
	return row.Cells[idx].String()
}

// stringOrUnknown substitutes "Unknown" for blank dimension values.
func stringOrUnknown(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "Unknown"
	}
	return v
}

// formatPeriodStart renders a period-start cell as an ISO date. Excel stores
// dates as day serials, so large numeric values are converted; anything else
// passes through trimmed.
func formatPeriodStart(raw string) string {
	if v, ok := report.ParseFloat(raw); ok && v > 59 {
		return xlsx.TimeFromExcelTime(v, false).Format("2006-01-02")
	}
	return strings.TrimSpace(raw)
}

// isModeledChannel reports whether a channel participates in the ROI model.
// Only paid and content channels carry spend.
func isModeledChannel(channel string) bool {
	lower := strings.ToLower(channel)
	return strings.HasPrefix(lower, "paid") || strings.HasPrefix(lower, "content")
}

// LoadPerformance reads the quarterly performance sheet into canonical rows.
// Headers are normalized and renamed; rows for channels outside the model
// (anything not paid or content) are dropped.
func (w *Workbook) LoadPerformance(sheetName, clientID string) ([]model.PerformanceRow, error) {
	sheet, err := w.sheet(sheetName)
	if err != nil {
		return nil, err
	}
	if len(sheet.Rows) == 0 {
		return nil, eris.Errorf("ingest: sheet %q is empty", sheetName)
	}

	columns := make(map[string]int)
	for i, cell := range sheet.Rows[0].Cells {
		name := normalizeHeader(cell.String())
		if name == "" || strings.HasPrefix(name, "unnamed") {
			continue
		}
		if canonical, ok := columnRenames[name]; ok {
			name = canonical
		}
		columns[name] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := columns[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, eris.Errorf("ingest: workbook missing required columns: %s", strings.Join(missing, ", "))
	}

	ingestedAt := time.Now().UTC().Format(time.RFC3339)
	sourceFile := filepath.Base(w.path)

	str := func(row *xlsx.Row, col string) string {
		idx, ok := columns[col]
		if !ok {
			return ""
		}
		return cellString(row, idx)
	}
	num := func(row *xlsx.Row, col string) float64 {
		v, _ := report.ParseFloat(str(row, col))
		return v
	}

	var rows []model.PerformanceRow
	for _, row := range sheet.Rows[1:] {
		channel := stringOrUnknown(str(row, "channel"))
		if !isModeledChannel(channel) {
			continue
		}

		year, _ := report.ParseFloat(str(row, "fiscal_year"))
		rows = append(rows, model.PerformanceRow{
			ClientID:           clientID,
			Geo:                stringOrUnknown(str(row, "geo")),
			Channel:            channel,
			SubChannel:         stringOrUnknown(str(row, "sub_channel")),
			Platform:           stringOrUnknown(str(row, "platform")),
			FiscalYear:         int(year),
			FiscalQuarter:      stringOrUnknown(str(row, "fiscal_quarter")),
			QuarterLabel:       stringOrUnknown(str(row, "quarter_label")),
			PeriodStart:        formatPeriodStart(str(row, "period_start")),
			EngagedLeads:       num(row, "engaged_leads"),
			HQLs:               num(row, "hqls"),
			OppsSourced:        num(row, "opps_sourced"),
			PipelineSourced:    num(row, "pipeline_sourced"),
			PipelineInfluenced: num(row, "pipeline_influenced"),
			CWOppsSourced:      num(row, "cw_opps_sourced"),
			CWACVSourced:       num(row, "cw_acv_sourced"),
			CWACVInfluenced:    num(row, "cw_acv_influenced"),
			HQLToOppConversion: num(row, "hql_to_opp_conversion"),
			SourceFile:         sourceFile,
			IngestedAt:         ingestedAt,
		})
	}

	return rows, nil
}

// Modeller sheet layout: channel labels in column C, split percent in D,
// split spend in E.
const (
	modellerChannelCol = 2
	modellerSplitCol   = 3
	modellerSpendCol   = 4
)

// ExtractBudgetAndSplits scans the modeller sheet for the total budget (the
// value right of a cell labeled "budget"; the largest candidate wins) and
// per-channel split percentages and spends. When only one of percent or spend
// is populated, the other side is derived from the budget.
func (w *Workbook) ExtractBudgetAndSplits(sheetName string, channels []string) (float64, []Split, error) {
	sheet, err := w.sheet(sheetName)
	if err != nil {
		return 0, nil, err
	}

	var totalBudget float64
	for _, row := range sheet.Rows {
		for i, cell := range row.Cells {
			if !strings.EqualFold(strings.TrimSpace(cell.String()), "budget") {
				continue
			}
			if v, ok := report.ParseFloat(cellString(row, i+1)); ok && v > totalBudget {
				totalBudget = v
			}
		}
	}

	splits := make([]Split, 0, len(channels))
	for _, channel := range channels {
		split := Split{Channel: channel}
		for _, row := range sheet.Rows {
			label := strings.TrimSpace(cellString(row, modellerChannelCol))
			if !strings.EqualFold(label, strings.TrimSpace(channel)) {
				continue
			}
			split.Pct = report.ParseOptionalFloat(cellString(row, modellerSplitCol))
			split.Spend = report.ParseOptionalFloat(cellString(row, modellerSpendCol))
			if split.Pct != nil && *split.Pct > 1 {
				*split.Pct /= 100
			}
			break
		}
		splits = append(splits, split)
	}

	if totalBudget > 0 {
		var pctSum, spendSum float64
		for _, s := range splits {
			if s.Pct != nil {
				pctSum += *s.Pct
			}
			if s.Spend != nil {
				spendSum += *s.Spend
			}
		}
		if spendSum == 0 {
			for i := range splits {
				pct := 0.0
				if splits[i].Pct != nil {
					pct = *splits[i].Pct
				}
				spend := pct * totalBudget
				splits[i].Spend = &spend
			}
		}
		if pctSum == 0 {
			for i := range splits {
				spend := 0.0
				if splits[i].Spend != nil {
					spend = *splits[i].Spend
				}
				pct := spend / totalBudget
				splits[i].Pct = &pct
			}
		}
	}

	return totalBudget, splits, nil
}
