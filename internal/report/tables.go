package report

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/roi-modeler/internal/model"
)

var baselineHeader = []string{
	"client_id", "channel", "baseline_spend", "baseline_share",
	"engaged_leads", "hqls", "opps_sourced", "pipeline_sourced",
	"cw_acv_sourced", "roas_baseline", "cac_baseline", "beta",
	"alpha_pipeline", "alpha_revenue", "alpha_hqls", "alpha_leads", "notes",
}

var constraintHeader = []string{
	"client_id", "channel", "enabled", "min_spend", "max_spend",
	"locked_spend", "min_share", "max_share", "min_roas", "max_cac", "notes",
}

var performanceHeader = []string{
	"client_id", "geo", "channel", "sub_channel", "platform",
	"fiscal_year", "fiscal_quarter", "quarter_label", "period_start",
	"engaged_leads", "hqls", "opps_sourced", "pipeline_sourced",
	"pipeline_influenced", "cw_opps_sourced", "cw_acv_sourced",
	"cw_acv_influenced", "hql_to_opp_conversion", "source_file", "ingested_at",
}

var allocationHeader = []string{
	"client_id", "channel", "recommended_spend", "recommended_share",
	"pred_pipeline", "pred_revenue", "pred_hqls", "pred_leads",
	"pred_roas", "pred_cac", "min_spend", "max_spend",
}

// table is a parsed CSV file with column lookup by header name.
type table struct {
	columns map[string]int
	rows    [][]string
}

func readTable(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "report: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // allow variable fields

	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "report: read %s", path)
	}
	if len(records) == 0 {
		return nil, eris.Errorf("report: %s is empty", path)
	}

	columns := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		columns[name] = i
	}

	return &table{columns: columns, rows: records[1:]}, nil
}

func (t *table) cell(row []string, column string) string {
	idx, ok := t.columns[column]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func (t *table) floatCell(row []string, column string) float64 {
	v, _ := ParseFloat(t.cell(row, column))
	return v
}

func writeTable(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "report: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return eris.Wrapf(err, "report: write header %s", path)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return eris.Wrapf(err, "report: write row %s", path)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrapf(err, "report: flush %s", path)
	}

	return f.Close()
}

// ReadBaseline loads a channel baseline table.
func ReadBaseline(path string) ([]model.ChannelBaseline, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}

	rows := make([]model.ChannelBaseline, 0, len(t.rows))
	for _, r := range t.rows {
		rows = append(rows, model.ChannelBaseline{
			ClientID:        t.cell(r, "client_id"),
			Channel:         t.cell(r, "channel"),
			BaselineSpend:   t.floatCell(r, "baseline_spend"),
			BaselineShare:   t.floatCell(r, "baseline_share"),
			EngagedLeads:    t.floatCell(r, "engaged_leads"),
			HQLs:            t.floatCell(r, "hqls"),
			OppsSourced:     t.floatCell(r, "opps_sourced"),
			PipelineSourced: t.floatCell(r, "pipeline_sourced"),
			RevenueSourced:  t.floatCell(r, "cw_acv_sourced"),
			ROASBaseline:    t.floatCell(r, "roas_baseline"),
			CACBaseline:     t.floatCell(r, "cac_baseline"),
			Beta:            t.floatCell(r, "beta"),
			AlphaPipeline:   t.floatCell(r, "alpha_pipeline"),
			AlphaRevenue:    t.floatCell(r, "alpha_revenue"),
			AlphaHQLs:       t.floatCell(r, "alpha_hqls"),
			AlphaLeads:      t.floatCell(r, "alpha_leads"),
			Notes:           t.cell(r, "notes"),
		})
	}

	return rows, nil
}

// WriteBaseline writes a channel baseline table.
func WriteBaseline(path string, rows []model.ChannelBaseline) error {
	records := make([][]string, 0, len(rows))
	for _, b := range rows {
		records = append(records, []string{
			b.ClientID, b.Channel,
			FormatFloat(b.BaselineSpend), FormatFloat(b.BaselineShare),
			FormatFloat(b.EngagedLeads), FormatFloat(b.HQLs),
			FormatFloat(b.OppsSourced), FormatFloat(b.PipelineSourced),
			FormatFloat(b.RevenueSourced), FormatFloat(b.ROASBaseline),
			FormatFloat(b.CACBaseline), FormatFloat(b.Beta),
			FormatFloat(b.AlphaPipeline), FormatFloat(b.AlphaRevenue),
			FormatFloat(b.AlphaHQLs), FormatFloat(b.AlphaLeads),
			b.Notes,
		})
	}
	return writeTable(path, baselineHeader, records)
}

// ReadConstraints loads a constraint table.
func ReadConstraints(path string) ([]model.Constraint, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}

	rows := make([]model.Constraint, 0, len(t.rows))
	for _, r := range t.rows {
		rows = append(rows, model.Constraint{
			ClientID:    t.cell(r, "client_id"),
			Channel:     t.cell(r, "channel"),
			Enabled:     ParseBool(t.cell(r, "enabled")),
			MinSpend:    ParseOptionalFloat(t.cell(r, "min_spend")),
			MaxSpend:    ParseOptionalFloat(t.cell(r, "max_spend")),
			LockedSpend: ParseOptionalFloat(t.cell(r, "locked_spend")),
			MinShare:    ParseOptionalFloat(t.cell(r, "min_share")),
			MaxShare:    ParseOptionalFloat(t.cell(r, "max_share")),
			MinROAS:     ParseOptionalFloat(t.cell(r, "min_roas")),
			MaxCAC:      ParseOptionalFloat(t.cell(r, "max_cac")),
			Notes:       t.cell(r, "notes"),
		})
	}

	return rows, nil
}

// WriteConstraints writes a constraint table.
func WriteConstraints(path string, rows []model.Constraint) error {
	records := make([][]string, 0, len(rows))
	for _, c := range rows {
		records = append(records, []string{
			c.ClientID, c.Channel, strconv.FormatBool(c.Enabled),
			FormatOptionalFloat(c.MinSpend), FormatOptionalFloat(c.MaxSpend),
			FormatOptionalFloat(c.LockedSpend),
			FormatOptionalFloat(c.MinShare), FormatOptionalFloat(c.MaxShare),
			FormatOptionalFloat(c.MinROAS), FormatOptionalFloat(c.MaxCAC),
			c.Notes,
		})
	}
	return writeTable(path, constraintHeader, records)
}

// ReadPerformance loads a performance table.
func ReadPerformance(path string) ([]model.PerformanceRow, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}

	rows := make([]model.PerformanceRow, 0, len(t.rows))
	for _, r := range t.rows {
		year, _ := strconv.Atoi(t.cell(r, "fiscal_year"))
		rows = append(rows, model.PerformanceRow{
			ClientID:           t.cell(r, "client_id"),
			Geo:                t.cell(r, "geo"),
			Channel:            t.cell(r, "channel"),
			SubChannel:         t.cell(r, "sub_channel"),
			Platform:           t.cell(r, "platform"),
			FiscalYear:         year,
			FiscalQuarter:      t.cell(r, "fiscal_quarter"),
			QuarterLabel:       t.cell(r, "quarter_label"),
			PeriodStart:        t.cell(r, "period_start"),
			EngagedLeads:       t.floatCell(r, "engaged_leads"),
			HQLs:               t.floatCell(r, "hqls"),
			OppsSourced:        t.floatCell(r, "opps_sourced"),
			PipelineSourced:    t.floatCell(r, "pipeline_sourced"),
			PipelineInfluenced: t.floatCell(r, "pipeline_influenced"),
			CWOppsSourced:      t.floatCell(r, "cw_opps_sourced"),
			CWACVSourced:       t.floatCell(r, "cw_acv_sourced"),
			CWACVInfluenced:    t.floatCell(r, "cw_acv_influenced"),
			HQLToOppConversion: t.floatCell(r, "hql_to_opp_conversion"),
			SourceFile:         t.cell(r, "source_file"),
			IngestedAt:         t.cell(r, "ingested_at"),
		})
	}

	return rows, nil
}

// WritePerformance writes a performance table.
func WritePerformance(path string, rows []model.PerformanceRow) error {
	records := make([][]string, 0, len(rows))
	for _, p := range rows {
		records = append(records, []string{
			p.ClientID, p.Geo, p.Channel, p.SubChannel, p.Platform,
			strconv.Itoa(p.FiscalYear), p.FiscalQuarter, p.QuarterLabel, p.PeriodStart,
			FormatFloat(p.EngagedLeads), FormatFloat(p.HQLs),
			FormatFloat(p.OppsSourced), FormatFloat(p.PipelineSourced),
			FormatFloat(p.PipelineInfluenced), FormatFloat(p.CWOppsSourced),
			FormatFloat(p.CWACVSourced), FormatFloat(p.CWACVInfluenced),
			FormatFloat(p.HQLToOppConversion), p.SourceFile, p.IngestedAt,
		})
	}
	return writeTable(path, performanceHeader, records)
}

// WriteAllocation writes an optimization recommendation table.
func WriteAllocation(path string, rows []model.Allocation) error {
	records := make([][]string, 0, len(rows))
	for _, a := range rows {
		records = append(records, []string{
			a.ClientID, a.Channel,
			FormatFloat(a.RecommendedSpend), FormatFloat(a.RecommendedShare),
			FormatFloat(a.PredPipeline), FormatFloat(a.PredRevenue),
			FormatFloat(a.PredHQLs), FormatFloat(a.PredLeads),
			FormatFloat(a.PredROAS), FormatFloat(a.PredCAC),
			FormatFloat(a.MinSpend), FormatFloat(a.MaxSpend),
		})
	}
	return writeTable(path, allocationHeader, records)
}
