// Package model defines the canonical records exchanged between ingestion,
// optimization, persistence, and reporting.
package model

// ChannelBaseline is one channel's historical performance plus its fitted
// diminishing-returns curve parameters. A single beta is shared by all four
// outcome curves of the channel.
type ChannelBaseline struct {
	ClientID        string  `json:"client_id"`
	Channel         string  `json:"channel"`
	BaselineSpend   float64 `json:"baseline_spend"`
	BaselineShare   float64 `json:"baseline_share"`
	EngagedLeads    float64 `json:"engaged_leads"`
	HQLs            float64 `json:"hqls"`
	OppsSourced     float64 `json:"opps_sourced"`
	PipelineSourced float64 `json:"pipeline_sourced"`
	RevenueSourced  float64 `json:"cw_acv_sourced"`
	ROASBaseline    float64 `json:"roas_baseline"`
	CACBaseline     float64 `json:"cac_baseline"`
	Beta            float64 `json:"beta"`
	AlphaPipeline   float64 `json:"alpha_pipeline"`
	AlphaRevenue    float64 `json:"alpha_revenue"`
	AlphaHQLs       float64 `json:"alpha_hqls"`
	AlphaLeads      float64 `json:"alpha_leads"`
	Notes           string  `json:"notes,omitempty"`
}

// PerformanceRow is one quarterly observation from a source workbook after
// column normalization.
type PerformanceRow struct {
	ClientID           string  `json:"client_id"`
	Geo                string  `json:"geo"`
	Channel            string  `json:"channel"`
	SubChannel         string  `json:"sub_channel"`
	Platform           string  `json:"platform"`
	FiscalYear         int     `json:"fiscal_year"`
	FiscalQuarter      string  `json:"fiscal_quarter"`
	QuarterLabel       string  `json:"quarter_label"`
	PeriodStart        string  `json:"period_start"`
	EngagedLeads       float64 `json:"engaged_leads"`
	HQLs               float64 `json:"hqls"`
	OppsSourced        float64 `json:"opps_sourced"`
	PipelineSourced    float64 `json:"pipeline_sourced"`
	PipelineInfluenced float64 `json:"pipeline_influenced"`
	CWOppsSourced      float64 `json:"cw_opps_sourced"`
	CWACVSourced       float64 `json:"cw_acv_sourced"`
	CWACVInfluenced    float64 `json:"cw_acv_influenced"`
	HQLToOppConversion float64 `json:"hql_to_opp_conversion"`
	SourceFile         string  `json:"source_file"`
	IngestedAt         string  `json:"ingested_at"`
}
