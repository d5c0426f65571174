package model

import "time"

// Allocation is one channel's row in an optimization result.
type Allocation struct {
	ClientID         string  `json:"client_id"`
	Channel          string  `json:"channel"`
	RecommendedSpend float64 `json:"recommended_spend"`
	RecommendedShare float64 `json:"recommended_share"`
	PredPipeline     float64 `json:"pred_pipeline"`
	PredRevenue      float64 `json:"pred_revenue"`
	PredHQLs         float64 `json:"pred_hqls"`
	PredLeads        float64 `json:"pred_leads"`
	PredROAS         float64 `json:"pred_roas"`
	PredCAC          float64 `json:"pred_cac"`
	MinSpend         float64 `json:"min_spend"`
	MaxSpend         float64 `json:"max_spend"`
}

// Summary aggregates one optimization run, suitable for direct serialization.
type Summary struct {
	GeneratedAt       time.Time `json:"generated_at"`
	ClientID          string    `json:"client_id"`
	Objective         string    `json:"objective"`
	Weights           Weights   `json:"weights"`
	TotalBudget       float64   `json:"total_budget"`
	TotalPipeline     float64   `json:"total_pipeline"`
	TotalRevenue      float64   `json:"total_revenue"`
	TotalHQLs         float64   `json:"total_hqls"`
	OverallROAS       float64   `json:"overall_roas"`
	OverallCAC        float64   `json:"overall_cac"`
	GuardrailStatus   string    `json:"guardrail_status"`
	UnallocatedBudget float64   `json:"unallocated_budget"`
}

// RunStatus tracks the lifecycle of a stored optimization run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// Run is a persisted optimization run: the request it was given and, once
// complete, either its summary or an error message.
type Run struct {
	ID          string     `json:"id"`
	ClientID    string     `json:"client_id"`
	Objective   string     `json:"objective"`
	Status      RunStatus  `json:"status"`
	Request     RunRequest `json:"request"`
	Summary     *Summary   `json:"summary,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
