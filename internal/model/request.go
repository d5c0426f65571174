package model

// Guardrails are aggregate pass/fail thresholds on an optimized result.
// A nil field means that dimension is not checked.
type Guardrails struct {
	MinROAS *float64 `json:"min_roas,omitempty" yaml:"min_roas"`
	MaxCAC  *float64 `json:"max_cac,omitempty" yaml:"max_cac"`
}

// RunRequest describes one optimization run. TotalBudget <= 0 means
// "default to the sum of baseline spend".
type RunRequest struct {
	ClientID    string             `json:"client_id" yaml:"client_id"`
	TotalBudget float64            `json:"total_budget" yaml:"total_budget"`
	Objective   string             `json:"objective" yaml:"objective"`
	Overrides   map[string]float64 `json:"objective_overrides,omitempty" yaml:"objective_overrides"`
	Guardrails  Guardrails         `json:"guardrails" yaml:"guardrails"`
}

// Weights is a six-component objective weighting. CAC is subtracted in the
// score function, the rest are added.
type Weights struct {
	Pipeline float64 `json:"pipeline" yaml:"pipeline"`
	Revenue  float64 `json:"revenue" yaml:"revenue"`
	HQLs     float64 `json:"hqls" yaml:"hqls"`
	Leads    float64 `json:"leads" yaml:"leads"`
	ROAS     float64 `json:"roas" yaml:"roas"`
	CAC      float64 `json:"cac" yaml:"cac"`
}
