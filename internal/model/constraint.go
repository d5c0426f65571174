package model

// Constraint is one channel's user-editable spend constraint row. Optional
// numeric fields are pointers so an absent value is distinguishable from zero.
//
// MinROAS and MaxCAC are informational per-channel targets; only the aggregate
// guardrails on a run request are enforced.
type Constraint struct {
	ClientID    string   `json:"client_id"`
	Channel     string   `json:"channel"`
	Enabled     bool     `json:"enabled"`
	MinSpend    *float64 `json:"min_spend,omitempty"`
	MaxSpend    *float64 `json:"max_spend,omitempty"`
	LockedSpend *float64 `json:"locked_spend,omitempty"`
	MinShare    *float64 `json:"min_share,omitempty"`
	MaxShare    *float64 `json:"max_share,omitempty"`
	MinROAS     *float64 `json:"min_roas,omitempty"`
	MaxCAC      *float64 `json:"max_cac,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}
