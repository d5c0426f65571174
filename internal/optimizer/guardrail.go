package optimizer

import "github.com/sells-group/roi-modeler/internal/model"

// Guardrail statuses stamped on a summary.
const (
	GuardrailPass = "pass"
	GuardrailFail = "fail"
)

// EvaluateGuardrails checks the aggregate result against the run request's
// thresholds. A nil threshold skips that dimension. The status is advisory:
// a failing result is still returned to the caller.
func EvaluateGuardrails(overallROAS, overallCAC float64, g model.Guardrails) string {
	status := GuardrailPass
	if g.MinROAS != nil && overallROAS < *g.MinROAS {
		status = GuardrailFail
	}
	if g.MaxCAC != nil && overallCAC > *g.MaxCAC {
		status = GuardrailFail
	}
	return status
}
