package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/roi-modeler/internal/model"
)

func TestEvaluateGuardrails(t *testing.T) {
	tests := []struct {
		name   string
		roas   float64
		cac    float64
		g      model.Guardrails
		expect string
	}{
		{"no guardrails", 0.5, 9999, model.Guardrails{}, GuardrailPass},
		{"roas above floor", 3.0, 100, model.Guardrails{MinROAS: fptr(2.0)}, GuardrailPass},
		{"roas below floor", 1.5, 100, model.Guardrails{MinROAS: fptr(2.0)}, GuardrailFail},
		{"cac under ceiling", 3.0, 100, model.Guardrails{MaxCAC: fptr(150)}, GuardrailPass},
		{"cac over ceiling", 3.0, 200, model.Guardrails{MaxCAC: fptr(150)}, GuardrailFail},
		{"both set one fails", 3.0, 200, model.Guardrails{MinROAS: fptr(2.0), MaxCAC: fptr(150)}, GuardrailFail},
		{"both set both pass", 3.0, 100, model.Guardrails{MinROAS: fptr(2.0), MaxCAC: fptr(150)}, GuardrailPass},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, EvaluateGuardrails(tt.roas, tt.cac, tt.g))
		})
	}
}
