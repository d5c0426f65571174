package optimizer

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/roi-modeler/internal/model"
)

// ErrUnknownObjective is returned when a requested objective name is absent
// from the catalog.
var ErrUnknownObjective = eris.New("optimizer: unknown objective")

// Catalog maps objective names to their default weights. Names are matched
// case-insensitively.
type Catalog struct {
	Objectives map[string]model.Weights `yaml:"objectives"`
}

// DefaultCatalog returns the built-in objective catalog used when no catalog
// file exists.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Objectives: map[string]model.Weights{
			"pipeline": {Pipeline: 1.0},
			"revenue":  {Revenue: 1.0},
			"hqls":     {HQLs: 1.0},
			"leads":    {Leads: 1.0},
			"blended":  {Pipeline: 0.5, Revenue: 0.3, HQLs: 0.2},
			"efficiency": {
				Pipeline: 0.4,
				ROAS:     0.4,
				CAC:      0.2,
			},
		},
	}
}

// LoadCatalog reads an objective catalog from a YAML file. A missing file
// falls back to the built-in defaults.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultCatalog(), nil
		}
		return nil, eris.Wrap(err, "optimizer: read objective catalog")
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, eris.Wrap(err, "optimizer: parse objective catalog")
	}
	if len(c.Objectives) == 0 {
		return DefaultCatalog(), nil
	}

	// Lower-case keys so lookups are case-insensitive.
	objectives := make(map[string]model.Weights, len(c.Objectives))
	for name, w := range c.Objectives {
		objectives[strings.ToLower(strings.TrimSpace(name))] = w
	}
	c.Objectives = objectives

	return &c, nil
}

// ResolveWeights looks up an objective's default weights and applies any
// recognized overrides. Override keys that are not one of the six weight
// names are ignored.
func (c *Catalog) ResolveWeights(objective string, overrides map[string]float64) (model.Weights, error) {
	name := strings.ToLower(strings.TrimSpace(objective))
	w, ok := c.Objectives[name]
	if !ok {
		return model.Weights{}, eris.Wrapf(ErrUnknownObjective, "%q is not in the objective catalog", objective)
	}

	for key, value := range overrides {
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "pipeline":
			w.Pipeline = value
		case "revenue":
			w.Revenue = value
		case "hqls":
			w.HQLs = value
		case "leads":
			w.Leads = value
		case "roas":
			w.ROAS = value
		case "cac":
			w.CAC = value
		}
	}

	return w, nil
}

// Score collapses a prediction into a single scalar under the given weights.
// CAC is subtracted; every other component is added.
func Score(p Prediction, w model.Weights) float64 {
	return w.Pipeline*p.Pipeline +
		w.Revenue*p.Revenue +
		w.HQLs*p.HQLs +
		w.Leads*p.Leads +
		w.ROAS*p.ROAS -
		w.CAC*p.CAC
}
