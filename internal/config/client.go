package config

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/roi-modeler/internal/model"
)

// ClientConfig describes one client's canonical dataset and run defaults.
// One file per client lives under the clients dir.
type ClientConfig struct {
	ClientID    string          `yaml:"client_id"`
	Description string          `yaml:"description"`
	Data        ClientDataPaths `yaml:"data"`
	RunDefaults RunDefaults     `yaml:"run_defaults"`
}

// ClientDataPaths locates the client's canonical CSV tables.
type ClientDataPaths struct {
	PerformanceCSV string `yaml:"performance_csv"`
	BaselineCSV    string `yaml:"baseline_csv"`
	ConstraintsCSV string `yaml:"constraints_csv"`
}

// RunDefaults are applied to a run request when the caller does not override them.
type RunDefaults struct {
	Objective   string           `yaml:"objective"`
	TotalBudget float64          `yaml:"total_budget"`
	Guardrails  model.Guardrails `yaml:"guardrails"`
}

// LoadClient reads a client config by id from the clients dir.
func LoadClient(clientsDir, clientID string) (*ClientConfig, error) {
	path := filepath.Join(clientsDir, clientID+".yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "config: read client %s", clientID)
	}

	var cc ClientConfig
	if err := yaml.Unmarshal(data, &cc); err != nil {
		return nil, eris.Wrapf(err, "config: parse client %s", clientID)
	}
	if cc.ClientID == "" {
		cc.ClientID = clientID
	}

	return &cc, nil
}

// SaveClient writes a client config into the clients dir, creating it if needed.
func SaveClient(clientsDir string, cc *ClientConfig) (string, error) {
	if err := os.MkdirAll(clientsDir, 0o755); err != nil {
		return "", eris.Wrap(err, "config: create clients dir")
	}

	data, err := yaml.Marshal(cc)
	if err != nil {
		return "", eris.Wrapf(err, "config: marshal client %s", cc.ClientID)
	}

	path := filepath.Join(clientsDir, cc.ClientID+".yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", eris.Wrapf(err, "config: write client %s", cc.ClientID)
	}

	return path, nil
}
