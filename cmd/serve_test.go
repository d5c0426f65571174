package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/roi-modeler/internal/config"
	"github.com/sells-group/roi-modeler/internal/model"
	"github.com/sells-group/roi-modeler/internal/optimizer"
	"github.com/sells-group/roi-modeler/internal/report"
	"github.com/sells-group/roi-modeler/internal/store"
)

// setupServeEnv writes a minimal client dataset, points the global config at
// it, and returns a mux backed by a temp SQLite store.
func setupServeEnv(t *testing.T) *http.ServeMux {
	t.Helper()
	dir := t.TempDir()

	baseline := []model.ChannelBaseline{
		{
			ClientID: "acme", Channel: "Paid Search",
			BaselineSpend: 60_000, Beta: 0.78, AlphaPipeline: 45, AlphaHQLs: 0.05,
		},
		{
			ClientID: "acme", Channel: "Content Syndication",
			BaselineSpend: 40_000, Beta: 0.72, AlphaPipeline: 30, AlphaHQLs: 0.04,
		},
	}
	baselineCSV := filepath.Join(dir, "acme_channel_baseline.csv")
	require.NoError(t, report.WriteBaseline(baselineCSV, baseline))

	constraintsCSV := filepath.Join(dir, "acme_constraints.csv")
	require.NoError(t, report.WriteConstraints(constraintsCSV, []model.Constraint{}))

	clientsDir := filepath.Join(dir, "clients")
	_, err := config.SaveClient(clientsDir, &config.ClientConfig{
		ClientID: "acme",
		Data: config.ClientDataPaths{
			PerformanceCSV: filepath.Join(dir, "acme_performance.csv"),
			BaselineCSV:    baselineCSV,
			ConstraintsCSV: constraintsCSV,
		},
		RunDefaults: config.RunDefaults{Objective: "pipeline"},
	})
	require.NoError(t, err)

	cfg = &config.Config{
		Paths: config.PathsConfig{ClientsDir: clientsDir},
	}

	st, err := store.Open(context.Background(), config.StoreConfig{
		Driver:      "sqlite",
		DatabaseURL: filepath.Join(dir, "serve.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	return newServeMux(st, optimizer.DefaultCatalog())
}

func TestServeMux_Health(t *testing.T) {
	mux := setupServeEnv(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestServeMux_Optimize(t *testing.T) {
	mux := setupServeEnv(t)

	body := strings.NewReader(`{"client_id":"acme","total_budget":100000,"objective":"pipeline"}`)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/optimize", body))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		RunID      string             `json:"run_id"`
		Summary    model.Summary      `json:"summary"`
		Allocation []model.Allocation `json:"allocation"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, "acme", resp.Summary.ClientID)
	assert.Equal(t, 100_000.0, resp.Summary.TotalBudget)
	require.Len(t, resp.Allocation, 2)

	var total float64
	for _, a := range resp.Allocation {
		total += a.RecommendedSpend
	}
	assert.InDelta(t, 100_000, total+resp.Summary.UnallocatedBudget, 1e-2)
}

func TestServeMux_Optimize_MissingClientID(t *testing.T) {
	mux := setupServeEnv(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/optimize", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "client_id is required")
}

func TestServeMux_Optimize_UnknownObjective(t *testing.T) {
	mux := setupServeEnv(t)

	body := strings.NewReader(`{"client_id":"acme","objective":"market-share"}`)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/optimize", body))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "objective")
}

func TestServeMux_ListRuns(t *testing.T) {
	mux := setupServeEnv(t)

	// No runs yet: empty array, not null.
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))

	body := strings.NewReader(`{"client_id":"acme","total_budget":100000}`)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/optimize", body))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs?client_id=acme", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var runs []model.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, model.RunStatusSucceeded, runs[0].Status)
}
