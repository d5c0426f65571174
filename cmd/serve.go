package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/roi-modeler/internal/model"
	"github.com/sells-group/roi-modeler/internal/optimizer"
	"github.com/sells-group/roi-modeler/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the optimization HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		catalog, err := optimizer.LoadCatalog(cfg.Paths.Objectives)
		if err != nil {
			return err
		}

		mux := newServeMux(st, catalog)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// newServeMux builds the HTTP routes for the optimization server.
func newServeMux(st store.Store, catalog *optimizer.Catalog) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /optimize", func(w http.ResponseWriter, r *http.Request) {
		var req model.RunRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.ClientID == "" {
			http.Error(w, `{"error":"client_id is required"}`, http.StatusBadRequest)
			return
		}

		result, run, err := executeRun(r.Context(), st, catalog, req)
		if err != nil {
			status := http.StatusInternalServerError
			if eris.Is(err, optimizer.ErrInfeasibleConstraints) || eris.Is(err, optimizer.ErrUnknownObjective) {
				status = http.StatusUnprocessableEntity
			}
			zap.L().Error("optimization request failed",
				zap.String("client", req.ClientID),
				zap.Error(err),
			)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}

		resp := map[string]any{
			"summary":    result.Summary,
			"allocation": result.Allocation,
		}
		if run != nil {
			resp["run_id"] = run.ID
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(resp)
	})

	mux.HandleFunc("GET /runs", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		runs, err := st.ListRuns(r.Context(), store.RunFilter{
			ClientID:  q.Get("client_id"),
			Objective: q.Get("objective"),
			Status:    model.RunStatus(q.Get("status")),
		})
		if err != nil {
			http.Error(w, `{"error":"list runs failed"}`, http.StatusInternalServerError)
			return
		}
		if runs == nil {
			runs = []model.Run{}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(runs)
	})

	return mux
}
