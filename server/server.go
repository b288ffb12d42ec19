// Package server exposes the business directory and forecast pipeline over
// HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopmetrics/storecast"
	"github.com/shopmetrics/storecast/store"
)

// Config carries the server settings, populated from the environment.
type Config struct {
	Addr string

	// DatabaseDSN selects the MySQL backend when set. When empty the server
	// runs on the in-memory directory with synthetic sales history.
	DatabaseDSN string

	// ReportDir is where exported report files are written.
	ReportDir string
}

// ConfigFromEnv reads settings from STORECAST_* environment variables.
func ConfigFromEnv() Config {
	cfg := Config{
		Addr:        os.Getenv("STORECAST_ADDR"),
		DatabaseDSN: os.Getenv("STORECAST_DB_DSN"),
		ReportDir:   os.Getenv("STORECAST_REPORT_DIR"),
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.ReportDir == "" {
		cfg.ReportDir = os.TempDir()
	}
	return cfg
}

// Server routes HTTP requests to the directory and the forecast pipeline.
type Server struct {
	cfg        Config
	logger     *slog.Logger
	directory  store.Directory
	forecaster *storecast.Forecaster
	suggester  SuggestionEngine
	router     *mux.Router
}

// New wires a server from its collaborators. A nil logger falls back to the
// default slog logger and a nil suggester to the static engine.
func New(cfg Config, directory store.Directory, history store.SalesHistory, suggester SuggestionEngine, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if suggester == nil {
		suggester = StaticSuggestions{}
	}

	forecaster, err := storecast.New(directory, history, nil)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:        cfg,
		logger:     logger,
		directory:  directory,
		forecaster: forecaster,
		suggester:  suggester,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := mux.NewRouter()
	r.Use(corsMiddleware)

	r.HandleFunc("/", s.handleHome).Methods(http.MethodGet)
	r.HandleFunc("/businesses", s.handleCreateBusiness).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/businesses", s.handleListBusinesses).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/businesses/{id:[0-9]+}", s.handleGetBusiness).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/businesses/{id:[0-9]+}", s.handleUpdateBusiness).Methods(http.MethodPut, http.MethodOptions)
	r.HandleFunc("/businesses/{id:[0-9]+}", s.handleDeleteBusiness).Methods(http.MethodDelete, http.MethodOptions)
	r.HandleFunc("/businesses/{id:[0-9]+}/forecast", s.handleForecast).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/businesses/{id:[0-9]+}/forecast/report", s.handleForecastReport).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/businesses/{id:[0-9]+}/optimize", s.handleOptimize).Methods(http.MethodPost, http.MethodOptions)

	s.router = r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until the context is canceled, then drains connections.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
