package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopmetrics/storecast/server"
	"github.com/shopmetrics/storecast/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	cfg := server.ConfigFromEnv()

	var directory store.Directory
	var history store.SalesHistory
	if cfg.DatabaseDSN != "" {
		db, err := store.Open(cfg.DatabaseDSN)
		if err != nil {
			logger.Error("open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		directory = store.NewMySQLDirectory(db)
		history = store.NewMySQLSalesHistory(db)
		logger.Info("using mysql backend")
	} else {
		logger.Warn("no database configured, using in-memory directory with synthetic sales")
		directory = store.NewMemoryDirectory()
		history = &store.SyntheticHistory{}
	}

	s, err := server.New(cfg, directory, history, nil, logger)
	if err != nil {
		logger.Error("initialize server", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := s.Run(ctx); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
