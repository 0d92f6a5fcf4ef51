package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/mowbraylabs/retailpulse/internal/budget"
	budgetStore "github.com/mowbraylabs/retailpulse/internal/budget/store"
	"github.com/mowbraylabs/retailpulse/internal/config"
	coverageStore "github.com/mowbraylabs/retailpulse/internal/coverage/store"
	"github.com/mowbraylabs/retailpulse/internal/database"
	rpHttp "github.com/mowbraylabs/retailpulse/internal/http"
	budgetHandler "github.com/mowbraylabs/retailpulse/internal/http/budget"
	importHandler "github.com/mowbraylabs/retailpulse/internal/http/importcsv"
	locationsHandler "github.com/mowbraylabs/retailpulse/internal/http/locations"
	reportHandler "github.com/mowbraylabs/retailpulse/internal/http/report"
	locationStore "github.com/mowbraylabs/retailpulse/internal/location/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var (
		budgetService = budget.NewService(budgetStore.New(db))
		catalog       = locationStore.New(db)
		activity      = coverageStore.New(db)
	)

	var (
		budgetsH   = budgetHandler.NewHandler(budgetService)
		importH    = importHandler.NewHandler(budgetService, catalog)
		reportsH   = reportHandler.NewHandler(budgetService, catalog, activity)
		locationsH = locationsHandler.NewHandler(catalog)
	)

	router := rpHttp.New(rpHttp.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AuthSecret:     cfg.Auth.Secret,
	}, budgetsH, importH, reportsH, locationsH)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
