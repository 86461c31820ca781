// Package app wires the store and services shared by the server and the CLI.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/ceqc/internal/chart"
	"github.com/mamadbah2/ceqc/internal/config"
	"github.com/mamadbah2/ceqc/internal/repository/sqlite"
	"github.com/mamadbah2/ceqc/internal/service/calibration"
	"github.com/mamadbah2/ceqc/internal/service/exchange"
	"github.com/mamadbah2/ceqc/internal/service/records"
	"github.com/mamadbah2/ceqc/internal/service/reporting"
)

// App holds the opened store and the services built on top of it.
type App struct {
	Store    *sqlite.Store
	Records  *records.Service
	Reports  *reporting.Service
	Exchange *exchange.Service
}

// New opens the record store and constructs every service.
func New(ctx context.Context, cfg *config.Config, baseLogger *zap.Logger) (*App, error) {
	if baseLogger == nil {
		baseLogger = zap.NewNop()
	}

	table, err := calibration.NewTable(cfg.Calibration)
	if err != nil {
		return nil, fmt.Errorf("build calibration table: %w", err)
	}

	store, err := sqlite.Open(ctx, cfg.Storage.Path, baseLogger.Named("repo.sqlite"))
	if err != nil {
		return nil, fmt.Errorf("open record store: %w", err)
	}

	reports := reporting.NewService(store, reporting.Options{
		Limits:          cfg.Limits,
		Chart:           cfg.Chart,
		ReferenceCurves: cfg.Calibration.ReferenceCurves,
		Theme:           chart.DefaultTheme(),
	}, baseLogger.Named("svc.reporting"))

	return &App{
		Store:    store,
		Records:  records.NewService(store, table, cfg.Limits, baseLogger.Named("svc.records")),
		Reports:  reports,
		Exchange: exchange.NewService(store, cfg.Limits, baseLogger.Named("svc.exchange")),
	}, nil
}

// Close releases the record store.
func (a *App) Close() error {
	return a.Store.Close()
}
