package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/ceqc/internal/app"
	"github.com/mamadbah2/ceqc/internal/config"
	"github.com/mamadbah2/ceqc/internal/scheduler"
	"github.com/mamadbah2/ceqc/internal/server/handlers"
	"github.com/mamadbah2/ceqc/internal/server/router"
	"github.com/mamadbah2/ceqc/pkg/clients/notify"
	"github.com/mamadbah2/ceqc/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Debug))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, baseLogger)
	if err != nil {
		baseLogger.Fatal("failed to init application", zap.Error(err))
	}
	defer func() {
		if err := application.Close(); err != nil {
			baseLogger.Error("failed to close record store", zap.Error(err))
		}
	}()

	engine := router.New(router.Handlers{
		Records:  handlers.NewRecordsHandler(application.Records, baseLogger.Named("handlers.records")),
		Report:   handlers.NewReportHandler(application.Reports, baseLogger.Named("handlers.report")),
		Exchange: handlers.NewExchangeHandler(application.Exchange, baseLogger.Named("handlers.exchange")),
	}, baseLogger.Named("router"))

	var notifier notify.Client
	if cfg.Notify.Enabled() {
		notifier = notify.NewClient(cfg.Notify)
		baseLogger.Info("report delivery enabled")
	} else {
		baseLogger.Info("report delivery disabled, NOTIFY_WEBHOOK_URL not set")
	}

	sched, err := scheduler.NewScheduler(cfg.Reporting, application.Reports, notifier, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		baseLogger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
