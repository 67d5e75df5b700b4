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

	"github.com/mamadbah2/megg/internal/config"
	firestorerepo "github.com/mamadbah2/megg/internal/repository/firestore"
	"github.com/mamadbah2/megg/internal/repository/mongodb"
	"github.com/mamadbah2/megg/internal/repository/sheets"
	"github.com/mamadbah2/megg/internal/scheduler"
	"github.com/mamadbah2/megg/internal/server/handlers"
	"github.com/mamadbah2/megg/internal/server/router"
	"github.com/mamadbah2/megg/internal/service/export"
	"github.com/mamadbah2/megg/internal/service/inventory"
	whatsappclient "github.com/mamadbah2/megg/pkg/clients/whatsapp"
	"github.com/mamadbah2/megg/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	loc, err := cfg.Reporting.Location()
	if err != nil {
		baseLogger.Fatal("invalid timezone", zap.Error(err))
	}

	ctx := context.Background()

	fsClient, source, err := firestorerepo.NewClient(ctx, cfg.Firestore)
	if err != nil {
		baseLogger.Fatal("failed to init firestore client", zap.Error(err))
	}
	defer func() { _ = fsClient.Close() }()
	if err := firestorerepo.Ping(ctx, fsClient); err != nil {
		baseLogger.Fatal("firestore ping failed", zap.Error(err))
	}
	baseLogger.Info("firestore connected", zap.String("project_id", cfg.Firestore.ProjectID), zap.String("credentials", source))
	batchRepo := firestorerepo.NewBatchRepository(fsClient, baseLogger.Named("repo.firestore"))

	mongoRepo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := mongoRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	var (
		sheetRepo   sheets.Repository
		digestSheet scheduler.DigestSheet
	)
	if cfg.Sheets.Enabled() {
		repo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		sheetRepo, digestSheet = repo, repo
	} else {
		baseLogger.Warn("google sheets not configured, sheet export disabled")
	}

	var notifier scheduler.Notifier
	if cfg.WhatsApp.Enabled() {
		notifier = whatsappclient.NewClient(cfg.WhatsApp)
		baseLogger.Info("whatsapp digest enabled")
	}

	aggregator := inventory.NewAggregator(loc)
	inventorySvc := inventory.NewService(batchRepo, mongoRepo, aggregator, baseLogger.Named("svc.inventory"))
	exportSvc := export.NewService(sheetRepo, cfg.Sheets.ExportRange, baseLogger.Named("svc.export"))

	inventoryHandler := handlers.NewInventoryHandler(inventorySvc, exportSvc, baseLogger.Named("handlers.inventory"))
	engine := router.New(inventoryHandler, cfg.Server.AllowedOrigins, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(scheduler.Options{
		Schedule:    cfg.Reporting.CronSchedule,
		Location:    loc,
		AccountIDs:  cfg.Reporting.AccountIDs,
		Recipient:   cfg.WhatsApp.ReportRecipient,
		DigestRange: cfg.Sheets.DigestRange,
	}, inventorySvc, mongoRepo, digestSheet, notifier, baseLogger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-sigCtx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
