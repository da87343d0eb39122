package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/sharebrasil/portal/internal/app"
	jobmetrics "github.com/sharebrasil/portal/internal/jobs"
	"github.com/sharebrasil/portal/internal/platform/db"
	"github.com/sharebrasil/portal/internal/shared"
	"github.com/sharebrasil/portal/internal/travel"
	"github.com/sharebrasil/portal/internal/view"
	"github.com/sharebrasil/portal/jobs"
	"github.com/sharebrasil/portal/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: 5})
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	store, err := app.NewObjectStore(ctx, cfg, logger, app.OpenGCS)
	if err != nil {
		logger.Error("init object store", slog.Any("error", err))
		os.Exit(1)
	}
	if closer, ok := store.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := jobmetrics.NewMetrics(nil)

	travelRepo := travel.NewRepository(pool)
	travelService := travel.NewService(travelRepo, store, travel.Options{Bucket: cfg.StorageBucketReceipts, Logger: logger})
	pdfClient := report.NewClient(cfg.GotenbergURL)
	renderer := travel.NewRenderer(travelRepo, templates, pdfClient, cfg.CompanyLogoURL)

	pdfJob := &jobs.ReportPDFJob{
		Renderer: renderer,
		Reports:  travelService,
		Store:    store,
		Bucket:   cfg.StorageBucketReceipts,
		Logger:   logger,
		Metrics:  metrics,
	}
	notifyJob := &jobs.NotifyJob{
		WebhookURL: cfg.ZapierWebhookURL,
		HTTP:       &http.Client{Timeout: 10 * time.Second},
		Logger:     logger,
		Metrics:    metrics,
	}
	cleanupJob := &jobs.IdempotencyCleanupJob{
		Store:   shared.NewIdempotencyStore(pool),
		Logger:  logger,
		Metrics: metrics,
	}

	cleanupTask, err := jobs.NewCleanupTask(72)
	if err != nil {
		logger.Error("build cleanup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskReportPDF, Handler: pdfJob.Handle},
			{Type: jobs.TaskReconciliationNotify, Handler: notifyJob.Handle},
			{Type: jobs.TaskIdempotencyCleanup, Handler: cleanupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "30 3 * * *", Task: cleanupTask, Options: []asynq.Option{asynq.MaxRetry(1)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
