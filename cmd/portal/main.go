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
	"github.com/sharebrasil/portal/internal/auth"
	"github.com/sharebrasil/portal/internal/logbook"
	"github.com/sharebrasil/portal/internal/observability"
	"github.com/sharebrasil/portal/internal/platform/cache"
	"github.com/sharebrasil/portal/internal/platform/db"
	"github.com/sharebrasil/portal/internal/rbac"
	"github.com/sharebrasil/portal/internal/reconciliation"
	"github.com/sharebrasil/portal/internal/registry"
	"github.com/sharebrasil/portal/internal/shared"
	"github.com/sharebrasil/portal/internal/travel"
	"github.com/sharebrasil/portal/internal/users"
	"github.com/sharebrasil/portal/internal/view"
	"github.com/sharebrasil/portal/jobs"
	"github.com/sharebrasil/portal/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	dbpool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: 10, MaxConnIdleTime: 5 * time.Minute})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	var reconCache *reconciliation.Cache
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, summaries served uncached", slog.Any("error", err))
		reconCache = reconciliation.NewCache(nil, 0)
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		reconCache = reconciliation.NewCache(redisClient, 10*time.Minute)
	}

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

	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(dbpool)
	idempotencyStore := shared.NewIdempotencyStore(dbpool)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	jobClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = jobClient.Close() }()

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.SupabaseServiceRoleKey, cfg.JWTTTL)
	authService := auth.NewService(auth.NewRepository(dbpool), tokens)
	authHandler := auth.NewHandler(logger, authService)

	rbacService := rbac.NewService(rbac.NewPGStore(dbpool))
	rbacMiddleware := rbac.Middleware{Service: rbacService, Logger: logger}
	rbacHandler := rbac.NewHandler(logger, rbacService, rbacMiddleware)

	usersService := users.NewService(users.NewRepository(dbpool), rbacService, auditLogger)
	usersHandler := users.NewHandler(logger, usersService, rbacMiddleware)

	registryHandler := registry.NewHandler(logger, registry.NewService(registry.NewRepository(dbpool)), rbacMiddleware)

	reportClient := report.NewClient(cfg.GotenbergURL)
	reportHandler := report.NewHandler(reportClient, logger)

	travelRepo := travel.NewRepository(dbpool)
	travelService := travel.NewService(travelRepo, store, travel.Options{
		Bucket:      cfg.StorageBucketReceipts,
		Logger:      logger,
		Idempotency: idempotencyStore,
		Cache:       reconCache,
		PDFQueue:    jobClient,
		Metrics:     metrics,
		Audit:       auditLogger,
	})
	renderer := travel.NewRenderer(travelRepo, templates, reportClient, cfg.CompanyLogoURL)
	travelHandler := travel.NewHandler(logger, travelService, renderer, rbacMiddleware)

	reconService := reconciliation.NewService(reconciliation.NewRepository(dbpool), reconciliation.Options{
		Cache:    reconCache,
		Notifier: jobClient,
		Audit:    auditLogger,
		Metrics:  metrics,
		Logger:   logger,
	})
	reconHandler := reconciliation.NewHandler(logger, reconService, rbacMiddleware)

	logbookHandler := logbook.NewHandler(logger, logbook.NewService(logbook.NewRepository(dbpool)), rbacMiddleware)

	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:                logger,
		Config:                cfg,
		AuthHandler:           authHandler,
		RBACHandler:           rbacHandler,
		UsersHandler:          usersHandler,
		RegistryHandler:       registryHandler,
		TravelHandler:         travelHandler,
		ReconciliationHandler: reconHandler,
		LogbookHandler:        logbookHandler,
		ReportHandler:         reportHandler,
		JobHandler:            jobHandler,
		Metrics:               metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
