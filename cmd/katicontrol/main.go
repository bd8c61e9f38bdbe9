package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wearkati/katicontrol/internal/app"
	"github.com/wearkati/katicontrol/internal/cash"
	"github.com/wearkati/katicontrol/internal/catalog"
	"github.com/wearkati/katicontrol/internal/dashboard"
	"github.com/wearkati/katicontrol/internal/drops"
	"github.com/wearkati/katicontrol/internal/expenses"
	"github.com/wearkati/katicontrol/internal/importer"
	"github.com/wearkati/katicontrol/internal/inventory"
	"github.com/wearkati/katicontrol/internal/orders"
	"github.com/wearkati/katicontrol/internal/platform/cache"
	"github.com/wearkati/katicontrol/internal/platform/db"
	"github.com/wearkati/katicontrol/migrations"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if err := db.Migrate(migrations.FS, cfg.PGDSN); err != nil {
		logger.Error("apply migrations", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	// A dead Redis degrades report caching to pass-through, it never blocks
	// startup.
	redisClient, err := cache.NewRedis(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, report caching disabled", slog.Any("error", err))
		if redisClient != nil {
			_ = redisClient.Close()
		}
		redisClient = nil
	}
	defer func() {
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}
	}()

	productRepo := catalog.NewRepository(pool)
	productService := catalog.NewService(productRepo)

	orderRepo := orders.NewRepository(pool)
	orderService := orders.NewService(orderRepo)

	expenseRepo := expenses.NewRepository(pool)
	expenseService := expenses.NewService(expenseRepo)

	dropRepo := drops.NewRepository(pool)
	dropService := drops.NewService(dropRepo, orderRepo, expenseService)

	cashRepo := cash.NewRepository(pool)
	cashService := cash.NewService(cashRepo)

	inventoryRepo := inventory.NewRepository(pool)
	inventoryService := inventory.NewService(inventoryRepo)

	reportCache := dashboard.NewCache(redisClient, cfg.CacheTTL)
	dashboardRepo := dashboard.NewRepository(pool)
	dashboardService := dashboard.NewService(dashboardRepo, inventoryService, reportCache)

	importerRepo := importer.NewRepository(pool)
	importerService := importer.NewService(importerRepo)
	exporter := importer.NewExporter(importerRepo)
	restorer := importer.NewRestorer(pool)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		ProductHandler:   catalog.NewHandler(logger, productService),
		OrderHandler:     orders.NewHandler(logger, orderService, cfg.SyncSecret),
		DropHandler:      drops.NewHandler(logger, dropService),
		ExpenseHandler:   expenses.NewHandler(logger, expenseService),
		CashHandler:      cash.NewHandler(logger, cashService),
		InventoryHandler: inventory.NewHandler(logger, inventoryService),
		DashboardHandler: dashboard.NewHandler(logger, dashboardService),
		ImporterHandler:  importer.NewHandler(logger, importerService, exporter, restorer, cfg.RestoreSecret),
		ReportCache:      reportCache,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
