package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/tregohealth/trego-backend/api/routes"
	"github.com/tregohealth/trego-backend/internal/allocation"
	"github.com/tregohealth/trego-backend/internal/catalog"
	"github.com/tregohealth/trego-backend/internal/preorders"
	"github.com/tregohealth/trego-backend/internal/stock"
	"github.com/tregohealth/trego-backend/internal/substitutes"
	"github.com/tregohealth/trego-backend/internal/vendors"
	"github.com/tregohealth/trego-backend/pkg/config"
	"github.com/tregohealth/trego-backend/pkg/db"
	"github.com/tregohealth/trego-backend/pkg/logger"
	"github.com/tregohealth/trego-backend/pkg/metrics"
	"github.com/tregohealth/trego-backend/pkg/migrate"
	"github.com/tregohealth/trego-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	allocationMetrics := metrics.NewAllocationMetrics(registry)

	catalogRepo := catalog.NewRepository(dbClient.DB())
	stockRepo := stock.NewRepository(dbClient.DB())
	vendorRepo := vendors.NewRepository(dbClient.DB())
	preOrderRepo := preorders.NewRepository(dbClient.DB())

	vendorDirectory, err := vendors.NewDirectory(vendorRepo, redisClient, cfg.Allocation.VendorCacheTTL, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create vendor directory", err)
		os.Exit(1)
	}

	substituteService, err := substitutes.NewService(catalogRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create substitute service", err)
		os.Exit(1)
	}

	allocationService, err := allocation.NewService(
		stockRepo,
		catalogRepo,
		substituteService,
		vendorDirectory,
		preOrderRepo,
		cfg.Allocation,
		logg,
		allocationMetrics,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create allocation service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			allocationService,
			substituteService,
			registry,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
