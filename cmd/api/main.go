package main

import (
	"context"
	"net/http"
	"os"

	"github.com/adirahman/klinik-backend/api/routes"
	dashboardsvc "github.com/adirahman/klinik-backend/internal/dashboard"
	medicinesvc "github.com/adirahman/klinik-backend/internal/medicines"
	patientsvc "github.com/adirahman/klinik-backend/internal/patients"
	receiptsvc "github.com/adirahman/klinik-backend/internal/receipts"
	usagesvc "github.com/adirahman/klinik-backend/internal/usages"
	"github.com/adirahman/klinik-backend/pkg/config"
	"github.com/adirahman/klinik-backend/pkg/db"
	"github.com/adirahman/klinik-backend/pkg/logger"
	"github.com/adirahman/klinik-backend/pkg/metrics"
	"github.com/adirahman/klinik-backend/pkg/migrate"
	"github.com/adirahman/klinik-backend/pkg/redis"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
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

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(context.Background(), "redis disabled, dashboard cache off")
	}

	medicineRepo := medicinesvc.NewRepository(dbClient.DB())
	usageRepo := usagesvc.NewRepository(dbClient.DB())
	patientRepo := patientsvc.NewRepository(dbClient.DB())

	medicineService, err := medicinesvc.NewService(medicineRepo, dbClient, usageRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create medicine service", err)
		os.Exit(1)
	}
	usageService, err := usagesvc.NewService(usageRepo, medicineRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create usage service", err)
		os.Exit(1)
	}
	patientService, err := patientsvc.NewService(patientRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create patient service", err)
		os.Exit(1)
	}

	var statsCache dashboardsvc.StatsCache
	if redisClient != nil {
		statsCache = redisClient
	}
	dashboardService, err := dashboardsvc.NewService(medicineRepo, patientRepo, usageRepo, statsCache, cfg.Dashboard.CacheTTL, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create dashboard service", err)
		os.Exit(1)
	}
	receiptService, err := receiptsvc.NewService(patientRepo, cfg.Receipt.Prefix)
	if err != nil {
		logg.Error(context.Background(), "failed to create receipt service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

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
		Handler: routes.NewRouter(cfg, logg, dbClient, httpMetrics, registry, routes.Services{
			Medicines: medicineService,
			Usages:    usageService,
			Patients:  patientService,
			Dashboard: dashboardService,
			Receipts:  receiptService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
