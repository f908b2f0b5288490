// Command server runs the development backend: a json-server compatible
// REST store for purchase orders and their reference data.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/erp/purchasing/internal/infrastructure/config"
	"github.com/erp/purchasing/internal/infrastructure/logger"
	"github.com/erp/purchasing/internal/infrastructure/persistence"
	"github.com/erp/purchasing/internal/infrastructure/telemetry"
	"github.com/erp/purchasing/internal/interfaces/http/handler"
	"github.com/erp/purchasing/internal/interfaces/http/router"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: logger.DefaultTimeFormat,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Info("Starting purchasing development backend",
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.Server.Port),
		zap.String("driver", cfg.Database.Driver),
	)

	tracer, err := telemetry.NewTracerProvider(context.Background(), telemetry.TracingConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    "1.0.0",
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		_ = tracer.Shutdown(context.Background())
	}()

	db, err := persistence.NewDatabase(cfg.Database, log, persistence.WithTracing(telemetry.DBTracingConfig{
		Enabled:       tracer.IsEnabled() && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:    cfg.Telemetry.DBLogFullSQL,
		SlowThreshold: cfg.Database.SlowThreshold,
	}))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	seeder := persistence.NewSeeder(db.DB, persistence.SeedConfig{
		Suppliers:  cfg.Server.SeedSuppliers,
		Warehouses: cfg.Server.SeedWarehouses,
		Products:   cfg.Server.SeedProducts,
		Orders:     cfg.Server.SeedOrders,
	}, log)
	if _, err := seeder.Seed(context.Background()); err != nil {
		log.Fatal("Failed to seed database", zap.Error(err))
	}

	var metrics *telemetry.Metrics
	if cfg.Server.MetricsEnabled {
		metrics = telemetry.NewMetrics(true)
	}

	engineCfg := router.EngineConfig{Logger: log, Metrics: metrics}
	if tracer.IsEnabled() {
		engineCfg.TraceService = tracer.ServiceName()
	}
	engine := router.NewEngine(engineCfg,
		handler.NewPurchaseOrderHandler(persistence.NewGormPurchaseOrderRepository(db.DB)),
		handler.NewReferenceHandler(persistence.NewGormReferenceRepository(db.DB)),
		handler.NewHealthHandler(db),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}
	log.Info("Server exited gracefully")
}
