package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	inventoryapp "github.com/erp/purchase/internal/application/inventory"
	procurementapp "github.com/erp/purchase/internal/application/procurement"
	tradeapp "github.com/erp/purchase/internal/application/trade"
	"github.com/erp/purchase/internal/domain/shared"
	"github.com/erp/purchase/internal/infrastructure/cache"
	"github.com/erp/purchase/internal/infrastructure/config"
	"github.com/erp/purchase/internal/infrastructure/event"
	"github.com/erp/purchase/internal/infrastructure/lock"
	"github.com/erp/purchase/internal/infrastructure/logger"
	"github.com/erp/purchase/internal/infrastructure/persistence"
	"github.com/erp/purchase/internal/infrastructure/telemetry"
	"github.com/erp/purchase/internal/interfaces/http/handler"
	"github.com/erp/purchase/internal/interfaces/http/middleware"
	"github.com/erp/purchase/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	version         = "1.0.0"
	shutdownTimeout = 30 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.FromAppConfig(cfg.Log))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Starting purchase service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// A variant without a receipt planner would fail every confirmation.
	if err := tradeapp.ValidateReceiptPlanners(); err != nil {
		return err
	}
	if err := middleware.SetupValidator(); err != nil {
		return fmt.Errorf("setup validator: %w", err)
	}

	tp, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return err
	}
	mp, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mp.Shutdown(shutdownCtx); err != nil {
			log.Warn("Meter provider shutdown failed", zap.Error(err))
		}
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Warn("Tracer provider shutdown failed", zap.Error(err))
		}
	}()

	db, err := persistence.NewDatabase(&cfg.Database, log, logger.GormLevel(cfg.Log.Level))
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfigFrom(cfg.Telemetry, cfg.Database.Driver), log).Register(db.DB); err != nil {
		return fmt.Errorf("register db tracing: %w", err)
	}
	// Postgres schemas are owned by cmd/migrate.
	if db.IsSQLite() {
		if err := db.AutoMigrate(); err != nil {
			return err
		}
	}
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	idempotency, locker, closeShared, err := sharedState(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeShared()

	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(event.NewLogHandler(log))
	if err := bus.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = bus.Stop(context.Background()) }()

	reconciliationMetrics, err := telemetry.NewReconciliationMetrics(mp.Meter("purchase"))
	if err != nil {
		return fmt.Errorf("reconciliation metrics: %w", err)
	}

	handlers := buildHandlers(cfg, db, bus, locker, reconciliationMetrics, log)

	engineCfg := router.EngineConfig{
		Logger:  log,
		Meter:   mp.Meter("http"),
		Tracing: middleware.TracingConfig{ServiceName: cfg.Telemetry.ServiceName, Enabled: cfg.Telemetry.Enabled},
		CORS: middleware.CORSConfig{
			AllowOrigins: cfg.HTTP.CORSAllowOrigins,
			AllowMethods: cfg.HTTP.CORSAllowMethods,
			AllowHeaders: cfg.HTTP.CORSAllowHeaders,
		},
		TrustedProxies: cfg.HTTP.TrustedProxies,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
	}
	if cfg.Idempotency.Enabled {
		engineCfg.IdempotencyStore = idempotency
		engineCfg.IdempotencyTTL = cfg.Idempotency.TTL
	}
	engine, err := router.NewEngine(engineCfg, handler.NewSystemHandler(cfg.App.Name, version, db), handlers)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("Server exited gracefully")
	return nil
}

// sharedState picks the idempotency store and the procurement locker. The
// redis backend serves both so that several replicas agree.
func sharedState(ctx context.Context, cfg *config.Config, log *zap.Logger) (shared.IdempotencyStore, shared.Locker, func(), error) {
	if cfg.Idempotency.Backend != config.IdempotencyBackendRedis {
		store := cache.NewInMemoryIdempotencyStore()
		return store, lock.NewMemoryLocker(), func() { _ = store.Close() }, nil
	}

	client, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, nil, err
	}
	log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	closeFn := func() {
		if err := client.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
			log.Warn("Error closing redis", zap.Error(err))
		}
	}
	return cache.NewRedisIdempotencyStore(client, cfg.App.Name+":"), lock.NewRedisLocker(client), closeFn, nil
}

func buildHandlers(
	cfg *config.Config,
	db *persistence.Database,
	bus shared.EventPublisher,
	locker shared.Locker,
	metrics *telemetry.ReconciliationMetrics,
	log *zap.Logger,
) router.Handlers {
	scope := persistence.NewGormTransactionScope(db.DB)
	orderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	moveRepo := persistence.NewGormStockMoveRepository(db.DB)

	orderService := tradeapp.NewPurchaseOrderService(orderRepo, scope.PurchaseScope(), log)
	orderService.SetEventPublisher(bus)
	orderService.SetReconciliationMetrics(metrics)

	receiptService := tradeapp.NewManualReceiptService(scope.PurchaseScope(), log)
	receiptService.SetEventPublisher(bus)

	moveService := inventoryapp.NewStockMoveService(moveRepo, scope.StockScope(), log)
	moveService.SetEventPublisher(bus)

	requestService := procurementapp.NewPurchaseRequestService(
		persistence.NewGormPurchaseRequestRepository(db.DB),
		scope.ProcurementScope(),
		locker,
		procurementapp.PurchaseRequestServiceConfig{
			GroupByDate: cfg.Procurement.GroupByDate,
			LockTTL:     cfg.Procurement.LockTTL,
		},
		log,
	)
	requestService.SetEventPublisher(bus)

	requisitionService := procurementapp.NewRequisitionService(
		persistence.NewGormRequisitionRepository(db.DB),
		persistence.NewGormSupplierInfoRepository(db.DB),
	)

	return router.Handlers{
		PurchaseOrders: handler.NewPurchaseOrderHandler(orderService, receiptService),
		StockMoves:     handler.NewStockMoveHandler(moveService),
		Procurement:    handler.NewProcurementHandler(requestService, requisitionService),
	}
}
