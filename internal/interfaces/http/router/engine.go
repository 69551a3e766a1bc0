package router

import (
	"fmt"
	"time"

	"github.com/erp/purchase/internal/domain/shared"
	"github.com/erp/purchase/internal/infrastructure/logger"
	"github.com/erp/purchase/internal/interfaces/http/handler"
	"github.com/erp/purchase/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// EngineConfig holds what the global middleware chain needs
type EngineConfig struct {
	Logger         *zap.Logger
	Meter          metric.Meter
	Tracing        middleware.TracingConfig
	CORS           middleware.CORSConfig
	TrustedProxies []string
	MaxBodySize    int64

	// IdempotencyStore enables Idempotency-Key handling on write routes when set
	IdempotencyStore shared.IdempotencyStore
	IdempotencyTTL   time.Duration
}

// NewEngine builds the gin engine: the global chain, /health and the /api/v1 routes
func NewEngine(cfg EngineConfig, system *handler.SystemHandler, handlers Handlers) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("set trusted proxies: %w", err)
	}

	// Request id first so that recovery and access logs carry it.
	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		middleware.Tracing(cfg.Tracing),
		middleware.SpanEnricher(),
		logger.GinMiddleware(log),
	)
	if cfg.Meter != nil {
		metrics, err := middleware.HTTPMetrics(cfg.Meter)
		if err != nil {
			return nil, fmt.Errorf("http metrics: %w", err)
		}
		engine.Use(metrics)
	}
	engine.Use(middleware.Secure(), middleware.CORSWithConfig(cfg.CORS))
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}

	engine.GET("/health", system.Health)
	engine.GET("/system/info", system.GetSystemInfo)

	api := []gin.HandlerFunc{middleware.Tenant()}
	if cfg.IdempotencyStore != nil {
		api = append(api, middleware.Idempotency(middleware.IdempotencyConfig{
			Store: cfg.IdempotencyStore,
			TTL:   cfg.IdempotencyTTL,
		}))
	}
	handlers.Register(NewRouter(engine, WithAPIMiddleware(api...))).Setup()

	return engine, nil
}
