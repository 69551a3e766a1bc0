package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/erp/purchase/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig configures query spans
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool // include bound variables; never in production
	SlowQueryThresh time.Duration
	DBSystem        string
}

// DBTracingConfigFrom derives the query span settings
func DBTracingConfigFrom(tc config.TelemetryConfig, driver string) DBTracingConfig {
	system := "postgresql"
	if driver == config.DriverSQLite {
		system = "sqlite"
	}
	return DBTracingConfig{
		Enabled:         tc.Enabled && tc.DBTraceEnabled,
		LogFullSQL:      tc.DBLogFullSQL,
		SlowQueryThresh: tc.DBSlowQueryThresh,
		DBSystem:        system,
	}
}

// DBTracingPlugin registers otelgorm plus a callback that flags slow statements
type DBTracingPlugin struct {
	cfg    DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates the plugin
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	return &DBTracingPlugin{cfg: cfg, logger: logger}
}

type queryStartKey struct{}

// Register installs the plugin on db; a disabled config is a no-op
func (p *DBTracingPlugin) Register(db *gorm.DB) error {
	if !p.cfg.Enabled {
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.cfg.DBSystem)}
	if !p.cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	// after-hooks run before otelgorm ends the statement span
	cb := db.Callback()
	registrations := []func() error{
		func() error {
			return cb.Create().Before("gorm:create").Register("otel_timing:before_create", markQueryStart)
		},
		func() error {
			return cb.Create().After("gorm:create").Before("otel:after:create").Register("otel_timing:after_create", p.afterQuery)
		},
		func() error {
			return cb.Query().Before("gorm:query").Register("otel_timing:before_query", markQueryStart)
		},
		func() error {
			return cb.Query().After("gorm:query").Before("otel:after:query").Register("otel_timing:after_query", p.afterQuery)
		},
		func() error {
			return cb.Update().Before("gorm:update").Register("otel_timing:before_update", markQueryStart)
		},
		func() error {
			return cb.Update().After("gorm:update").Before("otel:after:update").Register("otel_timing:after_update", p.afterQuery)
		},
		func() error {
			return cb.Delete().Before("gorm:delete").Register("otel_timing:before_delete", markQueryStart)
		},
		func() error {
			return cb.Delete().After("gorm:delete").Before("otel:after:delete").Register("otel_timing:after_delete", p.afterQuery)
		},
		func() error { return cb.Raw().Before("gorm:raw").Register("otel_timing:before_raw", markQueryStart) },
		func() error {
			return cb.Raw().After("gorm:raw").Before("otel:after:raw").Register("otel_timing:after_raw", p.afterQuery)
		},
	}
	for _, register := range registrations {
		if err := register(); err != nil {
			return err
		}
	}

	p.logger.Info("Database tracing enabled",
		zap.String("db_system", p.cfg.DBSystem),
		zap.Duration("slow_query_threshold", p.cfg.SlowQueryThresh),
	)
	return nil
}

func markQueryStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

// afterQuery annotates the statement's span with rows, table, errors and slowness
func (p *DBTracingPlugin) afterQuery(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.RecordError(db.Error)
		span.SetStatus(codes.Error, db.Error.Error())
	}

	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok || p.cfg.SlowQueryThresh <= 0 {
		return
	}
	if elapsed := time.Since(start); elapsed > p.cfg.SlowQueryThresh {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
		span.AddEvent("slow_query_warning", trace.WithAttributes(
			attribute.Int64("threshold_ms", p.cfg.SlowQueryThresh.Milliseconds()),
		))
	}
}
