package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/purchase/internal/infrastructure/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

const defaultExportInterval = 60 * time.Second

// MeterProvider owns the SDK meter provider. Disabled telemetry keeps the
// global no-op meter.
type MeterProvider struct {
	provider *sdkmetric.MeterProvider
	logger   *zap.Logger
}

// NewMeterProvider exports metrics over OTLP gRPC to the trace collector
func NewMeterProvider(ctx context.Context, cfg config.TelemetryConfig, logger *zap.Logger) (*MeterProvider, error) {
	mp := &MeterProvider{logger: logger}
	if !cfg.Enabled {
		return mp, nil
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}
	res, err := newResource(cfg.ServiceName)
	if err != nil {
		return nil, err
	}

	mp.provider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(defaultExportInterval))),
	)
	otel.SetMeterProvider(mp.provider)
	logger.Info("OpenTelemetry MeterProvider initialized", zap.String("collector_endpoint", cfg.CollectorEndpoint))
	return mp, nil
}

// Meter returns a named meter
func (mp *MeterProvider) Meter(name string) metric.Meter {
	if mp.provider == nil {
		return otel.GetMeterProvider().Meter(name)
	}
	return mp.provider.Meter(name)
}

// Shutdown flushes pending metrics
func (mp *MeterProvider) Shutdown(ctx context.Context) error {
	if mp.provider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := mp.provider.Shutdown(ctx); err != nil {
		mp.logger.Error("Error shutting down meter provider", zap.Error(err))
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}
	return nil
}

// Reconciliation outcomes
const (
	OutcomeReduced      = "reduced"
	OutcomeNoop         = "noop"
	OutcomeInsufficient = "insufficient"
)

var attrOutcome = attribute.Key("outcome")

// ReconciliationMetrics counts line quantity reconciliations. A nil
// *ReconciliationMetrics records nothing.
type ReconciliationMetrics struct {
	runs         metric.Int64Counter
	removed      metric.Float64Counter
	movesTouched metric.Int64Histogram
}

// NewReconciliationMetrics creates the instruments on meter
func NewReconciliationMetrics(meter metric.Meter) (*ReconciliationMetrics, error) {
	runs, err := meter.Int64Counter("purchase.reconciliation.runs",
		metric.WithDescription("Purchase line reconciliations by outcome"))
	if err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}
	removed, err := meter.Float64Counter("purchase.reconciliation.removed_quantity",
		metric.WithDescription("Quantity removed from stock moves"))
	if err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}
	touched, err := meter.Int64Histogram("purchase.reconciliation.moves_touched",
		metric.WithDescription("Stock moves reduced or cancelled per reconciliation"),
		metric.WithExplicitBucketBoundaries(0, 1, 2, 5, 10, 25, 50))
	if err != nil {
		return nil, fmt.Errorf("failed to create histogram: %w", err)
	}
	return &ReconciliationMetrics{runs: runs, removed: removed, movesTouched: touched}, nil
}

// RecordOutcome counts one reconciliation
func (m *ReconciliationMetrics) RecordOutcome(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.runs.Add(ctx, 1, metric.WithAttributes(attrOutcome.String(outcome)))
}

// RecordReduction records what a reducing reconciliation changed
func (m *ReconciliationMetrics) RecordReduction(ctx context.Context, removed float64, moves int) {
	if m == nil {
		return
	}
	m.runs.Add(ctx, 1, metric.WithAttributes(attrOutcome.String(OutcomeReduced)))
	m.removed.Add(ctx, removed)
	m.movesTouched.Record(ctx, int64(moves))
}
