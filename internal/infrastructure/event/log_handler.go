package event

import (
	"context"

	"github.com/erp/purchase/internal/domain/shared"
	"github.com/erp/purchase/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// LogHandler writes every domain event to the log
type LogHandler struct {
	logger *zap.Logger
}

// NewLogHandler creates a LogHandler
func NewLogHandler(l *zap.Logger) *LogHandler {
	return &LogHandler{logger: l.Named("events")}
}

func (h *LogHandler) Handle(ctx context.Context, e shared.DomainEvent) error {
	logger.Enrich(ctx, h.logger).Info("Domain event",
		zap.String("event_type", e.EventType()),
		zap.String("event_id", e.EventID().String()),
		zap.String("aggregate_type", e.AggregateType()),
		zap.String("aggregate_id", e.AggregateID().String()),
		zap.String("tenant_id", e.TenantID().String()),
	)
	return nil
}

func (h *LogHandler) EventTypes() []string { return nil }
