package trade

import (
	"context"

	"github.com/erp/purchase/internal/domain/shared"
	"go.uber.org/zap"
)

// publishEvents publishes and clears the pending events of the given
// aggregates once their transaction committed. Publish failures are logged
// and do not fail the operation.
func publishEvents(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, aggregates ...shared.AggregateRoot) {
	for _, agg := range aggregates {
		events := agg.GetDomainEvents()
		agg.ClearDomainEvents()
		if publisher == nil || len(events) == 0 {
			continue
		}
		if err := publisher.Publish(ctx, events...); err != nil {
			logger.Warn("Failed to publish domain events",
				zap.String("aggregate_id", agg.GetID().String()),
				zap.Int("event_count", len(events)),
				zap.Error(err),
			)
		}
	}
}
