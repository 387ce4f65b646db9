package partner

import (
	"context"

	"github.com/wms/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// publishEvents hands the pending events of committed aggregates to the bus.
// The write already succeeded, so a publish failure is logged and swallowed.
func publishEvents(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, aggs ...shared.AggregateRoot) {
	for _, agg := range aggs {
		if err := shared.PublishAndClear(ctx, publisher, agg); err != nil {
			logger.Warn("failed to publish domain events",
				zap.String("aggregate_id", agg.GetID().String()),
				zap.Error(err),
			)
		}
	}
}
