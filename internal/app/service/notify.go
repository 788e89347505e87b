package service

import (
	"context"

	"github.com/ikkim/catalog-backend/internal/events"
	"github.com/ikkim/catalog-backend/pkg/logger"
)

func orNoop(publisher events.Publisher) events.Publisher {
	if publisher == nil {
		return events.NoopPublisher{}
	}
	return publisher
}

// notify publishes after the mutation has committed. Failures are logged
// and never reach the caller.
func notify(ctx context.Context, publisher events.Publisher, kind events.Kind, payload interface{}) {
	if err := publisher.Publish(ctx, kind, payload); err != nil {
		logger.Warn("Failed to publish event", map[string]interface{}{
			"event_type": kind,
			"error":      err.Error(),
		})
	}
}
