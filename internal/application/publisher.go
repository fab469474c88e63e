package application

import (
	"context"

	"go.uber.org/zap"

	"github.com/residenza/service-facility/internal/events"
	"github.com/residenza/service-facility/internal/platform/kafka"
)

// eventPublisher emits cloud events after a state change has been committed.
// Failures are logged and never reach the caller.
type eventPublisher struct {
	producer kafka.Publisher
	topic    string
	logger   *zap.Logger
}

func newEventPublisher(producer kafka.Publisher, topic string, logger *zap.Logger) eventPublisher {
	if producer == nil {
		producer = kafka.NopPublisher{}
	}
	return eventPublisher{producer: producer, topic: topic, logger: logger}
}

func (p eventPublisher) publish(ctx context.Context, eventType, subject string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent(events.Source, eventType, subject, data)
	if err != nil {
		p.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := p.producer.PublishEvent(ctx, p.topic, cloudEvent); err != nil {
		p.logger.Error("failed to publish event",
			zap.String("topic", p.topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
