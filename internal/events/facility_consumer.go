package events

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/residenza/service-facility/internal/platform/kafka"
)

// FacilityCacheInvalidator drops cached facility metadata.
type FacilityCacheInvalidator interface {
	Invalidate(ctx context.Context, id uuid.UUID) error
}

// FacilityEventConsumer listens to facility administration events and keeps the
// registry cache fresh.
type FacilityEventConsumer struct {
	consumer *kafka.Consumer
	cache    FacilityCacheInvalidator
	logger   *zap.Logger
}

// NewFacilityEventConsumer creates a new FacilityEventConsumer.
func NewFacilityEventConsumer(
	brokers []string,
	groupID, topic string,
	cache FacilityCacheInvalidator,
	logger *zap.Logger,
) *FacilityEventConsumer {
	return &FacilityEventConsumer{
		consumer: kafka.NewConsumer(brokers, groupID, topic, logger),
		cache:    cache,
		logger:   logger,
	}
}

// Start begins consuming facility events. This blocks until the context is cancelled.
func (c *FacilityEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *FacilityEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *FacilityEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	return HandleFacilityEvent(ctx, msg.Value, c.cache, c.logger)
}

// HandleFacilityEvent applies one raw facility event. Malformed messages are
// logged and skipped so they are not redelivered.
func HandleFacilityEvent(ctx context.Context, raw []byte, cache FacilityCacheInvalidator, logger *zap.Logger) error {
	var cloudEvent kafka.CloudEvent
	if err := json.Unmarshal(raw, &cloudEvent); err != nil {
		logger.Error("failed to parse cloud event from facility topic",
			zap.Error(err),
			zap.String("raw", string(raw)),
		)
		return nil
	}

	switch cloudEvent.Type {
	case FacilityUpdated, FacilityDeactivated:
	default:
		logger.Debug("ignoring unhandled facility event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}

	var evt FacilityChangedEvent
	if err := cloudEvent.ParseData(&evt); err != nil || evt.FacilityID == uuid.Nil {
		logger.Error("failed to parse FacilityChangedEvent data",
			zap.String("type", cloudEvent.Type),
			zap.Error(err),
		)
		return nil
	}

	if err := cache.Invalidate(ctx, evt.FacilityID); err != nil {
		logger.Error("failed to invalidate facility cache",
			zap.String("facility_id", evt.FacilityID.String()),
			zap.Error(err),
		)
		return err
	}

	logger.Info("facility cache invalidated",
		zap.String("facility_id", evt.FacilityID.String()),
		zap.String("type", cloudEvent.Type),
	)
	return nil
}
