package consumer

import (
	"context"
	"encoding/json"

	"go-tams/internal/events"
	"go-tams/internal/notification"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

func ConsumeApplicationLifecycle(
	ctx context.Context,
	reader *kafkago.Reader,
	notificationService notification.Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.application_lifecycle")
	log.Info("application lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("application lifecycle consumer stopped")
				return
			}
			log.Error("fetch application lifecycle message failed", zap.Error(err))
			continue
		}

		var event events.ApplicationEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode application event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := notificationService.HandleApplicationEvent(ctx, event); err != nil {
			log.Error("handle application event failed",
				zap.String("application_id", event.ApplicationID),
				zap.String("event_type", event.EventType),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit application lifecycle message failed", zap.Error(err))
			continue
		}

		log.Info("application notification created",
			zap.String("application_id", event.ApplicationID),
			zap.String("event_type", event.EventType),
		)
	}
}
