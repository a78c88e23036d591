package consumer

import (
	"context"
	"encoding/json"

	"go-tams/internal/events"
	"go-tams/internal/notification"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

func ConsumeTimesheetLifecycle(
	ctx context.Context,
	reader *kafkago.Reader,
	notificationService notification.Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.timesheet_lifecycle")
	log.Info("timesheet lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("timesheet lifecycle consumer stopped")
				return
			}
			log.Error("fetch timesheet lifecycle message failed", zap.Error(err))
			continue
		}

		var event events.TimesheetEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode timesheet event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := notificationService.HandleTimesheetEvent(ctx, event); err != nil {
			log.Error("handle timesheet event failed",
				zap.String("timesheet_id", event.TimesheetID),
				zap.String("event_type", event.EventType),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit timesheet lifecycle message failed", zap.Error(err))
			continue
		}

		log.Info("timesheet notification created",
			zap.String("timesheet_id", event.TimesheetID),
			zap.String("event_type", event.EventType),
		)
	}
}
