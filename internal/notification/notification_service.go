package notification

import (
	"context"
	"fmt"

	"go-tams/internal/events"
	"go-tams/internal/position"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -source=notification_service.go -destination=mock/notification_service_mock.go -package=mock
type Service interface {
	HandleApplicationEvent(ctx context.Context, event events.ApplicationEvent) error
	HandleTimesheetEvent(ctx context.Context, event events.TimesheetEvent) error
	GetMine(ctx context.Context, recipientID string, unreadOnly bool) ([]NotificationResponse, error)
	MarkRead(ctx context.Context, recipientID, id string) error
	MarkAllRead(ctx context.Context, recipientID string) error
}

type service struct {
	repo      Repository
	positions position.Repository
	logger    *zap.Logger
}

func NewService(repo Repository, positions position.Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("notification.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.service")
	}
	return &service{repo: repo, positions: positions, logger: l}
}

// HandleApplicationEvent menerjemahkan event lamaran jadi notifikasi.
// Submit diberitahukan ke dosen pemilik posisi; hasil review ke
// pelamarnya.
func (s *service) HandleApplicationEvent(ctx context.Context, event events.ApplicationEvent) error {
	applicationID, err := uuid.Parse(event.ApplicationID)
	if err != nil {
		return err
	}

	var (
		recipientID uuid.UUID
		title       string
		message     string
		priority    = PriorityNormal
	)

	switch event.EventType {
	case events.ApplicationSubmitted:
		pos, err := s.positions.FindByID(ctx, event.PositionID)
		if err != nil {
			return err
		}
		recipientID = pos.PostedBy
		title = "New application received"
		message = fmt.Sprintf("A student applied for %q.", event.PositionTitle)

	case events.ApplicationAccepted:
		recipientID, err = uuid.Parse(event.ApplicantID)
		if err != nil {
			return err
		}
		title = "Application accepted"
		message = fmt.Sprintf("Congratulations, your application for %q was accepted.", event.PositionTitle)
		priority = PriorityHigh

	case events.ApplicationRejected:
		recipientID, err = uuid.Parse(event.ApplicantID)
		if err != nil {
			return err
		}
		title = "Application rejected"
		message = fmt.Sprintf("Your application for %q was not successful.", event.PositionTitle)

	case events.ApplicationRevoked:
		recipientID, err = uuid.Parse(event.ApplicantID)
		if err != nil {
			return err
		}
		title = "Application decision revoked"
		message = fmt.Sprintf("The decision on your application for %q was withdrawn and is back under review.", event.PositionTitle)
		priority = PriorityHigh

	default:
		s.logger.Warn("unknown application event type", zap.String("event_type", event.EventType))
		return nil
	}

	n := &Notification{
		ID:              uuid.New(),
		RecipientID:     recipientID,
		Category:        CategoryApplication,
		EventType:       event.EventType,
		Title:           title,
		Message:         message,
		RelatedModel:    "application",
		RelatedObjectID: &applicationID,
		Priority:        priority,
	}
	if actorID, err := uuid.Parse(event.ActorID); err == nil {
		n.SenderID = &actorID
	}

	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error("persist application notification failed",
			zap.String("application_id", event.ApplicationID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// HandleTimesheetEvent: submit diberitahukan ke dosen pemilik posisi;
// hasil review ke asistennya.
func (s *service) HandleTimesheetEvent(ctx context.Context, event events.TimesheetEvent) error {
	timesheetID, err := uuid.Parse(event.TimesheetID)
	if err != nil {
		return err
	}

	var (
		recipientID uuid.UUID
		title       string
		message     string
		priority    = PriorityNormal
	)

	switch event.EventType {
	case events.TimesheetSubmitted:
		pos, err := s.positions.FindByID(ctx, event.PositionID)
		if err != nil {
			return err
		}
		recipientID = pos.PostedBy
		title = "Timesheet submitted"
		message = fmt.Sprintf("A timesheet for %q (%s) is waiting for review.", event.PositionTitle, event.Month)

	case events.TimesheetApproved:
		recipientID, err = uuid.Parse(event.AssistantID)
		if err != nil {
			return err
		}
		title = "Timesheet approved"
		message = fmt.Sprintf("Your timesheet for %q (%s) was approved.", event.PositionTitle, event.Month)
		priority = PriorityHigh

	case events.TimesheetRejected:
		recipientID, err = uuid.Parse(event.AssistantID)
		if err != nil {
			return err
		}
		title = "Timesheet rejected"
		message = fmt.Sprintf("Your timesheet for %q (%s) was rejected.", event.PositionTitle, event.Month)

	default:
		s.logger.Warn("unknown timesheet event type", zap.String("event_type", event.EventType))
		return nil
	}

	n := &Notification{
		ID:              uuid.New(),
		RecipientID:     recipientID,
		Category:        CategoryTimesheet,
		EventType:       event.EventType,
		Title:           title,
		Message:         message,
		RelatedModel:    "timesheet",
		RelatedObjectID: &timesheetID,
		Priority:        priority,
	}
	if actorID, err := uuid.Parse(event.ActorID); err == nil {
		n.SenderID = &actorID
	}

	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error("persist timesheet notification failed",
			zap.String("timesheet_id", event.TimesheetID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *service) GetMine(ctx context.Context, recipientID string, unreadOnly bool) ([]NotificationResponse, error) {
	notifications, err := s.repo.FindAllByRecipient(ctx, recipientID, unreadOnly)
	if err != nil {
		return nil, err
	}

	resp := make([]NotificationResponse, len(notifications))
	for i, n := range notifications {
		resp[i] = mapToResponse(n)
	}
	return resp, nil
}

func (s *service) MarkRead(ctx context.Context, recipientID, id string) error {
	return s.repo.MarkRead(ctx, recipientID, id)
}

func (s *service) MarkAllRead(ctx context.Context, recipientID string) error {
	return s.repo.MarkAllRead(ctx, recipientID)
}
