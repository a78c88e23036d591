package timesheet

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"go-tams/internal/application"
	"go-tams/internal/events"
	"go-tams/internal/messaging/kafka"
	"go-tams/internal/position"
	positionerrors "go-tams/internal/position/errors"
	"go-tams/internal/shared/clock"
	"go-tams/internal/shared/contextutil"
	timesheeterrors "go-tams/internal/timesheet/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// 31 hari x 24 jam; batas atas yang masuk akal untuk satu bulan.
const MaxMonthlyHours = 744

const monthLayout = "2006-01"

//go:generate mockgen -source=timesheet_service.go -destination=mock/timesheet_service_mock.go -package=mock
type Service interface {
	Submit(ctx context.Context, assistantID string, req SubmitTimesheetRequest) (TimesheetResponse, error)
	Edit(ctx context.Context, assistantID, id string, req EditTimesheetRequest) (TimesheetResponse, error)
	Review(ctx context.Context, reviewerID, id string, req ReviewTimesheetRequest) (TimesheetResponse, error)
	GetMine(ctx context.Context, assistantID string) ([]TimesheetResponse, error)
	GetByPosition(ctx context.Context, facultyID, positionID string) ([]TimesheetResponse, error)
}

type service struct {
	db           *sql.DB
	repo         Repository
	applications application.Repository
	positions    position.Repository
	outbox       kafka.OutboxRepository
	clk          clock.Clock
	logger       *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	applications application.Repository,
	positions position.Repository,
	outboxRepo kafka.OutboxRepository,
	clk clock.Clock,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("timesheet.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("timesheet.service")
	}
	return &service{
		db:           db,
		repo:         repo,
		applications: applications,
		positions:    positions,
		outbox:       outboxRepo,
		clk:          clk,
		logger:       l,
	}
}

func (s *service) Submit(ctx context.Context, assistantID string, req SubmitTimesheetRequest) (TimesheetResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("submit timesheet requested",
		zap.String("request_id", rid),
		zap.String("assistant_id", assistantID),
		zap.String("position_id", req.PositionID),
		zap.String("month", req.Month),
	)

	assistantUUID, err := uuid.Parse(assistantID)
	if err != nil {
		return TimesheetResponse{}, timesheeterrors.ErrInvalidAssistantID
	}
	positionUUID, err := uuid.Parse(req.PositionID)
	if err != nil {
		return TimesheetResponse{}, positionerrors.ErrInvalidPositionID
	}
	if req.HoursWorked < 0 || req.HoursWorked > MaxMonthlyHours {
		return TimesheetResponse{}, timesheeterrors.ErrInvalidHours
	}

	month, err := s.parseMonth(req.Month)
	if err != nil {
		return TimesheetResponse{}, err
	}

	accepted, err := s.applications.HasAccepted(ctx, req.PositionID, assistantID)
	if err != nil {
		return TimesheetResponse{}, err
	}
	if !accepted {
		return TimesheetResponse{}, timesheeterrors.ErrNotAssistant
	}

	pos, err := s.positions.FindByID(ctx, req.PositionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TimesheetResponse{}, positionerrors.ErrPositionNotFound
		}
		return TimesheetResponse{}, err
	}

	exists, err := s.repo.ExistsByAssistantPositionMonth(ctx, assistantID, req.PositionID, month, "")
	if err != nil {
		return TimesheetResponse{}, err
	}
	if exists {
		return TimesheetResponse{}, timesheeterrors.ErrDuplicateTimesheet
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("submit timesheet begin tx failed", zap.Error(err))
		return TimesheetResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	now := s.clk.Now()
	t := &Timesheet{
		ID:          uuid.New(),
		AssistantID: assistantUUID,
		PositionID:  positionUUID,
		Month:       month,
		HoursWorked: req.HoursWorked,
		Description: req.Description,
		Status:      StatusPending,
		SubmittedAt: now,
	}

	// Unique constraint (assistant_id, position_id, month) jadi
	// backstop kalau dua submit identik lolos pengecekan di atas.
	if err := qtx.Create(ctx, t); err != nil {
		s.logger.Error("submit timesheet persist failed", zap.Error(err))
		return TimesheetResponse{}, mapRepositoryError(err)
	}

	if err := s.enqueueEvent(ctx, tx, rid, events.TimesheetSubmitted, t, pos.Title, assistantID); err != nil {
		return TimesheetResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("submit timesheet commit failed", zap.Error(err))
		return TimesheetResponse{}, err
	}

	s.logger.Info("submit timesheet success",
		zap.String("request_id", rid),
		zap.String("timesheet_id", t.ID.String()),
		zap.Int("hours_worked", t.HoursWorked),
	)
	return mapToResponse(*t), nil
}

// Edit hanya boleh oleh pemilik, dan hanya selama status masih
// PENDING. Timesheet yang sudah direview tidak bisa diubah lagi.
func (s *service) Edit(ctx context.Context, assistantID, id string, req EditTimesheetRequest) (TimesheetResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return TimesheetResponse{}, timesheeterrors.ErrInvalidTimesheetID
	}
	if req.HoursWorked < 0 || req.HoursWorked > MaxMonthlyHours {
		return TimesheetResponse{}, timesheeterrors.ErrInvalidHours
	}

	month, err := s.parseMonth(req.Month)
	if err != nil {
		return TimesheetResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return TimesheetResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	t, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TimesheetResponse{}, timesheeterrors.ErrTimesheetNotFound
		}
		return TimesheetResponse{}, err
	}
	if t.AssistantID.String() != assistantID {
		return TimesheetResponse{}, timesheeterrors.ErrNotOwner
	}
	if !t.IsPending() {
		return TimesheetResponse{}, timesheeterrors.ErrNotPending
	}

	if !month.Equal(t.Month) {
		exists, err := s.repo.ExistsByAssistantPositionMonth(ctx, assistantID, t.PositionID.String(), month, id)
		if err != nil {
			return TimesheetResponse{}, err
		}
		if exists {
			return TimesheetResponse{}, timesheeterrors.ErrDuplicateTimesheet
		}
	}

	t.Month = month
	t.HoursWorked = req.HoursWorked
	t.Description = req.Description
	if err := qtx.UpdateDraft(ctx, id, req.HoursWorked, req.Description, month); err != nil {
		s.logger.Error("edit timesheet persist failed", zap.String("timesheet_id", id), zap.Error(err))
		return TimesheetResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return TimesheetResponse{}, err
	}
	return mapToResponse(*t), nil
}

// Review mengunci baris timesheet sebelum transisi, jadi approve dan
// reject yang balapan untuk baris yang sama tidak dobel.
func (s *service) Review(ctx context.Context, reviewerID, id string, req ReviewTimesheetRequest) (TimesheetResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("review timesheet requested",
		zap.String("request_id", rid),
		zap.String("timesheet_id", id),
		zap.String("reviewer_id", reviewerID),
		zap.String("action", req.Action),
	)

	if _, err := uuid.Parse(id); err != nil {
		return TimesheetResponse{}, timesheeterrors.ErrInvalidTimesheetID
	}
	if req.Action != ActionApprove && req.Action != ActionReject {
		return TimesheetResponse{}, timesheeterrors.ErrInvalidAction
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("review timesheet begin tx failed", zap.Error(err))
		return TimesheetResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	t, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TimesheetResponse{}, timesheeterrors.ErrTimesheetNotFound
		}
		return TimesheetResponse{}, err
	}

	pos, err := s.positions.FindByID(ctx, t.PositionID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TimesheetResponse{}, positionerrors.ErrPositionNotFound
		}
		return TimesheetResponse{}, err
	}
	if pos.PostedBy.String() != reviewerID {
		return TimesheetResponse{}, timesheeterrors.ErrNotReviewer
	}
	if !t.IsPending() {
		s.logger.Warn("review timesheet not pending",
			zap.String("timesheet_id", id),
			zap.String("status", t.Status),
		)
		return TimesheetResponse{}, timesheeterrors.ErrNotPending
	}

	now := s.clk.Now()
	eventType := events.TimesheetRejected
	if req.Action == ActionApprove {
		t.Status = StatusApproved
		eventType = events.TimesheetApproved
	} else {
		t.Status = StatusRejected
	}

	reviewerUUID, err := uuid.Parse(reviewerID)
	if err != nil {
		return TimesheetResponse{}, timesheeterrors.ErrInvalidReviewerID
	}
	t.ReviewedAt = &now
	t.ReviewedBy = &reviewerUUID
	if req.Notes != "" {
		t.ReviewNotes = &req.Notes
	}

	if err := qtx.UpdateReview(ctx, id, t.Status, reviewerID, now, t.ReviewNotes); err != nil {
		s.logger.Error("review timesheet persist failed", zap.String("timesheet_id", id), zap.Error(err))
		return TimesheetResponse{}, err
	}

	if err := s.enqueueEvent(ctx, tx, rid, eventType, t, pos.Title, reviewerID); err != nil {
		return TimesheetResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("review timesheet commit failed", zap.String("timesheet_id", id), zap.Error(err))
		return TimesheetResponse{}, err
	}

	s.logger.Info("review timesheet success",
		zap.String("request_id", rid),
		zap.String("timesheet_id", id),
		zap.String("status", t.Status),
	)
	return mapToResponse(*t), nil
}

func (s *service) GetMine(ctx context.Context, assistantID string) ([]TimesheetResponse, error) {
	sheets, err := s.repo.FindAllByAssistant(ctx, assistantID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(sheets), nil
}

func (s *service) GetByPosition(ctx context.Context, facultyID, positionID string) ([]TimesheetResponse, error) {
	pos, err := s.positions.FindByID(ctx, positionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, positionerrors.ErrPositionNotFound
		}
		return nil, err
	}
	if pos.PostedBy.String() != facultyID {
		return nil, timesheeterrors.ErrNotReviewer
	}

	sheets, err := s.repo.FindAllByPosition(ctx, positionID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(sheets), nil
}

// parseMonth menormalisasi YYYY-MM ke tanggal 1 bulan itu (UTC) dan
// menolak bulan yang belum dimulai.
func (s *service) parseMonth(raw string) (time.Time, error) {
	month, err := time.ParseInLocation(monthLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, timesheeterrors.ErrInvalidMonth
	}

	now := s.clk.Now()
	currentMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	if month.After(currentMonth) {
		return time.Time{}, timesheeterrors.ErrFutureMonth
	}
	return month, nil
}

func (s *service) enqueueEvent(
	ctx context.Context,
	tx *sql.Tx,
	requestID, eventType string,
	t *Timesheet,
	positionTitle, actorID string,
) error {
	if s.outbox == nil {
		return nil
	}

	event := events.TimesheetEvent{
		EventType:     eventType,
		RequestID:     requestID,
		TimesheetID:   t.ID.String(),
		PositionID:    t.PositionID.String(),
		PositionTitle: positionTitle,
		AssistantID:   t.AssistantID.String(),
		ActorID:       actorID,
		Month:         t.Month.Format(monthLayout),
		OccurredAt:    s.clk.Now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal timesheet event failed", zap.Error(err))
		return err
	}

	if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     requestID,
		AggregateType: "timesheet",
		AggregateID:   t.ID.String(),
		EventType:     eventType,
		Topic:         events.TimesheetLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("timesheet outbox persist failed",
			zap.String("timesheet_id", t.ID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func mapToResponse(t Timesheet) TimesheetResponse {
	resp := TimesheetResponse{
		ID:          t.ID.String(),
		AssistantID: t.AssistantID.String(),
		PositionID:  t.PositionID.String(),
		Month:       t.Month.Format(monthLayout),
		HoursWorked: t.HoursWorked,
		Description: t.Description,
		Status:      t.Status,
		SubmittedAt: t.SubmittedAt.Format(time.RFC3339),
	}
	if t.ReviewedAt != nil {
		v := t.ReviewedAt.Format(time.RFC3339)
		resp.ReviewedAt = &v
	}
	if t.ReviewedBy != nil {
		v := t.ReviewedBy.String()
		resp.ReviewedBy = &v
	}
	resp.ReviewNotes = t.ReviewNotes
	return resp
}

func mapToListResponse(sheets []Timesheet) []TimesheetResponse {
	resp := make([]TimesheetResponse, len(sheets))
	for i, t := range sheets {
		resp[i] = mapToResponse(t)
	}
	return resp
}
