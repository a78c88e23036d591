package application

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	applicationerrors "go-tams/internal/application/errors"
	"go-tams/internal/events"
	"go-tams/internal/messaging/kafka"
	"go-tams/internal/position"
	positionerrors "go-tams/internal/position/errors"
	"go-tams/internal/shared/clock"
	"go-tams/internal/shared/contextutil"
	"go-tams/internal/student"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	StatusSubmitted = "SUBMITTED"
	StatusReviewing = "REVIEWING"
	StatusAccepted  = "ACCEPTED"
	StatusRejected  = "REJECTED"
)

const (
	ActionAccept = "accept"
	ActionReject = "reject"
)

//go:generate mockgen -source=application_service.go -destination=mock/application_service_mock.go -package=mock
type Service interface {
	Submit(ctx context.Context, applicantID string, req SubmitApplicationRequest) (ApplicationResponse, error)
	GetMine(ctx context.Context, applicantID string) ([]ApplicationResponse, error)
	GetByPosition(ctx context.Context, facultyID, positionID string) ([]ApplicationResponse, error)
	StartReview(ctx context.Context, reviewerID, id string) (ApplicationResponse, error)
	Review(ctx context.Context, reviewerID, id string, req ReviewApplicationRequest) (ApplicationResponse, error)
	Revoke(ctx context.Context, reviewerID, id string) (ApplicationResponse, error)
}

type service struct {
	db        *sql.DB
	repo      Repository
	positions position.Repository
	ledger    position.Ledger
	students  student.Repository
	outbox    kafka.OutboxRepository
	clk       clock.Clock
	rdb       *redis.Client
	logger    *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	positions position.Repository,
	ledger position.Ledger,
	students student.Repository,
	outboxRepo kafka.OutboxRepository,
	clk clock.Clock,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("application.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("application.service")
	}
	return &service{
		db:        db,
		repo:      repo,
		positions: positions,
		ledger:    ledger,
		students:  students,
		outbox:    outboxRepo,
		clk:       clk,
		rdb:       rdb,
		logger:    l,
	}
}

func (s *service) Submit(ctx context.Context, applicantID string, req SubmitApplicationRequest) (ApplicationResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("submit application requested",
		zap.String("request_id", rid),
		zap.String("applicant_id", applicantID),
		zap.String("position_id", req.PositionID),
	)

	applicantUUID, err := uuid.Parse(applicantID)
	if err != nil {
		return ApplicationResponse{}, applicationerrors.ErrInvalidApplicantID
	}
	positionUUID, err := uuid.Parse(req.PositionID)
	if err != nil {
		return ApplicationResponse{}, positionerrors.ErrInvalidPositionID
	}

	pos, err := s.positions.FindByID(ctx, req.PositionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ApplicationResponse{}, positionerrors.ErrPositionNotFound
		}
		return ApplicationResponse{}, err
	}
	if pos.Status != position.StatusOpen {
		return ApplicationResponse{}, applicationerrors.ErrPositionClosed
	}

	now := s.clk.Now()
	if now.After(pos.ApplicationDeadline) {
		return ApplicationResponse{}, applicationerrors.ErrDeadlinePassed
	}

	exists, err := s.repo.ExistsByPositionAndApplicant(ctx, req.PositionID, applicantID)
	if err != nil {
		return ApplicationResponse{}, err
	}
	if exists {
		return ApplicationResponse{}, applicationerrors.ErrDuplicateApplication
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("submit application begin tx failed", zap.Error(err))
		return ApplicationResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	a := &Application{
		ID:          uuid.New(),
		PositionID:  positionUUID,
		ApplicantID: applicantUUID,
		Status:      StatusSubmitted,
		ResumeText:  req.ResumeText,
		AppliedAt:   now,
	}

	// Unique constraint (position_id, applicant_id) jadi backstop kalau
	// dua submit identik lolos pengecekan di atas bersamaan.
	if err := qtx.Create(ctx, a); err != nil {
		s.logger.Error("submit application persist failed", zap.Error(err))
		return ApplicationResponse{}, mapRepositoryError(err)
	}

	if err := s.enqueueEvent(ctx, tx, rid, events.ApplicationSubmitted, a, pos.Title, applicantID); err != nil {
		return ApplicationResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("submit application commit failed", zap.Error(err))
		return ApplicationResponse{}, err
	}

	s.logger.Info("submit application success",
		zap.String("request_id", rid),
		zap.String("application_id", a.ID.String()),
		zap.String("position_id", req.PositionID),
	)
	return mapToResponse(*a), nil
}

func (s *service) GetMine(ctx context.Context, applicantID string) ([]ApplicationResponse, error) {
	apps, err := s.repo.FindAllByApplicant(ctx, applicantID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(apps), nil
}

func (s *service) GetByPosition(ctx context.Context, facultyID, positionID string) ([]ApplicationResponse, error) {
	pos, err := s.positions.FindByID(ctx, positionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, positionerrors.ErrPositionNotFound
		}
		return nil, err
	}
	if pos.PostedBy.String() != facultyID {
		return nil, applicationerrors.ErrNotReviewer
	}

	apps, err := s.repo.FindAllByPosition(ctx, positionID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(apps), nil
}

func (s *service) StartReview(ctx context.Context, reviewerID, id string) (ApplicationResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ApplicationResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	a, pos, err := s.lockApplicationAndPosition(ctx, qtx, tx, id)
	if err != nil {
		return ApplicationResponse{}, err
	}
	if pos.PostedBy.String() != reviewerID {
		return ApplicationResponse{}, applicationerrors.ErrNotReviewer
	}
	if a.Status != StatusSubmitted {
		return ApplicationResponse{}, applicationerrors.ErrNotSubmitted
	}

	a.Status = StatusReviewing
	if err := qtx.UpdateStatus(ctx, id, StatusReviewing); err != nil {
		return ApplicationResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return ApplicationResponse{}, err
	}
	return mapToResponse(*a), nil
}

// Review menjalankan accept/reject di satu transaksi. Pada accept,
// cek kapasitas dan penulisan status terjadi di bawah lock baris
// posisi: accept kedua untuk slot terakhir pasti gagal ErrPositionFull.
func (s *service) Review(ctx context.Context, reviewerID, id string, req ReviewApplicationRequest) (ApplicationResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("review application requested",
		zap.String("request_id", rid),
		zap.String("application_id", id),
		zap.String("reviewer_id", reviewerID),
		zap.String("action", req.Action),
	)

	if req.Action != ActionAccept && req.Action != ActionReject {
		return ApplicationResponse{}, applicationerrors.ErrInvalidAction
	}
	if _, err := uuid.Parse(reviewerID); err != nil {
		return ApplicationResponse{}, applicationerrors.ErrInvalidReviewerID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("review application begin tx failed", zap.Error(err))
		return ApplicationResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	a, pos, err := s.lockApplicationAndPosition(ctx, qtx, tx, id)
	if err != nil {
		return ApplicationResponse{}, err
	}
	if pos.PostedBy.String() != reviewerID {
		return ApplicationResponse{}, applicationerrors.ErrNotReviewer
	}
	if a.IsFinal() {
		s.logger.Warn("review application already final",
			zap.String("application_id", id),
			zap.String("status", a.Status),
		)
		return ApplicationResponse{}, applicationerrors.ErrAlreadyFinal
	}

	now := s.clk.Now()
	eventType := events.ApplicationRejected
	if req.Action == ActionAccept {
		if _, err := s.ledger.WithTx(tx).Reserve(ctx, a.PositionID.String()); err != nil {
			s.logger.Warn("review application reserve failed",
				zap.String("application_id", id),
				zap.String("position_id", a.PositionID.String()),
				zap.Error(err),
			)
			return ApplicationResponse{}, err
		}
		a.Status = StatusAccepted
		eventType = events.ApplicationAccepted

		if err := s.markAssistant(ctx, tx, a.ApplicantID.String(), now); err != nil {
			return ApplicationResponse{}, err
		}
	} else {
		a.Status = StatusRejected
	}

	reviewerUUID := uuid.MustParse(reviewerID)
	a.ReviewedAt = &now
	a.ReviewedBy = &reviewerUUID
	if req.Notes != "" {
		a.ReviewNotes = &req.Notes
	}

	if err := qtx.UpdateReview(ctx, id, a.Status, reviewerID, now, a.ReviewNotes); err != nil {
		s.logger.Error("review application persist failed", zap.String("application_id", id), zap.Error(err))
		return ApplicationResponse{}, err
	}

	if err := s.enqueueEvent(ctx, tx, rid, eventType, a, pos.Title, reviewerID); err != nil {
		return ApplicationResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("review application commit failed", zap.String("application_id", id), zap.Error(err))
		return ApplicationResponse{}, err
	}

	if req.Action == ActionAccept {
		// capacity_filled ikut dalam payload cache daftar posisi open,
		// jadi setiap accept harus membuangnya
		s.invalidateOpenCache(ctx)
	}

	s.logger.Info("review application success",
		zap.String("request_id", rid),
		zap.String("application_id", id),
		zap.String("status", a.Status),
	)
	return mapToResponse(*a), nil
}

// Revoke membatalkan hasil review. Release kapasitas hanya saat status
// sebelumnya ACCEPTED; revoke atas REJECTED tidak boleh menurunkan
// capacity_filled.
func (s *service) Revoke(ctx context.Context, reviewerID, id string) (ApplicationResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("revoke application requested",
		zap.String("request_id", rid),
		zap.String("application_id", id),
		zap.String("reviewer_id", reviewerID),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("revoke application begin tx failed", zap.Error(err))
		return ApplicationResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	a, pos, err := s.lockApplicationAndPosition(ctx, qtx, tx, id)
	if err != nil {
		return ApplicationResponse{}, err
	}
	if pos.PostedBy.String() != reviewerID {
		return ApplicationResponse{}, applicationerrors.ErrNotReviewer
	}
	if !a.IsFinal() {
		return ApplicationResponse{}, applicationerrors.ErrNotFinal
	}

	wasAccepted := a.Status == StatusAccepted
	if wasAccepted {
		if _, err := s.ledger.WithTx(tx).Release(ctx, a.PositionID.String()); err != nil {
			s.logger.Error("revoke application release failed",
				zap.String("application_id", id),
				zap.Error(err),
			)
			return ApplicationResponse{}, err
		}

		if err := s.unmarkAssistant(ctx, tx, qtx, a.ApplicantID.String(), id); err != nil {
			return ApplicationResponse{}, err
		}
	}

	a.Status = StatusReviewing
	a.ReviewedAt = nil
	a.ReviewedBy = nil
	if err := qtx.UpdateRevoked(ctx, id); err != nil {
		s.logger.Error("revoke application persist failed", zap.String("application_id", id), zap.Error(err))
		return ApplicationResponse{}, err
	}

	if err := s.enqueueEvent(ctx, tx, rid, events.ApplicationRevoked, a, pos.Title, reviewerID); err != nil {
		return ApplicationResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("revoke application commit failed", zap.String("application_id", id), zap.Error(err))
		return ApplicationResponse{}, err
	}

	if wasAccepted {
		// release bisa mengembalikan posisi FILLED ke daftar open
		s.invalidateOpenCache(ctx)
	}

	s.logger.Info("revoke application success",
		zap.String("request_id", rid),
		zap.String("application_id", id),
		zap.Bool("was_accepted", wasAccepted),
	)
	return mapToResponse(*a), nil
}

// lockApplicationAndPosition mengunci baris aplikasi lebih dulu, baru
// baris posisi; urutan yang sama dipakai semua transisi supaya tidak
// saling deadlock.
func (s *service) lockApplicationAndPosition(
	ctx context.Context,
	qtx Repository,
	tx *sql.Tx,
	id string,
) (*Application, *position.Position, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil, applicationerrors.ErrInvalidApplicationID
	}

	a, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, applicationerrors.ErrApplicationNotFound
		}
		return nil, nil, err
	}

	pos, err := s.positions.WithTx(tx).FindByIDForUpdate(ctx, a.PositionID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, positionerrors.ErrPositionNotFound
		}
		return nil, nil, err
	}
	return a, pos, nil
}

// markAssistant menyalakan flag TA saat transisi false→true dan
// mencatat tanggal mulainya. Baris student dibaca dengan lock di dalam
// tx yang sama: accept dan revoke untuk student itu mengantri di sini,
// jadi keputusan flip tidak pernah berdasar snapshot basi. Akun
// non-student dilewati.
func (s *service) markAssistant(ctx context.Context, tx *sql.Tx, applicantID string, now time.Time) error {
	stx := s.students.WithTx(tx)

	st, err := stx.FindByUserIDForUpdate(ctx, applicantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if st.IsTA {
		return nil
	}

	since := now
	return stx.SetTAStatus(ctx, applicantID, true, &since)
}

// unmarkAssistant mematikan flag hanya bila tidak tersisa aplikasi
// accepted lain. Hitungannya dilakukan setelah lock baris student,
// sehingga accept paralel untuk posisi lain tidak bisa menyelinap di
// antara hitung dan flip.
func (s *service) unmarkAssistant(ctx context.Context, tx *sql.Tx, qtx Repository, applicantID, excludeApplicationID string) error {
	stx := s.students.WithTx(tx)

	st, err := stx.FindByUserIDForUpdate(ctx, applicantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	otherAccepted, err := qtx.CountOtherAccepted(ctx, applicantID, excludeApplicationID)
	if err != nil {
		return err
	}
	if otherAccepted > 0 || !st.IsTA {
		return nil
	}

	return stx.SetTAStatus(ctx, applicantID, false, nil)
}

func (s *service) invalidateOpenCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, position.OpenPositionsCacheKey).Err(); err != nil {
		s.logger.Warn("invalidate open positions cache failed", zap.Error(err))
	}
}

func (s *service) enqueueEvent(
	ctx context.Context,
	tx *sql.Tx,
	requestID, eventType string,
	a *Application,
	positionTitle, actorID string,
) error {
	if s.outbox == nil {
		return nil
	}

	event := events.ApplicationEvent{
		EventType:     eventType,
		RequestID:     requestID,
		ApplicationID: a.ID.String(),
		PositionID:    a.PositionID.String(),
		PositionTitle: positionTitle,
		ApplicantID:   a.ApplicantID.String(),
		ActorID:       actorID,
		OccurredAt:    s.clk.Now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal application event failed", zap.Error(err))
		return err
	}

	if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     requestID,
		AggregateType: "application",
		AggregateID:   a.ID.String(),
		EventType:     eventType,
		Topic:         events.ApplicationLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("application outbox persist failed",
			zap.String("application_id", a.ID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func mapToResponse(a Application) ApplicationResponse {
	resp := ApplicationResponse{
		ID:          a.ID.String(),
		PositionID:  a.PositionID.String(),
		ApplicantID: a.ApplicantID.String(),
		Status:      a.Status,
		ResumeText:  a.ResumeText,
		AppliedAt:   a.AppliedAt.Format(time.RFC3339),
	}
	if a.ReviewedAt != nil {
		v := a.ReviewedAt.Format(time.RFC3339)
		resp.ReviewedAt = &v
	}
	if a.ReviewedBy != nil {
		v := a.ReviewedBy.String()
		resp.ReviewedBy = &v
	}
	resp.ReviewNotes = a.ReviewNotes
	return resp
}

func mapToListResponse(apps []Application) []ApplicationResponse {
	resp := make([]ApplicationResponse, len(apps))
	for i, a := range apps {
		resp[i] = mapToResponse(a)
	}
	return resp
}
