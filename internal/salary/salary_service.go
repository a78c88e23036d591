package salary

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-tams/internal/position"
	positionerrors "go-tams/internal/position/errors"
	salaryerrors "go-tams/internal/salary/errors"
	"go-tams/internal/shared/clock"
	"go-tams/internal/shared/contextutil"
	"go-tams/internal/timesheet"
	timesheeterrors "go-tams/internal/timesheet/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	PaymentStatusPending = "PENDING"
	PaymentStatusPaid    = "PAID"
)

//go:generate mockgen -source=salary_service.go -destination=mock/salary_service_mock.go -package=mock
type Service interface {
	Generate(ctx context.Context, generatorID string, req GenerateSalaryRequest) (SalaryResponse, error)
	MarkPaid(ctx context.Context, actorID, id string, req MarkPaidRequest) (SalaryResponse, error)
	GetAll(ctx context.Context) ([]SalaryResponse, error)
	GetMine(ctx context.Context, assistantID string) ([]SalaryResponse, error)
	GetByID(ctx context.Context, actorID, actorRole, id string) (SalaryResponse, error)
}

type service struct {
	db         *sql.DB
	repo       Repository
	timesheets timesheet.Repository
	positions  position.Repository
	clk        clock.Clock
	logger     *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	timesheets timesheet.Repository,
	positions position.Repository,
	clk clock.Clock,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("salary.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("salary.service")
	}
	return &service{
		db:         db,
		repo:       repo,
		timesheets: timesheets,
		positions:  positions,
		clk:        clk,
		logger:     l,
	}
}

// Generate menurunkan satu record gaji dari timesheet yang sudah
// APPROVED. Nominal dihitung jam x rate posisi saat ini lalu dibekukan
// bersama detail perhitungannya; generate kedua untuk timesheet yang
// sama ditolak. Siapa yang boleh memanggil diatur RBAC (aksi generate
// pada resource salary), bukan kepemilikan posisi: generate adalah
// tindakan administratif, sama seperti MarkPaid.
func (s *service) Generate(ctx context.Context, generatorID string, req GenerateSalaryRequest) (SalaryResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("generate salary requested",
		zap.String("request_id", rid),
		zap.String("generator_id", generatorID),
		zap.String("timesheet_id", req.TimesheetID),
	)

	generatorUUID, err := uuid.Parse(generatorID)
	if err != nil {
		return SalaryResponse{}, salaryerrors.ErrInvalidGeneratorID
	}
	if _, err := uuid.Parse(req.TimesheetID); err != nil {
		return SalaryResponse{}, salaryerrors.ErrInvalidTimesheetID
	}

	ts, err := s.timesheets.FindByID(ctx, req.TimesheetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SalaryResponse{}, timesheeterrors.ErrTimesheetNotFound
		}
		return SalaryResponse{}, err
	}
	if ts.Status != timesheet.StatusApproved {
		return SalaryResponse{}, salaryerrors.ErrTimesheetNotApproved
	}

	pos, err := s.positions.FindByID(ctx, ts.PositionID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SalaryResponse{}, positionerrors.ErrPositionNotFound
		}
		return SalaryResponse{}, err
	}

	exists, err := s.repo.ExistsByTimesheet(ctx, req.TimesheetID)
	if err != nil {
		return SalaryResponse{}, err
	}
	if exists {
		return SalaryResponse{}, salaryerrors.ErrAlreadyGenerated
	}

	amount := int64(ts.HoursWorked) * pos.HourlyRateCents
	details, err := json.Marshal(CalculationDetail{
		Hours:     ts.HoursWorked,
		RateCents: pos.HourlyRateCents,
		Formula:   fmt.Sprintf("%d hours x %d cents/hour", ts.HoursWorked, pos.HourlyRateCents),
	})
	if err != nil {
		return SalaryResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("generate salary begin tx failed", zap.Error(err))
		return SalaryResponse{}, err
	}
	defer tx.Rollback()

	sal := &Salary{
		ID:                 uuid.New(),
		TimesheetID:        ts.ID,
		AssistantID:        ts.AssistantID,
		PositionID:         ts.PositionID,
		AmountCents:        amount,
		CalculationDetails: details,
		PaymentStatus:      PaymentStatusPending,
		GeneratedBy:        generatorUUID,
		GeneratedAt:        s.clk.Now(),
	}

	// Unique constraint timesheet_id jadi backstop kalau dua generate
	// identik lolos pengecekan exists di atas bersamaan.
	if err := s.repo.WithTx(tx).Create(ctx, sal); err != nil {
		s.logger.Error("generate salary persist failed", zap.Error(err))
		return SalaryResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("generate salary commit failed", zap.Error(err))
		return SalaryResponse{}, err
	}

	s.logger.Info("generate salary success",
		zap.String("request_id", rid),
		zap.String("salary_id", sal.ID.String()),
		zap.Int64("amount_cents", amount),
	)
	return mapToResponse(*sal), nil
}

// MarkPaid menandai gaji terbayar. Transaction id dipakai dari request
// kalau ada; kalau kosong, di-generate sekali dan tidak berubah lagi.
func (s *service) MarkPaid(ctx context.Context, actorID, id string, req MarkPaidRequest) (SalaryResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	if _, err := uuid.Parse(id); err != nil {
		return SalaryResponse{}, salaryerrors.ErrInvalidSalaryID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("mark paid begin tx failed", zap.Error(err))
		return SalaryResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	sal, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SalaryResponse{}, salaryerrors.ErrSalaryNotFound
		}
		return SalaryResponse{}, err
	}
	if sal.PaymentStatus == PaymentStatusPaid {
		return SalaryResponse{}, salaryerrors.ErrAlreadyPaid
	}

	transactionID := req.TransactionID
	if transactionID == "" {
		transactionID = "TXN-" + uuid.NewString()
	}

	now := s.clk.Now()
	sal.PaymentStatus = PaymentStatusPaid
	sal.PaidAt = &now
	sal.PaymentMethod = &req.PaymentMethod
	sal.TransactionID = &transactionID

	if err := qtx.UpdatePaid(ctx, id, now, req.PaymentMethod, transactionID); err != nil {
		s.logger.Error("mark paid persist failed", zap.String("salary_id", id), zap.Error(err))
		return SalaryResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("mark paid commit failed", zap.String("salary_id", id), zap.Error(err))
		return SalaryResponse{}, err
	}

	s.logger.Info("mark paid success",
		zap.String("request_id", rid),
		zap.String("salary_id", id),
		zap.String("actor_id", actorID),
		zap.String("transaction_id", transactionID),
	)
	return mapToResponse(*sal), nil
}

func (s *service) GetAll(ctx context.Context) ([]SalaryResponse, error) {
	salaries, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(salaries), nil
}

func (s *service) GetMine(ctx context.Context, assistantID string) ([]SalaryResponse, error) {
	salaries, err := s.repo.FindAllByAssistant(ctx, assistantID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(salaries), nil
}

func (s *service) GetByID(ctx context.Context, actorID, actorRole, id string) (SalaryResponse, error) {
	sal, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SalaryResponse{}, salaryerrors.ErrSalaryNotFound
		}
		return SalaryResponse{}, err
	}

	// Student hanya boleh melihat record gajinya sendiri.
	if actorRole == "student" && sal.AssistantID.String() != actorID {
		return SalaryResponse{}, salaryerrors.ErrNotSalaryOwner
	}
	return mapToResponse(*sal), nil
}

func mapToResponse(s Salary) SalaryResponse {
	resp := SalaryResponse{
		ID:                 s.ID.String(),
		TimesheetID:        s.TimesheetID.String(),
		AssistantID:        s.AssistantID.String(),
		PositionID:         s.PositionID.String(),
		AmountCents:        s.AmountCents,
		CalculationDetails: s.CalculationDetails,
		PaymentStatus:      s.PaymentStatus,
		GeneratedBy:        s.GeneratedBy.String(),
		GeneratedAt:        s.GeneratedAt.Format(time.RFC3339),
	}
	if s.PaidAt != nil {
		v := s.PaidAt.Format(time.RFC3339)
		resp.PaidAt = &v
	}
	resp.PaymentMethod = s.PaymentMethod
	resp.TransactionID = s.TransactionID
	return resp
}

func mapToListResponse(salaries []Salary) []SalaryResponse {
	resp := make([]SalaryResponse, len(salaries))
	for i, s := range salaries {
		resp[i] = mapToResponse(s)
	}
	return resp
}
