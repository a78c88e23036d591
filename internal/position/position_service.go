package position

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	positionerrors "go-tams/internal/position/errors"
	"go-tams/internal/shared/clock"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const OpenPositionsCacheKey = "positions:open"

//go:generate mockgen -source=position_service.go -destination=mock/position_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, facultyID string, req CreatePositionRequest) (PositionResponse, error)
	GetAllOpen(ctx context.Context) ([]PositionResponse, error)
	GetMine(ctx context.Context, facultyID string) ([]PositionResponse, error)
	GetByID(ctx context.Context, id string) (PositionResponse, error)
	Close(ctx context.Context, facultyID, id string) (PositionResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	rdb    *redis.Client
	clk    clock.Clock
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, clk clock.Clock, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("position.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("position.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		rdb:    rdb,
		clk:    clk,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

func (s *service) Create(ctx context.Context, facultyID string, req CreatePositionRequest) (PositionResponse, error) {
	s.logger.Debug("create position requested",
		zap.String("faculty_id", facultyID),
		zap.String("course_code", req.CourseCode),
	)

	facultyUUID, err := uuid.Parse(facultyID)
	if err != nil {
		return PositionResponse{}, positionerrors.ErrInvalidFacultyID
	}
	if req.CapacityTotal < 1 {
		return PositionResponse{}, positionerrors.ErrInvalidCapacity
	}
	if req.HourlyRateCents <= 0 {
		return PositionResponse{}, positionerrors.ErrInvalidHourlyRate
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return PositionResponse{}, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return PositionResponse{}, err
	}
	if startDate.After(endDate) {
		return PositionResponse{}, positionerrors.ErrInvalidDateRange
	}

	deadline, err := time.Parse(time.RFC3339, req.ApplicationDeadline)
	if err != nil {
		return PositionResponse{}, positionerrors.ErrInvalidDateFormat
	}
	if !deadline.After(s.clk.Now()) {
		return PositionResponse{}, positionerrors.ErrInvalidDeadline
	}

	p := &Position{
		ID:                  uuid.New(),
		PostedBy:            facultyUUID,
		Title:               req.Title,
		CourseName:          req.CourseName,
		CourseCode:          req.CourseCode,
		Description:         req.Description,
		Requirements:        req.Requirements,
		CapacityTotal:       req.CapacityTotal,
		CapacityFilled:      0,
		WorkHoursPerWeek:    req.WorkHoursPerWeek,
		HourlyRateCents:     req.HourlyRateCents,
		StartDate:           startDate,
		EndDate:             endDate,
		ApplicationDeadline: deadline,
		Status:              StatusOpen,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.logger.Error("create position persist failed", zap.Error(err))
		return PositionResponse{}, err
	}

	s.invalidateOpenCache(ctx)
	s.logger.Info("create position success",
		zap.String("position_id", p.ID.String()),
		zap.String("faculty_id", facultyID),
	)
	return mapToResponse(*p), nil
}

func (s *service) GetAllOpen(ctx context.Context) ([]PositionResponse, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, OpenPositionsCacheKey).Result(); err == nil {
			var resp []PositionResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(OpenPositionsCacheKey, func() (any, error) {
		positions, err := s.repo.FindAllOpen(ctx)
		if err != nil {
			return nil, err
		}
		resp := mapToListResponse(positions)

		if s.rdb != nil {
			if payload, err := json.Marshal(resp); err == nil {
				if err := s.rdb.Set(ctx, OpenPositionsCacheKey, string(payload), 5*time.Minute).Err(); err != nil {
					s.logger.Warn("cache open positions failed", zap.Error(err))
				}
			}
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]PositionResponse), nil
}

func (s *service) GetMine(ctx context.Context, facultyID string) ([]PositionResponse, error) {
	positions, err := s.repo.FindAllByFaculty(ctx, facultyID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(positions), nil
}

func (s *service) GetByID(ctx context.Context, id string) (PositionResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PositionResponse{}, positionerrors.ErrPositionNotFound
		}
		return PositionResponse{}, err
	}
	return mapToResponse(*p), nil
}

// Close hanya dari OPEN dan hanya oleh pemilik; CLOSED bersifat final,
// Release tidak akan membukanya kembali.
func (s *service) Close(ctx context.Context, facultyID, id string) (PositionResponse, error) {
	s.logger.Debug("close position requested",
		zap.String("position_id", id),
		zap.String("faculty_id", facultyID),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("close position begin tx failed", zap.Error(err))
		return PositionResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	p, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PositionResponse{}, positionerrors.ErrPositionNotFound
		}
		return PositionResponse{}, err
	}
	if p.PostedBy.String() != facultyID {
		return PositionResponse{}, positionerrors.ErrNotPositionOwner
	}
	if p.Status != StatusOpen {
		return PositionResponse{}, positionerrors.ErrCloseOnlyOpen
	}

	p.Status = StatusClosed
	if err := qtx.UpdateStatus(ctx, id, StatusClosed); err != nil {
		s.logger.Error("close position persist failed", zap.String("position_id", id), zap.Error(err))
		return PositionResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("close position commit failed", zap.String("position_id", id), zap.Error(err))
		return PositionResponse{}, err
	}

	s.invalidateOpenCache(ctx)
	s.logger.Info("close position success", zap.String("position_id", id))
	return mapToResponse(*p), nil
}

func (s *service) invalidateOpenCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, OpenPositionsCacheKey).Err(); err != nil {
		s.logger.Warn("invalidate open positions cache failed", zap.Error(err))
	}
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, positionerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func mapToResponse(p Position) PositionResponse {
	return PositionResponse{
		ID:                  p.ID.String(),
		PostedBy:            p.PostedBy.String(),
		Title:               p.Title,
		CourseName:          p.CourseName,
		CourseCode:          p.CourseCode,
		Description:         p.Description,
		Requirements:        p.Requirements,
		CapacityTotal:       p.CapacityTotal,
		CapacityFilled:      p.CapacityFilled,
		WorkHoursPerWeek:    p.WorkHoursPerWeek,
		HourlyRateCents:     p.HourlyRateCents,
		StartDate:           p.StartDate.Format("2006-01-02"),
		EndDate:             p.EndDate.Format("2006-01-02"),
		ApplicationDeadline: p.ApplicationDeadline.Format(time.RFC3339),
		Status:              p.Status,
	}
}

func mapToListResponse(positions []Position) []PositionResponse {
	resp := make([]PositionResponse, len(positions))
	for i, p := range positions {
		resp[i] = mapToResponse(p)
	}
	return resp
}
