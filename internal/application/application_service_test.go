package application_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"go-tams/internal/application"
	applicationerrors "go-tams/internal/application/errors"
	"go-tams/internal/events"
	"go-tams/internal/messaging/kafka"
	"go-tams/internal/position"
	positionerrors "go-tams/internal/position/errors"
	"go-tams/internal/shared/clock"
	"go-tams/internal/student"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeApplicationRepo struct {
	application.Repository

	createFn             func(ctx context.Context, a *application.Application) error
	existsFn             func(ctx context.Context, positionID, applicantID string) (bool, error)
	findForUpdateFn      func(ctx context.Context, id string) (*application.Application, error)
	updateReviewFn       func(ctx context.Context, id, status, reviewerID string, reviewedAt time.Time, notes *string) error
	updateRevokedFn      func(ctx context.Context, id string) error
	countOtherAcceptedFn func(ctx context.Context, applicantID, excludeID string) (int64, error)
}

func (f *fakeApplicationRepo) WithTx(tx *sql.Tx) application.Repository { return f }

func (f *fakeApplicationRepo) Create(ctx context.Context, a *application.Application) error {
	return f.createFn(ctx, a)
}

func (f *fakeApplicationRepo) ExistsByPositionAndApplicant(ctx context.Context, positionID, applicantID string) (bool, error) {
	return f.existsFn(ctx, positionID, applicantID)
}

func (f *fakeApplicationRepo) FindByIDForUpdate(ctx context.Context, id string) (*application.Application, error) {
	return f.findForUpdateFn(ctx, id)
}

func (f *fakeApplicationRepo) UpdateReview(ctx context.Context, id, status, reviewerID string, reviewedAt time.Time, notes *string) error {
	return f.updateReviewFn(ctx, id, status, reviewerID, reviewedAt, notes)
}

func (f *fakeApplicationRepo) UpdateRevoked(ctx context.Context, id string) error {
	return f.updateRevokedFn(ctx, id)
}

func (f *fakeApplicationRepo) CountOtherAccepted(ctx context.Context, applicantID, excludeID string) (int64, error) {
	return f.countOtherAcceptedFn(ctx, applicantID, excludeID)
}

type fakePositionReader struct {
	position.Repository

	findByIDFn      func(ctx context.Context, id string) (*position.Position, error)
	findForUpdateFn func(ctx context.Context, id string) (*position.Position, error)
}

func (f *fakePositionReader) WithTx(tx *sql.Tx) position.Repository { return f }

func (f *fakePositionReader) FindByID(ctx context.Context, id string) (*position.Position, error) {
	return f.findByIDFn(ctx, id)
}

func (f *fakePositionReader) FindByIDForUpdate(ctx context.Context, id string) (*position.Position, error) {
	return f.findForUpdateFn(ctx, id)
}

type fakeLedger struct {
	reserveFn func(ctx context.Context, positionID string) (*position.Position, error)
	releaseFn func(ctx context.Context, positionID string) (*position.Position, error)
}

func (f *fakeLedger) WithTx(tx *sql.Tx) position.Ledger { return f }

func (f *fakeLedger) Reserve(ctx context.Context, positionID string) (*position.Position, error) {
	return f.reserveFn(ctx, positionID)
}

func (f *fakeLedger) Release(ctx context.Context, positionID string) (*position.Position, error) {
	return f.releaseFn(ctx, positionID)
}

type fakeStudentRepo struct {
	student.Repository

	findForUpdateFn func(ctx context.Context, userID string) (*student.Student, error)
	setTAStatusFn   func(ctx context.Context, userID string, isTA bool, since *time.Time) error
}

func (f *fakeStudentRepo) WithTx(tx *sql.Tx) student.Repository { return f }

func (f *fakeStudentRepo) FindByUserIDForUpdate(ctx context.Context, userID string) (*student.Student, error) {
	return f.findForUpdateFn(ctx, userID)
}

func (f *fakeStudentRepo) SetTAStatus(ctx context.Context, userID string, isTA bool, since *time.Time) error {
	return f.setTAStatusFn(ctx, userID, isTA, since)
}

type fakeOutboxRepo struct {
	kafka.OutboxRepository

	created []kafka.OutboxEvent
}

func (f *fakeOutboxRepo) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }

func (f *fakeOutboxRepo) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.created = append(f.created, event)
	return nil
}

type serviceDeps struct {
	db        *sql.DB
	sqlMock   sqlmock.Sqlmock
	redisMock redismock.ClientMock
	repo      *fakeApplicationRepo
	positions *fakePositionReader
	ledger    *fakeLedger
	students  *fakeStudentRepo
	outbox    *fakeOutboxRepo
	clk       clock.Fixed
	service   application.Service
}

func setupServiceTest(t *testing.T) *serviceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	rdb, redisMock := redismock.NewClientMock()

	deps := &serviceDeps{
		db:        db,
		sqlMock:   sqlMock,
		redisMock: redisMock,
		repo:      &fakeApplicationRepo{},
		positions: &fakePositionReader{},
		ledger:    &fakeLedger{},
		students:  &fakeStudentRepo{},
		outbox:    &fakeOutboxRepo{},
		clk:       clock.Fixed{T: time.Date(2025, 9, 15, 10, 0, 0, 0, time.UTC)},
	}
	deps.service = application.NewService(
		db, deps.repo, deps.positions, deps.ledger, deps.students, deps.outbox, deps.clk, rdb,
	)
	return deps
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func openPosition(owner uuid.UUID) *position.Position {
	return &position.Position{
		ID:                  uuid.New(),
		PostedBy:            owner,
		Title:               "Intro to Algorithms TA",
		Status:              position.StatusOpen,
		CapacityTotal:       2,
		CapacityFilled:      0,
		HourlyRateCents:     5000,
		ApplicationDeadline: time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC),
	}
}

func TestApplicationService_Submit(t *testing.T) {
	ctx := context.Background()
	applicantID := uuid.New().String()
	owner := uuid.New()

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)
		pos := openPosition(owner)

		deps.positions.findByIDFn = func(ctx context.Context, id string) (*position.Position, error) {
			return pos, nil
		}
		deps.repo.existsFn = func(ctx context.Context, positionID, applicantID string) (bool, error) {
			return false, nil
		}
		deps.repo.createFn = func(ctx context.Context, a *application.Application) error {
			assert.Equal(t, application.StatusSubmitted, a.Status)
			return nil
		}
		expectTx(t, deps.sqlMock, true)

		resp, err := deps.service.Submit(ctx, applicantID, application.SubmitApplicationRequest{
			PositionID: pos.ID.String(),
			ResumeText: "I have completed the course with an A grade.",
		})

		assert.NoError(t, err)
		assert.Equal(t, application.StatusSubmitted, resp.Status)
		assert.Len(t, deps.outbox.created, 1)
		assert.Equal(t, events.ApplicationSubmitted, deps.outbox.created[0].EventType)
		assert.Equal(t, events.ApplicationLifecycleTopic, deps.outbox.created[0].Topic)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("duplicate application rejected", func(t *testing.T) {
		deps := setupServiceTest(t)
		pos := openPosition(owner)

		deps.positions.findByIDFn = func(ctx context.Context, id string) (*position.Position, error) {
			return pos, nil
		}
		deps.repo.existsFn = func(ctx context.Context, positionID, applicantID string) (bool, error) {
			return true, nil
		}

		_, err := deps.service.Submit(ctx, applicantID, application.SubmitApplicationRequest{
			PositionID: pos.ID.String(),
			ResumeText: "resume",
		})

		assert.ErrorIs(t, err, applicationerrors.ErrDuplicateApplication)
	})

	t.Run("closed position rejected", func(t *testing.T) {
		deps := setupServiceTest(t)
		pos := openPosition(owner)
		pos.Status = position.StatusClosed

		deps.positions.findByIDFn = func(ctx context.Context, id string) (*position.Position, error) {
			return pos, nil
		}

		_, err := deps.service.Submit(ctx, applicantID, application.SubmitApplicationRequest{
			PositionID: pos.ID.String(),
			ResumeText: "resume",
		})

		assert.ErrorIs(t, err, applicationerrors.ErrPositionClosed)
	})

	t.Run("deadline passed rejected", func(t *testing.T) {
		deps := setupServiceTest(t)
		pos := openPosition(owner)
		pos.ApplicationDeadline = time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

		deps.positions.findByIDFn = func(ctx context.Context, id string) (*position.Position, error) {
			return pos, nil
		}

		_, err := deps.service.Submit(ctx, applicantID, application.SubmitApplicationRequest{
			PositionID: pos.ID.String(),
			ResumeText: "resume",
		})

		assert.ErrorIs(t, err, applicationerrors.ErrDeadlinePassed)
	})

	t.Run("unknown position", func(t *testing.T) {
		deps := setupServiceTest(t)

		deps.positions.findByIDFn = func(ctx context.Context, id string) (*position.Position, error) {
			return nil, gorm.ErrRecordNotFound
		}

		_, err := deps.service.Submit(ctx, applicantID, application.SubmitApplicationRequest{
			PositionID: uuid.New().String(),
			ResumeText: "resume",
		})

		assert.ErrorIs(t, err, positionerrors.ErrPositionNotFound)
	})
}

func TestApplicationService_Review(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	applicant := uuid.New()

	pendingApplication := func(pos *position.Position) *application.Application {
		return &application.Application{
			ID:          uuid.New(),
			PositionID:  pos.ID,
			ApplicantID: applicant,
			Status:      application.StatusReviewing,
			AppliedAt:   time.Date(2025, 9, 10, 9, 0, 0, 0, time.UTC),
		}
	}

	t.Run("accept reserves capacity and sets TA flag", func(t *testing.T) {
		deps := setupServiceTest(t)
		pos := openPosition(owner)
		app := pendingApplication(pos)

		deps.repo.findForUpdateFn = func(ctx context.Context, id string) (*application.Application, error) {
			return app, nil
		}
		deps.positions.findForUpdateFn = func(ctx context.Context, id string) (*position.Position, error) {
			return pos, nil
		}
		deps.ledger.reserveFn = func(ctx context.Context, positionID string) (*position.Position, error) {
			pos.CapacityFilled++
			return pos, nil
		}
		deps.students.findForUpdateFn = func(ctx context.Context, userID string) (*student.Student, error) {
			return &student.Student{UserID: applicant, IsTA: false}, nil
		}
		var taSet bool
		var taSince *time.Time
		deps.students.setTAStatusFn = func(ctx context.Context, userID string, isTA bool, since *time.Time) error {
			taSet = isTA
			taSince = since
			return nil
		}
		deps.repo.updateReviewFn = func(ctx context.Context, id, status, reviewerID string, reviewedAt time.Time, notes *string) error {
			assert.Equal(t, application.StatusAccepted, status)
			return nil
		}
		expectTx(t, deps.sqlMock, true)
		deps.redisMock.ExpectDel(position.OpenPositionsCacheKey).SetVal(1)

		resp, err := deps.service.Review(ctx, owner.String(), app.ID.String(), application.ReviewApplicationRequest{
			Action: application.ActionAccept,
		})

		assert.NoError(t, err)
		assert.Equal(t, application.StatusAccepted, resp.Status)
		assert.True(t, taSet)
		assert.NotNil(t, taSince)
		assert.Equal(t, deps.clk.T, *taSince)
		assert.Len(t, deps.outbox.created, 1)
		assert.Equal(t, events.ApplicationAccepted, deps.outbox.created[0].EventType)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		// accept mengubah capacity_filled, cache daftar open harus dibuang
		assert.NoError(t, deps.redisMock.ExpectationsWereMet())
	})

	t.Run("accept keeps TA flag when already set", func(t *testing.T) {
		deps := setupServiceTest(t)
		pos := openPosition(owner)
		app := pendingApplication(pos)

		deps.repo.findForUpdateFn = func(ctx context.Context, id string) (*application.Application, error) {
			return app, nil
		}
		deps.positions.findForUpdateFn = func(ctx context.Context, id string) (*position.Position, error) {
			return pos, nil
		}
		deps.ledger.reserveFn = func(ctx context.Context, positionID string) (*position.Position, error) {
			return pos, nil
		}
		since := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		deps.students.findForUpdateFn = func(ctx context.Context, userID string) (*student.Student, error) {
			return &student.Student{UserID: applicant, IsTA: true, TASince: &since}, nil
		}
		deps.students.setTAStatusFn = func(ctx context.Context, userID string, isTA bool, since *time.Time) error {
			t.Fatal("SetTAStatus should not be called when flag is already set")
			return nil
		}
		deps.repo.updateReviewFn = func(ctx context.Context, id, status, reviewerID string, reviewedAt time.Time, notes *string) error {
			return nil
		}
		expectTx(t, deps.sqlMock, true)

		_, err := deps.service.Review(ctx, owner.String(), app.ID.String(), application.ReviewApplicationRequest{
			Action: application.ActionAccept,
		})

		assert.NoError(t, err)
	})

	t.Run("accept on full position fails and rolls back", func(t *testing.T) {
		deps := setupServiceTest(t)
		pos := openPosition(owner)
		app := pendingApplication(pos)

		deps.repo.findForUpdateFn = func(ctx context.Context, id string) (*application.Application, error) {
			return app, nil
		}
		deps.positions.findForUpdateFn = func(ctx context.Context, id string) (*position.Position, error) {
			return pos, nil
		}
		deps.ledger.reserveFn = func(ctx context.Context, positionID string) (*position.Position, error) {
			return nil, positionerrors.ErrPositionFull
		}
		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Review(ctx, owner.String(), app.ID.String(), application.ReviewApplicationRequest{
			Action: application.ActionAccept,
		})

		assert.ErrorIs(t, err, positionerrors.ErrPositionFull)
		assert.Empty(t, deps.outbox.created)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("reject does not touch capacity", func(t *testing.T) {
		deps := setupServiceTest(t)
		pos := openPosition(owner)
		app := pendingApplication(pos)

		deps.repo.findForUpdateFn = func(ctx context.Context, id string) (*application.Application, error) {
			return app, nil
		}
		deps.positions.findForUpdateFn = func(ctx context.Context, id string) (*position.Position, error) {
			return pos, nil
		}
		deps.ledger.reserveFn = func(ctx context.Context, positionID string) (*position.Position, error) {
			t.Fatal("Reserve should not be called on reject")
			return nil, nil
		}
		notes := "Not enough grading experience"
		deps.repo.updateReviewFn = func(ctx context.Context, id, status, reviewerID string, reviewedAt time.Time, gotNotes *string) error {
			assert.Equal(t, application.StatusRejected, status)
			assert.Equal(t, notes, *gotNotes)
			return nil
		}
		expectTx(t, deps.sqlMock, true)

		resp, err := deps.service.Review(ctx, owner.String(), app.ID.String(), application.ReviewApplicationRequest{
			Action: application.ActionReject,
			Notes:  notes,
		})

		assert.NoError(t, err)
		assert.Equal(t, application.StatusRejected, resp.Status)
		assert.Equal(t, events.ApplicationRejected, deps.outbox.created[0].EventType)
	})

	t.Run("non-owner forbidden", func(t *testing.T) {
		deps := setupServiceTest(t)
		pos := openPosition(owner)
		app := pendingApplication(pos)

		deps.repo.findForUpdateFn = func(ctx context.Context, id string) (*application.Application, error) {
			return app, nil
		}
		deps.positions.findForUpdateFn = func(ctx context.Context, id string) (*position.Position, error) {
			return pos, nil
		}
		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Review(ctx, uuid.New().String(), app.ID.String(), application.ReviewApplicationRequest{
			Action: application.ActionAccept,
		})

		assert.ErrorIs(t, err, applicationerrors.ErrNotReviewer)
	})

	t.Run("already reviewed application is final", func(t *testing.T) {
		deps := setupServiceTest(t)
		pos := openPosition(owner)
		app := pendingApplication(pos)
		app.Status = application.StatusAccepted

		deps.repo.findForUpdateFn = func(ctx context.Context, id string) (*application.Application, error) {
			return app, nil
		}
		deps.positions.findForUpdateFn = func(ctx context.Context, id string) (*position.Position, error) {
			return pos, nil
		}
		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Review(ctx, owner.String(), app.ID.String(), application.ReviewApplicationRequest{
			Action: application.ActionReject,
		})

		assert.ErrorIs(t, err, applicationerrors.ErrAlreadyFinal)
	})

	t.Run("invalid action", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.Review(ctx, owner.String(), uuid.New().String(), application.ReviewApplicationRequest{
			Action: "approve",
		})

		assert.ErrorIs(t, err, applicationerrors.ErrInvalidAction)
	})
}

func TestApplicationService_Revoke(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	applicant := uuid.New()

	finalApplication := func(pos *position.Position, status string) *application.Application {
		reviewedAt := time.Date(2025, 9, 12, 14, 0, 0, 0, time.UTC)
		return &application.Application{
			ID:          uuid.New(),
			PositionID:  pos.ID,
			ApplicantID: applicant,
			Status:      status,
			AppliedAt:   time.Date(2025, 9, 10, 9, 0, 0, 0, time.UTC),
			ReviewedAt:  &reviewedAt,
			ReviewedBy:  &owner,
		}
	}

	t.Run("revoking accepted releases capacity and clears TA flag", func(t *testing.T) {
		deps := setupServiceTest(t)
		pos := openPosition(owner)
		app := finalApplication(pos, application.StatusAccepted)

		deps.repo.findForUpdateFn = func(ctx context.Context, id string) (*application.Application, error) {
			return app, nil
		}
		deps.positions.findForUpdateFn = func(ctx context.Context, id string) (*position.Position, error) {
			return pos, nil
		}
		var released bool
		deps.ledger.releaseFn = func(ctx context.Context, positionID string) (*position.Position, error) {
			released = true
			return pos, nil
		}
		deps.repo.countOtherAcceptedFn = func(ctx context.Context, applicantID, excludeID string) (int64, error) {
			return 0, nil
		}
		deps.students.findForUpdateFn = func(ctx context.Context, userID string) (*student.Student, error) {
			return &student.Student{UserID: applicant, IsTA: true}, nil
		}
		var taCleared bool
		deps.students.setTAStatusFn = func(ctx context.Context, userID string, isTA bool, since *time.Time) error {
			taCleared = !isTA
			assert.Nil(t, since)
			return nil
		}
		deps.repo.updateRevokedFn = func(ctx context.Context, id string) error { return nil }
		expectTx(t, deps.sqlMock, true)
		deps.redisMock.ExpectDel(position.OpenPositionsCacheKey).SetVal(1)

		resp, err := deps.service.Revoke(ctx, owner.String(), app.ID.String())

		assert.NoError(t, err)
		assert.Equal(t, application.StatusReviewing, resp.Status)
		assert.True(t, released)
		assert.True(t, taCleared)
		assert.Equal(t, events.ApplicationRevoked, deps.outbox.created[0].EventType)
		// release bisa memunculkan kembali posisi FILLED di daftar open
		assert.NoError(t, deps.redisMock.ExpectationsWereMet())
	})

	t.Run("TA flag kept when another accepted application exists", func(t *testing.T) {
		deps := setupServiceTest(t)
		pos := openPosition(owner)
		app := finalApplication(pos, application.StatusAccepted)

		deps.repo.findForUpdateFn = func(ctx context.Context, id string) (*application.Application, error) {
			return app, nil
		}
		deps.positions.findForUpdateFn = func(ctx context.Context, id string) (*position.Position, error) {
			return pos, nil
		}
		deps.ledger.releaseFn = func(ctx context.Context, positionID string) (*position.Position, error) {
			return pos, nil
		}
		var studentLocked bool
		deps.students.findForUpdateFn = func(ctx context.Context, userID string) (*student.Student, error) {
			studentLocked = true
			return &student.Student{UserID: applicant, IsTA: true}, nil
		}
		deps.repo.countOtherAcceptedFn = func(ctx context.Context, applicantID, excludeID string) (int64, error) {
			// hitung setelah baris student dikunci, supaya accept yang
			// berjalan paralel harus commit lebih dulu
			assert.True(t, studentLocked)
			assert.Equal(t, app.ID.String(), excludeID)
			return 1, nil
		}
		deps.students.setTAStatusFn = func(ctx context.Context, userID string, isTA bool, since *time.Time) error {
			t.Fatal("TA flag should stay while another accepted application exists")
			return nil
		}
		deps.repo.updateRevokedFn = func(ctx context.Context, id string) error { return nil }
		expectTx(t, deps.sqlMock, true)

		_, err := deps.service.Revoke(ctx, owner.String(), app.ID.String())

		assert.NoError(t, err)
	})

	t.Run("revoking rejected does not release capacity", func(t *testing.T) {
		deps := setupServiceTest(t)
		pos := openPosition(owner)
		app := finalApplication(pos, application.StatusRejected)

		deps.repo.findForUpdateFn = func(ctx context.Context, id string) (*application.Application, error) {
			return app, nil
		}
		deps.positions.findForUpdateFn = func(ctx context.Context, id string) (*position.Position, error) {
			return pos, nil
		}
		deps.ledger.releaseFn = func(ctx context.Context, positionID string) (*position.Position, error) {
			t.Fatal("Release should not be called for a rejected application")
			return nil, nil
		}
		deps.repo.updateRevokedFn = func(ctx context.Context, id string) error { return nil }
		expectTx(t, deps.sqlMock, true)

		resp, err := deps.service.Revoke(ctx, owner.String(), app.ID.String())

		assert.NoError(t, err)
		assert.Equal(t, application.StatusReviewing, resp.Status)
	})

	t.Run("pending application cannot be revoked", func(t *testing.T) {
		deps := setupServiceTest(t)
		pos := openPosition(owner)
		app := finalApplication(pos, application.StatusSubmitted)

		deps.repo.findForUpdateFn = func(ctx context.Context, id string) (*application.Application, error) {
			return app, nil
		}
		deps.positions.findForUpdateFn = func(ctx context.Context, id string) (*position.Position, error) {
			return pos, nil
		}
		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Revoke(ctx, owner.String(), app.ID.String())

		assert.ErrorIs(t, err, applicationerrors.ErrNotFinal)
	})
}
