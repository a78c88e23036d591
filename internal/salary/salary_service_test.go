package salary_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"go-tams/internal/position"
	"go-tams/internal/salary"
	salaryerrors "go-tams/internal/salary/errors"
	"go-tams/internal/shared/clock"
	"go-tams/internal/timesheet"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeSalaryRepo struct {
	salary.Repository

	createFn        func(ctx context.Context, sal *salary.Salary) error
	existsFn        func(ctx context.Context, timesheetID string) (bool, error)
	findForUpdateFn func(ctx context.Context, id string) (*salary.Salary, error)
	findByIDFn      func(ctx context.Context, id string) (*salary.Salary, error)
	updatePaidFn    func(ctx context.Context, id string, paidAt time.Time, method, transactionID string) error
}

func (f *fakeSalaryRepo) WithTx(tx *sql.Tx) salary.Repository { return f }

func (f *fakeSalaryRepo) Create(ctx context.Context, sal *salary.Salary) error {
	return f.createFn(ctx, sal)
}

func (f *fakeSalaryRepo) ExistsByTimesheet(ctx context.Context, timesheetID string) (bool, error) {
	return f.existsFn(ctx, timesheetID)
}

func (f *fakeSalaryRepo) FindByIDForUpdate(ctx context.Context, id string) (*salary.Salary, error) {
	return f.findForUpdateFn(ctx, id)
}

func (f *fakeSalaryRepo) FindByID(ctx context.Context, id string) (*salary.Salary, error) {
	return f.findByIDFn(ctx, id)
}

func (f *fakeSalaryRepo) UpdatePaid(ctx context.Context, id string, paidAt time.Time, method, transactionID string) error {
	return f.updatePaidFn(ctx, id, paidAt, method, transactionID)
}

type fakeTimesheetReader struct {
	timesheet.Repository

	findByIDFn func(ctx context.Context, id string) (*timesheet.Timesheet, error)
}

func (f *fakeTimesheetReader) FindByID(ctx context.Context, id string) (*timesheet.Timesheet, error) {
	return f.findByIDFn(ctx, id)
}

type fakePositionReader struct {
	position.Repository

	findByIDFn func(ctx context.Context, id string) (*position.Position, error)
}

func (f *fakePositionReader) FindByID(ctx context.Context, id string) (*position.Position, error) {
	return f.findByIDFn(ctx, id)
}

type serviceDeps struct {
	db         *sql.DB
	sqlMock    sqlmock.Sqlmock
	repo       *fakeSalaryRepo
	timesheets *fakeTimesheetReader
	positions  *fakePositionReader
	clk        clock.Fixed
	service    salary.Service
}

func setupServiceTest(t *testing.T) *serviceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	deps := &serviceDeps{
		db:         db,
		sqlMock:    sqlMock,
		repo:       &fakeSalaryRepo{},
		timesheets: &fakeTimesheetReader{},
		positions:  &fakePositionReader{},
		clk:        clock.Fixed{T: time.Date(2025, 10, 10, 9, 0, 0, 0, time.UTC)},
	}
	deps.service = salary.NewService(db, deps.repo, deps.timesheets, deps.positions, deps.clk)
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

func TestSalaryService_Generate(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()

	approvedTimesheet := func() *timesheet.Timesheet {
		return &timesheet.Timesheet{
			ID:          uuid.New(),
			AssistantID: uuid.New(),
			PositionID:  uuid.New(),
			Month:       time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
			HoursWorked: 40,
			Status:      timesheet.StatusApproved,
		}
	}

	t.Run("success - amount and details frozen from snapshot", func(t *testing.T) {
		deps := setupServiceTest(t)
		ts := approvedTimesheet()

		deps.timesheets.findByIDFn = func(ctx context.Context, id string) (*timesheet.Timesheet, error) {
			return ts, nil
		}
		deps.positions.findByIDFn = func(ctx context.Context, id string) (*position.Position, error) {
			return &position.Position{ID: ts.PositionID, PostedBy: owner, HourlyRateCents: 5000}, nil
		}
		deps.repo.existsFn = func(ctx context.Context, timesheetID string) (bool, error) {
			return false, nil
		}

		var created *salary.Salary
		deps.repo.createFn = func(ctx context.Context, sal *salary.Salary) error {
			created = sal
			return nil
		}
		expectTx(t, deps.sqlMock, true)

		resp, err := deps.service.Generate(ctx, owner.String(), salary.GenerateSalaryRequest{
			TimesheetID: ts.ID.String(),
		})

		assert.NoError(t, err)
		assert.Equal(t, int64(200000), resp.AmountCents)
		assert.Equal(t, salary.PaymentStatusPending, resp.PaymentStatus)

		assert.NotNil(t, created)
		assert.Equal(t, deps.clk.T, created.GeneratedAt)

		var detail salary.CalculationDetail
		assert.NoError(t, json.Unmarshal(created.CalculationDetails, &detail))
		assert.Equal(t, 40, detail.Hours)
		assert.Equal(t, int64(5000), detail.RateCents)
		assert.Equal(t, "40 hours x 5000 cents/hour", detail.Formula)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("timesheet not approved", func(t *testing.T) {
		deps := setupServiceTest(t)
		ts := approvedTimesheet()
		ts.Status = timesheet.StatusPending

		deps.timesheets.findByIDFn = func(ctx context.Context, id string) (*timesheet.Timesheet, error) {
			return ts, nil
		}

		_, err := deps.service.Generate(ctx, owner.String(), salary.GenerateSalaryRequest{
			TimesheetID: ts.ID.String(),
		})

		assert.ErrorIs(t, err, salaryerrors.ErrTimesheetNotApproved)
	})

	t.Run("already generated", func(t *testing.T) {
		deps := setupServiceTest(t)
		ts := approvedTimesheet()

		deps.timesheets.findByIDFn = func(ctx context.Context, id string) (*timesheet.Timesheet, error) {
			return ts, nil
		}
		deps.positions.findByIDFn = func(ctx context.Context, id string) (*position.Position, error) {
			return &position.Position{ID: ts.PositionID, PostedBy: owner, HourlyRateCents: 5000}, nil
		}
		deps.repo.existsFn = func(ctx context.Context, timesheetID string) (bool, error) {
			return true, nil
		}

		_, err := deps.service.Generate(ctx, owner.String(), salary.GenerateSalaryRequest{
			TimesheetID: ts.ID.String(),
		})

		assert.ErrorIs(t, err, salaryerrors.ErrAlreadyGenerated)
	})

	t.Run("generator does not need to own the position", func(t *testing.T) {
		deps := setupServiceTest(t)
		ts := approvedTimesheet()
		admin := uuid.New()

		deps.timesheets.findByIDFn = func(ctx context.Context, id string) (*timesheet.Timesheet, error) {
			return ts, nil
		}
		deps.positions.findByIDFn = func(ctx context.Context, id string) (*position.Position, error) {
			return &position.Position{ID: ts.PositionID, PostedBy: owner, HourlyRateCents: 5000}, nil
		}
		deps.repo.existsFn = func(ctx context.Context, timesheetID string) (bool, error) {
			return false, nil
		}
		deps.repo.createFn = func(ctx context.Context, sal *salary.Salary) error {
			assert.Equal(t, admin, sal.GeneratedBy)
			return nil
		}
		expectTx(t, deps.sqlMock, true)

		resp, err := deps.service.Generate(ctx, admin.String(), salary.GenerateSalaryRequest{
			TimesheetID: ts.ID.String(),
		})

		assert.NoError(t, err)
		assert.Equal(t, admin.String(), resp.GeneratedBy)
	})

	t.Run("invalid generator id", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.Generate(ctx, "not-a-uuid", salary.GenerateSalaryRequest{
			TimesheetID: uuid.New().String(),
		})

		assert.ErrorIs(t, err, salaryerrors.ErrInvalidGeneratorID)
	})
}

func TestSalaryService_MarkPaid(t *testing.T) {
	ctx := context.Background()
	admin := uuid.New().String()

	pendingSalary := func() *salary.Salary {
		return &salary.Salary{
			ID:            uuid.New(),
			TimesheetID:   uuid.New(),
			AssistantID:   uuid.New(),
			PositionID:    uuid.New(),
			AmountCents:   200000,
			PaymentStatus: salary.PaymentStatusPending,
			GeneratedBy:   uuid.New(),
		}
	}

	t.Run("success - transaction id generated when empty", func(t *testing.T) {
		deps := setupServiceTest(t)
		sal := pendingSalary()

		deps.repo.findForUpdateFn = func(ctx context.Context, id string) (*salary.Salary, error) {
			return sal, nil
		}
		var savedTxnID string
		deps.repo.updatePaidFn = func(ctx context.Context, id string, paidAt time.Time, method, transactionID string) error {
			savedTxnID = transactionID
			assert.Equal(t, deps.clk.T, paidAt)
			return nil
		}
		expectTx(t, deps.sqlMock, true)

		resp, err := deps.service.MarkPaid(ctx, admin, sal.ID.String(), salary.MarkPaidRequest{
			PaymentMethod: "bank_transfer",
		})

		assert.NoError(t, err)
		assert.Equal(t, salary.PaymentStatusPaid, resp.PaymentStatus)
		assert.True(t, strings.HasPrefix(savedTxnID, "TXN-"))
		assert.NotNil(t, resp.TransactionID)
		assert.Equal(t, savedTxnID, *resp.TransactionID)
	})

	t.Run("caller transaction id kept as-is", func(t *testing.T) {
		deps := setupServiceTest(t)
		sal := pendingSalary()

		deps.repo.findForUpdateFn = func(ctx context.Context, id string) (*salary.Salary, error) {
			return sal, nil
		}
		deps.repo.updatePaidFn = func(ctx context.Context, id string, paidAt time.Time, method, transactionID string) error {
			assert.Equal(t, "BANK-REF-123", transactionID)
			return nil
		}
		expectTx(t, deps.sqlMock, true)

		resp, err := deps.service.MarkPaid(ctx, admin, sal.ID.String(), salary.MarkPaidRequest{
			PaymentMethod: "bank_transfer",
			TransactionID: "BANK-REF-123",
		})

		assert.NoError(t, err)
		assert.Equal(t, "BANK-REF-123", *resp.TransactionID)
	})

	t.Run("already paid", func(t *testing.T) {
		deps := setupServiceTest(t)
		sal := pendingSalary()
		sal.PaymentStatus = salary.PaymentStatusPaid

		deps.repo.findForUpdateFn = func(ctx context.Context, id string) (*salary.Salary, error) {
			return sal, nil
		}
		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.MarkPaid(ctx, admin, sal.ID.String(), salary.MarkPaidRequest{
			PaymentMethod: "bank_transfer",
		})

		assert.ErrorIs(t, err, salaryerrors.ErrAlreadyPaid)
	})
}

func TestSalaryService_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("student may only read own salary", func(t *testing.T) {
		deps := setupServiceTest(t)
		sal := &salary.Salary{
			ID:            uuid.New(),
			TimesheetID:   uuid.New(),
			AssistantID:   uuid.New(),
			PositionID:    uuid.New(),
			PaymentStatus: salary.PaymentStatusPending,
			GeneratedBy:   uuid.New(),
		}
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*salary.Salary, error) {
			return sal, nil
		}

		_, err := deps.service.GetByID(ctx, uuid.New().String(), "student", sal.ID.String())
		assert.ErrorIs(t, err, salaryerrors.ErrNotSalaryOwner)

		resp, err := deps.service.GetByID(ctx, sal.AssistantID.String(), "student", sal.ID.String())
		assert.NoError(t, err)
		assert.Equal(t, sal.ID.String(), resp.ID)
	})

	t.Run("faculty may read any salary", func(t *testing.T) {
		deps := setupServiceTest(t)
		sal := &salary.Salary{
			ID:            uuid.New(),
			TimesheetID:   uuid.New(),
			AssistantID:   uuid.New(),
			PositionID:    uuid.New(),
			PaymentStatus: salary.PaymentStatusPaid,
			GeneratedBy:   uuid.New(),
		}
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*salary.Salary, error) {
			return sal, nil
		}

		resp, err := deps.service.GetByID(ctx, uuid.New().String(), "faculty", sal.ID.String())
		assert.NoError(t, err)
		assert.Equal(t, salary.PaymentStatusPaid, resp.PaymentStatus)
	})
}
