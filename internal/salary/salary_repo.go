package salary

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=salary_repo.go -destination=mock/salary_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, s *Salary) error
	ExistsByTimesheet(ctx context.Context, timesheetID string) (bool, error)
	FindAll(ctx context.Context) ([]Salary, error)
	FindAllByAssistant(ctx context.Context, assistantID string) ([]Salary, error)
	FindByID(ctx context.Context, id string) (*Salary, error)
	FindByIDForUpdate(ctx context.Context, id string) (*Salary, error)
	UpdatePaid(ctx context.Context, id string, paidAt time.Time, paymentMethod, transactionID string) error
}

type repository struct {
	db    *gorm.DB
	sqlDB *sql.DB
	tx    *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	sqlDB, _ := db.DB()
	return &repository{db: db, sqlDB: sqlDB}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, sqlDB: r.sqlDB, tx: tx}
}

func (r *repository) Create(ctx context.Context, s *Salary) error {
	query := `
        INSERT INTO salaries (
            id, timesheet_id, assistant_id, position_id, amount_cents,
            calculation_details, payment_status, generated_by, generated_at,
            created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
    `
	_, err := r.execer().ExecContext(
		ctx, query,
		s.ID, s.TimesheetID, s.AssistantID, s.PositionID, s.AmountCents,
		s.CalculationDetails, s.PaymentStatus, s.GeneratedBy, s.GeneratedAt,
	)
	return err
}

func (r *repository) ExistsByTimesheet(ctx context.Context, timesheetID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Salary{}).
		Where("timesheet_id = ?", timesheetID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) FindAll(ctx context.Context) ([]Salary, error) {
	var salaries []Salary
	err := r.db.WithContext(ctx).
		Order("generated_at DESC").
		Find(&salaries).Error
	return salaries, err
}

func (r *repository) FindAllByAssistant(ctx context.Context, assistantID string) ([]Salary, error) {
	var salaries []Salary
	err := r.db.WithContext(ctx).
		Where("assistant_id = ?", assistantID).
		Order("generated_at DESC").
		Find(&salaries).Error
	return salaries, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Salary, error) {
	var s Salary
	err := r.db.WithContext(ctx).
		First(&s, "id = ?", id).Error
	return &s, err
}

// FindByIDForUpdate mengunci baris salary supaya dua mark-paid yang
// balapan tidak menghasilkan transaction_id ganda.
func (r *repository) FindByIDForUpdate(ctx context.Context, id string) (*Salary, error) {
	query := `
SELECT
	id,
	timesheet_id,
	assistant_id,
	position_id,
	amount_cents,
	calculation_details,
	payment_status,
	generated_by,
	generated_at,
	paid_at,
	payment_method,
	transaction_id
FROM salaries
WHERE id = $1
FOR UPDATE
`
	row := r.querier().QueryRowContext(ctx, query, id)

	var s Salary
	if err := row.Scan(
		&s.ID,
		&s.TimesheetID,
		&s.AssistantID,
		&s.PositionID,
		&s.AmountCents,
		&s.CalculationDetails,
		&s.PaymentStatus,
		&s.GeneratedBy,
		&s.GeneratedAt,
		&s.PaidAt,
		&s.PaymentMethod,
		&s.TransactionID,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *repository) UpdatePaid(ctx context.Context, id string, paidAt time.Time, paymentMethod, transactionID string) error {
	query := `
UPDATE salaries
SET
	payment_status = $2,
	paid_at = $3,
	payment_method = $4,
	transaction_id = $5,
	updated_at = NOW()
WHERE id = $1
`
	_, err := r.execer().ExecContext(ctx, query, id, PaymentStatusPaid, paidAt, paymentMethod, transactionID)
	return err
}

func (r *repository) querier() interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
} {
	if r.tx != nil {
		return r.tx
	}
	return r.sqlDB
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.sqlDB
}
