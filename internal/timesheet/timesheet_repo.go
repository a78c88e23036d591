package timesheet

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=timesheet_repo.go -destination=mock/timesheet_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, t *Timesheet) error
	ExistsByAssistantPositionMonth(ctx context.Context, assistantID, positionID string, month time.Time, excludeID string) (bool, error)
	FindAllByAssistant(ctx context.Context, assistantID string) ([]Timesheet, error)
	FindAllByPosition(ctx context.Context, positionID string) ([]Timesheet, error)
	FindByID(ctx context.Context, id string) (*Timesheet, error)
	FindByIDForUpdate(ctx context.Context, id string) (*Timesheet, error)
	UpdateDraft(ctx context.Context, id string, hoursWorked int, description string, month time.Time) error
	UpdateReview(ctx context.Context, id, status, reviewerID string, reviewedAt time.Time, notes *string) error
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

func (r *repository) Create(ctx context.Context, t *Timesheet) error {
	query := `
        INSERT INTO timesheets (
            id, assistant_id, position_id, month, hours_worked, description,
            status, submitted_at, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
    `
	_, err := r.execer().ExecContext(
		ctx, query,
		t.ID, t.AssistantID, t.PositionID, t.Month, t.HoursWorked, t.Description,
		t.Status, t.SubmittedAt,
	)
	return err
}

func (r *repository) ExistsByAssistantPositionMonth(ctx context.Context, assistantID, positionID string, month time.Time, excludeID string) (bool, error) {
	q := r.db.WithContext(ctx).
		Model(&Timesheet{}).
		Where("assistant_id = ?", assistantID).
		Where("position_id = ?", positionID).
		Where("month = ?", month)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *repository) FindAllByAssistant(ctx context.Context, assistantID string) ([]Timesheet, error) {
	var sheets []Timesheet
	err := r.db.WithContext(ctx).
		Where("assistant_id = ?", assistantID).
		Order("month DESC").
		Find(&sheets).Error
	return sheets, err
}

func (r *repository) FindAllByPosition(ctx context.Context, positionID string) ([]Timesheet, error) {
	var sheets []Timesheet
	err := r.db.WithContext(ctx).
		Where("position_id = ?", positionID).
		Order("month DESC").
		Find(&sheets).Error
	return sheets, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Timesheet, error) {
	var t Timesheet
	err := r.db.WithContext(ctx).
		First(&t, "id = ?", id).Error
	return &t, err
}

// FindByIDForUpdate mengunci baris timesheet; dua review yang balapan
// untuk baris yang sama jadi berurutan.
func (r *repository) FindByIDForUpdate(ctx context.Context, id string) (*Timesheet, error) {
	query := `
SELECT
	id,
	assistant_id,
	position_id,
	month,
	hours_worked,
	description,
	status,
	submitted_at,
	reviewed_at,
	reviewed_by,
	review_notes
FROM timesheets
WHERE id = $1
FOR UPDATE
`
	row := r.querier().QueryRowContext(ctx, query, id)

	var t Timesheet
	if err := row.Scan(
		&t.ID,
		&t.AssistantID,
		&t.PositionID,
		&t.Month,
		&t.HoursWorked,
		&t.Description,
		&t.Status,
		&t.SubmittedAt,
		&t.ReviewedAt,
		&t.ReviewedBy,
		&t.ReviewNotes,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *repository) UpdateDraft(ctx context.Context, id string, hoursWorked int, description string, month time.Time) error {
	query := `
UPDATE timesheets
SET
	hours_worked = $2,
	description = $3,
	month = $4,
	updated_at = NOW()
WHERE id = $1
`
	_, err := r.execer().ExecContext(ctx, query, id, hoursWorked, description, month)
	return err
}

func (r *repository) UpdateReview(ctx context.Context, id, status, reviewerID string, reviewedAt time.Time, notes *string) error {
	query := `
UPDATE timesheets
SET
	status = $2,
	reviewed_by = $3,
	reviewed_at = $4,
	review_notes = COALESCE($5, review_notes),
	updated_at = NOW()
WHERE id = $1
`
	_, err := r.execer().ExecContext(ctx, query, id, status, reviewerID, reviewedAt, notes)
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
