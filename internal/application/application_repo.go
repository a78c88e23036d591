package application

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=application_repo.go -destination=mock/application_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, a *Application) error
	ExistsByPositionAndApplicant(ctx context.Context, positionID, applicantID string) (bool, error)
	FindAllByApplicant(ctx context.Context, applicantID string) ([]Application, error)
	FindAllByPosition(ctx context.Context, positionID string) ([]Application, error)
	FindByID(ctx context.Context, id string) (*Application, error)
	FindByIDForUpdate(ctx context.Context, id string) (*Application, error)
	UpdateReview(ctx context.Context, id, status, reviewerID string, reviewedAt time.Time, notes *string) error
	UpdateRevoked(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, id, status string) error
	CountOtherAccepted(ctx context.Context, applicantID, excludeID string) (int64, error)
	HasAccepted(ctx context.Context, positionID, applicantID string) (bool, error)
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

func (r *repository) Create(ctx context.Context, a *Application) error {
	query := `
        INSERT INTO applications (
            id, position_id, applicant_id, status, resume_text, applied_at, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
    `
	_, err := r.execer().ExecContext(
		ctx, query,
		a.ID, a.PositionID, a.ApplicantID, a.Status, a.ResumeText, a.AppliedAt,
	)
	return err
}

func (r *repository) ExistsByPositionAndApplicant(ctx context.Context, positionID, applicantID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Application{}).
		Where("position_id = ?", positionID).
		Where("applicant_id = ?", applicantID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) FindAllByApplicant(ctx context.Context, applicantID string) ([]Application, error) {
	var apps []Application
	err := r.db.WithContext(ctx).
		Where("applicant_id = ?", applicantID).
		Order("applied_at DESC").
		Find(&apps).Error
	return apps, err
}

func (r *repository) FindAllByPosition(ctx context.Context, positionID string) ([]Application, error) {
	var apps []Application
	err := r.db.WithContext(ctx).
		Where("position_id = ?", positionID).
		Order("applied_at DESC").
		Find(&apps).Error
	return apps, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Application, error) {
	var a Application
	err := r.db.WithContext(ctx).
		First(&a, "id = ?", id).Error
	return &a, err
}

// FindByIDForUpdate mengunci baris aplikasi sebelum transisi status,
// sehingga dua review yang balapan diserialisasi oleh database.
func (r *repository) FindByIDForUpdate(ctx context.Context, id string) (*Application, error) {
	query := `
SELECT
	id,
	position_id,
	applicant_id,
	status,
	applied_at,
	reviewed_at,
	reviewed_by,
	review_notes
FROM applications
WHERE id = $1
FOR UPDATE
`
	row := r.querier().QueryRowContext(ctx, query, id)

	var a Application
	if err := row.Scan(
		&a.ID,
		&a.PositionID,
		&a.ApplicantID,
		&a.Status,
		&a.AppliedAt,
		&a.ReviewedAt,
		&a.ReviewedBy,
		&a.ReviewNotes,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *repository) UpdateReview(ctx context.Context, id, status, reviewerID string, reviewedAt time.Time, notes *string) error {
	query := `
UPDATE applications
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

// UpdateRevoked mengembalikan aplikasi ke REVIEWING; review_notes
// sengaja dipertahankan sebagai catatan historis.
func (r *repository) UpdateRevoked(ctx context.Context, id string) error {
	query := `
UPDATE applications
SET
	status = $2,
	reviewed_by = NULL,
	reviewed_at = NULL,
	updated_at = NOW()
WHERE id = $1
`
	_, err := r.execer().ExecContext(ctx, query, id, StatusReviewing)
	return err
}

func (r *repository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `
UPDATE applications
SET
	status = $2,
	updated_at = NOW()
WHERE id = $1
`
	_, err := r.execer().ExecContext(ctx, query, id, status)
	return err
}

func (r *repository) CountOtherAccepted(ctx context.Context, applicantID, excludeID string) (int64, error) {
	query := `
SELECT COUNT(*)
FROM applications
WHERE applicant_id = $1
	AND status = $2
	AND id <> $3
`
	var count int64
	err := r.querier().QueryRowContext(ctx, query, applicantID, StatusAccepted, excludeID).Scan(&count)
	return count, err
}

func (r *repository) HasAccepted(ctx context.Context, positionID, applicantID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Application{}).
		Where("position_id = ?", positionID).
		Where("applicant_id = ?", applicantID).
		Where("status = ?", StatusAccepted).
		Count(&count).Error
	return count > 0, err
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
