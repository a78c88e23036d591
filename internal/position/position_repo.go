package position

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

//go:generate mockgen -source=position_repo.go -destination=mock/position_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, p *Position) error
	FindAllOpen(ctx context.Context) ([]Position, error)
	FindAllByFaculty(ctx context.Context, facultyID string) ([]Position, error)
	FindByID(ctx context.Context, id string) (*Position, error)
	FindByIDForUpdate(ctx context.Context, id string) (*Position, error)
	UpdateCapacityStatus(ctx context.Context, id string, capacityFilled int, status string) error
	UpdateStatus(ctx context.Context, id string, status string) error
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

func (r *repository) Create(ctx context.Context, p *Position) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *repository) FindAllOpen(ctx context.Context) ([]Position, error) {
	var positions []Position
	err := r.db.WithContext(ctx).
		Where("status = ?", StatusOpen).
		Order("created_at DESC").
		Find(&positions).Error
	return positions, err
}

func (r *repository) FindAllByFaculty(ctx context.Context, facultyID string) ([]Position, error) {
	var positions []Position
	err := r.db.WithContext(ctx).
		Where("posted_by = ?", facultyID).
		Order("created_at DESC").
		Find(&positions).Error
	return positions, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Position, error) {
	var p Position
	err := r.db.WithContext(ctx).
		First(&p, "id = ?", id).Error
	return &p, err
}

// FindByIDForUpdate mengambil baris posisi dengan row lock eksklusif.
// Semua mutasi kapasitas wajib membaca lewat sini dulu agar tidak ada
// lost update saat dua reviewer accept bersamaan.
func (r *repository) FindByIDForUpdate(ctx context.Context, id string) (*Position, error) {
	query := `
SELECT
	id,
	posted_by,
	title,
	capacity_total,
	capacity_filled,
	hourly_rate_cents,
	application_deadline,
	status
FROM positions
WHERE id = $1
	AND deleted_at IS NULL
FOR UPDATE
`
	row := r.querier().QueryRowContext(ctx, query, id)

	var p Position
	if err := row.Scan(
		&p.ID,
		&p.PostedBy,
		&p.Title,
		&p.CapacityTotal,
		&p.CapacityFilled,
		&p.HourlyRateCents,
		&p.ApplicationDeadline,
		&p.Status,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) UpdateCapacityStatus(ctx context.Context, id string, capacityFilled int, status string) error {
	query := `
UPDATE positions
SET
	capacity_filled = $2,
	status = $3,
	updated_at = NOW()
WHERE id = $1
	AND deleted_at IS NULL
`
	_, err := r.execer().ExecContext(ctx, query, id, capacityFilled, status)
	return err
}

func (r *repository) UpdateStatus(ctx context.Context, id string, status string) error {
	query := `
UPDATE positions
SET
	status = $2,
	updated_at = NOW()
WHERE id = $1
	AND deleted_at IS NULL
`
	_, err := r.execer().ExecContext(ctx, query, id, status)
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
