package student

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=student_repo.go -destination=mock/student_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, st *Student) error
	FindByUserIDForUpdate(ctx context.Context, userID string) (*Student, error)
	SetTAStatus(ctx context.Context, userID string, isTA bool, since *time.Time) error
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

func (r *repository) Create(ctx context.Context, st *Student) error {
	return r.db.WithContext(ctx).Create(st).Error
}

// FindByUserIDForUpdate mengambil baris student dengan row lock
// eksklusif. Accept dan revoke untuk student yang sama mengantri di
// lock ini sebelum memutuskan flip flag, jadi keputusan flip selalu
// membaca hitungan accepted yang sudah final.
func (r *repository) FindByUserIDForUpdate(ctx context.Context, userID string) (*Student, error) {
	query := `
SELECT
	id,
	user_id,
	student_number,
	major,
	is_ta,
	ta_since
FROM students
WHERE user_id = $1
	AND deleted_at IS NULL
FOR UPDATE
`
	row := r.querier().QueryRowContext(ctx, query, userID)

	var st Student
	if err := row.Scan(
		&st.ID,
		&st.UserID,
		&st.StudentNumber,
		&st.Major,
		&st.IsTA,
		&st.TASince,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return &st, nil
}

// SetTAStatus berjalan lewat tx yang sama dengan mutasi aplikasi,
// supaya flag tidak pernah menyimpang dari himpunan accepted.
func (r *repository) SetTAStatus(ctx context.Context, userID string, isTA bool, since *time.Time) error {
	query := `
UPDATE students
SET
	is_ta = $2,
	ta_since = $3,
	updated_at = NOW()
WHERE user_id = $1
	AND deleted_at IS NULL
`
	_, err := r.execer().ExecContext(ctx, query, userID, isTA, since)
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
