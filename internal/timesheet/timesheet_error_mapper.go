package timesheet

import (
	"errors"

	timesheeterrors "go-tams/internal/timesheet/errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolationCode = "23505"

// mapRepositoryError menerjemahkan pelanggaran unique constraint
// (assistant_id, position_id, month) ke error domain.
func mapRepositoryError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
		if pgErr.ConstraintName == "uq_timesheet_assistant_position_month" {
			return timesheeterrors.ErrDuplicateTimesheet
		}
	}
	return err
}
