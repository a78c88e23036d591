package salary

import (
	"errors"

	salaryerrors "go-tams/internal/salary/errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolationCode = "23505"

// mapRepositoryError menerjemahkan pelanggaran unique constraint
// timesheet_id ke error domain; generate ganda yang kalah balapan
// dapat 409.
func mapRepositoryError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
		if pgErr.ConstraintName == "uq_salary_timesheet" {
			return salaryerrors.ErrAlreadyGenerated
		}
	}
	return err
}
