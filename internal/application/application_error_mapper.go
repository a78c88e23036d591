package application

import (
	"errors"

	applicationerrors "go-tams/internal/application/errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolationCode = "23505"

// mapRepositoryError menerjemahkan pelanggaran unique constraint dari
// Postgres ke error domain, supaya submit ganda yang kalah balapan
// tetap dapat 409 dan bukan 500.
func mapRepositoryError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
		if pgErr.ConstraintName == "uq_application_position_applicant" {
			return applicationerrors.ErrDuplicateApplication
		}
	}
	return err
}
