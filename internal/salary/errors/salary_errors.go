package salaryerrors

import (
	"net/http"

	"go-tams/internal/shared/apperror"
)

var (
	ErrInvalidSalaryID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid salary id",
		http.StatusBadRequest,
	)
	ErrInvalidTimesheetID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid timesheet id",
		http.StatusBadRequest,
	)
	ErrSalaryNotFound = apperror.New(
		apperror.CodeNotFound,
		"salary record not found",
		http.StatusNotFound,
	)
	ErrTimesheetNotApproved = apperror.New(
		apperror.CodeInvalidState,
		"salary can only be generated from an approved timesheet",
		http.StatusBadRequest,
	)
	ErrAlreadyGenerated = apperror.New(
		apperror.CodeConflict,
		"a salary record for this timesheet already exists",
		http.StatusConflict,
	)
	ErrAlreadyPaid = apperror.New(
		apperror.CodeInvalidState,
		"salary has already been paid",
		http.StatusBadRequest,
	)
	ErrInvalidGeneratorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid generator id",
		http.StatusBadRequest,
	)
	ErrNotSalaryOwner = apperror.New(
		apperror.CodeForbidden,
		"salary record belongs to another assistant",
		http.StatusForbidden,
	)
)
