package timesheeterrors

import (
	"net/http"

	"go-tams/internal/shared/apperror"
)

var (
	ErrInvalidTimesheetID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid timesheet id",
		http.StatusBadRequest,
	)
	ErrInvalidAssistantID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid assistant id",
		http.StatusBadRequest,
	)
	ErrInvalidMonth = apperror.New(
		apperror.CodeInvalidInput,
		"month must be in YYYY-MM format",
		http.StatusBadRequest,
	)
	ErrInvalidHours = apperror.New(
		apperror.CodeInvalidInput,
		"hours worked must be between 0 and 744",
		http.StatusBadRequest,
	)
	ErrInvalidReviewerID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid reviewer id",
		http.StatusBadRequest,
	)
	ErrInvalidAction = apperror.New(
		apperror.CodeInvalidInput,
		"action must be approve or reject",
		http.StatusBadRequest,
	)
	ErrTimesheetNotFound = apperror.New(
		apperror.CodeNotFound,
		"timesheet not found",
		http.StatusNotFound,
	)
	ErrNotAssistant = apperror.New(
		apperror.CodeForbidden,
		"only an accepted assistant for this position may submit timesheets",
		http.StatusForbidden,
	)
	ErrDuplicateTimesheet = apperror.New(
		apperror.CodeConflict,
		"a timesheet for this position and month already exists",
		http.StatusConflict,
	)
	ErrFutureMonth = apperror.New(
		apperror.CodeInvalidInput,
		"cannot report hours for a future month",
		http.StatusBadRequest,
	)
	ErrNotOwner = apperror.New(
		apperror.CodeForbidden,
		"only the submitting assistant may edit this timesheet",
		http.StatusForbidden,
	)
	ErrNotPending = apperror.New(
		apperror.CodeInvalidState,
		"only a pending timesheet can be modified or reviewed",
		http.StatusBadRequest,
	)
	ErrNotReviewer = apperror.New(
		apperror.CodeForbidden,
		"only the posting faculty may review this timesheet",
		http.StatusForbidden,
	)
)
