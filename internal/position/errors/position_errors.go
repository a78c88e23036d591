package positionerrors

import (
	"net/http"

	"go-tams/internal/shared/apperror"
)

var (
	ErrInvalidPositionID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid position id",
		http.StatusBadRequest,
	)
	ErrInvalidFacultyID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid faculty id",
		http.StatusBadRequest,
	)
	ErrInvalidCapacity = apperror.New(
		apperror.CodeInvalidInput,
		"capacity_total must be at least 1",
		http.StatusBadRequest,
	)
	ErrInvalidHourlyRate = apperror.New(
		apperror.CodeInvalidInput,
		"hourly_rate_cents must be positive",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"start_date must be before or equal end_date",
		http.StatusBadRequest,
	)
	ErrInvalidDeadline = apperror.New(
		apperror.CodeInvalidInput,
		"application_deadline must be in the future",
		http.StatusBadRequest,
	)
	ErrPositionNotFound = apperror.New(
		apperror.CodeNotFound,
		"position not found",
		http.StatusNotFound,
	)
	ErrNotPositionOwner = apperror.New(
		apperror.CodeForbidden,
		"only the posting faculty may manage this position",
		http.StatusForbidden,
	)
	ErrPositionNotOpen = apperror.New(
		apperror.CodeInvalidState,
		"position is not open",
		http.StatusBadRequest,
	)
	ErrPositionFull = apperror.New(
		apperror.CodeConflict,
		"position capacity is already filled",
		http.StatusConflict,
	)
	ErrCloseOnlyOpen = apperror.New(
		apperror.CodeInvalidState,
		"only an open position can be closed",
		http.StatusBadRequest,
	)
)
