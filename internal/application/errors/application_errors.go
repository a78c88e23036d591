package applicationerrors

import (
	"net/http"

	"go-tams/internal/shared/apperror"
)

var (
	ErrInvalidApplicationID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid application id",
		http.StatusBadRequest,
	)
	ErrInvalidApplicantID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid applicant id",
		http.StatusBadRequest,
	)
	ErrInvalidReviewerID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid reviewer id",
		http.StatusBadRequest,
	)
	ErrInvalidAction = apperror.New(
		apperror.CodeInvalidInput,
		"action must be accept or reject",
		http.StatusBadRequest,
	)
	ErrApplicationNotFound = apperror.New(
		apperror.CodeNotFound,
		"application not found",
		http.StatusNotFound,
	)
	ErrDuplicateApplication = apperror.New(
		apperror.CodeConflict,
		"an application for this position already exists",
		http.StatusConflict,
	)
	ErrPositionClosed = apperror.New(
		apperror.CodeInvalidState,
		"position is not open for applications",
		http.StatusBadRequest,
	)
	ErrDeadlinePassed = apperror.New(
		apperror.CodeInvalidState,
		"application deadline has passed",
		http.StatusBadRequest,
	)
	ErrNotReviewer = apperror.New(
		apperror.CodeForbidden,
		"only the posting faculty may review this application",
		http.StatusForbidden,
	)
	ErrAlreadyFinal = apperror.New(
		apperror.CodeInvalidState,
		"application has already been reviewed",
		http.StatusBadRequest,
	)
	ErrNotFinal = apperror.New(
		apperror.CodeInvalidState,
		"only an accepted or rejected application can be revoked",
		http.StatusBadRequest,
	)
	ErrNotSubmitted = apperror.New(
		apperror.CodeInvalidState,
		"only a submitted application can move to reviewing",
		http.StatusBadRequest,
	)
)
