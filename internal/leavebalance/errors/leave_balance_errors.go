package leavebalanceerrors

import (
	"net/http"

	"go-erp/internal/shared/apperror"
)

var (
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidYear = apperror.New(
		apperror.CodeInvalidInput,
		"invalid year",
		http.StatusBadRequest,
	)
	ErrInsufficientBalance = apperror.New(
		apperror.CodeInvalidState,
		"insufficient leave balance for the requested period",
		http.StatusBadRequest,
	)
	ErrNothingReserved = apperror.New(
		apperror.CodeInvalidState,
		"no pending days reserved for this request",
		http.StatusConflict,
	)
)
