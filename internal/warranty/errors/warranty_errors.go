package warrantyerrors

import (
	"net/http"

	"go-erp/internal/shared/apperror"
)

var (
	ErrInvalidCompanyID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid company id",
		http.StatusBadRequest,
	)
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrInvalidCardID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid warranty card id",
		http.StatusBadRequest,
	)
	ErrInvalidCustomerID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid customer id",
		http.StatusBadRequest,
	)
	ErrInvalidProductID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid product id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"dates must use the YYYY-MM-DD format",
		http.StatusBadRequest,
	)
	ErrInvalidDuration = apperror.New(
		apperror.CodeInvalidInput,
		"duration must be between 1 and 120 months",
		http.StatusBadRequest,
	)
	ErrInvalidLimitAmount = apperror.New(
		apperror.CodeInvalidInput,
		"coverage limit amount must be a decimal number",
		http.StatusBadRequest,
	)

	ErrCardNotFound = apperror.New(
		apperror.CodeNotFound,
		"warranty card not found",
		http.StatusNotFound,
	)

	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"warranty status transition not allowed",
		http.StatusBadRequest,
	)
	ErrStatusConflict = apperror.New(
		apperror.CodeConflict,
		"warranty status changed concurrently",
		http.StatusConflict,
	)
	ErrCardHasClaims = apperror.New(
		apperror.CodeConflict,
		"resolve all claims first",
		http.StatusConflict,
	)
)
