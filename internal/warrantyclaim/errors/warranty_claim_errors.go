package warrantyclaimerrors

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
	ErrInvalidClaimID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid warranty claim id",
		http.StatusBadRequest,
	)
	ErrInvalidCardID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid warranty card id",
		http.StatusBadRequest,
	)
	ErrInvalidCost = apperror.New(
		apperror.CodeInvalidInput,
		"resolution cost must be a non-negative decimal",
		http.StatusBadRequest,
	)
	ErrInvalidApproverID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid resolution approver id",
		http.StatusBadRequest,
	)

	ErrCardNotFound = apperror.New(
		apperror.CodeNotFound,
		"warranty card not found",
		http.StatusNotFound,
	)
	ErrClaimNotFound = apperror.New(
		apperror.CodeNotFound,
		"warranty claim not found",
		http.StatusNotFound,
	)

	ErrWarrantyNotActive = apperror.New(
		apperror.CodeInvalidState,
		"warranty is not active",
		http.StatusBadRequest,
	)
	ErrWarrantyExpired = apperror.New(
		apperror.CodeInvalidState,
		"warranty has expired",
		http.StatusBadRequest,
	)

	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"claim status transition not allowed",
		http.StatusBadRequest,
	)
	ErrStatusConflict = apperror.New(
		apperror.CodeConflict,
		"claim status changed concurrently",
		http.StatusConflict,
	)
	ErrDeleteNotAllowed = apperror.New(
		apperror.CodeInvalidState,
		"claims in progress or completed cannot be deleted",
		http.StatusConflict,
	)
)
