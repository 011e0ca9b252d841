package leaverequesterrors

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
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveTypeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave type id",
		http.StatusBadRequest,
	)
	ErrInvalidRequestID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave request id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"dates must use the YYYY-MM-DD format",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"end date must not be before start date",
		http.StatusBadRequest,
	)
	ErrHalfDaySingleDay = apperror.New(
		apperror.CodeInvalidInput,
		"half day requests must cover a single day",
		http.StatusBadRequest,
	)
	ErrInvalidAction = apperror.New(
		apperror.CodeInvalidInput,
		"action must be APPROVED or REJECTED",
		http.StatusBadRequest,
	)

	ErrEmployeeNotInCompany = apperror.New(
		apperror.CodeNotFound,
		"employee not found in company",
		http.StatusNotFound,
	)
	ErrRequestNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave request not found",
		http.StatusNotFound,
	)

	ErrNoApprovalChain = apperror.New(
		apperror.CodeInvalidState,
		"no approval chain is configured for this leave type",
		http.StatusUnprocessableEntity,
	)
	ErrLeaveOverlap = apperror.New(
		apperror.CodeConflict,
		"employee already has leave in this period",
		http.StatusConflict,
	)

	ErrNotCurrentApprover = apperror.New(
		apperror.CodeForbidden,
		"actor is not the approver for the current level",
		http.StatusForbidden,
	)
	ErrNotRequestOwner = apperror.New(
		apperror.CodeForbidden,
		"only the requesting employee may cancel",
		http.StatusForbidden,
	)

	ErrWorkflowCompleted = apperror.New(
		apperror.CodeInvalidState,
		"leave request workflow is already completed",
		http.StatusConflict,
	)
	ErrRequestNotPending = apperror.New(
		apperror.CodeInvalidState,
		"leave request is no longer pending",
		http.StatusConflict,
	)
	ErrApprovalConflict = apperror.New(
		apperror.CodeConflict,
		"a concurrent action already decided this approval level",
		http.StatusConflict,
	)
	ErrDeleteNotAllowed = apperror.New(
		apperror.CodeInvalidState,
		"only cancelled or rejected leave requests can be deleted",
		http.StatusConflict,
	)
)
