package leaverequest

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go-erp/internal/events"
	"go-erp/internal/leavebalance"
	leavebalanceerrors "go-erp/internal/leavebalance/errors"
	leaverequesterrors "go-erp/internal/leaverequest/errors"
	leavetypeerrors "go-erp/internal/leavetype/errors"
	"go-erp/internal/messaging/kafka"
	"go-erp/internal/shared/apperror"
	"go-erp/internal/shared/contextutil"
	"go-erp/internal/shared/counter"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

var halfDay = decimal.NewFromFloat(0.5)

//go:generate mockgen -source=leave_request_service.go -destination=mock/leave_request_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID, actorID, actorRole string, req CreateLeaveRequestRequest) (*LeaveRequestResponse, error)
	RecordAction(ctx context.Context, companyID, actorID, actorRole, id string, req ApproverActionRequest) (*LeaveRequestResponse, error)
	Cancel(ctx context.Context, companyID, actorID, actorRole, id string) (*LeaveRequestResponse, error)
	AddComment(ctx context.Context, companyID, actorID, actorRole, id string, req AddCommentRequest) (*RequestCommentResponse, error)
	GetAll(ctx context.Context, companyID string, filter ListFilter) ([]LeaveRequestResponse, int64, error)
	GetByID(ctx context.Context, companyID, id string) (*LeaveRequestResponse, error)
	Delete(ctx context.Context, companyID, id string) error
}

type service struct {
	db          *sql.DB
	repo        Repository
	balanceRepo leavebalance.Repository
	counterRepo counter.Repository
	outboxRepo  kafka.OutboxRepository
	logger      *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	balanceRepo leavebalance.Repository,
	counterRepo counter.Repository,
	outboxRepo kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leaverequest.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leaverequest.service")
	}
	return &service{
		db:          db,
		repo:        repo,
		balanceRepo: balanceRepo,
		counterRepo: counterRepo,
		outboxRepo:  outboxRepo,
		logger:      l,
	}
}

func (s *service) Create(ctx context.Context, companyID, actorID, actorRole string, req CreateLeaveRequestRequest) (*LeaveRequestResponse, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return nil, leaverequesterrors.ErrInvalidCompanyID
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return nil, leaverequesterrors.ErrInvalidActorID
	}
	employeeUUID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return nil, leaverequesterrors.ErrInvalidEmployeeID
	}
	leaveTypeUUID, err := uuid.Parse(req.LeaveTypeID)
	if err != nil {
		return nil, leaverequesterrors.ErrInvalidLeaveTypeID
	}

	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return nil, leaverequesterrors.ErrInvalidDateFormat
	}
	endDate, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return nil, leaverequesterrors.ErrInvalidDateFormat
	}
	if endDate.Before(startDate) {
		return nil, leaverequesterrors.ErrInvalidDateRange
	}

	totalDays, err := computeTotalDays(startDate, endDate, req.IsHalfDay)
	if err != nil {
		return nil, err
	}

	priority := req.Priority
	if priority == "" {
		priority = PriorityMedium
	}

	belongs, err := s.repo.EmployeeBelongsToCompany(ctx, companyID, req.EmployeeID)
	if err != nil {
		s.logger.Error("employee lookup failed", zap.String("employee_id", req.EmployeeID), zap.Error(err))
		return nil, err
	}
	if !belongs {
		return nil, leaverequesterrors.ErrEmployeeNotInCompany
	}

	// Checked up front so an unknown leave type reads as 404, not as the
	// ledger's insufficient-balance rejection.
	typeExists, err := s.repo.LeaveTypeExists(ctx, companyID, req.LeaveTypeID)
	if err != nil {
		return nil, err
	}
	if !typeExists {
		return nil, leavetypeerrors.ErrLeaveTypeNotFound
	}

	overlaps, err := s.repo.HasOverlappingPeriod(ctx, companyID, req.EmployeeID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	if overlaps {
		return nil, leaverequesterrors.ErrLeaveOverlap
	}

	chain, err := s.repo.FindApprovalChain(ctx, companyID, req.LeaveTypeID)
	if err != nil {
		return nil, err
	}
	if len(chain) == 0 {
		return nil, leaverequesterrors.ErrNoApprovalChain
	}

	seq, err := s.counterRepo.GetNextValue(ctx, companyID, counter.TypeLeaveRequest)
	if err != nil {
		return nil, err
	}
	requestNumber := fmt.Sprintf("LR-%d-%04d", time.Now().UTC().Year(), seq)

	lr := &LeaveRequest{
		ID:            uuid.New(),
		CompanyID:     companyUUID,
		EmployeeID:    employeeUUID,
		RequestNumber: requestNumber,
		LeaveTypeID:   leaveTypeUUID,
		StartDate:     startDate,
		EndDate:       endDate,
		TotalDays:     totalDays,
		IsHalfDay:     req.IsHalfDay,
		Reason:        req.Reason,
		Priority:      priority,
		Status:        StatusPending,
		CurrentLevel:  1,
		CreatedBy:     actorUUID,
	}
	for _, cs := range chain {
		lr.Steps = append(lr.Steps, ApprovalStep{
			ID:             uuid.New(),
			LeaveRequestID: lr.ID,
			Level:          cs.Level,
			ApproverID:     cs.ApproverID,
			Status:         StepPending,
		})
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	balanceQtx := s.balanceRepo.WithTx(tx)

	reserved, err := balanceQtx.Reserve(ctx, companyID, req.EmployeeID, req.LeaveTypeID, startDate.Year(), totalDays)
	if err != nil {
		return nil, err
	}
	if !reserved {
		return nil, leavebalanceerrors.ErrInsufficientBalance
	}

	if err := qtx.Create(ctx, lr); err != nil {
		s.logger.Error("create leave request failed", zap.String("request_number", requestNumber), zap.Error(err))
		return nil, err
	}

	submission := &RequestComment{
		ID:             uuid.New(),
		LeaveRequestID: lr.ID,
		AuthorID:       actorUUID,
		AuthorRole:     actorRole,
		Message:        "leave request submitted",
	}
	if err := qtx.AddComment(ctx, submission); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("leave request created",
		zap.String("request_number", requestNumber),
		zap.String("employee_id", req.EmployeeID),
		zap.String("total_days", totalDays.String()),
	)

	lr.Comments = append(lr.Comments, *submission)
	resp := mapToResponse(lr)
	return &resp, nil
}

// RecordAction applies the current approver's decision. The step update, the
// workflow pointer move, the ledger adjustment and the outbox entry all land
// in one transaction, and every write carries a state guard, so a losing
// concurrent actor rolls back with a conflict instead of double-applying.
func (s *service) RecordAction(ctx context.Context, companyID, actorID, actorRole, id string, req ApproverActionRequest) (*LeaveRequestResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, leaverequesterrors.ErrInvalidRequestID
	}
	if _, err := uuid.Parse(actorID); err != nil {
		return nil, leaverequesterrors.ErrInvalidActorID
	}
	if req.Action != StepApproved && req.Action != StepRejected {
		return nil, leaverequesterrors.ErrInvalidAction
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	balanceQtx := s.balanceRepo.WithTx(tx)
	outboxQtx := s.outboxRepo.WithTx(tx)

	lr, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, leaverequesterrors.ErrRequestNotFound
		}
		return nil, err
	}

	if lr.IsCompleted {
		return nil, leaverequesterrors.ErrWorkflowCompleted
	}
	if lr.Status != StatusPending {
		return nil, leaverequesterrors.ErrRequestNotPending
	}

	step := lr.CurrentStep()
	if step == nil {
		return nil, apperror.New(apperror.CodeInternalError,
			"approval chain has no step at the current level", http.StatusInternalServerError)
	}
	if step.ApproverID.String() != actorID {
		return nil, leaverequesterrors.ErrNotCurrentApprover
	}

	marked, err := qtx.MarkStepAction(ctx, id, lr.CurrentLevel, actorID, req.Action, req.Comments)
	if err != nil {
		return nil, err
	}
	if !marked {
		return nil, leaverequesterrors.ErrApprovalConflict
	}

	finalStatus := ""
	switch {
	case req.Action == StepApproved && lr.HasNextLevel():
		advanced, err := qtx.AdvanceLevel(ctx, id, lr.CurrentLevel)
		if err != nil {
			return nil, err
		}
		if !advanced {
			return nil, leaverequesterrors.ErrApprovalConflict
		}

	case req.Action == StepApproved:
		finalStatus = StatusApproved

	default:
		finalStatus = StatusRejected
	}

	if finalStatus != "" {
		finalized, err := qtx.Finalize(ctx, id, lr.CurrentLevel, finalStatus)
		if err != nil {
			return nil, err
		}
		if !finalized {
			return nil, leaverequesterrors.ErrApprovalConflict
		}

		year := lr.StartDate.Year()
		if finalStatus == StatusApproved {
			committed, err := balanceQtx.Commit(ctx, companyID, lr.EmployeeID.String(), lr.LeaveTypeID.String(), year, lr.TotalDays)
			if err != nil {
				return nil, err
			}
			if !committed {
				return nil, leavebalanceerrors.ErrNothingReserved
			}
		} else {
			released, err := balanceQtx.Release(ctx, companyID, lr.EmployeeID.String(), lr.LeaveTypeID.String(), year, lr.TotalDays)
			if err != nil {
				return nil, err
			}
			if !released {
				s.logger.Warn("no pending days to release on rejection",
					zap.String("leave_request_id", id),
				)
			}
		}

		if err := s.enqueueFinalizedEvent(ctx, outboxQtx, lr, finalStatus); err != nil {
			return nil, err
		}
	}

	note := &RequestComment{
		ID:             uuid.New(),
		LeaveRequestID: lr.ID,
		AuthorID:       step.ApproverID,
		AuthorRole:     actorRole,
		Message:        actionMessage(lr.CurrentLevel, req.Action, req.Comments),
	}
	if err := qtx.AddComment(ctx, note); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("approver action recorded",
		zap.String("leave_request_id", id),
		zap.Int("level", lr.CurrentLevel),
		zap.String("action", req.Action),
		zap.String("final_status", finalStatus),
	)

	updated, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	resp := mapToResponse(updated)
	return &resp, nil
}

func (s *service) Cancel(ctx context.Context, companyID, actorID, actorRole, id string) (*LeaveRequestResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, leaverequesterrors.ErrInvalidRequestID
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return nil, leaverequesterrors.ErrInvalidActorID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	balanceQtx := s.balanceRepo.WithTx(tx)

	cancelled, err := qtx.CancelOwned(ctx, companyID, id, actorID)
	if err != nil {
		return nil, err
	}
	if !cancelled {
		// The guarded update rejected; fetch once to report the right reason.
		lr, err := qtx.FindByIDAndCompany(ctx, companyID, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, leaverequesterrors.ErrRequestNotFound
			}
			return nil, err
		}
		if lr.EmployeeID.String() != actorID {
			return nil, leaverequesterrors.ErrNotRequestOwner
		}
		return nil, leaverequesterrors.ErrRequestNotPending
	}

	lr, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	released, err := balanceQtx.Release(ctx, companyID, lr.EmployeeID.String(), lr.LeaveTypeID.String(), lr.StartDate.Year(), lr.TotalDays)
	if err != nil {
		return nil, err
	}
	if !released {
		s.logger.Warn("no pending days to release on cancellation",
			zap.String("leave_request_id", id),
		)
	}

	note := &RequestComment{
		ID:             uuid.New(),
		LeaveRequestID: lr.ID,
		AuthorID:       actorUUID,
		AuthorRole:     actorRole,
		Message:        "leave request cancelled by employee",
	}
	if err := qtx.AddComment(ctx, note); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("leave request cancelled", zap.String("leave_request_id", id))

	lr.Comments = append(lr.Comments, *note)
	resp := mapToResponse(lr)
	return &resp, nil
}

func (s *service) AddComment(ctx context.Context, companyID, actorID, actorRole, id string, req AddCommentRequest) (*RequestCommentResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, leaverequesterrors.ErrInvalidRequestID
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return nil, leaverequesterrors.ErrInvalidActorID
	}

	lr, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, leaverequesterrors.ErrRequestNotFound
		}
		return nil, err
	}

	comment := &RequestComment{
		ID:             uuid.New(),
		LeaveRequestID: lr.ID,
		AuthorID:       actorUUID,
		AuthorRole:     actorRole,
		Message:        req.Message,
		IsInternal:     req.IsInternal,
	}
	if err := s.repo.AddComment(ctx, comment); err != nil {
		return nil, err
	}

	resp := mapCommentToResponse(*comment)
	return &resp, nil
}

func (s *service) GetAll(ctx context.Context, companyID string, filter ListFilter) ([]LeaveRequestResponse, int64, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	requests, err := s.repo.FindAllByCompany(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountByCompany(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}

	resp := make([]LeaveRequestResponse, len(requests))
	for i := range requests {
		resp[i] = mapToResponse(&requests[i])
	}
	return resp, total, nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (*LeaveRequestResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, leaverequesterrors.ErrInvalidRequestID
	}

	lr, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, leaverequesterrors.ErrRequestNotFound
		}
		return nil, err
	}

	resp := mapToResponse(lr)
	return &resp, nil
}

func (s *service) Delete(ctx context.Context, companyID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return leaverequesterrors.ErrInvalidRequestID
	}

	deleted, err := s.repo.SoftDelete(ctx, companyID, id)
	if err != nil {
		return err
	}
	if !deleted {
		_, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return leaverequesterrors.ErrRequestNotFound
			}
			return err
		}
		return leaverequesterrors.ErrDeleteNotAllowed
	}

	s.logger.Info("leave request deleted", zap.String("leave_request_id", id))
	return nil
}

func (s *service) enqueueFinalizedEvent(ctx context.Context, outbox kafka.OutboxRepository, lr *LeaveRequest, finalStatus string) error {
	eventType := events.LeaveRequestApproved
	if finalStatus == StatusRejected {
		eventType = events.LeaveRequestRejected
	}

	payload, err := json.Marshal(events.LeaveFinalizedEvent{
		EventType:  eventType,
		RequestID:  lr.RequestNumber,
		LeaveID:    lr.ID.String(),
		CompanyID:  lr.CompanyID.String(),
		EmployeeID: lr.EmployeeID.String(),
		Status:     finalStatus,
		TotalDays:  lr.TotalDays.String(),
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	return outbox.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "leave_request",
		AggregateID:   lr.ID.String(),
		EventType:     eventType,
		Topic:         events.LeaveLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

// computeTotalDays counts calendar days inclusively. A half day request must
// start and end on the same day and always weighs 0.5.
func computeTotalDays(start, end time.Time, isHalfDay bool) (decimal.Decimal, error) {
	if isHalfDay {
		if !start.Equal(end) {
			return decimal.Zero, leaverequesterrors.ErrHalfDaySingleDay
		}
		return halfDay, nil
	}
	days := int64(end.Sub(start).Hours()/24) + 1
	return decimal.NewFromInt(days), nil
}

func actionMessage(level int, action string, comments *string) string {
	msg := fmt.Sprintf("level %d %s", level, strings.ToLower(action))
	if comments != nil && *comments != "" {
		msg += ": " + *comments
	}
	return msg
}

func mapToResponse(lr *LeaveRequest) LeaveRequestResponse {
	resp := LeaveRequestResponse{
		ID:            lr.ID.String(),
		CompanyID:     lr.CompanyID.String(),
		EmployeeID:    lr.EmployeeID.String(),
		RequestNumber: lr.RequestNumber,
		LeaveTypeID:   lr.LeaveTypeID.String(),
		StartDate:     lr.StartDate.Format(dateLayout),
		EndDate:       lr.EndDate.Format(dateLayout),
		TotalDays:     lr.TotalDays.String(),
		IsHalfDay:     lr.IsHalfDay,
		Reason:        lr.Reason,
		Priority:      lr.Priority,
		Status:        lr.Status,
		CurrentLevel:  lr.CurrentLevel,
		IsCompleted:   lr.IsCompleted,
		CompletedAt:   lr.CompletedAt,
		CreatedAt:     lr.CreatedAt,
		UpdatedAt:     lr.UpdatedAt,
	}
	for _, step := range lr.Steps {
		resp.Steps = append(resp.Steps, ApprovalStepResponse{
			Level:      step.Level,
			ApproverID: step.ApproverID.String(),
			Status:     step.Status,
			Comments:   step.Comments,
			ActionDate: step.ActionDate,
		})
	}
	for _, c := range lr.Comments {
		resp.Comments = append(resp.Comments, mapCommentToResponse(c))
	}
	return resp
}

func mapCommentToResponse(c RequestComment) RequestCommentResponse {
	return RequestCommentResponse{
		ID:         c.ID.String(),
		AuthorID:   c.AuthorID.String(),
		AuthorRole: c.AuthorRole,
		Message:    c.Message,
		IsInternal: c.IsInternal,
		CreatedAt:  c.CreatedAt,
	}
}
