package leavebalance

import (
	"context"
	"time"

	leavebalanceerrors "go-erp/internal/leavebalance/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -source=leave_balance_service.go -destination=mock/leave_balance_service_mock.go -package=mock
type Service interface {
	GetForEmployee(ctx context.Context, companyID, employeeID string, year int) ([]LeaveBalanceResponse, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("leavebalance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leavebalance.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) GetForEmployee(ctx context.Context, companyID, employeeID string, year int) ([]LeaveBalanceResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, leavebalanceerrors.ErrInvalidEmployeeID
	}
	if year < 2000 || year > time.Now().UTC().Year()+1 {
		return nil, leavebalanceerrors.ErrInvalidYear
	}

	balances, err := s.repo.FindAllByEmployee(ctx, companyID, employeeID, year)
	if err != nil {
		s.logger.Error("find leave balances failed",
			zap.String("employee_id", employeeID),
			zap.Int("year", year),
			zap.Error(err),
		)
		return nil, err
	}

	resp := make([]LeaveBalanceResponse, len(balances))
	for i, b := range balances {
		resp[i] = mapToResponse(b)
	}
	return resp, nil
}

func mapToResponse(b LeaveBalance) LeaveBalanceResponse {
	return LeaveBalanceResponse{
		ID:                 b.ID.String(),
		CompanyID:          b.CompanyID.String(),
		EmployeeID:         b.EmployeeID.String(),
		LeaveTypeID:        b.LeaveTypeID.String(),
		Year:               b.Year,
		AllocatedDays:      b.AllocatedDays.String(),
		UsedDays:           b.UsedDays.String(),
		PendingDays:        b.PendingDays.String(),
		CarriedForwardDays: b.CarriedForwardDays.String(),
		AvailableDays:      b.AvailableDays().String(),
	}
}
