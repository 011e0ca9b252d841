package leavetype

import (
	"context"
	"errors"

	leavetypeerrors "go-erp/internal/leavetype/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=leave_type_service.go -destination=mock/leave_type_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID string, req CreateLeaveTypeRequest) (LeaveTypeResponse, error)
	GetAll(ctx context.Context, companyID string) ([]LeaveTypeResponse, error)
	GetByID(ctx context.Context, companyID, id string) (LeaveTypeResponse, error)
	Update(ctx context.Context, companyID, id string, req UpdateLeaveTypeRequest) (LeaveTypeResponse, error)
	Delete(ctx context.Context, companyID, id string) error
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("leavetype.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leavetype.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) Create(ctx context.Context, companyID string, req CreateLeaveTypeRequest) (LeaveTypeResponse, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return LeaveTypeResponse{}, leavetypeerrors.ErrInvalidCompanyID
	}

	exists, err := s.repo.CodeExists(ctx, companyID, req.Code)
	if err != nil {
		s.logger.Error("create leave type code check failed", zap.Error(err))
		return LeaveTypeResponse{}, err
	}
	if exists {
		return LeaveTypeResponse{}, leavetypeerrors.ErrDuplicateCode
	}

	isPaid := true
	if req.IsPaid != nil {
		isPaid = *req.IsPaid
	}

	lt := &LeaveType{
		ID:                  uuid.New(),
		CompanyID:           companyUUID,
		Name:                req.Name,
		Code:                req.Code,
		MaxDaysPerYear:      decimal.NewFromFloat(req.MaxDaysPerYear),
		CarryForwardAllowed: req.CarryForwardAllowed,
		IsPaid:              isPaid,
		IsActive:            true,
	}

	if err := s.repo.Create(ctx, lt); err != nil {
		s.logger.Error("create leave type persist failed", zap.Error(err))
		return LeaveTypeResponse{}, err
	}

	s.logger.Info("leave type created",
		zap.String("leave_type_id", lt.ID.String()),
		zap.String("code", lt.Code),
	)

	return mapToResponse(*lt), nil
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]LeaveTypeResponse, error) {
	types, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	resp := make([]LeaveTypeResponse, len(types))
	for i, lt := range types {
		resp[i] = mapToResponse(lt)
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (LeaveTypeResponse, error) {
	lt, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveTypeResponse{}, leavetypeerrors.ErrLeaveTypeNotFound
		}
		return LeaveTypeResponse{}, err
	}
	return mapToResponse(*lt), nil
}

func (s *service) Update(ctx context.Context, companyID, id string, req UpdateLeaveTypeRequest) (LeaveTypeResponse, error) {
	lt, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveTypeResponse{}, leavetypeerrors.ErrLeaveTypeNotFound
		}
		return LeaveTypeResponse{}, err
	}

	lt.Name = req.Name
	lt.MaxDaysPerYear = decimal.NewFromFloat(req.MaxDaysPerYear)
	lt.CarryForwardAllowed = req.CarryForwardAllowed
	lt.IsPaid = req.IsPaid
	lt.IsActive = req.IsActive

	if err := s.repo.Update(ctx, lt); err != nil {
		s.logger.Error("update leave type persist failed",
			zap.String("leave_type_id", id),
			zap.Error(err),
		)
		return LeaveTypeResponse{}, err
	}

	return mapToResponse(*lt), nil
}

func (s *service) Delete(ctx context.Context, companyID, id string) error {
	inUse, err := s.repo.HasBalances(ctx, companyID, id)
	if err != nil {
		return err
	}
	if inUse {
		return leavetypeerrors.ErrLeaveTypeInUse
	}
	return s.repo.Delete(ctx, companyID, id)
}

func mapToResponse(lt LeaveType) LeaveTypeResponse {
	return LeaveTypeResponse{
		ID:                  lt.ID.String(),
		CompanyID:           lt.CompanyID.String(),
		Name:                lt.Name,
		Code:                lt.Code,
		MaxDaysPerYear:      lt.MaxDaysPerYear.String(),
		CarryForwardAllowed: lt.CarryForwardAllowed,
		IsPaid:              lt.IsPaid,
		IsActive:            lt.IsActive,
	}
}
