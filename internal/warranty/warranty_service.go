package warranty

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-erp/internal/shared/counter"
	warrantyerrors "go-erp/internal/warranty/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	dateLayout      = "2006-01-02"
	optionsCacheTTL = 5 * time.Minute
)

//go:generate mockgen -source=warranty_service.go -destination=mock/warranty_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID, actorID string, req CreateWarrantyCardRequest) (*WarrantyCardResponse, error)
	GetAll(ctx context.Context, companyID string, filter ListFilter) ([]WarrantyCardResponse, int64, error)
	GetByID(ctx context.Context, companyID, id string) (*WarrantyCardResponse, error)
	GetOptions(ctx context.Context, companyID string) ([]WarrantyOption, error)
	UpdateStatus(ctx context.Context, companyID, id string, req UpdateWarrantyStatusRequest) (*WarrantyCardResponse, error)
	Delete(ctx context.Context, companyID, id string) error
	ExpireOverdue(ctx context.Context) (int64, error)
}

type service struct {
	repo        Repository
	counterRepo counter.Repository
	cache       *redis.Client
	group       singleflight.Group
	logger      *zap.Logger
}

func NewService(
	repo Repository,
	counterRepo counter.Repository,
	cache *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("warranty.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("warranty.service")
	}
	return &service{
		repo:        repo,
		counterRepo: counterRepo,
		cache:       cache,
		logger:      l,
	}
}

func (s *service) Create(ctx context.Context, companyID, actorID string, req CreateWarrantyCardRequest) (*WarrantyCardResponse, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return nil, warrantyerrors.ErrInvalidCompanyID
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return nil, warrantyerrors.ErrInvalidActorID
	}
	customerUUID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return nil, warrantyerrors.ErrInvalidCustomerID
	}
	productUUID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, warrantyerrors.ErrInvalidProductID
	}

	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return nil, warrantyerrors.ErrInvalidDateFormat
	}
	var purchaseDate *time.Time
	if req.PurchaseDate != "" {
		pd, err := time.Parse(dateLayout, req.PurchaseDate)
		if err != nil {
			return nil, warrantyerrors.ErrInvalidDateFormat
		}
		purchaseDate = &pd
	}
	if req.DurationMonths <= 0 || req.DurationMonths > 120 {
		return nil, warrantyerrors.ErrInvalidDuration
	}

	warrantyType := req.WarrantyType
	if warrantyType == "" {
		warrantyType = WarrantyTypeManufacturer
	}

	coverage := Coverage{}
	if req.Coverage != nil {
		coverage = Coverage{
			Parts:       req.Coverage.Parts,
			Labor:       req.Coverage.Labor,
			Shipping:    req.Coverage.Shipping,
			Replacement: req.Coverage.Replacement,
			Repair:      req.Coverage.Repair,
			Exclusions:  req.Coverage.Exclusions,
		}
		if req.Coverage.LimitAmount != "" {
			limit, err := decimal.NewFromString(req.Coverage.LimitAmount)
			if err != nil {
				return nil, warrantyerrors.ErrInvalidLimitAmount
			}
			coverage.LimitAmount = limit
		}
	}

	seq, err := s.counterRepo.GetNextValue(ctx, companyID, counter.TypeWarrantyCard)
	if err != nil {
		return nil, err
	}
	warrantyNumber := fmt.Sprintf("WC-%d-%05d", time.Now().UTC().Year(), seq)

	card := &WarrantyCard{
		ID:             uuid.New(),
		CompanyID:      companyUUID,
		WarrantyNumber: warrantyNumber,
		CustomerID:     customerUUID,
		ProductID:      productUUID,
		SerialNumber:   req.SerialNumber,
		WarrantyType:   warrantyType,
		PurchaseDate:   purchaseDate,
		StartDate:      startDate,
		DurationMonths: req.DurationMonths,
		EndDate:        startDate.AddDate(0, req.DurationMonths, 0),
		Coverage:       coverage,
		Status:         CardStatusActive,
		Notes:          req.Notes,
		CreatedBy:      actorUUID,
	}

	if err := s.repo.Create(ctx, card); err != nil {
		s.logger.Error("create warranty card failed",
			zap.String("warranty_number", warrantyNumber),
			zap.Error(err),
		)
		return nil, err
	}

	s.invalidateOptions(ctx, companyID)
	s.logger.Info("warranty card created",
		zap.String("warranty_number", warrantyNumber),
		zap.String("customer_id", req.CustomerID),
	)

	resp := mapToResponse(card)
	return &resp, nil
}

func (s *service) GetAll(ctx context.Context, companyID string, filter ListFilter) ([]WarrantyCardResponse, int64, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	cards, err := s.repo.FindAllByCompany(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountByCompany(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}

	resp := make([]WarrantyCardResponse, len(cards))
	for i := range cards {
		resp[i] = mapToResponse(&cards[i])
	}
	return resp, total, nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (*WarrantyCardResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, warrantyerrors.ErrInvalidCardID
	}

	card, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, warrantyerrors.ErrCardNotFound
		}
		return nil, err
	}

	resp := mapToResponse(card)
	return &resp, nil
}

// GetOptions serves the id/number picker list from Redis, collapsing
// concurrent misses per company through singleflight so the database sees
// one query.
func (s *service) GetOptions(ctx context.Context, companyID string) ([]WarrantyOption, error) {
	key := optionsCacheKey(companyID)

	cached, err := s.cache.Get(ctx, key).Result()
	if err == nil {
		var options []WarrantyOption
		if err := json.Unmarshal([]byte(cached), &options); err == nil {
			return options, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		s.logger.Warn("warranty options cache read failed", zap.Error(err))
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		options, err := s.repo.FindOptionsByCompany(ctx, companyID)
		if err != nil {
			return nil, err
		}

		if payload, err := json.Marshal(options); err == nil {
			if err := s.cache.Set(ctx, key, payload, optionsCacheTTL).Err(); err != nil {
				s.logger.Warn("warranty options cache write failed", zap.Error(err))
			}
		}
		return options, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]WarrantyOption), nil
}

func (s *service) UpdateStatus(ctx context.Context, companyID, id string, req UpdateWarrantyStatusRequest) (*WarrantyCardResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, warrantyerrors.ErrInvalidCardID
	}

	card, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, warrantyerrors.ErrCardNotFound
		}
		return nil, err
	}

	if !isAllowedStatusTransition(card.Status, req.Status) {
		return nil, warrantyerrors.ErrInvalidStatusTransition
	}

	moved, err := s.repo.UpdateStatusFrom(ctx, companyID, id, card.Status, req.Status)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, warrantyerrors.ErrStatusConflict
	}

	s.logger.Info("warranty status updated",
		zap.String("warranty_card_id", id),
		zap.String("from", card.Status),
		zap.String("to", req.Status),
	)

	card.Status = req.Status
	resp := mapToResponse(card)
	return &resp, nil
}

func (s *service) Delete(ctx context.Context, companyID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return warrantyerrors.ErrInvalidCardID
	}

	deleted, err := s.repo.DeleteIfUnclaimed(ctx, companyID, id)
	if err != nil {
		return err
	}
	if !deleted {
		_, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return warrantyerrors.ErrCardNotFound
			}
			return err
		}
		return warrantyerrors.ErrCardHasClaims
	}

	s.invalidateOptions(ctx, companyID)
	s.logger.Info("warranty card deleted", zap.String("warranty_card_id", id))
	return nil
}

func (s *service) ExpireOverdue(ctx context.Context) (int64, error) {
	expired, err := s.repo.ExpireOverdue(ctx)
	if err != nil {
		s.logger.Error("warranty expiry sweep failed", zap.Error(err))
		return 0, err
	}
	if expired > 0 {
		s.logger.Info("warranty expiry sweep", zap.Int64("expired", expired))
	}
	return expired, nil
}

func (s *service) invalidateOptions(ctx context.Context, companyID string) {
	if err := s.cache.Del(ctx, optionsCacheKey(companyID)).Err(); err != nil {
		s.logger.Warn("warranty options cache invalidation failed", zap.Error(err))
	}
}

func optionsCacheKey(companyID string) string {
	return "warranty:options:" + companyID
}

func mapToResponse(card *WarrantyCard) WarrantyCardResponse {
	resp := WarrantyCardResponse{
		ID:             card.ID.String(),
		CompanyID:      card.CompanyID.String(),
		WarrantyNumber: card.WarrantyNumber,
		CustomerID:     card.CustomerID.String(),
		ProductID:      card.ProductID.String(),
		SerialNumber:   card.SerialNumber,
		WarrantyType:   card.WarrantyType,
		StartDate:      card.StartDate.Format(dateLayout),
		DurationMonths: card.DurationMonths,
		EndDate:        card.EndDate.Format(dateLayout),
		Coverage:       card.Coverage,
		Status:         card.Status,
		TotalClaims:    card.TotalClaims,
		LastClaimDate:  card.LastClaimDate,
		Notes:          card.Notes,
		CreatedAt:      card.CreatedAt,
		UpdatedAt:      card.UpdatedAt,
	}
	if card.PurchaseDate != nil {
		pd := card.PurchaseDate.Format(dateLayout)
		resp.PurchaseDate = &pd
	}
	return resp
}
