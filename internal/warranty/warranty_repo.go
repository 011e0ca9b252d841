package warranty

import (
	"context"

	"gorm.io/gorm"
)

// ListFilter narrows the company-wide card listing; zero values mean no
// filter.
type ListFilter struct {
	Status     string
	CustomerID string
	Limit      int
	Offset     int
}

//go:generate mockgen -source=warranty_repo.go -destination=mock/warranty_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, card *WarrantyCard) error
	FindAllByCompany(ctx context.Context, companyID string, filter ListFilter) ([]WarrantyCard, error)
	CountByCompany(ctx context.Context, companyID string, filter ListFilter) (int64, error)
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*WarrantyCard, error)
	FindOptionsByCompany(ctx context.Context, companyID string) ([]WarrantyOption, error)

	// UpdateStatusFrom lands the move only while the card still holds the
	// expected current status. Returns false when another writer got there
	// first.
	UpdateStatusFrom(ctx context.Context, companyID, id, from, to string) (bool, error)

	// DeleteIfUnclaimed soft deletes the card only while no claims exist.
	DeleteIfUnclaimed(ctx context.Context, companyID, id string) (bool, error)

	// ExpireOverdue flips every ACTIVE card past its end date to EXPIRED
	// and reports how many moved.
	ExpireOverdue(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, card *WarrantyCard) error {
	return r.db.WithContext(ctx).Create(card).Error
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string, filter ListFilter) ([]WarrantyCard, error) {
	var cards []WarrantyCard
	err := r.scoped(ctx, companyID, filter).
		Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&cards).Error
	return cards, err
}

func (r *repository) CountByCompany(ctx context.Context, companyID string, filter ListFilter) (int64, error) {
	var total int64
	err := r.scoped(ctx, companyID, filter).Count(&total).Error
	return total, err
}

func (r *repository) scoped(ctx context.Context, companyID string, filter ListFilter) *gorm.DB {
	q := r.db.WithContext(ctx).
		Model(&WarrantyCard{}).
		Where("company_id = ?", companyID)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.CustomerID != "" {
		q = q.Where("customer_id = ?", filter.CustomerID)
	}
	return q
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*WarrantyCard, error) {
	var card WarrantyCard
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		First(&card, "id = ?", id).Error
	return &card, err
}

func (r *repository) FindOptionsByCompany(ctx context.Context, companyID string) ([]WarrantyOption, error) {
	var options []WarrantyOption
	err := r.db.WithContext(ctx).
		Model(&WarrantyCard{}).
		Select("id, warranty_number").
		Where("company_id = ?", companyID).
		Order("warranty_number ASC").
		Find(&options).Error
	return options, err
}

func (r *repository) UpdateStatusFrom(ctx context.Context, companyID, id, from, to string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&WarrantyCard{}).
		Where("id = ?", id).
		Where("company_id = ?", companyID).
		Where("status = ?", from).
		Update("status", to)
	return res.RowsAffected > 0, res.Error
}

func (r *repository) DeleteIfUnclaimed(ctx context.Context, companyID, id string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Where("total_claims = 0").
		Delete(&WarrantyCard{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}

func (r *repository) ExpireOverdue(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&WarrantyCard{}).
		Where("status = ?", CardStatusActive).
		Where("end_date < now()").
		Update("status", CardStatusExpired)
	return res.RowsAffected, res.Error
}
