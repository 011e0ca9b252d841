package notification

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -source=notification_repo.go -destination=mock/notification_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	FindAllByRecipient(ctx context.Context, companyID, recipientID string) ([]Notification, error)
	MarkRead(ctx context.Context, companyID, recipientID, id string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, n *Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *repository) FindAllByRecipient(ctx context.Context, companyID, recipientID string) ([]Notification, error) {
	var notifications []Notification
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Find(&notifications).Error
	return notifications, err
}

func (r *repository) MarkRead(ctx context.Context, companyID, recipientID, id string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&Notification{}).
		Where("id = ?", id).
		Where("company_id = ?", companyID).
		Where("recipient_id = ?", recipientID).
		Where("read_at IS NULL").
		Update("read_at", gorm.Expr("now()"))
	return res.RowsAffected, res.Error
}
