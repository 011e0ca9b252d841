package notification

import (
	"context"
	"time"

	notificationerrors "go-erp/internal/notification/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -source=notification_service.go -destination=mock/notification_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID string, req CreateNotificationRequest) (NotificationResponse, error)
	GetAllForRecipient(ctx context.Context, companyID, recipientID string) ([]NotificationResponse, error)
	MarkRead(ctx context.Context, companyID, recipientID, id string) error
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("notification.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) Create(ctx context.Context, companyID string, req CreateNotificationRequest) (NotificationResponse, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return NotificationResponse{}, notificationerrors.ErrInvalidCompanyID
	}
	recipientUUID, err := uuid.Parse(req.RecipientID)
	if err != nil {
		return NotificationResponse{}, notificationerrors.ErrInvalidRecipientID
	}

	n := &Notification{
		ID:            uuid.New(),
		CompanyID:     companyUUID,
		RecipientID:   recipientUUID,
		Kind:          req.Kind,
		Title:         req.Title,
		Message:       req.Message,
		SourceEventID: req.SourceEventID,
	}

	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error("create notification persist failed",
			zap.String("source_event_id", req.SourceEventID),
			zap.Error(err),
		)
		return NotificationResponse{}, err
	}

	s.logger.Info("notification created",
		zap.String("notification_id", n.ID.String()),
		zap.String("kind", n.Kind),
		zap.String("recipient_id", req.RecipientID),
	)

	return mapToResponse(*n), nil
}

func (s *service) GetAllForRecipient(ctx context.Context, companyID, recipientID string) ([]NotificationResponse, error) {
	notifications, err := s.repo.FindAllByRecipient(ctx, companyID, recipientID)
	if err != nil {
		return nil, err
	}

	resp := make([]NotificationResponse, len(notifications))
	for i, n := range notifications {
		resp[i] = mapToResponse(n)
	}
	return resp, nil
}

func (s *service) MarkRead(ctx context.Context, companyID, recipientID, id string) error {
	affected, err := s.repo.MarkRead(ctx, companyID, recipientID, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return notificationerrors.ErrNotificationNotFound
	}
	return nil
}

func mapToResponse(n Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:          n.ID.String(),
		CompanyID:   n.CompanyID.String(),
		RecipientID: n.RecipientID.String(),
		Kind:        n.Kind,
		Title:       n.Title,
		Message:     n.Message,
		CreatedAt:   n.CreatedAt.Format(time.RFC3339),
	}
	if n.ReadAt != nil {
		v := n.ReadAt.Format(time.RFC3339)
		resp.ReadAt = &v
	}
	return resp
}
