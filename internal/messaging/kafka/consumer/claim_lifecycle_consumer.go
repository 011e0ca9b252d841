package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"go-erp/internal/events"
	"go-erp/internal/notification"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConsumeClaimLifecycle notifies the customer contact when a warranty claim
// reaches a costed resolution. Filed events are consumed and skipped so a
// single consumer group covers the whole topic.
func ConsumeClaimLifecycle(
	ctx context.Context,
	reader *kafkago.Reader,
	notificationService notification.Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.claim_lifecycle")
	log.Info("claim lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("claim lifecycle consumer stopped")
				return
			}
			log.Error("fetch claim lifecycle message failed", zap.Error(err))
			continue
		}

		var event events.WarrantyClaimEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode claim lifecycle event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if event.EventType != events.WarrantyClaimResolved {
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		title := fmt.Sprintf("Warranty claim %s resolved", event.ClaimNumber)
		message := fmt.Sprintf("Claim %s was resolved (%s, cost %s).",
			event.ClaimNumber, event.ResolutionType, event.ResolutionCost)

		_, err = notificationService.Create(ctx, event.CompanyID, notification.CreateNotificationRequest{
			RecipientID:   event.CustomerID,
			Kind:          notification.KindClaimResolved,
			Title:         title,
			Message:       message,
			SourceEventID: event.EventType + ":" + event.ClaimID,
		})
		if err != nil {
			if isUniqueNotificationViolation(err) {
				log.Warn("notification already exists for event, skipping",
					zap.String("claim_id", event.ClaimID),
					zap.String("company_id", event.CompanyID),
				)
				_ = reader.CommitMessages(ctx, msg)
				continue
			}

			log.Error("create claim notification failed",
				zap.String("claim_id", event.ClaimID),
				zap.String("company_id", event.CompanyID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit claim lifecycle message failed", zap.Error(err))
			continue
		}

		log.Info("notification created from claim lifecycle event",
			zap.String("claim_id", event.ClaimID),
		)
	}
}
