package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go-erp/internal/events"
	"go-erp/internal/notification"

	"github.com/jackc/pgx/v5/pgconn"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConsumeLeaveLifecycle turns finalized leave requests into notifications
// for the submitting employee. Redelivered messages are deduplicated by the
// notifications table's unique source-event constraint.
func ConsumeLeaveLifecycle(
	ctx context.Context,
	reader *kafkago.Reader,
	notificationService notification.Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.leave_lifecycle")
	log.Info("leave lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("leave lifecycle consumer stopped")
				return
			}
			log.Error("fetch leave lifecycle message failed", zap.Error(err))
			continue
		}

		var event events.LeaveFinalizedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode leave lifecycle event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		title := fmt.Sprintf("Leave request %s %s", event.RequestID, strings.ToLower(event.Status))
		message := fmt.Sprintf("Your leave request %s for %s day(s) was %s.",
			event.RequestID, event.TotalDays, strings.ToLower(event.Status))

		_, err = notificationService.Create(ctx, event.CompanyID, notification.CreateNotificationRequest{
			RecipientID:   event.EmployeeID,
			Kind:          notification.KindLeaveFinalized,
			Title:         title,
			Message:       message,
			SourceEventID: event.EventType + ":" + event.LeaveID,
		})
		if err != nil {
			if isUniqueNotificationViolation(err) {
				log.Warn("notification already exists for event, skipping",
					zap.String("leave_id", event.LeaveID),
					zap.String("company_id", event.CompanyID),
				)
				_ = reader.CommitMessages(ctx, msg)
				continue
			}

			log.Error("create leave notification failed",
				zap.String("leave_id", event.LeaveID),
				zap.String("company_id", event.CompanyID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit leave lifecycle message failed", zap.Error(err))
			continue
		}

		log.Info("notification created from leave lifecycle event",
			zap.String("leave_id", event.LeaveID),
			zap.String("status", event.Status),
		)
	}
}

func isUniqueNotificationViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "uq_notifications_source_event"
	}

	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "uq_notifications_source_event")
}
