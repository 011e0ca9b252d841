package notification

import (
	"time"

	"github.com/google/uuid"
)

// Kinds mirror the lifecycle events that produce notifications.
const (
	KindLeaveFinalized = "LEAVE_FINALIZED"
	KindClaimResolved  = "CLAIM_RESOLVED"
)

type Notification struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID   uuid.UUID `gorm:"type:uuid;not null;index:idx_notifications_company_recipient"`
	RecipientID uuid.UUID `gorm:"type:uuid;not null;index:idx_notifications_company_recipient"`

	Kind    string `gorm:"type:varchar(30);not null"`
	Title   string `gorm:"type:varchar(200);not null"`
	Message string `gorm:"type:text"`

	// One notification per source event; redelivered Kafka messages hit the
	// unique constraint and are skipped.
	SourceEventID string `gorm:"type:varchar(100);not null;uniqueIndex:uq_notifications_source_event"`

	ReadAt    *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
