package warrantyclaim

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	ClaimStatusPending    = "PENDING"
	ClaimStatusApproved   = "APPROVED"
	ClaimStatusRejected   = "REJECTED"
	ClaimStatusInProgress = "IN_PROGRESS"
	ClaimStatusCompleted  = "COMPLETED"
	ClaimStatusCancelled  = "CANCELLED"
)

const (
	ClaimTypeDefect      = "DEFECT"
	ClaimTypeDamage      = "DAMAGE"
	ClaimTypeMalfunction = "MALFUNCTION"
	ClaimTypeOther       = "OTHER"
)

const (
	SeverityLow      = "LOW"
	SeverityMedium   = "MEDIUM"
	SeverityHigh     = "HIGH"
	SeverityCritical = "CRITICAL"
)

const (
	ResolutionRepair      = "REPAIR"
	ResolutionReplacement = "REPLACEMENT"
	ResolutionRefund      = "REFUND"
	ResolutionCredit      = "CREDIT"
	ResolutionDenied      = "DENIED"
)

// Evidence is one attachment reference filed with the claim.
type Evidence struct {
	Kind        string `json:"kind"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

type EvidenceList []Evidence

func (e EvidenceList) Value() (driver.Value, error) {
	if e == nil {
		return json.Marshal([]Evidence{})
	}
	return json.Marshal(e)
}

func (e *EvidenceList) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, e)
	case string:
		return json.Unmarshal([]byte(v), e)
	case nil:
		*e = nil
		return nil
	default:
		return errors.New("unsupported evidence column type")
	}
}

// WarrantyClaim records one claim against a card. actual_resolution_date is
// stamped at most once, on the first move into COMPLETED; the resolution
// fields stay editable afterwards but the stamp never moves.
type WarrantyClaim struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID      uuid.UUID `gorm:"type:uuid;not null;index:idx_warranty_claims_company"`
	WarrantyCardID uuid.UUID `gorm:"type:uuid;not null;index:idx_warranty_claims_card"`
	ClaimNumber    string    `gorm:"type:varchar(20);not null;uniqueIndex:uq_warranty_claims_number"`

	ClaimType        string       `gorm:"type:varchar(20);not null"`
	Priority         string       `gorm:"type:varchar(10);not null;default:'MEDIUM'"`
	Severity         string       `gorm:"type:varchar(10);not null;default:'MEDIUM'"`
	IssueDescription string       `gorm:"type:text;not null"`
	Evidence         EvidenceList `gorm:"type:jsonb"`

	Status string `gorm:"type:varchar(20);not null;default:'PENDING'"`

	ResolutionType        *string         `gorm:"type:varchar(20)"`
	ResolutionDescription *string         `gorm:"type:text"`
	ResolutionCost        decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	ResolutionApproverID  *uuid.UUID      `gorm:"type:uuid"`

	ReportedDate         time.Time `gorm:"not null"`
	ActualResolutionDate *time.Time

	CreatedBy uuid.UUID `gorm:"type:uuid;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index:idx_warranty_claims_deleted_at"`
}

// CommunicationEntry is one line of the append-only contact log on a claim.
type CommunicationEntry struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	WarrantyClaimID uuid.UUID `gorm:"type:uuid;not null;index:idx_claim_communications_claim"`
	AuthorID       uuid.UUID `gorm:"type:uuid;not null"`
	AuthorRole     string    `gorm:"type:varchar(30)"`
	Channel        string    `gorm:"type:varchar(10);not null;default:'NOTE'"`
	Message        string    `gorm:"type:text;not null"`
	CreatedAt      time.Time
}

// isAllowedStatusTransition is the closed move table for claims. The single
// self-loop on COMPLETED accepts repeat completion updates as no-ops so the
// resolution date stamp never moves.
func isAllowedStatusTransition(from, to string) bool {
	allowed, ok := claimTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

var claimTransitions = map[string][]string{
	ClaimStatusPending:    {ClaimStatusApproved, ClaimStatusRejected, ClaimStatusCancelled},
	ClaimStatusApproved:   {ClaimStatusInProgress, ClaimStatusCancelled},
	ClaimStatusRejected:   {},
	ClaimStatusInProgress: {ClaimStatusCompleted, ClaimStatusCancelled},
	ClaimStatusCompleted:  {ClaimStatusCompleted},
	ClaimStatusCancelled:  {},
}
