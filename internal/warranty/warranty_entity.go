package warranty

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
	CardStatusActive      = "ACTIVE"
	CardStatusExpired     = "EXPIRED"
	CardStatusVoid        = "VOID"
	CardStatusClaimed     = "CLAIMED"
	CardStatusUnderReview = "UNDER_REVIEW"
)

const (
	WarrantyTypeManufacturer = "MANUFACTURER"
	WarrantyTypeExtended     = "EXTENDED"
	WarrantyTypeThirdParty   = "THIRD_PARTY"
)

// Coverage is stored as a JSONB document on the card.
type Coverage struct {
	Parts       bool            `json:"parts"`
	Labor       bool            `json:"labor"`
	Shipping    bool            `json:"shipping"`
	Replacement bool            `json:"replacement"`
	Repair      bool            `json:"repair"`
	Exclusions  []string        `json:"exclusions,omitempty"`
	LimitAmount decimal.Decimal `json:"limitAmount"`
}

func (c Coverage) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *Coverage) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	case nil:
		*c = Coverage{}
		return nil
	default:
		return errors.New("unsupported coverage column type")
	}
}

// WarrantyCard tracks one product warranty. end_date is derived once at
// creation: start_date plus duration_months calendar months. total_claims
// and last_claim_date only move through guarded atomic updates issued by
// the claim workflow.
type WarrantyCard struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID      uuid.UUID `gorm:"type:uuid;not null;index:idx_warranty_cards_company_status"`
	WarrantyNumber string    `gorm:"type:varchar(20);not null;uniqueIndex:uq_warranty_cards_number"`

	CustomerID   uuid.UUID `gorm:"type:uuid;not null;index:idx_warranty_cards_customer"`
	ProductID    uuid.UUID `gorm:"type:uuid;not null"`
	SerialNumber string    `gorm:"type:varchar(100)"`
	WarrantyType string    `gorm:"type:varchar(20);not null;default:'MANUFACTURER'"`

	PurchaseDate   *time.Time `gorm:"type:date"`
	StartDate      time.Time  `gorm:"type:date;not null"`
	DurationMonths int        `gorm:"not null"`
	EndDate        time.Time  `gorm:"type:date;not null;index:idx_warranty_cards_end_date"`

	Coverage Coverage `gorm:"type:jsonb"`
	Status   string   `gorm:"type:varchar(20);not null;default:'ACTIVE';index:idx_warranty_cards_company_status"`

	TotalClaims   int `gorm:"not null;default:0"`
	LastClaimDate *time.Time

	Notes     string    `gorm:"type:text"`
	CreatedBy uuid.UUID `gorm:"type:uuid;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index:idx_warranty_cards_deleted_at"`
}

func (WarrantyCard) TableName() string {
	return "warranty_cards"
}

// isAllowedStatusTransition is the closed move table for administrative
// status changes. EXPIRED and VOID are terminal.
func isAllowedStatusTransition(from, to string) bool {
	allowed, ok := cardTransitions[from]
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

var cardTransitions = map[string][]string{
	CardStatusActive:      {CardStatusExpired, CardStatusVoid, CardStatusClaimed, CardStatusUnderReview},
	CardStatusClaimed:     {CardStatusActive, CardStatusExpired, CardStatusVoid},
	CardStatusUnderReview: {CardStatusActive, CardStatusVoid},
	CardStatusExpired:     {},
	CardStatusVoid:        {},
}
