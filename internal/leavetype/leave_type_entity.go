package leavetype

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type LeaveType struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_types_company_code,unique"`

	Name string `gorm:"type:varchar(100);not null"`
	Code string `gorm:"type:varchar(30);not null;index:idx_leave_types_company_code,unique"`

	// Seeds the yearly allocation of lazily created balance records.
	MaxDaysPerYear      decimal.Decimal `gorm:"type:numeric(5,1);not null"`
	CarryForwardAllowed bool            `gorm:"not null;default:false"`
	IsPaid              bool            `gorm:"not null;default:true"`
	IsActive            bool            `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index:idx_leave_types_deleted_at"`
}
