package leavebalance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LeaveBalance is the per-employee, per-leave-type, per-year ledger row.
// Available days are derived, never stored:
//
//	available = allocated + carried_forward - used - pending
//
// All mutations run as guarded atomic UPDATEs so available can never go
// negative, regardless of concurrent submissions.
type LeaveBalance struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_leave_balances_key"`
	EmployeeID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_leave_balances_key"`
	LeaveTypeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_leave_balances_key"`
	Year        int       `gorm:"not null;uniqueIndex:uq_leave_balances_key"`

	AllocatedDays      decimal.Decimal `gorm:"type:numeric(5,1);not null"`
	UsedDays           decimal.Decimal `gorm:"type:numeric(5,1);not null;default:0"`
	PendingDays        decimal.Decimal `gorm:"type:numeric(5,1);not null;default:0"`
	CarriedForwardDays decimal.Decimal `gorm:"type:numeric(5,1);not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (b LeaveBalance) AvailableDays() decimal.Decimal {
	return b.AllocatedDays.
		Add(b.CarriedForwardDays).
		Sub(b.UsedDays).
		Sub(b.PendingDays)
}
