package leaverequest

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusCancelled = "CANCELLED"
)

const (
	StepPending  = "PENDING"
	StepApproved = "APPROVED"
	StepRejected = "REJECTED"
)

const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)

// LeaveRequest carries an embedded approval workflow: an ordered list of
// steps plus a current-level pointer. The top-level status is always derived
// from the chain and only moves through guarded conditional updates, so two
// concurrent approver actions cannot both win.
type LeaveRequest struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID     uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_requests_company_status"`
	EmployeeID    uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_requests_employee"`
	RequestNumber string    `gorm:"type:varchar(20);not null;uniqueIndex:uq_leave_requests_number"`

	LeaveTypeID uuid.UUID       `gorm:"type:uuid;not null"`
	StartDate   time.Time       `gorm:"type:date;not null"`
	EndDate     time.Time       `gorm:"type:date;not null"`
	TotalDays   decimal.Decimal `gorm:"type:numeric(5,1);not null"`
	IsHalfDay   bool            `gorm:"not null;default:false"`
	Reason      string          `gorm:"type:text"`
	Priority    string          `gorm:"type:varchar(10);not null;default:'MEDIUM'"`

	Status       string `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_leave_requests_company_status"`
	CurrentLevel int    `gorm:"not null;default:1"`
	IsCompleted  bool   `gorm:"not null;default:false"`
	CompletedAt  *time.Time

	CreatedBy uuid.UUID `gorm:"type:uuid;not null"`

	Steps    []ApprovalStep   `gorm:"foreignKey:LeaveRequestID"`
	Comments []RequestComment `gorm:"foreignKey:LeaveRequestID"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index:idx_leave_requests_deleted_at"`
}

// ApprovalStep is one entry in the ordered approver chain. Levels are
// 1-based and contiguous.
type ApprovalStep struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	LeaveRequestID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_approval_steps_level"`
	Level          int       `gorm:"not null;uniqueIndex:uq_approval_steps_level"`
	ApproverID     uuid.UUID `gorm:"type:uuid;not null"`

	Status     string `gorm:"type:varchar(20);not null;default:'PENDING'"`
	Comments   *string
	ActionDate *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RequestComment is the append-only audit trail; one entry is written for
// every approver action and every owner-side transition.
type RequestComment struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	LeaveRequestID uuid.UUID `gorm:"type:uuid;not null;index:idx_request_comments_request"`
	AuthorID       uuid.UUID `gorm:"type:uuid;not null"`
	AuthorRole     string    `gorm:"type:varchar(30)"`
	Message        string    `gorm:"type:text;not null"`
	IsInternal     bool      `gorm:"not null;default:false"`
	CreatedAt      time.Time
}

// CurrentStep returns the step the current-level pointer addresses, or nil
// when the chain is exhausted.
func (lr *LeaveRequest) CurrentStep() *ApprovalStep {
	for i := range lr.Steps {
		if lr.Steps[i].Level == lr.CurrentLevel {
			return &lr.Steps[i]
		}
	}
	return nil
}

// HasNextLevel reports whether another approver waits after the current one.
func (lr *LeaveRequest) HasNextLevel() bool {
	for i := range lr.Steps {
		if lr.Steps[i].Level == lr.CurrentLevel+1 {
			return true
		}
	}
	return false
}
