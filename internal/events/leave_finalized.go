package events

import "time"

const LeaveLifecycleTopic = "erp.leave.lifecycle.v1"

const (
	LeaveRequestApproved = "leave_request.approved"
	LeaveRequestRejected = "leave_request.rejected"
)

// LeaveFinalizedEvent is emitted exactly once per request, when the approval
// chain completes or an approver rejects.
type LeaveFinalizedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id"`
	LeaveID    string    `json:"leave_id"`
	CompanyID  string    `json:"company_id"`
	EmployeeID string    `json:"employee_id"`
	Status     string    `json:"status"`
	TotalDays  string    `json:"total_days"`
	OccurredAt time.Time `json:"occurred_at"`
}
