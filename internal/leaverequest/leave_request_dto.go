package leaverequest

import "time"

type CreateLeaveRequestRequest struct {
	EmployeeID  string `json:"employeeId" binding:"required,uuid"`
	LeaveTypeID string `json:"leaveTypeId" binding:"required,uuid"`
	StartDate   string `json:"startDate" binding:"required"`
	EndDate     string `json:"endDate" binding:"required"`
	IsHalfDay   bool   `json:"isHalfDay"`
	Reason      string `json:"reason" binding:"required,min=3,max=2000"`
	Priority    string `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
}

type ApproverActionRequest struct {
	Action   string  `json:"action" binding:"required,oneof=APPROVED REJECTED"`
	Comments *string `json:"comments" binding:"omitempty,max=2000"`
}

type AddCommentRequest struct {
	Message    string `json:"message" binding:"required,min=1,max=2000"`
	IsInternal bool   `json:"isInternal"`
}

type ApprovalStepResponse struct {
	Level      int        `json:"level"`
	ApproverID string     `json:"approverId"`
	Status     string     `json:"status"`
	Comments   *string    `json:"comments,omitempty"`
	ActionDate *time.Time `json:"actionDate,omitempty"`
}

type RequestCommentResponse struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"authorId"`
	AuthorRole string    `json:"authorRole"`
	Message    string    `json:"message"`
	IsInternal bool      `json:"isInternal"`
	CreatedAt  time.Time `json:"createdAt"`
}

type LeaveRequestResponse struct {
	ID            string     `json:"id"`
	CompanyID     string     `json:"companyId"`
	EmployeeID    string     `json:"employeeId"`
	RequestNumber string     `json:"requestNumber"`
	LeaveTypeID   string     `json:"leaveTypeId"`
	StartDate     string     `json:"startDate"`
	EndDate       string     `json:"endDate"`
	TotalDays     string     `json:"totalDays"`
	IsHalfDay     bool       `json:"isHalfDay"`
	Reason        string     `json:"reason"`
	Priority      string     `json:"priority"`
	Status        string     `json:"status"`
	CurrentLevel  int        `json:"currentLevel"`
	IsCompleted   bool       `json:"isCompleted"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`

	Steps    []ApprovalStepResponse   `json:"approvalChain"`
	Comments []RequestCommentResponse `json:"comments,omitempty"`
}
