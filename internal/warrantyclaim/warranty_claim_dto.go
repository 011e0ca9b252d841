package warrantyclaim

import "time"

type EvidenceRequest struct {
	Kind        string `json:"kind" binding:"required,max=50"`
	URL         string `json:"url" binding:"required,url"`
	Description string `json:"description" binding:"omitempty,max=500"`
}

type CreateClaimRequest struct {
	WarrantyCardID   string            `json:"warrantyCardId" binding:"required,uuid"`
	ClaimType        string            `json:"claimType" binding:"required,oneof=DEFECT DAMAGE MALFUNCTION OTHER"`
	Priority         string            `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	Severity         string            `json:"severity" binding:"omitempty,oneof=LOW MEDIUM HIGH CRITICAL"`
	IssueDescription string            `json:"issueDescription" binding:"required,min=10,max=5000"`
	Evidence         []EvidenceRequest `json:"evidence" binding:"omitempty,dive"`
}

type UpdateClaimStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=PENDING APPROVED REJECTED IN_PROGRESS COMPLETED CANCELLED"`
}

type UpdateResolutionRequest struct {
	ResolutionType string `json:"resolutionType" binding:"required,oneof=REPAIR REPLACEMENT REFUND CREDIT DENIED"`
	Description    string `json:"description" binding:"omitempty,max=5000"`
	Cost           string `json:"cost" binding:"required"`
	ApproverID     string `json:"approverId" binding:"omitempty,uuid"`
}

type AddCommunicationRequest struct {
	Channel string `json:"channel" binding:"omitempty,oneof=EMAIL PHONE NOTE"`
	Message string `json:"message" binding:"required,min=1,max=5000"`
}

type CommunicationResponse struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"authorId"`
	AuthorRole string    `json:"authorRole"`
	Channel    string    `json:"channel"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"createdAt"`
}

type WarrantyClaimResponse struct {
	ID             string     `json:"id"`
	CompanyID      string     `json:"companyId"`
	WarrantyCardID string     `json:"warrantyCardId"`
	ClaimNumber    string     `json:"claimNumber"`
	ClaimType      string     `json:"claimType"`
	Priority       string     `json:"priority"`
	Severity       string     `json:"severity"`
	IssueDescription string   `json:"issueDescription"`
	Evidence       []Evidence `json:"evidence,omitempty"`
	Status         string     `json:"status"`

	ResolutionType        *string `json:"resolutionType,omitempty"`
	ResolutionDescription *string `json:"resolutionDescription,omitempty"`
	ResolutionCost        string  `json:"resolutionCost"`
	ResolutionApproverID  *string `json:"resolutionApproverId,omitempty"`

	ReportedDate         time.Time  `json:"reportedDate"`
	ActualResolutionDate *time.Time `json:"actualResolutionDate,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Communications []CommunicationResponse `json:"communications,omitempty"`
}
