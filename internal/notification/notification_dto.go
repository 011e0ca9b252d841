package notification

type CreateNotificationRequest struct {
	RecipientID   string `json:"recipient_id" binding:"required,uuid"`
	Kind          string `json:"kind" binding:"required,oneof=LEAVE_FINALIZED CLAIM_RESOLVED"`
	Title         string `json:"title" binding:"required"`
	Message       string `json:"message"`
	SourceEventID string `json:"source_event_id" binding:"required"`
}

type NotificationResponse struct {
	ID          string  `json:"id"`
	CompanyID   string  `json:"company_id"`
	RecipientID string  `json:"recipient_id"`
	Kind        string  `json:"kind"`
	Title       string  `json:"title"`
	Message     string  `json:"message"`
	ReadAt      *string `json:"read_at,omitempty"`
	CreatedAt   string  `json:"created_at"`
}
