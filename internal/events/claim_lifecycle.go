package events

import "time"

const WarrantyClaimTopic = "erp.warranty.claim.v1"

const (
	WarrantyClaimFiled    = "warranty_claim.filed"
	WarrantyClaimResolved = "warranty_claim.resolved"
)

type WarrantyClaimEvent struct {
	EventType      string    `json:"event_type"`
	ClaimID        string    `json:"claim_id"`
	ClaimNumber    string    `json:"claim_number"`
	WarrantyCardID string    `json:"warranty_card_id"`
	CompanyID      string    `json:"company_id"`
	CustomerID     string    `json:"customer_id"`
	Status         string    `json:"status"`
	ResolutionType string    `json:"resolution_type,omitempty"`
	ResolutionCost string    `json:"resolution_cost,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
