package warranty

import "time"

type CoverageRequest struct {
	Parts       bool     `json:"parts"`
	Labor       bool     `json:"labor"`
	Shipping    bool     `json:"shipping"`
	Replacement bool     `json:"replacement"`
	Repair      bool     `json:"repair"`
	Exclusions  []string `json:"exclusions" binding:"omitempty,dive,min=1,max=200"`
	LimitAmount string   `json:"limitAmount" binding:"omitempty,numeric"`
}

type CreateWarrantyCardRequest struct {
	CustomerID     string           `json:"customerId" binding:"required,uuid"`
	ProductID      string           `json:"productId" binding:"required,uuid"`
	SerialNumber   string           `json:"serialNumber" binding:"omitempty,max=100"`
	WarrantyType   string           `json:"warrantyType" binding:"omitempty,oneof=MANUFACTURER EXTENDED THIRD_PARTY"`
	PurchaseDate   string           `json:"purchaseDate" binding:"omitempty"`
	StartDate      string           `json:"startDate" binding:"required"`
	DurationMonths int              `json:"durationMonths" binding:"required,gt=0,lte=120"`
	Coverage       *CoverageRequest `json:"coverage"`
	Notes          string           `json:"notes" binding:"omitempty,max=2000"`
}

type UpdateWarrantyStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=ACTIVE EXPIRED VOID CLAIMED UNDER_REVIEW"`
}

type WarrantyCardResponse struct {
	ID             string     `json:"id"`
	CompanyID      string     `json:"companyId"`
	WarrantyNumber string     `json:"warrantyNumber"`
	CustomerID     string     `json:"customerId"`
	ProductID      string     `json:"productId"`
	SerialNumber   string     `json:"serialNumber,omitempty"`
	WarrantyType   string     `json:"warrantyType"`
	PurchaseDate   *string    `json:"purchaseDate,omitempty"`
	StartDate      string     `json:"startDate"`
	DurationMonths int        `json:"durationMonths"`
	EndDate        string     `json:"endDate"`
	Coverage       Coverage   `json:"coverage"`
	Status         string     `json:"status"`
	TotalClaims    int        `json:"totalClaims"`
	LastClaimDate  *time.Time `json:"lastClaimDate,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// WarrantyOption is the lightweight id/number pair served to pickers.
type WarrantyOption struct {
	ID             string `json:"id"`
	WarrantyNumber string `json:"warrantyNumber"`
}
