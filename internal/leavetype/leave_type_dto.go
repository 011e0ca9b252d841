package leavetype

type CreateLeaveTypeRequest struct {
	Name                string  `json:"name" binding:"required"`
	Code                string  `json:"code" binding:"required,uppercase"`
	MaxDaysPerYear      float64 `json:"max_days_per_year" binding:"required,gt=0"`
	CarryForwardAllowed bool    `json:"carry_forward_allowed"`
	IsPaid              *bool   `json:"is_paid"`
}

type UpdateLeaveTypeRequest struct {
	Name                string  `json:"name" binding:"required"`
	MaxDaysPerYear      float64 `json:"max_days_per_year" binding:"required,gt=0"`
	CarryForwardAllowed bool    `json:"carry_forward_allowed"`
	IsPaid              bool    `json:"is_paid"`
	IsActive            bool    `json:"is_active"`
}

type LeaveTypeResponse struct {
	ID                  string `json:"id"`
	CompanyID           string `json:"company_id"`
	Name                string `json:"name"`
	Code                string `json:"code"`
	MaxDaysPerYear      string `json:"max_days_per_year"`
	CarryForwardAllowed bool   `json:"carry_forward_allowed"`
	IsPaid              bool   `json:"is_paid"`
	IsActive            bool   `json:"is_active"`
}
