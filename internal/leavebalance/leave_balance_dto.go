package leavebalance

type LeaveBalanceResponse struct {
	ID                 string `json:"id"`
	CompanyID          string `json:"company_id"`
	EmployeeID         string `json:"employee_id"`
	LeaveTypeID        string `json:"leave_type_id"`
	Year               int    `json:"year"`
	AllocatedDays      string `json:"allocated_days"`
	UsedDays           string `json:"used_days"`
	PendingDays        string `json:"pending_days"`
	CarriedForwardDays string `json:"carried_forward_days"`
	AvailableDays      string `json:"available_days"`
}
