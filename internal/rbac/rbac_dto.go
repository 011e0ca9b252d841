package rbac

type AssignRoleRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
	RoleName   string `json:"role_name" binding:"required"`
}
