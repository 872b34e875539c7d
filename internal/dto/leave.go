package dto

import "offio/backend/internal/leave"

// LeaveBalanceRequest balance query; empty user_id means the caller
type LeaveBalanceRequest struct {
	UserID string `form:"user_id" binding:"omitempty,uuid"`
}

// LeaveBalanceResponse computed balance for one user
type LeaveBalanceResponse struct {
	UserID   string  `json:"user_id"`
	UserName string  `json:"user_name"`
	HireDate *string `json:"hire_date"`
	leave.Balance
}
