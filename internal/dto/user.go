package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ── user DTO ──

// UserListRequest member list query
type UserListRequest struct {
	PaginationRequest
	Department string `form:"department"  binding:"omitempty,max=100"`
	Role       string `form:"role"        binding:"omitempty,oneof=admin manager worker"`
	ActiveOnly bool   `form:"active_only"`
}

// UpdateUserRequest admin/manager member edit. HireDate "" clears it;
// ClearOverride drops the manual leave entitlement.
type UpdateUserRequest struct {
	Department          *string          `json:"department"            binding:"omitempty,max=100"`
	Role                *string          `json:"role"                  binding:"omitempty,oneof=admin manager worker"`
	IsActive            *bool            `json:"is_active"`
	HireDate            *string          `json:"hire_date"`
	AnnualLeaveOverride *decimal.Decimal `json:"annual_leave_override"`
	ClearOverride       bool             `json:"clear_override"`
}

// UserResponse member view
type UserResponse struct {
	ID                  string           `json:"id"`
	Email               string           `json:"email"`
	Name                string           `json:"name"`
	Role                string           `json:"role"`
	Department          *string          `json:"department"`
	HireDate            *string          `json:"hire_date"`
	AnnualLeaveOverride *decimal.Decimal `json:"annual_leave_override"`
	IsActive            bool             `json:"is_active"`
	CreatedAt           time.Time        `json:"created_at"`
}

// ImportUserError rejected spreadsheet row
type ImportUserError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportUserResponse bulk import outcome
type ImportUserResponse struct {
	Total   int               `json:"total"`
	Created int               `json:"created"`
	Failed  int               `json:"failed"`
	Errors  []ImportUserError `json:"errors"`
}
