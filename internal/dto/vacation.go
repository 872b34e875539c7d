package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ── vacation DTO ──

// CreateVacationRequest leave request. UserID lets reviewers file for a
// member of their team; empty means the caller.
type CreateVacationRequest struct {
	UserID    string `json:"user_id"    binding:"omitempty,uuid"`
	Type      string `json:"type"       binding:"required,oneof=annual half sick special other"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date"   binding:"required"`
	Reason    string `json:"reason"     binding:"omitempty,max=1000"`
}

// ReviewVacationRequest reviewer decision
type ReviewVacationRequest struct {
	Action       string `json:"action"        binding:"required,oneof=approve reject"`
	RejectReason string `json:"reject_reason" binding:"omitempty,max=1000"`
}

// VacationListRequest vacation list query
type VacationListRequest struct {
	PaginationRequest
	Scope  string `form:"scope"   binding:"omitempty,oneof=own team"`
	Status string `form:"status"  binding:"omitempty,oneof=pending approved rejected"`
	Type   string `form:"type"    binding:"omitempty,oneof=annual half sick special other"`
	UserID string `form:"user_id" binding:"omitempty,uuid"`
	From   string `form:"from"`
	To     string `form:"to"`
}

// VacationResponse leave request view
type VacationResponse struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	UserName     string          `json:"user_name,omitempty"`
	Department   string          `json:"department,omitempty"`
	Type         string          `json:"type"`
	TypeLabel    string          `json:"type_label"`
	StartDate    string          `json:"start_date"`
	EndDate      string          `json:"end_date"`
	Days         decimal.Decimal `json:"days"`
	Reason       *string         `json:"reason"`
	Status       string          `json:"status"`
	RejectReason *string         `json:"reject_reason"`
	ApprovedBy   *string         `json:"approved_by"`
	ApprovedAt   *time.Time      `json:"approved_at"`
	CreatedAt    time.Time       `json:"created_at"`
}
