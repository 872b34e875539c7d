package dto

import "time"

// ── department DTO ──

// CreateDepartmentRequest create department
type CreateDepartmentRequest struct {
	Name      string  `json:"name"       binding:"required,min=1,max=100"`
	ParentID  *string `json:"parent_id"  binding:"omitempty,uuid"`
	ManagerID *string `json:"manager_id" binding:"omitempty,uuid"`
	SortOrder int     `json:"sort_order"`
}

// UpdateDepartmentRequest partial update
type UpdateDepartmentRequest struct {
	Name      *string `json:"name"       binding:"omitempty,min=1,max=100"`
	ParentID  *string `json:"parent_id"  binding:"omitempty,uuid"`
	ManagerID *string `json:"manager_id" binding:"omitempty,uuid"`
	SortOrder *int    `json:"sort_order"`
}

// DepartmentResponse department view
type DepartmentResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ParentID    *string   `json:"parent_id"`
	ManagerID   *string   `json:"manager_id"`
	SortOrder   int       `json:"sort_order"`
	MemberCount int64     `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
