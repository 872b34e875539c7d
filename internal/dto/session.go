package dto

import (
	"time"

	"offio/backend/internal/activity"
)

// ── work session DTO ──

// SessionListRequest session list query
type SessionListRequest struct {
	PaginationRequest
	Scope  string `form:"scope"  binding:"omitempty,oneof=own team"`
	Status string `form:"status" binding:"omitempty,oneof=recording editing submitted approved rejected"`
	UserID string `form:"user_id" binding:"omitempty,uuid"`
	From   string `form:"from"`
	To     string `form:"to"`
}

// SessionDetailRequest detail query
type SessionDetailRequest struct {
	Interval int `form:"interval" binding:"omitempty,oneof=1 5 10 30 60"`
}

// UpdateMemoRequest owner memo edit
type UpdateMemoRequest struct {
	Memo string `json:"memo" binding:"max=2000"`
}

// ExcludeRangeRequest mark [start_time, end_time) as excluded
type ExcludeRangeRequest struct {
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time"   binding:"required"`
	Reason    string    `json:"reason"     binding:"omitempty,max=100"`
}

// IncludeRangeRequest clear exclusion on [start_time, end_time)
type IncludeRangeRequest struct {
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time"   binding:"required"`
}

// ExcludeRangeResponse number of samples touched
type ExcludeRangeResponse struct {
	AffectedSamples int64 `json:"affected_samples"`
}

// ReviewSessionRequest reviewer decision
type ReviewSessionRequest struct {
	Action       string `json:"action"        binding:"required,oneof=approve reject"`
	Comment      string `json:"comment"       binding:"omitempty,max=2000"`
	RejectReason string `json:"reject_reason" binding:"omitempty,max=2000"`
}

// SessionUser owner summary embedded in session responses
type SessionUser struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department,omitempty"`
}

// SessionResponse session summary
type SessionResponse struct {
	ID                 string       `json:"id"`
	Date               string       `json:"date"`
	StartTime          time.Time    `json:"start_time"`
	EndTime            *time.Time   `json:"end_time"`
	Status             string       `json:"status"`
	TotalWorkSeconds   int          `json:"total_work_seconds"`
	TotalActiveSeconds int          `json:"total_active_seconds"`
	DeviceOS           *string      `json:"device_os,omitempty"`
	DeviceHostname     *string      `json:"device_hostname,omitempty"`
	Memo               *string      `json:"memo"`
	AdminComment       *string      `json:"admin_comment"`
	RejectReason       *string      `json:"reject_reason"`
	SubmittedAt        *time.Time   `json:"submitted_at"`
	ApprovedAt         *time.Time   `json:"approved_at"`
	ApprovedBy         *string      `json:"approved_by"`
	Version            int          `json:"version"`
	User               *SessionUser `json:"user,omitempty"`
}

// ProgramUsageItem ranked program with its share of the total
type ProgramUsageItem struct {
	activity.ProgramUsage
	Share int `json:"share"`
}

// ScreenshotItem screenshot entry in the session detail
type ScreenshotItem struct {
	ID         int64     `json:"id"`
	Time       string    `json:"time"`
	CapturedAt time.Time `json:"captured_at"`
	URL        string    `json:"url"`
	IsDeleted  bool      `json:"is_deleted"`
}

// SessionDetailResponse everything the session review page renders
type SessionDetailResponse struct {
	Session        SessionResponse          `json:"session"`
	Interval       int                      `json:"interval"`
	ActivityData   []activity.Point         `json:"activity_data"`
	Timeline       []activity.HourBucket    `json:"timeline"`
	ProgramUsage   []ProgramUsageItem       `json:"program_usage"`
	Screenshots    []ScreenshotItem         `json:"screenshots"`
	ExcludedRanges []activity.ExcludedRange `json:"excluded_ranges"`
	Stats          activity.Summary         `json:"stats"`
}
