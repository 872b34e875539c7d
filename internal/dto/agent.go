package dto

import "time"

// ── desktop agent DTO ──

// DeviceInfo machine the agent runs on
type DeviceInfo struct {
	OS       string `json:"os"       binding:"omitempty,max=50"`
	Hostname string `json:"hostname" binding:"omitempty,max=100"`
	IP       string `json:"ip"       binding:"omitempty,max=45"`
}

// StartSessionRequest clock-in
type StartSessionRequest struct {
	DeviceInfo *DeviceInfo `json:"device_info"`
}

// StartSessionResponse clock-in result
type StartSessionResponse struct {
	SessionID          string    `json:"session_id"`
	StartTime          time.Time `json:"start_time"`
	ScreenshotInterval int       `json:"screenshot_interval"`
}

// WindowUsageInput focus time for one program inside a sample
type WindowUsageInput struct {
	Name         string `json:"name"          binding:"required,max=100"`
	FocusSeconds int    `json:"focus_seconds"`
}

// AppendActivityRequest one activity sample. Counters are stored as sent;
// aggregation clamps negatives.
type AppendActivityRequest struct {
	SessionID       string             `json:"session_id"        binding:"required,uuid"`
	StartTime       time.Time          `json:"start_time"        binding:"required"`
	EndTime         time.Time          `json:"end_time"          binding:"required"`
	DurationSeconds int                `json:"duration_seconds"`
	KeyboardCount   int                `json:"keyboard_count"`
	KeyPressCount   int                `json:"key_press_count"`
	MouseClickCount int                `json:"mouse_click_count"`
	MouseDistance   int                `json:"mouse_distance"`
	ActionCount     int                `json:"action_count"`
	Windows         []WindowUsageInput `json:"windows"           binding:"omitempty,dive"`
}

// AppendActivityResponse stored sample id
type AppendActivityResponse struct {
	ActivityLogID int64 `json:"activity_log_id"`
}

// EndSessionRequest clock-out
type EndSessionRequest struct {
	SessionID string `json:"session_id" binding:"required,uuid"`
}

// EndSessionResponse clock-out result with the frozen totals
type EndSessionResponse struct {
	SessionID          string    `json:"session_id"`
	Status             string    `json:"status"`
	EndTime            time.Time `json:"end_time"`
	TotalWorkSeconds   int       `json:"total_work_seconds"`
	TotalActiveSeconds int       `json:"total_active_seconds"`
}

// ScreenshotUploadRequest ask for a presigned upload URL
type ScreenshotUploadRequest struct {
	SessionID   string    `json:"session_id"   binding:"required,uuid"`
	CapturedAt  time.Time `json:"captured_at"  binding:"required"`
	ContentType string    `json:"content_type" binding:"omitempty,oneof=image/png image/jpeg image/webp"`
}

// ScreenshotUploadResponse presigned upload target
type ScreenshotUploadResponse struct {
	UploadURL string `json:"upload_url"`
	PublicURL string `json:"public_url,omitempty"`
	Key       string `json:"key"`
}

// RecordScreenshotRequest metadata stored after the upload finished
type RecordScreenshotRequest struct {
	SessionID     string    `json:"session_id"      binding:"required,uuid"`
	CapturedAt    time.Time `json:"captured_at"     binding:"required"`
	FileKey       string    `json:"file_key"        binding:"required,max=500"`
	FileSize      *int64    `json:"file_size"       binding:"omitempty,min=0"`
	ActivityLogID *int64    `json:"activity_log_id"`
}

// RecordScreenshotResponse stored screenshot
type RecordScreenshotResponse struct {
	ScreenshotID int64  `json:"screenshot_id"`
	FileKey      string `json:"file_key"`
}
