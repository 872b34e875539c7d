package model

import "time"

// ActivityLog one fixed-length agent sample, table activity_logs
type ActivityLog struct {
	ID              int64     `gorm:"primaryKey;autoIncrement"      json:"id"`
	SessionID       string    `gorm:"type:uuid;not null;index"      json:"session_id"`
	StartTime       time.Time `gorm:"not null"                      json:"start_time"`
	EndTime         time.Time `gorm:"not null"                      json:"end_time"`
	DurationSeconds int       `gorm:"not null"                      json:"duration_seconds"`
	KeyboardCount   int       `gorm:"not null;default:0"            json:"keyboard_count"`
	KeyPressCount   int       `gorm:"not null;default:0"            json:"key_press_count"`
	MouseClickCount int       `gorm:"not null;default:0"            json:"mouse_click_count"`
	MouseDistance   int       `gorm:"not null;default:0"            json:"mouse_distance"`
	ActionCount     int       `gorm:"not null;default:0"            json:"action_count"`
	IsExcluded      bool      `gorm:"not null;default:false"        json:"is_excluded"`
	ExcludeReason   *string   `gorm:"type:varchar(100)"             json:"exclude_reason,omitempty"`
	CreatedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (ActivityLog) TableName() string { return "activity_logs" }

// WindowUsage foreground program focus time within one sample, table window_usages
type WindowUsage struct {
	ID            int64  `gorm:"primaryKey;autoIncrement"    json:"id"`
	ActivityLogID int64  `gorm:"not null;index"              json:"activity_log_id"`
	ProgramName   string `gorm:"type:varchar(100);not null"  json:"program_name"`
	FocusSeconds  int    `gorm:"not null"                    json:"focus_seconds"`
}

func (WindowUsage) TableName() string { return "window_usages" }
