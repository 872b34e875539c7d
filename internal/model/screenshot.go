package model

import "time"

// Screenshot captured image metadata, table screenshots
// Deletion is a tombstone; a separate retention job purges the object.
type Screenshot struct {
	ID            int64      `gorm:"primaryKey;autoIncrement"      json:"id"`
	SessionID     string     `gorm:"type:uuid;not null;index"      json:"session_id"`
	ActivityLogID *int64     `json:"activity_log_id,omitempty"`
	CapturedAt    time.Time  `gorm:"not null"                      json:"captured_at"`
	FileKey       string     `gorm:"type:varchar(500);not null"    json:"file_key"`
	FileSize      *int64     `json:"file_size,omitempty"`
	IsDeleted     bool       `gorm:"not null;default:false"        json:"is_deleted"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
	CreatedAt     time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Screenshot) TableName() string { return "screenshots" }
