package model

import "time"

// WorkSession one worker's tracked day, table work_sessions
// A partial unique index keeps at most one recording session per user.
type WorkSession struct {
	SessionID          string        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"session_id"`
	UserID             string        `gorm:"type:uuid;not null;index"                       json:"user_id"`
	Date               time.Time     `gorm:"type:date;not null"                             json:"date"`
	StartTime          time.Time     `gorm:"not null"                                       json:"start_time"`
	EndTime            *time.Time    `json:"end_time,omitempty"`
	Status             SessionStatus `gorm:"type:varchar(20);not null;default:'recording'" json:"status"`
	TotalWorkSeconds   int           `gorm:"not null;default:0"                             json:"total_work_seconds"`
	TotalActiveSeconds int           `gorm:"not null;default:0"                             json:"total_active_seconds"`
	DeviceOS           *string       `gorm:"column:device_os;type:varchar(50)"              json:"device_os,omitempty"`
	DeviceHostname     *string       `gorm:"type:varchar(100)"                              json:"device_hostname,omitempty"`
	DeviceIP           *string       `gorm:"column:device_ip;type:varchar(45)"              json:"device_ip,omitempty"`
	Memo               *string       `gorm:"type:text"                                      json:"memo,omitempty"`
	AdminComment       *string       `gorm:"type:text"                                      json:"admin_comment,omitempty"`
	RejectReason       *string       `gorm:"type:text"                                      json:"reject_reason,omitempty"`
	SubmittedAt        *time.Time    `json:"submitted_at,omitempty"`
	ApprovedAt         *time.Time    `json:"approved_at,omitempty"`
	ApprovedBy         *string       `gorm:"type:uuid"                                      json:"approved_by,omitempty"`
	VersionedModel

	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

func (WorkSession) TableName() string { return "work_sessions" }

// ExcludedRange user-authored excluded interval, table excluded_ranges
// Samples inside the interval are flagged as well; the row keeps the
// interval visible when no sample covers it.
type ExcludedRange struct {
	RangeID   int64     `gorm:"primaryKey;autoIncrement" json:"range_id"`
	SessionID string    `gorm:"type:uuid;not null;index" json:"session_id"`
	StartTime time.Time `gorm:"not null"                 json:"start_time"`
	EndTime   time.Time `gorm:"not null"                 json:"end_time"`
	Reason    string    `gorm:"type:varchar(100);not null" json:"reason"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (ExcludedRange) TableName() string { return "excluded_ranges" }
