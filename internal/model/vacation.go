package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Vacation leave request, table vacations
type Vacation struct {
	VacationID   string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"vacation_id"`
	UserID       string          `gorm:"type:uuid;not null;index"                       json:"user_id"`
	Type         VacationType    `gorm:"type:varchar(20);not null"                      json:"type"`
	StartDate    time.Time       `gorm:"type:date;not null"                             json:"start_date"`
	EndDate      time.Time       `gorm:"type:date;not null"                             json:"end_date"`
	Days         decimal.Decimal `gorm:"type:numeric(5,1);not null"                     json:"days"`
	Reason       *string         `gorm:"type:text"                                      json:"reason,omitempty"`
	Status       VacationStatus  `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	RejectReason *string         `gorm:"column:rejected_reason;type:text"               json:"reject_reason,omitempty"`
	ApprovedBy   *string         `gorm:"type:uuid"                                      json:"approved_by,omitempty"`
	ApprovedAt   *time.Time      `json:"approved_at,omitempty"`
	BaseModel

	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

func (Vacation) TableName() string { return "vacations" }
