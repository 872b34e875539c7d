package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// User company member, table users
type User struct {
	UserID     string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	CompanyID  string     `gorm:"type:uuid;not null;index"                       json:"company_id"`
	Email      string     `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	Name       string     `gorm:"type:varchar(50);not null"                      json:"name"`
	Role       Role       `gorm:"type:varchar(20);not null;default:'worker'"     json:"role"`
	Department *string    `gorm:"type:varchar(100)"                              json:"department,omitempty"`
	HireDate   *time.Time `gorm:"type:date"                                      json:"hire_date,omitempty"`
	// AnnualLeaveOverride manual entitlement set by an admin; nil means computed
	AnnualLeaveOverride *decimal.Decimal `gorm:"column:annual_leave_balance;type:numeric(5,1)" json:"annual_leave_override,omitempty"`
	IsActive            bool             `gorm:"not null;default:true"                         json:"is_active"`
	BaseModel

	Company *Company `gorm:"foreignKey:CompanyID;references:CompanyID" json:"company,omitempty"`
}

func (User) TableName() string { return "users" }

// DepartmentName empty when the user has no department
func (u *User) DepartmentName() string {
	if u.Department == nil {
		return ""
	}
	return *u.Department
}
