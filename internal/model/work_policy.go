package model

// WorkPolicy per-company working rules, table work_policies
type WorkPolicy struct {
	PolicyID            string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"policy_id"`
	CompanyID           string `gorm:"type:uuid;not null;uniqueIndex"                 json:"company_id"`
	WorkStartTime       string `gorm:"type:varchar(5);not null;default:'09:00'"       json:"work_start_time"`
	WorkEndTime         string `gorm:"type:varchar(5);not null;default:'18:00'"       json:"work_end_time"`
	FlexibleWorkEnabled bool   `gorm:"not null;default:false"                         json:"flexible_work_enabled"`
	CoreTimeStart       string `gorm:"type:varchar(5);default:'10:00'"                json:"core_time_start"`
	CoreTimeEnd         string `gorm:"type:varchar(5);default:'16:00'"                json:"core_time_end"`
	MinDailyHours       int    `gorm:"not null;default:8"                             json:"min_daily_hours"`
	MaxDailyHours       int    `gorm:"not null;default:12"                            json:"max_daily_hours"`
	AnnualVacationDays  int    `gorm:"not null;default:15"                            json:"annual_vacation_days"`
	AutoApproveEnabled  bool   `gorm:"not null;default:false"                         json:"auto_approve_enabled"`
	BaseModel
}

func (WorkPolicy) TableName() string { return "work_policies" }

// DefaultWorkPolicy values used when a company has not saved a policy yet
func DefaultWorkPolicy(companyID string) *WorkPolicy {
	return &WorkPolicy{
		CompanyID:          companyID,
		WorkStartTime:      "09:00",
		WorkEndTime:        "18:00",
		CoreTimeStart:      "10:00",
		CoreTimeEnd:        "16:00",
		MinDailyHours:      8,
		MaxDailyHours:      12,
		AnnualVacationDays: 15,
	}
}
