package model

// Company tenant, table companies
type Company struct {
	CompanyID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"company_id"`
	Name      string `gorm:"type:varchar(100);not null"                     json:"name"`
	Plan      Plan   `gorm:"type:varchar(20);not null;default:'lite'"       json:"plan"`
	// ScreenshotInterval seconds between agent captures
	ScreenshotInterval int `gorm:"not null;default:60" json:"screenshot_interval"`
	BaseModel
}

func (Company) TableName() string { return "companies" }
