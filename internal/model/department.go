package model

// Department organisation unit, table departments
// Users reference departments by name, so renaming is blocked while members exist.
type Department struct {
	DepartmentID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"department_id"`
	CompanyID    string  `gorm:"type:uuid;not null;index"                       json:"company_id"`
	Name         string  `gorm:"type:varchar(100);not null"                     json:"name"`
	ParentID     *string `gorm:"type:uuid"                                      json:"parent_id,omitempty"`
	ManagerID    *string `gorm:"type:uuid"                                      json:"manager_id,omitempty"`
	SortOrder    int     `gorm:"column:sort_order;not null;default:0"           json:"sort_order"`
	BaseModel
}

func (Department) TableName() string { return "departments" }
