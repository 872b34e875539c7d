package dto

// UpdatePolicyRequest partial work policy update; times are HH:MM
type UpdatePolicyRequest struct {
	WorkStartTime       *string `json:"work_start_time"`
	WorkEndTime         *string `json:"work_end_time"`
	FlexibleWorkEnabled *bool   `json:"flexible_work_enabled"`
	CoreTimeStart       *string `json:"core_time_start"`
	CoreTimeEnd         *string `json:"core_time_end"`
	MinDailyHours       *int    `json:"min_daily_hours"      binding:"omitempty,min=0,max=24"`
	MaxDailyHours       *int    `json:"max_daily_hours"      binding:"omitempty,min=0,max=24"`
	AnnualVacationDays  *int    `json:"annual_vacation_days" binding:"omitempty,min=1,max=25"`
	AutoApproveEnabled  *bool   `json:"auto_approve_enabled"`
}

// PolicyResponse effective policy; Saved is false while defaults apply
type PolicyResponse struct {
	WorkStartTime       string `json:"work_start_time"`
	WorkEndTime         string `json:"work_end_time"`
	FlexibleWorkEnabled bool   `json:"flexible_work_enabled"`
	CoreTimeStart       string `json:"core_time_start"`
	CoreTimeEnd         string `json:"core_time_end"`
	MinDailyHours       int    `json:"min_daily_hours"`
	MaxDailyHours       int    `json:"max_daily_hours"`
	AnnualVacationDays  int    `json:"annual_vacation_days"`
	AutoApproveEnabled  bool   `json:"auto_approve_enabled"`
	Saved               bool   `json:"saved"`
}
