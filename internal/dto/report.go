package dto

// ── report DTO ──

const (
	ReportWorkSessions  = "work-sessions"
	ReportVacations     = "vacations"
	ReportEmployees     = "employees"
	ReportLeaveBalances = "leave-balances"
)

// ReportExportRequest xlsx export query
type ReportExportRequest struct {
	Type       string `form:"type"       binding:"required,oneof=work-sessions vacations employees leave-balances"`
	From       string `form:"from"`
	To         string `form:"to"`
	Department string `form:"department" binding:"omitempty,max=100"`
}

// VacationCalendarRequest ics feed query
type VacationCalendarRequest struct {
	From       string `form:"from"`
	To         string `form:"to"`
	Department string `form:"department" binding:"omitempty,max=100"`
}
