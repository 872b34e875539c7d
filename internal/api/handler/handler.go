package handler

import "offio/backend/internal/service"

// Handler aggregate of every HTTP handler
type Handler struct {
	Agent      *AgentHandler
	Session    *SessionHandler
	Vacation   *VacationHandler
	Report     *ReportHandler
	Policy     *PolicyHandler
	Department *DepartmentHandler
	User       *UserHandler
}

// NewHandler creates the handler aggregate
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Agent:      NewAgentHandler(svc.Agent),
		Session:    NewSessionHandler(svc.Session),
		Vacation:   NewVacationHandler(svc.Vacation, svc.Leave),
		Report:     NewReportHandler(svc.Report),
		Policy:     NewPolicyHandler(svc.Policy),
		Department: NewDepartmentHandler(svc.Department),
		User:       NewUserHandler(svc.User),
	}
}
