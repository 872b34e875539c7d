package handler

import (
	"github.com/gin-gonic/gin"

	"offio/backend/internal/dto"
	"offio/backend/internal/service"
	"offio/backend/pkg/response"
)

// VacationHandler leave requests and balances
type VacationHandler struct {
	vacationSvc service.VacationService
	leaveSvc    service.LeaveService
}

// NewVacationHandler creates VacationHandler
func NewVacationHandler(vacationSvc service.VacationService, leaveSvc service.LeaveService) *VacationHandler {
	return &VacationHandler{vacationSvc: vacationSvc, leaveSvc: leaveSvc}
}

// CreateVacation
// POST /api/v1/vacations
func (h *VacationHandler) CreateVacation(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.CreateVacationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	resp, err := h.vacationSvc.Create(c.Request.Context(), p, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, resp)
}

// ListVacations
// GET /api/v1/vacations
func (h *VacationHandler) ListVacations(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.VacationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, total, err := h.vacationSvc.List(c.Request.Context(), p, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// ReviewVacation
// POST /api/v1/vacations/:id/review
func (h *VacationHandler) ReviewVacation(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.ReviewVacationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	resp, err := h.vacationSvc.Review(c.Request.Context(), p, c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, resp)
}

// DeleteVacation
// DELETE /api/v1/vacations/:id
func (h *VacationHandler) DeleteVacation(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	if err := h.vacationSvc.Delete(c.Request.Context(), p, c.Param("id")); err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, nil)
}

// GetLeaveBalance
// GET /api/v1/leave/balance?user_id=
func (h *VacationHandler) GetLeaveBalance(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.LeaveBalanceRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	resp, err := h.leaveSvc.GetBalance(c.Request.Context(), p, req.UserID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, resp)
}
