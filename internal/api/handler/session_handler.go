package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"offio/backend/internal/dto"
	"offio/backend/internal/service"
	"offio/backend/pkg/response"
)

// SessionHandler work session review and editing
type SessionHandler struct {
	sessionSvc service.SessionService
}

// NewSessionHandler creates SessionHandler
func NewSessionHandler(sessionSvc service.SessionService) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc}
}

// ListSessions
// GET /api/v1/sessions
func (h *SessionHandler) ListSessions(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.SessionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, total, err := h.sessionSvc.List(c.Request.Context(), p, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetSession detail with graph, timeline and screenshots
// GET /api/v1/sessions/:id?interval=5
func (h *SessionHandler) GetSession(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.SessionDetailRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	detail, err := h.sessionSvc.GetDetail(c.Request.Context(), p, c.Param("id"), req.Interval)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, detail)
}

// UpdateMemo
// PUT /api/v1/sessions/:id/memo
func (h *SessionHandler) UpdateMemo(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.UpdateMemoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	resp, err := h.sessionSvc.UpdateMemo(c.Request.Context(), p, c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, resp)
}

// ExcludeRange
// POST /api/v1/sessions/:id/excluded-ranges
func (h *SessionHandler) ExcludeRange(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.ExcludeRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	resp, err := h.sessionSvc.ExcludeRange(c.Request.Context(), p, c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, resp)
}

// IncludeRange
// DELETE /api/v1/sessions/:id/excluded-ranges
func (h *SessionHandler) IncludeRange(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.IncludeRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	resp, err := h.sessionSvc.IncludeRange(c.Request.Context(), p, c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, resp)
}

// DeleteScreenshot soft delete
// DELETE /api/v1/sessions/:id/screenshots/:sid
func (h *SessionHandler) DeleteScreenshot(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	sid, ok := screenshotID(c)
	if !ok {
		return
	}

	if err := h.sessionSvc.DeleteScreenshot(c.Request.Context(), p, c.Param("id"), sid); err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, nil)
}

// RestoreScreenshot
// POST /api/v1/sessions/:id/screenshots/:sid/restore
func (h *SessionHandler) RestoreScreenshot(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	sid, ok := screenshotID(c)
	if !ok {
		return
	}

	if err := h.sessionSvc.RestoreScreenshot(c.Request.Context(), p, c.Param("id"), sid); err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, nil)
}

// SubmitSession
// POST /api/v1/sessions/:id/submit
func (h *SessionHandler) SubmitSession(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	resp, err := h.sessionSvc.Submit(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, resp)
}

// ReviewSession approve or reject
// POST /api/v1/sessions/:id/review
func (h *SessionHandler) ReviewSession(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.ReviewSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	resp, err := h.sessionSvc.Review(c.Request.Context(), p, c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, resp)
}

func screenshotID(c *gin.Context) (int64, bool) {
	sid, err := strconv.ParseInt(c.Param("sid"), 10, 64)
	if err != nil || sid <= 0 {
		response.BadRequest(c, CodeBadRequest, "invalid screenshot id")
		return 0, false
	}
	return sid, true
}
