package handler

import (
	"github.com/gin-gonic/gin"

	"offio/backend/internal/dto"
	"offio/backend/internal/service"
	"offio/backend/pkg/response"
)

// AgentHandler desktop agent endpoints. Every route requires an agent token.
type AgentHandler struct {
	agentSvc service.AgentService
}

// NewAgentHandler creates AgentHandler
func NewAgentHandler(agentSvc service.AgentService) *AgentHandler {
	return &AgentHandler{agentSvc: agentSvc}
}

// StartSession clock-in
// POST /api/v1/desktop/session/start
func (h *AgentHandler) StartSession(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.StartSessionRequest
	// an empty body is a valid clock-in
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindFailed(c, err)
			return
		}
	}

	resp, err := h.agentSvc.StartSession(c.Request.Context(), p, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, resp)
}

// AppendActivity one activity sample
// POST /api/v1/desktop/activity
func (h *AgentHandler) AppendActivity(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.AppendActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	resp, err := h.agentSvc.AppendActivity(c.Request.Context(), p, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, resp)
}

// EndSession clock-out
// POST /api/v1/desktop/session/end
func (h *AgentHandler) EndSession(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.EndSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	resp, err := h.agentSvc.EndSession(c.Request.Context(), p, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, resp)
}

// RequestScreenshotUpload presigned upload URL
// POST /api/v1/desktop/screenshot
func (h *AgentHandler) RequestScreenshotUpload(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.ScreenshotUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	resp, err := h.agentSvc.RequestScreenshotUpload(c.Request.Context(), p, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, resp)
}

// RecordScreenshot metadata after a finished upload
// PUT /api/v1/desktop/screenshot
func (h *AgentHandler) RecordScreenshot(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.RecordScreenshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	resp, err := h.agentSvc.RecordScreenshot(c.Request.Context(), p, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, resp)
}
