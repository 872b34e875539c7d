package handler

import (
	"github.com/gin-gonic/gin"

	"offio/backend/internal/dto"
	"offio/backend/internal/service"
	"offio/backend/pkg/response"
)

// PolicyHandler company work policy
type PolicyHandler struct {
	policySvc service.PolicyService
}

// NewPolicyHandler creates PolicyHandler
func NewPolicyHandler(policySvc service.PolicyService) *PolicyHandler {
	return &PolicyHandler{policySvc: policySvc}
}

// GetPolicy
// GET /api/v1/policies
func (h *PolicyHandler) GetPolicy(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	resp, err := h.policySvc.Get(c.Request.Context(), p)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, resp)
}

// UpdatePolicy
// PUT /api/v1/policies
func (h *PolicyHandler) UpdatePolicy(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.UpdatePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	resp, err := h.policySvc.Update(c.Request.Context(), p, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, resp)
}
