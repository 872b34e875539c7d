package handler

import (
	"github.com/gin-gonic/gin"

	"offio/backend/internal/authz"
	"offio/backend/internal/model"
	"offio/backend/pkg/response"
)

// Context keys set by middleware.JWTAuth
const (
	CtxUserID     = "user_id"
	CtxCompanyID  = "company_id"
	CtxRole       = "role"
	CtxDepartment = "department"
	CtxTokenType  = "token_type"
)

// MustGetPrincipal extracts the authenticated caller from the Gin context.
// Writes a 401 and returns false when JWTAuth did not run or injected an
// incomplete identity; callers should return immediately.
func MustGetPrincipal(c *gin.Context) (authz.Principal, bool) {
	userID := c.GetString(CtxUserID)
	companyID := c.GetString(CtxCompanyID)
	role := model.Role(c.GetString(CtxRole))
	if userID == "" || companyID == "" || !role.Valid() {
		response.Unauthorized(c, CodeUnauthorized, "authentication required")
		return authz.Principal{}, false
	}
	return authz.Principal{
		UserID:     userID,
		CompanyID:  companyID,
		Role:       role,
		Department: c.GetString(CtxDepartment),
	}, true
}
