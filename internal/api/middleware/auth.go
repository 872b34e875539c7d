package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"offio/backend/internal/api/handler"
	"offio/backend/internal/model"
	"offio/backend/pkg/jwt"
	"offio/backend/pkg/response"
)

// JWTAuth verifies "Authorization: Bearer <token>" and injects the caller's
// identity. tokenType separates web console tokens from desktop agent tokens;
// a token of the other type is rejected.
func JWTAuth(jwtMgr *jwt.Manager, tokenType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, handler.CodeUnauthorized, "missing Authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, handler.CodeUnauthorized, "malformed Authorization header")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, handler.CodeUnauthorized, "token is invalid or expired")
			c.Abort()
			return
		}

		if claims.TokenType != tokenType {
			response.Unauthorized(c, handler.CodeUnauthorized, "wrong token type")
			c.Abort()
			return
		}

		c.Set(handler.CtxUserID, claims.UserID)
		c.Set(handler.CtxCompanyID, claims.CompanyID)
		c.Set(handler.CtxRole, claims.Role)
		c.Set(handler.CtxDepartment, claims.Department)
		c.Set(handler.CtxTokenType, claims.TokenType)

		c.Next()
	}
}

// RoleAuth caller must hold one of the given roles
func RoleAuth(allowedRoles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := model.Role(c.GetString(handler.CtxRole))
		if role == "" {
			response.Unauthorized(c, handler.CodeUnauthorized, "authentication required")
			c.Abort()
			return
		}

		for _, r := range allowedRoles {
			if role == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, handler.CodeForbidden, "insufficient role")
		c.Abort()
	}
}
