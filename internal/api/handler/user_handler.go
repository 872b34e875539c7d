package handler

import (
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"offio/backend/internal/dto"
	"offio/backend/internal/service"
	"offio/backend/pkg/response"
)

// maxImportFileSize upper bound for member import uploads
const maxImportFileSize = 5 << 20

// UserHandler member management
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler creates UserHandler
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// ListUsers
// GET /api/v1/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	users, total, err := h.userSvc.List(c.Request.Context(), p, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OKPage(c, users, total, req.GetPage(), req.GetPageSize())
}

// UpdateUser
// PATCH /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	user, err := h.userSvc.Update(c.Request.Context(), p, c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, user)
}

// ImportUsers bulk member import from an xlsx upload (form field "file")
// POST /api/v1/users/import
func (h *UserHandler) ImportUsers(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, CodeBadRequest, "file is required")
		return
	}
	if fh.Size > maxImportFileSize {
		response.BadRequest(c, CodeBadRequest, "file must be at most 5MB")
		return
	}
	if strings.ToLower(filepath.Ext(fh.Filename)) != ".xlsx" {
		response.BadRequest(c, CodeBadRequest, "only .xlsx files are accepted")
		return
	}

	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, CodeBadRequest, "file could not be read")
		return
	}
	defer f.Close()

	rows, err := h.userSvc.ParseImportFile(f)
	if err != nil {
		handleError(c, err)
		return
	}

	result, err := h.userSvc.ImportUsers(c.Request.Context(), p, rows)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, result)
}
