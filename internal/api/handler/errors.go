package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	pkgerrors "offio/backend/pkg/errors"
	"offio/backend/pkg/response"
)

// Business response codes. 100xx are transport level, 200xx domain level.
const (
	CodeBadRequest          = 10001
	CodeUnauthorized        = 10002
	CodeForbidden           = 10003
	CodeRateLimited         = 10004
	CodeBodyTooLarge        = 10005
	CodeNotFound            = 20001
	CodeInvalidState        = 20002
	CodeInsufficientBalance = 20003
	CodeAlreadyRecording    = 20004
)

// handleError maps a service error to the response envelope by its kind
func handleError(c *gin.Context, err error) {
	var ib *pkgerrors.InsufficientBalanceError
	if errors.As(err, &ib) {
		c.JSON(http.StatusUnprocessableEntity, response.Response{
			Code:    CodeInsufficientBalance,
			Message: ib.Error(),
			Data:    gin.H{"requested": ib.Requested, "remaining": ib.Remaining},
		})
		return
	}

	switch pkgerrors.KindOf(err) {
	case pkgerrors.KindUnauthorized:
		response.Unauthorized(c, CodeUnauthorized, err.Error())
	case pkgerrors.KindForbidden:
		response.Forbidden(c, CodeForbidden, err.Error())
	case pkgerrors.KindNotFound:
		response.NotFound(c, CodeNotFound, err.Error())
	case pkgerrors.KindInvalidState:
		response.Conflict(c, CodeInvalidState, err.Error())
	case pkgerrors.KindValidation:
		response.BadRequest(c, CodeBadRequest, err.Error())
	case pkgerrors.KindAlreadyRecording:
		response.Conflict(c, CodeAlreadyRecording, err.Error())
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}

// bindFailed 400 for malformed requests
func bindFailed(c *gin.Context, err error) {
	response.ErrorWithDetails(c, http.StatusBadRequest, CodeBadRequest, "invalid request parameters", err.Error())
}
