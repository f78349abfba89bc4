package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/openmeet/openmeet/internal/apperr"
)

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get("request_id")

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.JSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

func RespondConflict(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusConflict, code, message, nil)
}

func RespondForbidden(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusForbidden, "forbidden", message, nil)
}

// RespondDomainError maps a business error onto the HTTP taxonomy. Anything
// that is not a tagged business error is a 500 with a generic message.
func RespondDomainError(ctx *gin.Context, err error) {
	kind, ok := apperr.KindOf(err)

	if !ok {
		RespondInternal(ctx, "Something went wrong")
		return
	}

	switch kind {
	case apperr.KindNotFound:
		RespondNotFound(ctx, err.Error())
	case apperr.KindForbidden:
		RespondForbidden(ctx, err.Error())
	case apperr.KindConflict:
		RespondConflict(ctx, "conflict", err.Error())
	case apperr.KindDuplicate:
		RespondConflict(ctx, "duplicate", err.Error())
	case apperr.KindInvalid:
		RespondBadRequest(ctx, err.Error(), nil)
	default:
		RespondInternal(ctx, "Something went wrong")
	}
}
