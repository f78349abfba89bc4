package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RequireJSON rejects POST/PATCH bodies that do not declare a JSON
// content type. Bodyless requests pass: the request-cancel PATCH carries
// no payload. DELETE and GET have no body on this API, and there are no
// PUT routes.
func RequireJSON() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		switch ctx.Request.Method {
		case http.MethodPost, http.MethodPatch:
			if ctx.Request.ContentLength == 0 {
				break
			}

			ct := ctx.GetHeader("Content-Type")

			// "application/json; charset=utf-8" is accepted too.
			if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
				ctx.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
					"error": gin.H{
						"code":    "unsupported_media_type",
						"message": "Content-Type must be application/json",
					},
				})
				return
			}
		}

		ctx.Next()
	}
}
