package middleware

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/admin-records/pkg/httputil"
)

// RequireJSON rejects request bodies that are not declared as JSON with 415.
// Requests without a body pass through.
func RequireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength == 0 || c.Request.Method == http.MethodGet || c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		mediaType, _, err := mime.ParseMediaType(c.GetHeader("Content-Type"))
		if err != nil || mediaType != gin.MIMEJSON {
			c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, httputil.Response{
				Success: false,
				Error: &httputil.Error{
					Code:    http.StatusUnsupportedMediaType,
					Message: "Content-Type must be application/json",
				},
			})
			return
		}
		c.Next()
	}
}
