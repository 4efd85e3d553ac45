package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/admin-records/pkg/errors"
)

// ErrorLogger logs the errors handlers attached with c.Error. The response
// has already been written by then; this only records what went wrong.
func ErrorLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		for _, e := range c.Errors {
			var event *zerolog.Event
			if errors.HTTPStatus(errors.Code(e.Err)) >= 500 {
				event = log.Error()
			} else {
				event = log.Warn()
			}
			event.
				Err(e.Err).
				Str("request_id", c.GetString(ContextRequestID)).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Int("status", c.Writer.Status()).
				Msg("Request error")
		}
	}
}
