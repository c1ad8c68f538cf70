package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"demystifier-backend/internal/shared/server/respond"
	"demystifier-backend/internal/shared/telemetry"
)

// Recovery turns a handler panic into a generic 500. Hijacked connections
// (websocket streams) and responses already under way are only logged.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			telemetry.Error("panic", map[string]any{
				"request_id": RequestIDFromContext(c),
				"session_id": SessionIDFromContext(c),
				"route":      c.FullPath(),
				"error":      rec,
				"stack":      string(debug.Stack()),
			})
			if c.Writer.Written() || c.IsWebsocket() {
				c.Abort()
				return
			}
			respond.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong. Please try again.", nil)
		}()
		c.Next()
	}
}
