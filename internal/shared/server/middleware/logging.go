package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"demystifier-backend/internal/shared/telemetry"
)

// Context keys handlers may set to enrich the request log.
const (
	StatusTransitionKey = "statusTransition"
	GenerationKey       = "generation"
)

const metricsPath = "/metrics"

// Logging emits one structured line per request. Preflights and metric
// scrapes are not logged.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || c.Request.URL.Path == metricsPath {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := map[string]any{
			"request_id":        RequestIDFromContext(c),
			"method":            c.Request.Method,
			"route":             c.FullPath(),
			"path":              c.Request.URL.Path,
			"status":            status,
			"status_transition": c.GetString(StatusTransitionKey),
			"duration_ms":       float64(time.Since(start).Microseconds()) / 1000.0,
			"session_id":        SessionIDFromContext(c),
			"bytes":             c.Writer.Size(),
			"client_ip":         c.ClientIP(),
		}
		if gen, ok := c.Get(GenerationKey); ok {
			fields["generation"] = gen
		}
		if c.IsWebsocket() {
			fields["websocket"] = true
		}

		switch {
		case status >= http.StatusInternalServerError:
			telemetry.Error("request.complete", fields)
		case status >= http.StatusBadRequest:
			telemetry.Warn("request.complete", fields)
		default:
			telemetry.Info("request.complete", fields)
		}
	}
}
