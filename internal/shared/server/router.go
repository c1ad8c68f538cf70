package server

import (
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"demystifier-backend/internal/pipeline"
	"demystifier-backend/internal/services/health"
	"demystifier-backend/internal/shared/config"
	"demystifier-backend/internal/shared/metrics"
	"demystifier-backend/internal/shared/server/middleware"
	"demystifier-backend/internal/shared/server/respond"
)

const analyzeGroup = "ANALYZE"

// RouterDeps holds the handlers mounted on the router.
type RouterDeps struct {
	Config   config.Config
	Pipeline *pipeline.Handler
	Health   *health.Service
	Limiter  *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		gzip.Gzip(gzip.DefaultCompression,
			gzip.WithExcludedExtensions([]string{".xlsx"}),
			gzip.WithExcludedPathsRegexs([]string{`/events$`}),
		),
		middleware.RateLimit(middleware.RateLimitConfig{
			GroupFor: analyzeGroupFor,
			Limiter:  deps.Limiter,
			Rules: map[string]middleware.RateLimitRule{
				analyzeGroup: {
					Rate:  deps.Config.AnalyzeRatePerMin / 60,
					Burst: deps.Config.AnalyzeBurst,
				},
			},
		}),
	)

	metrics.Register()
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			respond.JSON(c, http.StatusOK, gin.H{"ok": true})
			return
		}
		respond.OK(c, deps.Health.Status())
	})
	if deps.Pipeline != nil {
		deps.Pipeline.RegisterRoutes(api)
	}

	return r
}

func analyzeGroupFor(c *gin.Context) string {
	if c.Request.Method == http.MethodPost && c.FullPath() == "/api/v1/sessions/:id/analyze" {
		return analyzeGroup
	}
	return ""
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
