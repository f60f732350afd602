package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/PratikDhanave/lexie-analytics/internal/auth"
	"github.com/PratikDhanave/lexie-analytics/internal/config"
	"github.com/PratikDhanave/lexie-analytics/internal/handlers"
	"github.com/PratikDhanave/lexie-analytics/internal/ingest"
	"github.com/PratikDhanave/lexie-analytics/internal/store"
	"github.com/PratikDhanave/lexie-analytics/internal/telemetry"
)

// NewRouter wires public endpoints, the ingestion API and the report pages.
// Public: /health, /ready, /internal/metrics, /api/collect
// Key-gated when DASHBOARD_KEYS is set: /, /api/dashboard, /feedback, /api/feedback
func NewRouter(cfg config.Config, st store.Store, svc *ingest.Service, pages *handlers.Pages, log zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(recovery(log), requestLogger(log))

	// Liveness: confirms the process is running.
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Readiness: confirms the store dependency is reachable.
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		if err := st.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/internal/metrics", gin.WrapH(telemetry.Handler()))

	// Ingestion is called cross-origin by the app's web build.
	collect := r.Group("/")
	collect.Use(cors())
	handlers.RegisterCollectRoutes(collect, svc, log)

	pageGroup := r.Group("/")
	pageGroup.Use(auth.APIKeyMiddleware(cfg.DashboardKeys))
	handlers.RegisterPageRoutes(pageGroup, pages)

	return r
}

// cors allows any origin to POST JSON.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		c.Next()
	}
}

// recovery turns a panic into the JSON 500 body clients expect.
func recovery(log zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("handler panicked")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"message": fmt.Sprint(recovered),
		})
	})
}

func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("ip", c.ClientIP()).
			Int("status", c.Writer.Status()).
			Int("bytes", c.Writer.Size()).
			Dur("duration", time.Since(start)).
			Msg("http_request")
	}
}
