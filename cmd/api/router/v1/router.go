package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpHandler "go-chatline/internal/pkg/chat/presentation/http"
)

// RegisterRoutes mounts the REST API under /api, the websocket endpoint under
// /ws and the operational endpoints at the root.
func RegisterRoutes(r *gin.Engine, d httpHandler.Deps) {
	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()
		if err := d.Cache.Ping(ctx); err != nil {
			d.Log.Warn().Err(err).Msg("health check: cache unreachable")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "DEGRADED"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	httpHandler.RegisterRoutes(r.Group("/api"), r.Group("/ws"), d)
}
