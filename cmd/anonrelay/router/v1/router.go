package v1

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/humoyun-dev/anonim-chat/internal/infrastructure/metrics"
	"github.com/humoyun-dev/anonim-chat/internal/infrastructure/realtime"
	"github.com/humoyun-dev/anonim-chat/internal/pkg/anon/presentation/controller"
	httpHandler "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/presentation/http"
)

// RegisterRoutes mounts the health and metrics endpoints at the root and the dashboard API under /api/v1.
func RegisterRoutes(r *gin.Engine, stores httpHandler.Stores, router *realtime.Router, checks map[string]controller.Pinger, token string, logger *slog.Logger) {
	r.GET("/healthz", controller.NewHealthController(checks).Handle())
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := r.Group("/api/v1")
	httpHandler.RegisterRoutes(v1, stores, router, token, logger)
}
