package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/humoyun-dev/anonim-chat/internal/infrastructure/realtime"
	"github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/usecase"
	repository "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/persistence/repository/port"
	"github.com/humoyun-dev/anonim-chat/internal/pkg/anon/presentation/controller"
)

// Stores are the read sides the dashboard needs.
type Stores struct {
	Messages  repository.MessageRepository
	Summaries repository.SummaryRepository
	Users     repository.UserRepository
}

// RegisterRoutes registers dashboard endpoints under the given router group.
// It constructs per-endpoint controllers and binds them directly to routes.
func RegisterRoutes(g *gin.RouterGroup, s Stores, router *realtime.Router, token string, logger *slog.Logger) {
	listCtl := controller.NewListConversationsController(usecase.NewListConversationsUseCase(s.Summaries, s.Messages, s.Users, logger))
	roomCtl := controller.NewGetRoomMessagesController(usecase.NewGetRoomMessagesUseCase(s.Messages))
	socketCtl := controller.NewDashboardSocketController(router, logger)

	g.Use(BearerAuth(token))

	// GET /api/v1/conversations -> rooms by latest activity
	g.GET("/conversations", listCtl.Handle())

	// GET /api/v1/conversations/:roomKey/messages -> one room's history, newest first
	g.GET("/conversations/:roomKey/messages", roomCtl.Handle())

	// GET /api/v1/ws -> websocket for live feed events
	g.GET("/ws", socketCtl.Handle())
}
