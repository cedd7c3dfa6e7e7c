package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	anon "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/domain"
	"github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/feed"
	"github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/usecase"
)

// GetRoomMessagesController pages one room's history for the dashboard.
type GetRoomMessagesController struct {
	uc      *usecase.GetRoomMessagesUseCase
	timeout time.Duration
}

func NewGetRoomMessagesController(uc *usecase.GetRoomMessagesUseCase) *GetRoomMessagesController {
	return &GetRoomMessagesController{uc: uc, timeout: 5 * time.Second}
}

// Handle answers GET /conversations/:roomKey/messages?limit=&before=.
// before is a message id; pages are newest first.
func (h *GetRoomMessagesController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		roomKey := c.Param("roomKey")
		limit, ok := queryInt(c, "limit")
		if !ok {
			return
		}
		before, ok := queryInt(c, "before")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
		defer cancel()

		msgs, err := h.uc.Execute(ctx, usecase.GetRoomMessagesInput{RoomKey: roomKey, Before: before, Limit: int(limit)})
		if errors.Is(err, anon.ErrInvalidRoomKey) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "roomKey must look like <min>_<max>"})
			return
		}
		if err != nil {
			writeError(c, err)
			return
		}

		views := make([]feed.MessageView, 0, len(msgs))
		for _, m := range msgs {
			views = append(views, feed.ViewOf(m))
		}
		c.JSON(http.StatusOK, gin.H{"room_key": roomKey, "messages": views})
	}
}
