package controller

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/usecase"
)

// ListConversationsController serves the dashboard conversation list (one controller per endpoint).
type ListConversationsController struct {
	uc      *usecase.ListConversationsUseCase
	timeout time.Duration
}

func NewListConversationsController(uc *usecase.ListConversationsUseCase) *ListConversationsController {
	return &ListConversationsController{uc: uc, timeout: 5 * time.Second}
}

func (h *ListConversationsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, ok := queryInt(c, "limit")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
		defer cancel()

		views, err := h.uc.Execute(ctx, usecase.ListConversationsInput{Limit: int(limit)})
		if err != nil {
			writeError(c, err)
			return
		}
		if views == nil {
			views = []usecase.ConversationView{}
		}
		c.JSON(http.StatusOK, gin.H{"conversations": views})
	}
}

// queryInt reads an optional integer query parameter. On a malformed value it
// writes a 400 and returns ok=false.
func queryInt(c *gin.Context, name string) (int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a non-negative integer"})
		return 0, false
	}
	return n, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrPersistence):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected persistence error"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
