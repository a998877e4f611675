package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/dm-chat/internal/domain"
	"github.com/iamasit07/dm-chat/internal/transport/http/middleware"
)

type HistoryReader interface {
	History(ctx context.Context, token, targetUsername string) ([]domain.ChatMessage, error)
}

type HistoryHandler struct {
	history HistoryReader
}

func NewHistoryHandler(history HistoryReader) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// GetHistory returns the conversation between the caller and :username, oldest first.
func (h *HistoryHandler) GetHistory(c *gin.Context) {
	token := c.GetString(middleware.ContextToken)

	messages, err := h.history.History(c.Request.Context(), token, c.Param("username"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}
