package http

import (
	"net/http"
	"strconv"

	"huddle/internal/core/ports"
	"huddle/pkg/errors"

	"github.com/gin-gonic/gin"
)

// MessageHandler exposes the chat log over REST for clients that want
// history beyond the slice delivered at join time.
type MessageHandler struct {
	chat         ports.ChatService
	defaultLimit int
}

func NewMessageHandler(chat ports.ChatService, defaultLimit int) *MessageHandler {
	return &MessageHandler{
		chat:         chat,
		defaultLimit: defaultLimit,
	}
}

func (h *MessageHandler) SetupRoutes(router *gin.Engine) {
	router.GET("/api/messages", h.Recent)
}

func (h *MessageHandler) Recent(c *gin.Context) {
	limit := h.defaultLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.Error(errors.NewInvalidInputError("limit must be a positive integer"))
			return
		}
		if parsed > 200 {
			parsed = 200
		}
		limit = parsed
	}

	messages, err := h.chat.RecentHistory(c.Request.Context(), limit)
	if err != nil {
		c.Error(errors.NewStoreUnavailableError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
		"count":    len(messages),
	})
}
