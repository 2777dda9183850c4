package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/matcha/internal/handlers/dto"
	"github.com/thereayou/matcha/internal/middleware"
	"github.com/thereayou/matcha/internal/services"
)

type ChatHandler struct {
	directory *services.ChatDirectory
}

func NewChatHandler(directory *services.ChatDirectory) *ChatHandler {
	return &ChatHandler{directory: directory}
}

// GetConversations lists the caller's visible conversations.
func (h *ChatHandler) GetConversations(c *gin.Context) {
	conversations, err := h.directory.FindConversations(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ConversationsResponse{Conversations: conversations})
}

// OpenChat returns the chat with a matched user, creating it if needed.
func (h *ChatHandler) OpenChat(c *gin.Context) {
	var req dto.OpenChatRequest
	if !bindJSON(c, &req) {
		return
	}

	chat, err := h.directory.OpenChat(c.Request.Context(), middleware.CurrentUserID(c), req.UserID)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewChatResponse(chat))
}
