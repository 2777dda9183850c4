package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/matcha/internal/handlers/dto"
	"github.com/thereayou/matcha/internal/middleware"
	"github.com/thereayou/matcha/internal/services"
)

// HTTPMessageHandler is the REST side of messaging: history, unread count
// and read receipts for clients reconciling after (re)connect.
type HTTPMessageHandler struct {
	messages *services.MessageStore
	unread   *services.UnreadCounter
	events   *services.EventService
}

func NewHTTPMessageHandler(messages *services.MessageStore, unread *services.UnreadCounter, events *services.EventService) *HTTPMessageHandler {
	return &HTTPMessageHandler{messages: messages, unread: unread, events: events}
}

// GetChatMessages returns the full history of a chat, oldest first.
func (h *HTTPMessageHandler) GetChatMessages(c *gin.Context) {
	chatID, ok := uuidParam(c, "chatId")
	if !ok {
		return
	}

	messages, err := h.messages.ListMessages(c.Request.Context(), chatID, middleware.CurrentUserID(c))
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessagesResponse{Messages: messages})
}

func (h *HTTPMessageHandler) GetUnreadCount(c *gin.Context) {
	count, err := h.unread.Count(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.UnreadCountResponse{Count: count})
}

// ReadMessages behaves like the read_messages event, including the
// unread_count push to the caller's live sessions.
func (h *HTTPMessageHandler) ReadMessages(c *gin.Context) {
	var req dto.ReadMessagesRequest
	if !bindJSON(c, &req) {
		return
	}

	event, err := h.events.ReadMessages(c.Request.Context(), middleware.CurrentSession(c),
		services.ReadMessagesRequest{MessageIDs: req.MessageIDs})
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}
