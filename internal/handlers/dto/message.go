package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/matcha/internal/models"
	"github.com/thereayou/matcha/internal/services"
)

// ReadMessagesRequest is the body of POST /messages/read.
type ReadMessagesRequest struct {
	MessageIDs []uuid.UUID `json:"messageIds" binding:"required,min=1,max=500"`
}

type MessagesResponse struct {
	Messages []models.Message `json:"messages"`
}

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

// OpenChatRequest is the body of POST /chats.
type OpenChatRequest struct {
	UserID uuid.UUID `json:"userId" binding:"required"`
}

type ChatResponse struct {
	ChatID       uuid.UUID   `json:"chatId"`
	Participants []uuid.UUID `json:"participants"`
	CreatedAt    time.Time   `json:"createdAt"`
}

func NewChatResponse(chat *models.Chat) ChatResponse {
	return ChatResponse{
		ChatID:       chat.ID,
		Participants: []uuid.UUID{chat.UserA, chat.UserB},
		CreatedAt:    chat.CreatedAt,
	}
}

type ConversationsResponse struct {
	Conversations []services.Conversation `json:"conversations"`
}
