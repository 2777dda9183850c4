package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/thereayou/matcha/internal/apperror"
	"github.com/thereayou/matcha/internal/models"
)

const MaxReadBatch = 500

type createMessageInput struct {
	ChatID   uuid.UUID `validate:"required"`
	SenderID uuid.UUID `validate:"required"`
	Content  string    `validate:"required,max=1000"`
}

type markReadInput struct {
	MessageIDs []uuid.UUID `validate:"required,min=1,max=500,dive,required"`
}

// MessageStore owns message validation, participation checks and read
// receipts on top of the append-only message log.
type MessageStore struct {
	repo MessageRepository
}

func NewMessageStore(repo MessageRepository) *MessageStore {
	return &MessageStore{repo: repo}
}

// ChatFor loads chatID and checks userID takes part in it.
func (s *MessageStore) ChatFor(ctx context.Context, chatID, userID uuid.UUID) (*models.Chat, error) {
	if chatID == uuid.Nil {
		return nil, apperror.New(apperror.CodeValidation, "invalid chatId")
	}
	chat, err := s.repo.GetChat(ctx, chatID)
	if err != nil {
		return nil, storageError(err, "chat")
	}
	if !chat.HasParticipant(userID) {
		return nil, errNotInChat
	}
	return chat, nil
}

func (s *MessageStore) CreateMessage(ctx context.Context, chatID, senderID uuid.UUID, content string) (*models.Message, error) {
	if err := checkContent(chatID, senderID, content); err != nil {
		return nil, err
	}

	chat, err := s.ChatFor(ctx, chatID, senderID)
	if err != nil {
		return nil, err
	}
	return s.appendTo(ctx, chat, senderID, content)
}

// appendTo validates content and appends it to an already checked chat.
func (s *MessageStore) appendTo(ctx context.Context, chat *models.Chat, senderID uuid.UUID, content string) (*models.Message, error) {
	if err := checkContent(chat.ID, senderID, content); err != nil {
		return nil, err
	}

	message := &models.Message{
		ChatID:   chat.ID,
		SenderID: senderID,
		Content:  content,
		Read:     false,
	}
	if err := s.repo.SaveMessage(ctx, message); err != nil {
		return nil, storageError(err, "message")
	}
	return message, nil
}

// checkContent enforces 1..1000 characters of valid UTF-8 text without NUL.
// Whitespace-only content is empty.
func checkContent(chatID, senderID uuid.UUID, content string) error {
	if strings.TrimSpace(content) == "" {
		return apperror.New(apperror.CodeValidation, "content must not be empty")
	}
	if !utf8.ValidString(content) || strings.ContainsRune(content, 0) {
		return apperror.New(apperror.CodeValidation, "content must be valid text")
	}
	in := createMessageInput{ChatID: chatID, SenderID: senderID, Content: content}
	if err := validate.Struct(in); err != nil {
		return validationError(err)
	}
	return nil
}

// ListMessages re-reads the full history of a chat the user takes part in.
func (s *MessageStore) ListMessages(ctx context.Context, chatID, userID uuid.UUID) ([]models.Message, error) {
	if _, err := s.ChatFor(ctx, chatID, userID); err != nil {
		return nil, err
	}
	messages, err := s.repo.GetChatMessages(ctx, chatID)
	if err != nil {
		return nil, storageError(err, "chat")
	}
	if messages == nil {
		messages = []models.Message{}
	}
	return messages, nil
}

// MarkRead flips read=true on received messages of userID's chats and
// returns how many rows changed. Unknown, foreign, own or already read ids
// are skipped silently.
func (s *MessageStore) MarkRead(ctx context.Context, userID uuid.UUID, messageIDs []uuid.UUID) (int64, error) {
	if err := validate.Struct(markReadInput{MessageIDs: messageIDs}); err != nil {
		return 0, validationError(err)
	}
	n, err := s.repo.MarkMessagesRead(ctx, userID, lo.Uniq(messageIDs))
	if err != nil {
		return 0, storageError(err, "message")
	}
	return n, nil
}
