package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/thereayou/matcha/internal/models"
)

// UnreadCounter derives unread counts from the message rows on every call.
// Nothing is cached, so concurrent MarkRead calls cannot make it drift.
type UnreadCounter struct {
	repo MessageRepository
}

func NewUnreadCounter(repo MessageRepository) *UnreadCounter {
	return &UnreadCounter{repo: repo}
}

// Count returns the number of unread messages sent to userID across its chats.
func (c *UnreadCounter) Count(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := c.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, storageError(err, "message")
	}
	return n, nil
}

// PerChat returns unread counts and last activity keyed by chat id.
func (c *UnreadCounter) PerChat(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]models.ChatActivity, error) {
	activity, err := c.repo.GetChatActivity(ctx, userID)
	if err != nil {
		return nil, storageError(err, "message")
	}
	return activity, nil
}
