package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/matcha/internal/models"
	"gorm.io/gorm"
)

const userChatsSubquery = "SELECT id FROM chats WHERE user_a = ? OR user_b = ?"

func (d *Database) SaveMessage(ctx context.Context, message *models.Message) error {
	return d.run(ctx, func(tx *gorm.DB) error {
		return tx.Create(message).Error
	})
}

// GetChatMessages returns the whole history of a chat, oldest first.
func (d *Database) GetChatMessages(ctx context.Context, chatID uuid.UUID) ([]models.Message, error) {
	var messages []models.Message
	err := d.run(ctx, func(tx *gorm.DB) error {
		return tx.
			Where("chat_id = ?", chatID).
			Order("created_at ASC, id ASC").
			Find(&messages).Error
	})
	return messages, err
}

// MarkMessagesRead flips is_read for messages received by userID in one of
// its chats. Own messages, foreign chats and already read rows are left
// untouched, so repeated calls are no-ops.
func (d *Database) MarkMessagesRead(ctx context.Context, userID uuid.UUID, messageIDs []uuid.UUID) (int64, error) {
	if len(messageIDs) == 0 {
		return 0, nil
	}

	var affected int64
	err := d.run(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&models.Message{}).
			Where("id IN ?", messageIDs).
			Where("sender_id <> ? AND is_read = ?", userID, false).
			Where("chat_id IN ("+userChatsSubquery+")", userID, userID).
			Update("is_read", true)
		affected = res.RowsAffected
		return res.Error
	})
	return affected, err
}

func (d *Database) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := d.run(ctx, func(tx *gorm.DB) error {
		return tx.Model(&models.Message{}).
			Where("chat_id IN ("+userChatsSubquery+")", userID, userID).
			Where("sender_id <> ? AND is_read = ?", userID, false).
			Count(&count).Error
	})
	return count, err
}

type chatActivityRow struct {
	ChatID        uuid.UUID
	Unread        int64
	LastMessageAt *time.Time
}

// GetChatActivity returns unread counts and last message time for every chat
// of userID that has at least one message.
func (d *Database) GetChatActivity(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]models.ChatActivity, error) {
	var rows []chatActivityRow
	err := d.run(ctx, func(tx *gorm.DB) error {
		return tx.Model(&models.Message{}).
			Select(
				"chat_id, "+
					"COUNT(CASE WHEN is_read = false AND sender_id <> ? THEN 1 END) AS unread, "+
					"MAX(created_at) AS last_message_at", userID).
			Where("chat_id IN ("+userChatsSubquery+")", userID, userID).
			Group("chat_id").
			Scan(&rows).Error
	})
	if err != nil {
		return nil, err
	}

	activity := make(map[uuid.UUID]models.ChatActivity, len(rows))
	for _, row := range rows {
		activity[row.ChatID] = models.ChatActivity{
			ChatID:        row.ChatID,
			Unread:        row.Unread,
			LastMessageAt: row.LastMessageAt,
		}
	}
	return activity, nil
}
