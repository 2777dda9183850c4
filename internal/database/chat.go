package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/thereayou/matcha/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (d *Database) GetChat(ctx context.Context, chatID uuid.UUID) (*models.Chat, error) {
	var chat models.Chat
	err := d.run(ctx, func(tx *gorm.DB) error {
		return tx.First(&chat, "id = ?", chatID).Error
	})
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

func (d *Database) GetUserChats(ctx context.Context, userID uuid.UUID) ([]models.Chat, error) {
	var chats []models.Chat
	err := d.run(ctx, func(tx *gorm.DB) error {
		return tx.Where("user_a = ? OR user_b = ?", userID, userID).Find(&chats).Error
	})
	return chats, err
}

// GetOrCreateChat returns the chat of the pair, inserting it on first use.
// Concurrent callers converge on the same row through the pair unique index.
func (d *Database) GetOrCreateChat(ctx context.Context, user1ID, user2ID uuid.UUID) (*models.Chat, error) {
	userA, userB := models.CanonicalPair(user1ID, user2ID)

	var chat models.Chat
	err := d.run(ctx, func(tx *gorm.DB) error {
		err := tx.First(&chat, "user_a = ? AND user_b = ?", userA, userB).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		chat = models.Chat{UserA: userA, UserB: userB}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&chat).Error; err != nil {
			return err
		}
		return tx.First(&chat, "user_a = ? AND user_b = ?", userA, userB).Error
	})
	if err != nil {
		return nil, err
	}
	return &chat, nil
}
