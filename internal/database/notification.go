package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/thereayou/matcha/internal/models"
	"gorm.io/gorm"
)

func (d *Database) SaveNotification(ctx context.Context, notification *models.Notification) error {
	return d.run(ctx, func(tx *gorm.DB) error {
		return tx.Create(notification).Error
	})
}

// GetUserNotifications returns the recipient's notifications, newest first.
func (d *Database) GetUserNotifications(ctx context.Context, userID uuid.UUID) ([]models.Notification, error) {
	var notifications []models.Notification
	err := d.run(ctx, func(tx *gorm.DB) error {
		return tx.
			Where("recipient_id = ?", userID).
			Order("created_at DESC, id DESC").
			Find(&notifications).Error
	})
	return notifications, err
}

// MarkNotificationsRead only touches rows owned by userID.
func (d *Database) MarkNotificationsRead(ctx context.Context, userID uuid.UUID, notificationIDs []uuid.UUID) (int64, error) {
	if len(notificationIDs) == 0 {
		return 0, nil
	}

	var affected int64
	err := d.run(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&models.Notification{}).
			Where("id IN ? AND recipient_id = ? AND is_read = ?", notificationIDs, userID, false).
			Update("is_read", true)
		affected = res.RowsAffected
		return res.Error
	})
	return affected, err
}
