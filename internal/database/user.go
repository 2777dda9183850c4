package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/matcha/internal/models"
	"gorm.io/gorm"
)

// GetProfilePreviews returns previews keyed by user id. Unknown ids are
// simply absent from the map.
func (d *Database) GetProfilePreviews(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.ProfilePreview, error) {
	previews := make(map[uuid.UUID]models.ProfilePreview, len(ids))
	if len(ids) == 0 {
		return previews, nil
	}

	var users []models.User
	err := d.run(ctx, func(tx *gorm.DB) error {
		return tx.Where("id IN ?", ids).Find(&users).Error
	})
	if err != nil {
		return nil, err
	}
	for i := range users {
		previews[users[i].ID] = users[i].Preview()
	}
	return previews, nil
}

func (d *Database) UpdateLastSeen(ctx context.Context, id uuid.UUID, at time.Time) error {
	return d.run(ctx, func(tx *gorm.DB) error {
		return tx.Model(&models.User{}).Where("id = ?", id).Update("last_seen_at", at).Error
	})
}
