package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/thereayou/matcha/internal/models"
	"gorm.io/gorm"
)

// GetRelation reads blocks and likes between a and b in both directions.
func (d *Database) GetRelation(ctx context.Context, a, b uuid.UUID) (models.Relation, error) {
	var (
		blocks []models.Block
		likes  []models.Like
	)
	err := d.run(ctx, func(tx *gorm.DB) error {
		if err := tx.
			Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)", a, b, b, a).
			Find(&blocks).Error; err != nil {
			return err
		}
		return tx.
			Where("(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)", a, b, b, a).
			Find(&likes).Error
	})
	if err != nil {
		return models.Relation{}, err
	}

	var rel models.Relation
	for _, block := range blocks {
		if block.BlockerID == a {
			rel.ABlocksB = true
		} else {
			rel.BBlocksA = true
		}
	}
	for _, like := range likes {
		if like.FromUserID == a {
			rel.ALikesB = true
		} else {
			rel.BLikesA = true
		}
	}
	return rel, nil
}

// GetRelationSet reads every block and like touching userID.
func (d *Database) GetRelationSet(ctx context.Context, userID uuid.UUID) (models.RelationSet, error) {
	var (
		blocks []models.Block
		likes  []models.Like
	)
	err := d.run(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("blocker_id = ? OR blocked_id = ?", userID, userID).Find(&blocks).Error; err != nil {
			return err
		}
		return tx.Where("from_user_id = ? OR to_user_id = ?", userID, userID).Find(&likes).Error
	})
	if err != nil {
		return models.RelationSet{}, err
	}

	set := models.NewRelationSet()
	for _, block := range blocks {
		if block.BlockerID == userID {
			set.Blocked[block.BlockedID] = true
		} else {
			set.Blocked[block.BlockerID] = true
		}
	}
	for _, like := range likes {
		if like.FromUserID == userID {
			set.Likes[like.ToUserID] = true
		} else {
			set.LikedBy[like.FromUserID] = true
		}
	}
	return set, nil
}
