package models

import (
	"time"

	"github.com/google/uuid"
)

// Block is one-directional: BlockerID no longer wants contact with BlockedID.
type Block struct {
	BlockerID uuid.UUID `gorm:"type:uuid;primaryKey"`
	BlockedID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt time.Time
}

// Like is one-directional. Two opposite likes make a match.
type Like struct {
	FromUserID uuid.UUID `gorm:"type:uuid;primaryKey"`
	ToUserID   uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt  time.Time
}

// Relation is the block/like state between a and b at the moment it was read.
type Relation struct {
	ABlocksB bool
	BBlocksA bool
	ALikesB  bool
	BLikesA  bool
}

func (r Relation) Blocked() bool {
	return r.ABlocksB || r.BBlocksA
}

func (r Relation) Matched() bool {
	return r.ALikesB && r.BLikesA
}

// RelationSet is the block/like state of one user against everyone else.
type RelationSet struct {
	// Blocked holds users blocked by or blocking the owner.
	Blocked map[uuid.UUID]bool
	Likes   map[uuid.UUID]bool
	LikedBy map[uuid.UUID]bool
}

func NewRelationSet() RelationSet {
	return RelationSet{
		Blocked: make(map[uuid.UUID]bool),
		Likes:   make(map[uuid.UUID]bool),
		LikedBy: make(map[uuid.UUID]bool),
	}
}

// CanExchange reports whether the owner and other may message each other.
func (s RelationSet) CanExchange(other uuid.UUID) bool {
	return !s.Blocked[other] && s.Likes[other] && s.LikedBy[other]
}
