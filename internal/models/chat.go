package models

import (
	"bytes"
	"time"

	"github.com/google/uuid"
)

// Chat is the single conversation between two users. UserA < UserB always.
type Chat struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserA     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_chats_pair,priority:1;check:chk_chats_order,user_a < user_b"`
	UserB     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_chats_pair,priority:2;index"`
	CreatedAt time.Time
}

// CanonicalPair orders two user ids the way chats store them.
func CanonicalPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if bytes.Compare(a[:], b[:]) > 0 {
		return b, a
	}
	return a, b
}

func (c *Chat) HasParticipant(userID uuid.UUID) bool {
	return c.UserA == userID || c.UserB == userID
}

// Counterpart returns the other participant, or uuid.Nil when userID is not
// part of the chat.
func (c *Chat) Counterpart(userID uuid.UUID) uuid.UUID {
	switch userID {
	case c.UserA:
		return c.UserB
	case c.UserB:
		return c.UserA
	default:
		return uuid.Nil
	}
}

// ChatActivity is derived per chat from its messages at read time.
type ChatActivity struct {
	ChatID        uuid.UUID
	Unread        int64
	LastMessageAt *time.Time
}
