package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is the identity attached to one authenticated transport session.
// It is never persisted.
type Session struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	AuthenticatedAt time.Time
	ExpiresAt       time.Time
}
