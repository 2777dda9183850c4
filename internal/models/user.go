package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the profile row owned by the profile service. This core only reads it,
// apart from last_seen_at.
type User struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Username   string    `gorm:"uniqueIndex;not null"`
	FirstName  string
	LastName   string
	AvatarURL  string
	LastSeenAt *time.Time
	CreatedAt  time.Time
}

// ProfilePreview is the public card shown next to a conversation or a
// notification.
type ProfilePreview struct {
	ID         uuid.UUID  `json:"id"`
	Username   string     `json:"username"`
	FirstName  string     `json:"firstName"`
	AvatarURL  string     `json:"avatarUrl,omitempty"`
	LastSeenAt *time.Time `json:"lastSeenAt,omitempty"`
}

func (u *User) Preview() ProfilePreview {
	return ProfilePreview{
		ID:         u.ID,
		Username:   u.Username,
		FirstName:  u.FirstName,
		AvatarURL:  u.AvatarURL,
		LastSeenAt: u.LastSeenAt,
	}
}
