package models

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationLike   NotificationType = "LIKE"
	NotificationMatch  NotificationType = "MATCH"
	NotificationView   NotificationType = "VIEW"
	NotificationUnlike NotificationType = "UNLIKE"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationLike, NotificationMatch, NotificationView, NotificationUnlike:
		return true
	}
	return false
}

// Notification is immutable apart from Read.
type Notification struct {
	ID          uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	RecipientID uuid.UUID        `gorm:"type:uuid;not null;index"`
	Type        NotificationType `gorm:"type:varchar(16);not null;check:chk_notifications_type,type IN ('LIKE','MATCH','VIEW','UNLIKE')"`
	SourceID    uuid.UUID        `gorm:"type:uuid;not null"`
	Read        bool             `gorm:"column:is_read;not null;default:false"`
	CreatedAt   time.Time        `gorm:"index"`
}
