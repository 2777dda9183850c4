package models

import (
	"time"

	"github.com/google/uuid"
)

const MaxMessageLength = 1000

type Message struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ChatID    uuid.UUID `gorm:"type:uuid;not null;index:idx_messages_chat_created,priority:1" json:"chatId"`
	SenderID  uuid.UUID `gorm:"type:uuid;not null" json:"senderId"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Read      bool      `gorm:"column:is_read;not null;default:false" json:"read"`
	CreatedAt time.Time `gorm:"index:idx_messages_chat_created,priority:2" json:"createdAt"`
}
