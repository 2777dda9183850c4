package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/matcha/internal/models"
)

// Storage contracts. database.Database implements all of them against
// postgres, memstore.Store in process memory.

type ChatRepository interface {
	GetChat(ctx context.Context, chatID uuid.UUID) (*models.Chat, error)
	GetUserChats(ctx context.Context, userID uuid.UUID) ([]models.Chat, error)
	GetOrCreateChat(ctx context.Context, user1ID, user2ID uuid.UUID) (*models.Chat, error)
}

type MessageRepository interface {
	GetChat(ctx context.Context, chatID uuid.UUID) (*models.Chat, error)
	SaveMessage(ctx context.Context, message *models.Message) error
	GetChatMessages(ctx context.Context, chatID uuid.UUID) ([]models.Message, error)
	MarkMessagesRead(ctx context.Context, userID uuid.UUID, messageIDs []uuid.UUID) (int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	GetChatActivity(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]models.ChatActivity, error)
}

type NotificationRepository interface {
	SaveNotification(ctx context.Context, notification *models.Notification) error
	GetUserNotifications(ctx context.Context, userID uuid.UUID) ([]models.Notification, error)
	MarkNotificationsRead(ctx context.Context, userID uuid.UUID, notificationIDs []uuid.UUID) (int64, error)
}

// RelationshipRepository reads the block/like state written by the matching
// service.
type RelationshipRepository interface {
	GetRelation(ctx context.Context, a, b uuid.UUID) (models.Relation, error)
	GetRelationSet(ctx context.Context, userID uuid.UUID) (models.RelationSet, error)
}

// ProfileRepository is the read side of the profile service.
type ProfileRepository interface {
	GetProfilePreviews(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.ProfilePreview, error)
	UpdateLastSeen(ctx context.Context, id uuid.UUID, at time.Time) error
}

// PresenceTracker records last activity. Implemented by cache.Presence.
type PresenceTracker interface {
	Touch(ctx context.Context, userID uuid.UUID) error
}

// TokenBlacklist reports revoked access tokens. Implemented by cache.Blacklist.
type TokenBlacklist interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}
