package services

import (
	"bytes"
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/thereayou/matcha/internal/apperror"
	"github.com/thereayou/matcha/internal/models"
	"github.com/thereayou/matcha/pkg/logger"
)

// Conversation is one entry of the conversation list.
type Conversation struct {
	ChatID         uuid.UUID             `json:"chatId"`
	ProfilePreview models.ProfilePreview `json:"profilePreview"`
	CreatedAt      time.Time             `json:"createdAt"`
	UnreadCount    int64                 `json:"unreadCount"`
	LastMessageAt  *time.Time            `json:"lastMessageAt,omitempty"`
}

func (c Conversation) lastActivity() time.Time {
	if c.LastMessageAt != nil && c.LastMessageAt.After(c.CreatedAt) {
		return *c.LastMessageAt
	}
	return c.CreatedAt
}

// ChatDirectory lists the conversations a user can currently see.
type ChatDirectory struct {
	chats    ChatRepository
	guard    *RelationshipGuard
	unread   *UnreadCounter
	profiles ProfileRepository
}

func NewChatDirectory(chats ChatRepository, guard *RelationshipGuard, unread *UnreadCounter, profiles ProfileRepository) *ChatDirectory {
	return &ChatDirectory{chats: chats, guard: guard, unread: unread, profiles: profiles}
}

// FindConversations returns userID's chats whose counterpart is still matched
// and unblocked, most recent activity first. Ties go to the lower chat id.
func (d *ChatDirectory) FindConversations(ctx context.Context, userID uuid.UUID) ([]Conversation, error) {
	chats, err := d.chats.GetUserChats(ctx, userID)
	if err != nil {
		return nil, storageError(err, "chat")
	}
	if len(chats) == 0 {
		return []Conversation{}, nil
	}

	counterparts := lo.Uniq(lo.Map(chats, func(chat models.Chat, _ int) uuid.UUID {
		return chat.Counterpart(userID)
	}))
	allowed, err := d.guard.ExchangeableCounterparts(ctx, userID, counterparts)
	if err != nil {
		return nil, err
	}
	visible := lo.Filter(chats, func(chat models.Chat, _ int) bool {
		return allowed[chat.Counterpart(userID)]
	})
	if len(visible) == 0 {
		return []Conversation{}, nil
	}

	activity, err := d.unread.PerChat(ctx, userID)
	if err != nil {
		return nil, err
	}
	previews, err := d.profiles.GetProfilePreviews(ctx, lo.Keys(allowed))
	if err != nil {
		return nil, storageError(err, "profile")
	}

	conversations := make([]Conversation, 0, len(visible))
	for _, chat := range visible {
		other := chat.Counterpart(userID)
		preview, ok := previews[other]
		if !ok {
			logger.Warn(ctx, "conversation counterpart has no profile",
				logger.Stringer("chat_id", chat.ID),
				logger.Stringer("counterpart_id", other),
			)
			continue
		}
		act := activity[chat.ID]
		conversations = append(conversations, Conversation{
			ChatID:         chat.ID,
			ProfilePreview: preview,
			CreatedAt:      chat.CreatedAt,
			UnreadCount:    act.Unread,
			LastMessageAt:  act.LastMessageAt,
		})
	}

	sort.Slice(conversations, func(i, j int) bool {
		ti, tj := conversations[i].lastActivity(), conversations[j].lastActivity()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return bytes.Compare(conversations[i].ChatID[:], conversations[j].ChatID[:]) < 0
	})
	return conversations, nil
}

// OpenChat returns the chat of a matched pair, creating it on first use.
func (d *ChatDirectory) OpenChat(ctx context.Context, userID, otherID uuid.UUID) (*models.Chat, error) {
	if otherID == uuid.Nil || otherID == userID {
		return nil, apperror.New(apperror.CodeValidation, "invalid userId")
	}
	ok, err := d.guard.CanExchangeMessages(ctx, userID, otherID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errNotAuthorized
	}
	chat, err := d.chats.GetOrCreateChat(ctx, userID, otherID)
	if err != nil {
		return nil, storageError(err, "chat")
	}
	return chat, nil
}
