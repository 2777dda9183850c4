// Package memstore keeps every repository of the chat core in process memory.
// It backs STORAGE_DRIVER=memory and the service tests, and returns the same
// sentinel errors as the postgres layer.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/matcha/internal/database"
	"github.com/thereayou/matcha/internal/models"
)

type pair [2]uuid.UUID

type Store struct {
	mu sync.RWMutex

	users         map[uuid.UUID]models.User
	chats         map[uuid.UUID]models.Chat
	chatsByPair   map[pair]uuid.UUID
	messages      []models.Message
	notifications []models.Notification
	blocks        map[pair]bool
	likes         map[pair]bool

	now func() time.Time
}

func New() *Store {
	return &Store{
		users:       make(map[uuid.UUID]models.User),
		chats:       make(map[uuid.UUID]models.Chat),
		chatsByPair: make(map[pair]uuid.UUID),
		blocks:      make(map[pair]bool),
		likes:       make(map[pair]bool),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func checkCtx(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", database.ErrUnavailable, err)
	}
	return nil
}

func notFound(what string) error {
	return fmt.Errorf("%w: %s", database.ErrRecordNotFound, what)
}

// AddUser stores a profile row, assigning an id when it has none.
func (s *Store) AddUser(user models.User) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.now()
	}
	s.users[user.ID] = user
	return user
}

func (s *Store) Like(from, to uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.likes[pair{from, to}] = true
}

func (s *Store) Unlike(from, to uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.likes, pair{from, to})
}

func (s *Store) Block(blocker, blocked uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks[pair{blocker, blocked}] = true
}

func (s *Store) Unblock(blocker, blocked uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blocks, pair{blocker, blocked})
}

// Chats

func (s *Store) GetChat(ctx context.Context, chatID uuid.UUID) (*models.Chat, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	chat, ok := s.chats[chatID]
	if !ok {
		return nil, notFound("chat")
	}
	return &chat, nil
}

func (s *Store) GetUserChats(ctx context.Context, userID uuid.UUID) ([]models.Chat, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var chats []models.Chat
	for _, chat := range s.chats {
		if chat.HasParticipant(userID) {
			chats = append(chats, chat)
		}
	}
	return chats, nil
}

func (s *Store) GetOrCreateChat(ctx context.Context, user1ID, user2ID uuid.UUID) (*models.Chat, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	userA, userB := models.CanonicalPair(user1ID, user2ID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.chatsByPair[pair{userA, userB}]; ok {
		chat := s.chats[id]
		return &chat, nil
	}
	chat := models.Chat{ID: uuid.New(), UserA: userA, UserB: userB, CreatedAt: s.now()}
	s.chats[chat.ID] = chat
	s.chatsByPair[pair{userA, userB}] = chat.ID
	return &chat, nil
}

// Messages

func (s *Store) SaveMessage(ctx context.Context, message *models.Message) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	chat, ok := s.chats[message.ChatID]
	if !ok {
		return notFound("chat")
	}
	if !chat.HasParticipant(message.SenderID) {
		return fmt.Errorf("%w: sender is not a participant", database.ErrDatabase)
	}
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = s.now()
	}
	s.messages = append(s.messages, *message)
	return nil
}

func (s *Store) GetChatMessages(ctx context.Context, chatID uuid.UUID) ([]models.Message, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var messages []models.Message
	for _, m := range s.messages {
		if m.ChatID == chatID {
			messages = append(messages, m)
		}
	}
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
	return messages, nil
}

// inChatOf reports whether chatID belongs to userID. Callers hold the lock.
func (s *Store) inChatOf(chatID, userID uuid.UUID) bool {
	chat, ok := s.chats[chatID]
	return ok && chat.HasParticipant(userID)
}

func (s *Store) MarkMessagesRead(ctx context.Context, userID uuid.UUID, messageIDs []uuid.UUID) (int64, error) {
	if err := checkCtx(ctx); err != nil {
		return 0, err
	}
	ids := make(map[uuid.UUID]bool, len(messageIDs))
	for _, id := range messageIDs {
		ids[id] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var affected int64
	for i := range s.messages {
		m := &s.messages[i]
		if !ids[m.ID] || m.Read || m.SenderID == userID || !s.inChatOf(m.ChatID, userID) {
			continue
		}
		m.Read = true
		affected++
	}
	return affected, nil
}

func (s *Store) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	if err := checkCtx(ctx); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, m := range s.messages {
		if !m.Read && m.SenderID != userID && s.inChatOf(m.ChatID, userID) {
			count++
		}
	}
	return count, nil
}

func (s *Store) GetChatActivity(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]models.ChatActivity, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	activity := make(map[uuid.UUID]models.ChatActivity)
	for _, m := range s.messages {
		if !s.inChatOf(m.ChatID, userID) {
			continue
		}
		act := activity[m.ChatID]
		act.ChatID = m.ChatID
		if !m.Read && m.SenderID != userID {
			act.Unread++
		}
		if act.LastMessageAt == nil || m.CreatedAt.After(*act.LastMessageAt) {
			at := m.CreatedAt
			act.LastMessageAt = &at
		}
		activity[m.ChatID] = act
	}
	return activity, nil
}

// Notifications

func (s *Store) SaveNotification(ctx context.Context, notification *models.Notification) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = s.now()
	}
	s.notifications = append(s.notifications, *notification)
	return nil
}

// GetUserNotifications returns newest first; equal timestamps keep the later
// insert first.
func (s *Store) GetUserNotifications(ctx context.Context, userID uuid.UUID) ([]models.Notification, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Notification
	for i := len(s.notifications) - 1; i >= 0; i-- {
		if s.notifications[i].RecipientID == userID {
			out = append(out, s.notifications[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) MarkNotificationsRead(ctx context.Context, userID uuid.UUID, notificationIDs []uuid.UUID) (int64, error) {
	if err := checkCtx(ctx); err != nil {
		return 0, err
	}
	ids := make(map[uuid.UUID]bool, len(notificationIDs))
	for _, id := range notificationIDs {
		ids[id] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var affected int64
	for i := range s.notifications {
		n := &s.notifications[i]
		if ids[n.ID] && n.RecipientID == userID && !n.Read {
			n.Read = true
			affected++
		}
	}
	return affected, nil
}

// Relationships

func (s *Store) GetRelation(ctx context.Context, a, b uuid.UUID) (models.Relation, error) {
	if err := checkCtx(ctx); err != nil {
		return models.Relation{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	return models.Relation{
		ABlocksB: s.blocks[pair{a, b}],
		BBlocksA: s.blocks[pair{b, a}],
		ALikesB:  s.likes[pair{a, b}],
		BLikesA:  s.likes[pair{b, a}],
	}, nil
}

func (s *Store) GetRelationSet(ctx context.Context, userID uuid.UUID) (models.RelationSet, error) {
	if err := checkCtx(ctx); err != nil {
		return models.RelationSet{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	set := models.NewRelationSet()
	for p := range s.blocks {
		switch userID {
		case p[0]:
			set.Blocked[p[1]] = true
		case p[1]:
			set.Blocked[p[0]] = true
		}
	}
	for p := range s.likes {
		switch userID {
		case p[0]:
			set.Likes[p[1]] = true
		case p[1]:
			set.LikedBy[p[0]] = true
		}
	}
	return set, nil
}

// Profiles

// GetUser returns a copy of the stored profile row.
func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, notFound("user")
	}
	return &user, nil
}

func (s *Store) GetProfilePreviews(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.ProfilePreview, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	previews := make(map[uuid.UUID]models.ProfilePreview, len(ids))
	for _, id := range ids {
		if user, ok := s.users[id]; ok {
			previews[id] = user.Preview()
		}
	}
	return previews, nil
}

func (s *Store) UpdateLastSeen(ctx context.Context, id uuid.UUID, at time.Time) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil
	}
	user.LastSeenAt = &at
	s.users[id] = user
	return nil
}

// Close exists for symmetry with database.Database.
func (s *Store) Close() error {
	return nil
}
