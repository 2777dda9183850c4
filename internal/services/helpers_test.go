package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/thereayou/matcha/internal/memstore"
	"github.com/thereayou/matcha/internal/models"
	"github.com/thereayou/matcha/internal/websocket"
	"github.com/thereayou/matcha/pkg/logger"
	"go.uber.org/zap"
)

var testLoggerOnce sync.Once

func initTestLogger() {
	testLoggerOnce.Do(func() {
		logger.ReplaceGlobal(zap.NewNop())
	})
}

type testEnv struct {
	store         *memstore.Store
	hub           *websocket.Hub
	guard         *RelationshipGuard
	messages      *MessageStore
	unread        *UnreadCounter
	directory     *ChatDirectory
	notifications *NotificationFanout
	events        *EventService
	presence      *fakePresence
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	initTestLogger()

	store := memstore.New()
	hub := websocket.NewHub()
	t.Cleanup(hub.Stop)

	guard := NewRelationshipGuard(store)
	messages := NewMessageStore(store)
	unread := NewUnreadCounter(store)
	presence := &fakePresence{touched: make(chan uuid.UUID, 8)}

	return &testEnv{
		store:         store,
		hub:           hub,
		guard:         guard,
		messages:      messages,
		unread:        unread,
		directory:     NewChatDirectory(store, guard, unread, store),
		notifications: NewNotificationFanout(store, store, hub),
		events:        NewEventService(guard, messages, unread, presence, store, hub),
		presence:      presence,
	}
}

func (e *testEnv) user(t *testing.T, name string) uuid.UUID {
	t.Helper()
	return e.store.AddUser(models.User{Username: name, FirstName: name}).ID
}

// match makes a and b like each other and returns their chat.
func (e *testEnv) match(t *testing.T, a, b uuid.UUID) *models.Chat {
	t.Helper()
	e.store.Like(a, b)
	e.store.Like(b, a)
	chat, err := e.store.GetOrCreateChat(context.Background(), a, b)
	require.NoError(t, err)
	return chat
}

func (e *testEnv) connect(userID uuid.UUID) *websocket.Client {
	session := models.Session{ID: uuid.New(), UserID: userID, AuthenticatedAt: time.Now()}
	client := websocket.NewClient(nil, session, 16)
	e.events.Connect(context.Background(), client)
	return client
}

func sessionOf(userID uuid.UUID) models.Session {
	return models.Session{ID: uuid.New(), UserID: userID}
}

// nextFrame reads one queued frame of client and decodes its data into out.
func nextFrame(t *testing.T, client *websocket.Client, out interface{}) websocket.EventType {
	t.Helper()
	select {
	case raw := <-client.Send:
		var env websocket.Envelope
		require.NoError(t, json.Unmarshal(raw, &env))
		if out != nil {
			require.NoError(t, json.Unmarshal(env.Data, out))
		}
		return env.Type
	default:
		t.Fatal("no frame queued")
		return ""
	}
}

type fakePresence struct {
	touched chan uuid.UUID
	err     error
}

func (f *fakePresence) Touch(_ context.Context, userID uuid.UUID) error {
	select {
	case f.touched <- userID:
	default:
	}
	return f.err
}

type fakeBlacklist struct {
	revoked map[string]bool
	err     error
}

func (f *fakeBlacklist) IsRevoked(_ context.Context, token string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.revoked[token], nil
}

// fakeMessages wraps a real repository and lets a test replace single calls.
type fakeMessages struct {
	MessageRepository
	countUnreadFn func(ctx context.Context, userID uuid.UUID) (int64, error)
	getChatFn     func(ctx context.Context, chatID uuid.UUID) (*models.Chat, error)
}

func (f *fakeMessages) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	if f.countUnreadFn != nil {
		return f.countUnreadFn(ctx, userID)
	}
	return f.MessageRepository.CountUnread(ctx, userID)
}

func (f *fakeMessages) GetChat(ctx context.Context, chatID uuid.UUID) (*models.Chat, error) {
	if f.getChatFn != nil {
		return f.getChatFn(ctx, chatID)
	}
	return f.MessageRepository.GetChat(ctx, chatID)
}
