package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thereayou/matcha/internal/apperror"
	"github.com/thereayou/matcha/internal/memstore"
	"github.com/thereayou/matcha/internal/middleware"
	"github.com/thereayou/matcha/internal/models"
	"github.com/thereayou/matcha/internal/services"
	ws "github.com/thereayou/matcha/internal/websocket"
	"github.com/thereayou/matcha/pkg/auth"
	"github.com/thereayou/matcha/pkg/logger"
	"go.uber.org/zap"
)

var testLoggerOnce sync.Once

func initTestLogger() {
	testLoggerOnce.Do(func() {
		logger.ReplaceGlobal(zap.NewNop())
		gin.SetMode(gin.TestMode)
	})
}

// memoryRevoker is a blacklist kept in a map.
type memoryRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func (r *memoryRevoker) Revoke(_ context.Context, token string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[token] = ttl
	return nil
}

func (r *memoryRevoker) IsRevoked(_ context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.revoked[token]
	return ok, nil
}

type testServer struct {
	router  *gin.Engine
	store   *memstore.Store
	hub     *ws.Hub
	jwt     *auth.JWTManager
	revoker *memoryRevoker
	events  *services.EventService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	initTestLogger()

	store := memstore.New()
	hub := ws.NewHub()
	t.Cleanup(hub.Stop)
	jwtMgr := auth.NewJWTManager("test-secret", time.Hour)
	revoker := &memoryRevoker{revoked: make(map[string]time.Duration)}

	guard := services.NewRelationshipGuard(store)
	messages := services.NewMessageStore(store)
	unread := services.NewUnreadCounter(store)
	directory := services.NewChatDirectory(store, guard, unread, store)
	fanout := services.NewNotificationFanout(store, store, hub)
	authenticator := services.NewSessionAuthenticator(jwtMgr, revoker)
	events := services.NewEventService(guard, messages, unread, nil, store, hub)

	router := gin.New()
	router.GET("/ws", NewWebSocketHandler(authenticator, events, NewEventHandler(events), nil, 16).HandleWebSocket)
	api := router.Group("/", middleware.AuthMiddleware(authenticator))
	authH := NewAuthHandler(jwtMgr, revoker)
	chatH := NewChatHandler(directory)
	msgH := NewHTTPMessageHandler(messages, unread, events)
	notifH := NewNotificationHandler(fanout)
	userH := NewUserHandler(services.NewProfileViews(store, guard, fanout))
	api.POST("/auth/logout", authH.Logout)
	api.GET("/chats/conversations", chatH.GetConversations)
	api.POST("/chats", chatH.OpenChat)
	api.GET("/messages/unread/count", msgH.GetUnreadCount)
	api.POST("/messages/read", msgH.ReadMessages)
	api.GET("/messages/:chatId", msgH.GetChatMessages)
	api.GET("/notifications", notifH.GetNotifications)
	api.POST("/notifications/read", notifH.ReadNotifications)
	api.GET("/users/:id", userH.GetUser)

	return &testServer{router: router, store: store, hub: hub, jwt: jwtMgr, revoker: revoker, events: events}
}

func (s *testServer) user(t *testing.T, name string) (uuid.UUID, string) {
	t.Helper()
	id := s.store.AddUser(models.User{Username: name, FirstName: name}).ID
	token, err := s.jwt.Generate(id.String())
	require.NoError(t, err)
	return id, token
}

func (s *testServer) match(t *testing.T, a, b uuid.UUID) *models.Chat {
	t.Helper()
	s.store.Like(a, b)
	s.store.Like(b, a)
	chat, err := s.store.GetOrCreateChat(context.Background(), a, b)
	require.NoError(t, err)
	return chat
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

type errorBody struct {
	Error struct {
		Code    apperror.Code `json:"code"`
		Message string        `json:"message"`
	} `json:"error"`
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) apperror.Code {
	t.Helper()
	var body errorBody
	decode(t, w, &body)
	return body.Error.Code
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/notifications", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apperror.CodeAuthRequired, errorCode(t, w))

	w = s.do(t, http.MethodGet, "/notifications", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apperror.CodeAuthInvalid, errorCode(t, w))
}

func TestUnreadCountDropsAfterRead(t *testing.T) {
	s := newTestServer(t)
	a, _ := s.user(t, "a")
	b, bToken := s.user(t, "b")
	chat := s.match(t, a, b)

	var last *models.Message
	for i := 0; i < 5; i++ {
		msg, err := s.events.SendMessage(context.Background(), models.Session{UserID: a},
			services.SendMessageRequest{ChatID: chat.ID, ToUserID: b, Content: "hello"})
		require.NoError(t, err)
		last = msg
	}

	var count struct{ Count int64 }
	w := s.do(t, http.MethodGet, "/messages/unread/count", bToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &count)
	require.Equal(t, int64(5), count.Count)

	w = s.do(t, http.MethodPost, "/messages/read", bToken, gin.H{"messageIds": []uuid.UUID{last.ID}})
	require.Equal(t, http.StatusOK, w.Code)
	var event services.UnreadCountEvent
	decode(t, w, &event)
	assert.Equal(t, services.UnreadCountEvent{Count: 4, Delta: -1}, event)

	w = s.do(t, http.MethodGet, "/messages/unread/count", bToken, nil)
	decode(t, w, &count)
	assert.Equal(t, int64(4), count.Count)

	w = s.do(t, http.MethodPost, "/messages/read", bToken, gin.H{"messageIds": []uuid.UUID{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperror.CodeValidation, errorCode(t, w))
}

func TestChatMessagesHistory(t *testing.T) {
	s := newTestServer(t)
	a, aToken := s.user(t, "a")
	b, _ := s.user(t, "b")
	_, outsiderToken := s.user(t, "c")
	chat := s.match(t, a, b)

	_, err := s.events.SendMessage(context.Background(), models.Session{UserID: b},
		services.SendMessageRequest{ChatID: chat.ID, ToUserID: a, Content: "first"})
	require.NoError(t, err)

	w := s.do(t, http.MethodGet, "/messages/"+chat.ID.String(), aToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Messages []models.Message `json:"messages"`
	}
	decode(t, w, &body)
	require.Len(t, body.Messages, 1)
	assert.Equal(t, "first", body.Messages[0].Content)

	w = s.do(t, http.MethodGet, "/messages/"+chat.ID.String(), outsiderToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, apperror.CodeNotAuthorized, errorCode(t, w))

	w = s.do(t, http.MethodGet, "/messages/not-a-uuid", aToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConversationsHideBlockedChat(t *testing.T) {
	s := newTestServer(t)
	a, aToken := s.user(t, "a")
	b, _ := s.user(t, "b")
	chat := s.match(t, a, b)

	var body struct {
		Conversations []services.Conversation `json:"conversations"`
	}
	w := s.do(t, http.MethodGet, "/chats/conversations", aToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &body)
	require.Len(t, body.Conversations, 1)
	assert.Equal(t, chat.ID, body.Conversations[0].ChatID)
	assert.Equal(t, "b", body.Conversations[0].ProfilePreview.Username)

	s.store.Block(a, b)

	w = s.do(t, http.MethodGet, "/chats/conversations", aToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &body)
	assert.Empty(t, body.Conversations)

	_, err := s.events.SendMessage(context.Background(), models.Session{UserID: b},
		services.SendMessageRequest{ChatID: chat.ID, ToUserID: a, Content: "still there?"})
	assert.Equal(t, apperror.CodeNotAuthorized, apperror.CodeOf(err))
}

func TestOpenChat(t *testing.T) {
	s := newTestServer(t)
	a, aToken := s.user(t, "a")
	b, _ := s.user(t, "b")
	stranger, _ := s.user(t, "s")
	s.store.Like(a, b)
	s.store.Like(b, a)

	w := s.do(t, http.MethodPost, "/chats", aToken, gin.H{"userId": b})
	require.Equal(t, http.StatusOK, w.Code)
	var chat struct {
		ChatID       uuid.UUID   `json:"chatId"`
		Participants []uuid.UUID `json:"participants"`
	}
	decode(t, w, &chat)
	assert.ElementsMatch(t, []uuid.UUID{a, b}, chat.Participants)

	w = s.do(t, http.MethodPost, "/chats", aToken, gin.H{"userId": stranger})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, "/chats", aToken, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProfileViewNotifiesBeforeResponse(t *testing.T) {
	s := newTestServer(t)
	viewer, viewerToken := s.user(t, "viewer")
	target, targetToken := s.user(t, "target")

	live := ws.NewClient(nil, models.Session{ID: uuid.New(), UserID: target}, 4)
	s.hub.Join(live)

	w := s.do(t, http.MethodGet, "/users/"+target.String(), viewerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var preview models.ProfilePreview
	decode(t, w, &preview)
	assert.Equal(t, "target", preview.Username)

	// queued while the request was being served
	require.Len(t, live.Send, 1)
	var env ws.Envelope
	require.NoError(t, json.Unmarshal(<-live.Send, &env))
	assert.Equal(t, ws.TypeNotification, env.Type)
	var pushed services.NotificationEvent
	require.NoError(t, json.Unmarshal(env.Data, &pushed))
	assert.Equal(t, models.NotificationView, pushed.Type)
	assert.Equal(t, viewer, pushed.Payload.SourceUserID)

	var list struct {
		Notifications []services.NotificationEvent `json:"notifications"`
	}
	w = s.do(t, http.MethodGet, "/notifications", targetToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &list)
	require.Len(t, list.Notifications, 1)
	assert.Equal(t, pushed.ID, list.Notifications[0].ID)

	w = s.do(t, http.MethodGet, "/users/"+uuid.NewString(), viewerToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReadNotificationsOnlyOwn(t *testing.T) {
	s := newTestServer(t)
	_, aToken := s.user(t, "a")
	b, bToken := s.user(t, "b")

	// a views b: b owns the notification
	w := s.do(t, http.MethodGet, "/users/"+b.String(), aToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Notifications []services.NotificationEvent `json:"notifications"`
	}
	w = s.do(t, http.MethodGet, "/notifications", bToken, nil)
	decode(t, w, &list)
	require.Len(t, list.Notifications, 1)
	id := list.Notifications[0].ID

	var res struct{ Updated int64 }
	w = s.do(t, http.MethodPost, "/notifications/read", aToken, gin.H{"notificationIds": []uuid.UUID{id}})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &res)
	assert.Zero(t, res.Updated, "not the owner")

	w = s.do(t, http.MethodPost, "/notifications/read", bToken, gin.H{"notificationIds": []uuid.UUID{id}})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &res)
	assert.Equal(t, int64(1), res.Updated)
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newTestServer(t)
	_, token := s.user(t, "a")

	w := s.do(t, http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, s.revoker.revoked, token)

	w = s.do(t, http.MethodGet, "/notifications", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apperror.CodeAuthInvalid, errorCode(t, w))
}
