package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/matcha/internal/apperror"
	"github.com/thereayou/matcha/internal/models"
	"github.com/thereayou/matcha/internal/websocket"
	"github.com/thereayou/matcha/pkg/logger"
)

const defaultPingTimeout = 2 * time.Second

// ConnectionRegistry is the live session map. Implemented by websocket.Hub.
type ConnectionRegistry interface {
	Emitter
	Join(client *websocket.Client)
	Leave(client *websocket.Client) int
}

type SendMessageRequest struct {
	ChatID   uuid.UUID `json:"chatId" validate:"required"`
	ToUserID uuid.UUID `json:"toUserId" validate:"required"`
	Content  string    `json:"content"`
}

type ReadMessagesRequest struct {
	MessageIDs []uuid.UUID `json:"messageIds"`
}

// UnreadCountEvent is pushed to the reader's sessions after a read. Delta is
// minus the number of messages the read flipped.
type UnreadCountEvent struct {
	Count int64 `json:"count"`
	Delta int64 `json:"delta"`
}

// EventService runs the client events of one authenticated session. Each call
// is a single unit of work: guard check, store mutation, fanout.
type EventService struct {
	guard    *RelationshipGuard
	messages *MessageStore
	unread   *UnreadCounter
	presence PresenceTracker
	profiles ProfileRepository
	registry ConnectionRegistry

	pingTimeout time.Duration
}

// NewEventService wires the event handlers. presence may be nil, in which
// case pings are accepted and ignored.
func NewEventService(
	guard *RelationshipGuard,
	messages *MessageStore,
	unread *UnreadCounter,
	presence PresenceTracker,
	profiles ProfileRepository,
	registry ConnectionRegistry,
) *EventService {
	return &EventService{
		guard:       guard,
		messages:    messages,
		unread:      unread,
		presence:    presence,
		profiles:    profiles,
		registry:    registry,
		pingTimeout: defaultPingTimeout,
	}
}

// Connect registers an authenticated session.
func (s *EventService) Connect(ctx context.Context, client *websocket.Client) {
	s.registry.Join(client)
	s.touch(ctx, client.UserID)
}

// Disconnect removes the session. When it was the user's last one the
// profile's last seen time is updated.
func (s *EventService) Disconnect(ctx context.Context, client *websocket.Client) {
	if remaining := s.registry.Leave(client); remaining > 0 {
		return
	}
	if s.profiles == nil {
		return
	}
	if err := s.profiles.UpdateLastSeen(ctx, client.UserID, time.Now().UTC()); err != nil {
		logger.Warn(ctx, "update last seen failed", logger.ErrorField(err))
	}
}

// SendMessage stores a message from the session's user to req.ToUserID and
// delivers it to the live sessions of both participants.
func (s *EventService) SendMessage(ctx context.Context, session models.Session, req SendMessageRequest) (*models.Message, error) {
	if err := validate.Struct(req); err != nil {
		return nil, validationError(err)
	}
	senderID := session.UserID
	if req.ToUserID == senderID {
		return nil, apperror.New(apperror.CodeValidation, "cannot message yourself")
	}

	ok, err := s.guard.CanExchangeMessages(ctx, senderID, req.ToUserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errNotAuthorized
	}

	chat, err := s.messages.ChatFor(ctx, req.ChatID, senderID)
	if err != nil {
		return nil, err
	}
	if chat.Counterpart(senderID) != req.ToUserID {
		return nil, errNotInChat
	}

	message, err := s.messages.appendTo(ctx, chat, senderID, req.Content)
	if err != nil {
		return nil, err
	}

	s.registry.EmitToUser(req.ToUserID, websocket.TypeMessage, message)
	s.registry.EmitToUser(senderID, websocket.TypeMessage, message)
	return message, nil
}

// ReadMessages marks messages read and pushes the new unread count to the
// reader's own sessions. The other participant is not told.
func (s *EventService) ReadMessages(ctx context.Context, session models.Session, req ReadMessagesRequest) (UnreadCountEvent, error) {
	flipped, err := s.messages.MarkRead(ctx, session.UserID, req.MessageIDs)
	if err != nil {
		return UnreadCountEvent{}, err
	}
	count, err := s.unread.Count(ctx, session.UserID)
	if err != nil {
		return UnreadCountEvent{}, err
	}

	event := UnreadCountEvent{Count: count, Delta: -flipped}
	s.registry.EmitToUser(session.UserID, websocket.TypeUnreadCount, event)
	return event, nil
}

// Ping refreshes presence in the background. It never fails and never
// answers.
func (s *EventService) Ping(ctx context.Context, session models.Session) {
	s.touch(ctx, session.UserID)
}

func (s *EventService) touch(ctx context.Context, userID uuid.UUID) {
	if s.presence == nil {
		return
	}
	go func() {
		tctx, cancel := context.WithTimeout(context.Background(), s.pingTimeout)
		defer cancel()
		if err := s.presence.Touch(tctx, userID); err != nil {
			logger.Debug(ctx, "presence touch failed", logger.ErrorField(err))
		}
	}()
}
