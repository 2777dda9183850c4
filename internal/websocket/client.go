package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/thereayou/matcha/internal/apperror"
	"github.com/thereayou/matcha/internal/models"
	"github.com/thereayou/matcha/pkg/logger"
)

const (
	// Время ожидания записи
	writeWait = 10 * time.Second

	// Время ожидания pong от клиента
	pongWait = 60 * time.Second

	// Интервал отправки ping, должен быть меньше pongWait
	pingPeriod = (pongWait * 9) / 10

	// Максимальный размер входящего кадра
	maxMessageSize = 64 * 1024 // 64KB

	DefaultSendBuffer = 256
)

var (
	ErrClientQueueFull = errors.New("client send queue is full")
	ErrClientClosed    = errors.New("client is closed")
)

// ClientMessageHandler receives decoded inbound frames of one session.
// A returned error is sent back as an error frame; the session stays open.
type ClientMessageHandler interface {
	HandleMessage(client *Client, msg *Envelope) error
	HandleClose(client *Client)
}

// ErrorPayload is the data of an error frame.
type ErrorPayload struct {
	Event     EventType     `json:"event,omitempty"`
	Code      apperror.Code `json:"code"`
	Message   string        `json:"message"`
	Retryable bool          `json:"retryable"`
}

// Client is one authenticated transport session.
type Client struct {
	ID      uuid.UUID
	UserID  uuid.UUID
	Session models.Session
	Conn    *websocket.Conn
	Send    chan []byte

	done chan struct{}
	once sync.Once
}

// NewClient wraps conn for an already authenticated session.
func NewClient(conn *websocket.Conn, session models.Session, sendBuffer int) *Client {
	if sendBuffer <= 0 {
		sendBuffer = DefaultSendBuffer
	}
	return &Client{
		ID:      session.ID,
		UserID:  session.UserID,
		Session: session,
		Conn:    conn,
		Send:    make(chan []byte, sendBuffer),
		done:    make(chan struct{}),
	}
}

// Context returns a context carrying the session's log fields.
func (c *Client) Context() context.Context {
	return logger.WithFields(context.Background(),
		logger.Stringer("user_id", c.UserID),
		logger.Stringer("session_id", c.ID),
	)
}

// Done is closed once the session is closed.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close is idempotent.
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.done)
		if c.Conn != nil {
			_ = c.Conn.Close()
		}
	})
}

// Enqueue queues a frame without blocking. It returns false when the session
// is closed or its queue is full.
func (c *Client) Enqueue(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.Send <- frame:
		return true
	default:
		return false
	}
}

// ReadPump decodes inbound frames until the connection fails, then hands
// the session to handler.HandleClose.
func (c *Client) ReadPump(handler ClientMessageHandler) {
	ctx := c.Context()
	defer func() {
		handler.HandleClose(c)
		c.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn(ctx, "websocket read failed", logger.ErrorField(err))
			}
			return
		}

		var msg Envelope
		if err := json.Unmarshal(raw, &msg); err != nil || msg.Type == "" {
			c.SendError("", "", apperror.New(apperror.CodeValidation, "invalid frame format"))
			continue
		}

		if err := handler.HandleMessage(c, &msg); err != nil {
			c.SendError(msg.Ref, msg.Type, err)
		}
	}
}

// WritePump writes queued frames and keeps the connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			// Сессия закрыта: прощаемся с клиентом
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case frame := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendMessage queues one frame to this session only.
func (c *Client) SendMessage(event EventType, ref string, data interface{}) error {
	frame, err := encodeFrame(event, ref, data)
	if err != nil {
		return err
	}
	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}
	if !c.Enqueue(frame) {
		return ErrClientQueueFull
	}
	return nil
}

// SendError acknowledges a failed event. Causes stay in the logs.
func (c *Client) SendError(ref string, event EventType, err error) {
	payload := ErrorPayload{
		Event:     event,
		Code:      apperror.CodeOf(err),
		Message:   apperror.MessageOf(err),
		Retryable: apperror.IsRetryable(err),
	}
	if sendErr := c.SendMessage(TypeError, ref, payload); sendErr != nil {
		logger.Debug(c.Context(), "error frame not sent", logger.ErrorField(sendErr))
	}
}
