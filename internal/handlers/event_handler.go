package handlers

import (
	"encoding/json"
	"time"

	"github.com/thereayou/matcha/internal/apperror"
	"github.com/thereayou/matcha/internal/metrics"
	"github.com/thereayou/matcha/internal/services"
	"github.com/thereayou/matcha/internal/websocket"
	"github.com/thereayou/matcha/pkg/logger"
)

// EventHandler routes inbound frames of a session to the EventService.
type EventHandler struct {
	events *services.EventService
}

func NewEventHandler(events *services.EventService) *EventHandler {
	return &EventHandler{events: events}
}

func (h *EventHandler) HandleMessage(client *websocket.Client, msg *websocket.Envelope) error {
	start := time.Now()
	err := h.dispatch(client, msg)

	event := string(msg.Type)
	if !knownEvent(msg.Type) {
		event = "unknown"
	}
	result := "ok"
	if err != nil {
		result = string(apperror.CodeOf(err))
		logger.Debug(client.Context(), "event rejected",
			logger.String("event", event),
			logger.ErrorField(err),
		)
	}
	metrics.EventsTotal.WithLabelValues(event, result).Inc()
	metrics.EventLatency.WithLabelValues(event).Observe(time.Since(start).Seconds())
	return err
}

func (h *EventHandler) HandleClose(client *websocket.Client) {
	h.events.Disconnect(client.Context(), client)
}

func (h *EventHandler) dispatch(client *websocket.Client, msg *websocket.Envelope) error {
	ctx := client.Context()

	switch msg.Type {
	case websocket.TypeSendMessage:
		var req services.SendMessageRequest
		if err := decodeData(msg.Data, &req); err != nil {
			return err
		}
		_, err := h.events.SendMessage(ctx, client.Session, req)
		return err

	case websocket.TypeReadMessages:
		var req services.ReadMessagesRequest
		if err := decodeData(msg.Data, &req); err != nil {
			return err
		}
		_, err := h.events.ReadMessages(ctx, client.Session, req)
		return err

	case websocket.TypePing:
		h.events.Ping(ctx, client.Session)
		return nil

	default:
		return apperror.New(apperror.CodeValidation, "unknown event type")
	}
}

func knownEvent(t websocket.EventType) bool {
	switch t {
	case websocket.TypeSendMessage, websocket.TypeReadMessages, websocket.TypePing:
		return true
	}
	return false
}

func decodeData(data json.RawMessage, out interface{}) error {
	if len(data) == 0 {
		return apperror.New(apperror.CodeValidation, "missing event data")
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperror.Wrap(apperror.CodeValidation, "invalid event data", err)
	}
	return nil
}
