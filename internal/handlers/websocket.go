package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"
	"github.com/thereayou/matcha/internal/apperror"
	"github.com/thereayou/matcha/internal/metrics"
	"github.com/thereayou/matcha/internal/middleware"
	"github.com/thereayou/matcha/internal/services"
	ws "github.com/thereayou/matcha/internal/websocket"
	"github.com/thereayou/matcha/pkg/logger"
)

const (
	// Subprotocol is selected when the client offers it.
	Subprotocol = "matcha.v1"

	// bearerProtocolPrefix marks the auth payload entry of
	// Sec-WebSocket-Protocol: "bearer.<token>".
	bearerProtocolPrefix = "bearer."
)

// WebSocketHandler is the gateway: it authenticates the handshake before
// upgrading, registers the session and starts its pumps.
type WebSocketHandler struct {
	authenticator *services.SessionAuthenticator
	events        *services.EventService
	eventHandler  *EventHandler
	upgrader      websocket.Upgrader
	sendBuffer    int
}

// NewWebSocketHandler builds the gateway. An empty allowedOrigins accepts any
// origin.
func NewWebSocketHandler(
	authenticator *services.SessionAuthenticator,
	events *services.EventService,
	eventHandler *EventHandler,
	allowedOrigins []string,
	sendBuffer int,
) *WebSocketHandler {
	return &WebSocketHandler{
		authenticator: authenticator,
		events:        events,
		eventHandler:  eventHandler,
		sendBuffer:    sendBuffer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			Subprotocols:    []string{Subprotocol},
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		if len(allowed) == 0 {
			return true
		}
		origin := r.Header.Get("Origin")
		return origin == "" || lo.Contains(allowed, origin)
	}
}

// HandleWebSocket authenticates, upgrades and runs one session. Handshake
// failures are answered over plain HTTP and no session state is created.
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	hs := services.Handshake{
		Authorization: c.GetHeader("Authorization"),
		AuthPayload:   protocolToken(c.Request),
		Query:         c.Query("token"),
	}
	session, err := h.authenticator.Authenticate(c.Request.Context(), hs)
	if err != nil {
		metrics.HandshakesTotal.WithLabelValues(string(apperror.CodeOf(err))).Inc()
		middleware.WriteError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader has already answered the request
		metrics.HandshakesTotal.WithLabelValues("upgrade_failed").Inc()
		logger.Debug(c.Request.Context(), "websocket upgrade failed", logger.ErrorField(err))
		return
	}
	metrics.HandshakesTotal.WithLabelValues("ok").Inc()

	client := ws.NewClient(conn, *session, h.sendBuffer)
	h.events.Connect(client.Context(), client)

	go client.WritePump()
	go client.ReadPump(h.eventHandler)
}

// protocolToken extracts the token from a "bearer.<token>" subprotocol entry.
func protocolToken(r *http.Request) string {
	for _, p := range websocket.Subprotocols(r) {
		if strings.HasPrefix(p, bearerProtocolPrefix) {
			return strings.TrimPrefix(p, bearerProtocolPrefix)
		}
	}
	return ""
}
