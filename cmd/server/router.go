package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/matcha/internal/handlers"
	"github.com/thereayou/matcha/internal/metrics"
	"github.com/thereayou/matcha/internal/middleware"
)

type Handlers struct {
	Auth          *handlers.AuthHandler
	Chats         *handlers.ChatHandler
	Messages      *handlers.HTTPMessageHandler
	Notifications *handlers.NotificationHandler
	Users         *handlers.UserHandler
	WebSocket     *handlers.WebSocketHandler
}

func APIEndpoints(r *gin.Engine, authenticator middleware.TokenAuthenticator, h Handlers) {
	r.Use(gin.Recovery(), middleware.RequestLogger())
	r.NoRoute(middleware.NoRoute)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// authenticates on its own: the token may also come from the
	// subprotocol list or the query string
	r.GET("/ws", h.WebSocket.HandleWebSocket)

	api := r.Group("/", middleware.AuthMiddleware(authenticator))
	{
		api.POST("/auth/logout", h.Auth.Logout)

		api.GET("/chats/conversations", h.Chats.GetConversations)
		api.POST("/chats", h.Chats.OpenChat)

		api.GET("/messages/unread/count", h.Messages.GetUnreadCount)
		api.POST("/messages/read", h.Messages.ReadMessages)
		api.GET("/messages/:chatId", h.Messages.GetChatMessages)

		api.GET("/notifications", h.Notifications.GetNotifications)
		api.POST("/notifications/read", h.Notifications.ReadNotifications)

		api.GET("/users/:id", h.Users.GetUser)
	}
}
