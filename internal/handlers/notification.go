package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/matcha/internal/handlers/dto"
	"github.com/thereayou/matcha/internal/middleware"
	"github.com/thereayou/matcha/internal/services"
)

type NotificationHandler struct {
	notifications *services.NotificationFanout
}

func NewNotificationHandler(notifications *services.NotificationFanout) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// GetNotifications lists the caller's notifications, newest first.
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	events, err := h.notifications.ListNotifications(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NotificationsResponse{Notifications: events})
}

// ReadNotifications marks the caller's notifications read. Ids owned by
// someone else are ignored.
func (h *NotificationHandler) ReadNotifications(c *gin.Context) {
	var req dto.ReadNotificationsRequest
	if !bindJSON(c, &req) {
		return
	}

	n, err := h.notifications.ReadNotifications(c.Request.Context(), middleware.CurrentUserID(c), req.NotificationIDs)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ReadNotificationsResponse{Updated: n})
}
