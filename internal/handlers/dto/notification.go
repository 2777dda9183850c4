package dto

import (
	"github.com/google/uuid"
	"github.com/thereayou/matcha/internal/services"
)

// ReadNotificationsRequest is the body of POST /notifications/read.
type ReadNotificationsRequest struct {
	NotificationIDs []uuid.UUID `json:"notificationIds" binding:"required,min=1,max=500"`
}

type NotificationsResponse struct {
	Notifications []services.NotificationEvent `json:"notifications"`
}

type ReadNotificationsResponse struct {
	Updated int64 `json:"updated"`
}
