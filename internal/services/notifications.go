package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/thereayou/matcha/internal/apperror"
	"github.com/thereayou/matcha/internal/metrics"
	"github.com/thereayou/matcha/internal/models"
	"github.com/thereayou/matcha/internal/websocket"
	"github.com/thereayou/matcha/pkg/logger"
)

// Emitter pushes a server event to every live session of a user.
// Implemented by websocket.Hub.
type Emitter interface {
	EmitToUser(userID uuid.UUID, event websocket.EventType, payload interface{}) int
}

// NotificationPayload describes who triggered a notification.
type NotificationPayload struct {
	SourceUserID uuid.UUID              `json:"sourceUserId"`
	Source       *models.ProfilePreview `json:"source,omitempty"`
}

// NotificationEvent is the client representation of a notification, both on
// the wire and in GET /notifications.
type NotificationEvent struct {
	ID        uuid.UUID               `json:"id"`
	Type      models.NotificationType `json:"type"`
	Payload   NotificationPayload     `json:"payload"`
	Read      bool                    `json:"read"`
	CreatedAt time.Time               `json:"createdAt"`
}

func newNotificationEvent(n *models.Notification, source *models.ProfilePreview) NotificationEvent {
	return NotificationEvent{
		ID:   n.ID,
		Type: n.Type,
		Payload: NotificationPayload{
			SourceUserID: n.SourceID,
			Source:       source,
		},
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

type readNotificationsInput struct {
	NotificationIDs []uuid.UUID `validate:"required,min=1,max=500,dive,required"`
}

// NotificationFanout persists notifications and pushes them to the
// recipient's live sessions.
type NotificationFanout struct {
	repo     NotificationRepository
	profiles ProfileRepository
	emitter  Emitter
}

func NewNotificationFanout(repo NotificationRepository, profiles ProfileRepository, emitter Emitter) *NotificationFanout {
	return &NotificationFanout{repo: repo, profiles: profiles, emitter: emitter}
}

// CreateNotification stores the record, then resolves the source profile and
// emits it. The record is kept even when the source cannot be resolved; that
// failure is reported to the caller only. An offline recipient is not an
// error.
func (f *NotificationFanout) CreateNotification(ctx context.Context, recipientID uuid.UUID, kind models.NotificationType, sourceID uuid.UUID) (*NotificationEvent, error) {
	if !kind.Valid() {
		return nil, apperror.New(apperror.CodeValidation, "invalid notification type")
	}
	if recipientID == uuid.Nil || sourceID == uuid.Nil {
		return nil, apperror.New(apperror.CodeValidation, "invalid user id")
	}

	notification := &models.Notification{
		RecipientID: recipientID,
		Type:        kind,
		SourceID:    sourceID,
		Read:        false,
	}
	if err := f.repo.SaveNotification(ctx, notification); err != nil {
		return nil, storageError(err, "notification")
	}
	metrics.NotificationsTotal.WithLabelValues(string(kind)).Inc()

	previews, err := f.profiles.GetProfilePreviews(ctx, []uuid.UUID{sourceID})
	if err != nil {
		return nil, storageError(err, "source user")
	}
	source, ok := previews[sourceID]
	if !ok {
		return nil, apperror.New(apperror.CodeNotFound, "source user not found")
	}

	event := newNotificationEvent(notification, &source)
	delivered := f.emitter.EmitToUser(recipientID, websocket.TypeNotification, event)
	logger.Debug(ctx, "notification created",
		logger.Stringer("notification_id", notification.ID),
		logger.String("type", string(kind)),
		logger.Int("delivered", delivered),
	)
	return &event, nil
}

// ListNotifications returns userID's notifications, newest first. A source
// without a profile row leaves Payload.Source empty.
func (f *NotificationFanout) ListNotifications(ctx context.Context, userID uuid.UUID) ([]NotificationEvent, error) {
	notifications, err := f.repo.GetUserNotifications(ctx, userID)
	if err != nil {
		return nil, storageError(err, "notification")
	}
	if len(notifications) == 0 {
		return []NotificationEvent{}, nil
	}

	sources := lo.Uniq(lo.Map(notifications, func(n models.Notification, _ int) uuid.UUID {
		return n.SourceID
	}))
	previews, err := f.profiles.GetProfilePreviews(ctx, sources)
	if err != nil {
		return nil, storageError(err, "source user")
	}

	events := make([]NotificationEvent, 0, len(notifications))
	for i := range notifications {
		var source *models.ProfilePreview
		if p, ok := previews[notifications[i].SourceID]; ok {
			source = &p
		}
		events = append(events, newNotificationEvent(&notifications[i], source))
	}
	return events, nil
}

// ReadNotifications marks notifications read. Only records owned by userID
// are touched; other ids are skipped silently.
func (f *NotificationFanout) ReadNotifications(ctx context.Context, userID uuid.UUID, notificationIDs []uuid.UUID) (int64, error) {
	if err := validate.Struct(readNotificationsInput{NotificationIDs: notificationIDs}); err != nil {
		return 0, validationError(err)
	}
	n, err := f.repo.MarkNotificationsRead(ctx, userID, lo.Uniq(notificationIDs))
	if err != nil {
		return 0, storageError(err, "notification")
	}
	return n, nil
}
