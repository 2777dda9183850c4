package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/thereayou/matcha/internal/apperror"
	"github.com/thereayou/matcha/internal/models"
	"github.com/thereayou/matcha/pkg/logger"
)

// ProfileViews serves profile previews and records a VIEW notification for
// the viewed user.
type ProfileViews struct {
	profiles ProfileRepository
	guard    *RelationshipGuard
	fanout   *NotificationFanout
}

func NewProfileViews(profiles ProfileRepository, guard *RelationshipGuard, fanout *NotificationFanout) *ProfileViews {
	return &ProfileViews{profiles: profiles, guard: guard, fanout: fanout}
}

// ViewProfile returns targetID's preview. Unless the viewer looks at their own
// profile or a block exists either way, the target is notified before this
// returns. A notification failure is logged and does not fail the view.
func (v *ProfileViews) ViewProfile(ctx context.Context, viewerID, targetID uuid.UUID) (models.ProfilePreview, error) {
	if targetID == uuid.Nil {
		return models.ProfilePreview{}, apperror.New(apperror.CodeValidation, "invalid user id")
	}

	previews, err := v.profiles.GetProfilePreviews(ctx, []uuid.UUID{targetID})
	if err != nil {
		return models.ProfilePreview{}, storageError(err, "user")
	}
	preview, ok := previews[targetID]
	if !ok {
		return models.ProfilePreview{}, apperror.New(apperror.CodeNotFound, "user not found")
	}

	if viewerID == targetID {
		return preview, nil
	}
	if err := v.notifyView(ctx, viewerID, targetID); err != nil {
		logger.Warn(ctx, "view notification failed",
			logger.Stringer("target_id", targetID),
			logger.ErrorField(err),
		)
	}
	return preview, nil
}

func (v *ProfileViews) notifyView(ctx context.Context, viewerID, targetID uuid.UUID) error {
	blocked, err := v.guard.Blocked(ctx, viewerID, targetID)
	if err != nil || blocked {
		return err
	}
	_, err = v.fanout.CreateNotification(ctx, targetID, models.NotificationView, viewerID)
	return err
}
