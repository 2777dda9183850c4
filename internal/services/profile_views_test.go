package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thereayou/matcha/internal/apperror"
	"github.com/thereayou/matcha/internal/models"
	"github.com/thereayou/matcha/internal/websocket"
)

func newProfileViews(env *testEnv) *ProfileViews {
	return NewProfileViews(env.store, env.guard, env.notifications)
}

func TestViewProfileNotifiesTarget(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	viewer, target := env.user(t, "viewer"), env.user(t, "target")
	live := env.connect(target)

	preview, err := newProfileViews(env).ViewProfile(ctx, viewer, target)
	require.NoError(t, err)
	assert.Equal(t, "target", preview.Username)

	// the event is queued before ViewProfile returns
	var pushed NotificationEvent
	require.Equal(t, websocket.TypeNotification, nextFrame(t, live, &pushed))
	assert.Equal(t, models.NotificationView, pushed.Type)
	assert.Equal(t, viewer, pushed.Payload.SourceUserID)

	stored, err := env.notifications.ListNotifications(ctx, target)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, pushed.ID, stored[0].ID)
}

func TestViewOwnProfileIsSilent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	me := env.user(t, "me")

	_, err := newProfileViews(env).ViewProfile(ctx, me, me)
	require.NoError(t, err)

	stored, err := env.notifications.ListNotifications(ctx, me)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestViewProfileBlockedOrMissing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	viewer, target := env.user(t, "viewer"), env.user(t, "target")
	env.store.Block(target, viewer)
	views := newProfileViews(env)

	preview, err := views.ViewProfile(ctx, viewer, target)
	require.NoError(t, err)
	assert.Equal(t, target, preview.ID)

	_, err = views.ViewProfile(ctx, viewer, uuid.New())
	assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(err))

	stored, err := env.notifications.ListNotifications(ctx, target)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestViewProfileByUnknownViewerStillServes(t *testing.T) {
	env := newTestEnv(t)
	target := env.user(t, "target")

	// the viewer has no profile row, so the notification cannot resolve its source
	preview, err := newProfileViews(env).ViewProfile(context.Background(), uuid.New(), target)
	require.NoError(t, err)
	assert.Equal(t, target, preview.ID)
}
