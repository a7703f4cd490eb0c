package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskly/internal/client/client"
	"github.com/dmitrijs2005/taskly/internal/client/models"
	"github.com/dmitrijs2005/taskly/internal/client/result"
	"github.com/dmitrijs2005/taskly/internal/client/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTheme_StoredLocallyAndPushed(t *testing.T) {
	f := setup(t)
	f.register(t)
	ctx := context.Background()

	r := f.gw.SetTheme(ctx, models.ThemeDark)
	require.True(t, r.OK)
	assert.Equal(t, models.ThemeDark, f.remote.profiles[alice.Email].Theme)

	th := f.gw.Theme(ctx)
	require.True(t, th.OK)
	assert.Equal(t, models.ThemeDark, th.Payload)
}

func TestTheme_OfflineStillSticks(t *testing.T) {
	f := setup(t)
	f.register(t)
	f.conn.online = false
	ctx := context.Background()

	require.True(t, f.gw.SetTheme(ctx, models.ThemeGreen).OK)
	assert.Equal(t, models.ThemeGreen, f.gw.Theme(ctx).Payload)
	u, _ := f.gw.Session().User()
	assert.Equal(t, models.ThemeGreen, u.Theme)
}

func TestTutorial_ShownOnce(t *testing.T) {
	f := setup(t)
	f.register(t)
	ctx := context.Background()

	seen := f.gw.TutorialSeen(ctx)
	require.True(t, seen.OK)
	assert.False(t, seen.Payload)

	require.True(t, f.gw.MarkTutorialSeen(ctx).OK)
	assert.True(t, f.gw.TutorialSeen(ctx).Payload)
}

func TestProfileImage_DefaultAvatar(t *testing.T) {
	f := setup(t)
	f.register(t)

	r := f.gw.ProfileImage(context.Background())
	require.True(t, r.OK)
	assert.Equal(t, store.DefaultAvatarURL("A B"), r.Payload)
}

func TestSetProfileImage_UploadsThroughPresignedURL(t *testing.T) {
	f := setup(t)
	f.register(t)
	f.remote.upload = models.ProfileImageUpload{UploadURL: "https://s3/put", ImageURL: "https://s3/img.png"}

	var gotURL string
	orig := uploadPresigned
	uploadPresigned = func(ctx context.Context, hc *http.Client, url, contentType string, body []byte) error {
		gotURL = url
		return nil
	}
	t.Cleanup(func() { uploadPresigned = orig })

	ctx := context.Background()
	r := f.gw.SetProfileImage(ctx, "image/png", []byte{1, 2})
	require.True(t, r.OK, r.Message())
	assert.Equal(t, "https://s3/put", gotURL)
	assert.Equal(t, "https://s3/img.png", f.gw.ProfileImage(ctx).Payload)
}

func TestSetProfileImage_UploadFailureStoresDataURL(t *testing.T) {
	f := setup(t)
	f.register(t)

	orig := uploadPresigned
	uploadPresigned = func(context.Context, *http.Client, string, string, []byte) error {
		return errors.New("connection reset")
	}
	t.Cleanup(func() { uploadPresigned = orig })

	r := f.gw.SetProfileImage(context.Background(), "image/png", []byte("hi"))
	require.True(t, r.OK)
	assert.Equal(t, "data:image/png;base64,aGk=", r.Payload)
}

func TestSetProfileImage_Offline(t *testing.T) {
	f := setup(t)
	f.register(t)
	f.conn.online = false

	r := f.gw.SetProfileImage(context.Background(), "image/jpeg", []byte("hi"))
	require.True(t, r.OK)
	assert.Equal(t, "data:image/jpeg;base64,aGk=", r.Payload)
	assert.Zero(t, f.remote.called("RequestProfileImageUpload"))
}

func TestRememberedEmail(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	assert.Equal(t, "", f.gw.RememberedEmail(ctx).Payload)
	require.True(t, f.gw.RememberEmail(ctx, "A@b.com").OK)
	assert.Equal(t, "a@b.com", f.gw.RememberedEmail(ctx).Payload)
	require.True(t, f.gw.RememberEmail(ctx, "").OK)
	assert.Equal(t, "", f.gw.RememberedEmail(ctx).Payload)
}

func TestNotifications_PersistListClear(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	// no session: persisting is a no-op, listing needs a login
	require.NoError(t, f.gw.PersistReminders(ctx, []models.ReminderEntry{{TaskID: "x"}}))
	assert.True(t, f.gw.Notifications(ctx).Is(result.KindSessionExpired))

	f.register(t)
	at := time.Date(2025, 1, 1, 8, 30, 0, 0, time.UTC)
	require.NoError(t, f.gw.PersistReminders(ctx, []models.ReminderEntry{
		{TaskID: "t1", Title: "first", FiresAt: at},
		{TaskID: "t2", Title: "second", FiresAt: at},
	}))

	n := f.gw.Notifications(ctx)
	require.True(t, n.OK)
	require.Len(t, n.Payload, 2)
	assert.Equal(t, "t2", n.Payload[0].TaskID)

	require.True(t, f.gw.ClearNotifications(ctx).OK)
	assert.Empty(t, f.gw.Notifications(ctx).Payload)
}

func TestSetTheme_ExpiredSession(t *testing.T) {
	f := setup(t)
	f.register(t)
	f.remote.err = client.ErrUnauthorized

	r := f.gw.SetTheme(context.Background(), models.ThemeBlue)
	assert.True(t, r.Is(result.KindSessionExpired))
	assert.Equal(t, 1, f.notify.n)
}
