package services

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/taskly/internal/client/client"
	"github.com/dmitrijs2005/taskly/internal/client/models"
	"github.com/dmitrijs2005/taskly/internal/client/result"
	"github.com/dmitrijs2005/taskly/internal/netx"
)

// uploadPresigned is a seam for tests.
var uploadPresigned = netx.UploadPresigned

// SetTheme stores the theme locally and pushes it to the profile.
// The local write always happens, so the theme sticks while offline.
func (g *Gateway) SetTheme(ctx context.Context, theme models.Theme) result.Result[models.Theme] {
	email, rerr := g.owner()
	if rerr != nil {
		return result.Result[models.Theme]{Err: rerr}
	}
	if err := g.local.SetTheme(ctx, email, theme); err != nil {
		return result.FromError[models.Theme](err)
	}
	r := g.UpdateProfile(ctx, models.ProfilePatch{Theme: &theme})
	return result.Map(r, func(u models.User) models.Theme { return u.Theme })
}

// Theme returns the current user's theme (light when unset).
func (g *Gateway) Theme(ctx context.Context) result.Result[models.Theme] {
	email, rerr := g.owner()
	if rerr != nil {
		return result.Result[models.Theme]{Err: rerr}
	}
	t, err := g.local.Theme(ctx, email)
	if err != nil {
		return result.FromError[models.Theme](err)
	}
	return result.Ok(t)
}

// TutorialSeen reports whether the onboarding text was already shown.
func (g *Gateway) TutorialSeen(ctx context.Context) result.Result[bool] {
	email, rerr := g.owner()
	if rerr != nil {
		return result.Result[bool]{Err: rerr}
	}
	if u, ok := g.sess.User(); ok && u.HasSeenTutorial {
		return result.Ok(true)
	}
	seen, err := g.local.TutorialSeen(ctx, email)
	if err != nil {
		return result.FromError[bool](err)
	}
	return result.Ok(seen)
}

func (g *Gateway) MarkTutorialSeen(ctx context.Context) result.Result[struct{}] {
	email, rerr := g.owner()
	if rerr != nil {
		return result.Result[struct{}]{Err: rerr}
	}
	if err := g.local.SetTutorialSeen(ctx, email, true); err != nil {
		return result.FromError[struct{}](err)
	}
	seen := true
	r := g.UpdateProfile(ctx, models.ProfilePatch{HasSeenTutorial: &seen})
	return result.Map(r, func(models.User) struct{} { return struct{}{} })
}

// ProfileImage returns the stored avatar reference or the generated default.
func (g *Gateway) ProfileImage(ctx context.Context) result.Result[string] {
	email, rerr := g.owner()
	if rerr != nil {
		return result.Result[string]{Err: rerr}
	}
	u, _ := g.sess.User()
	ref, err := g.local.ProfileImage(ctx, email, u.DisplayName())
	if err != nil {
		return result.FromError[string](err)
	}
	return result.Ok(ref)
}

// SetProfileImage uploads data through a presigned URL when the server is
// reachable and stores the resulting URL; offline it stores a data: URL.
func (g *Gateway) SetProfileImage(ctx context.Context, contentType string, data []byte) result.Result[string] {
	email, rerr := g.owner()
	if rerr != nil {
		return result.Result[string]{Err: rerr}
	}
	r := run(ctx, g, call[string]{
		op: "set_profile_image",
		remote: func(ctx context.Context) (string, error) {
			up, err := g.remote.RequestProfileImageUpload(ctx, contentType)
			if err != nil {
				return "", err
			}
			if err := uploadPresigned(ctx, http.DefaultClient, up.UploadURL, contentType, data); err != nil {
				// object storage down is as good as the server being down
				return "", errors.Join(client.ErrUnavailable, err)
			}
			return up.ImageURL, nil
		},
		local: func(ctx context.Context) (string, error) {
			return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
		},
	})
	if !r.OK {
		return r
	}
	if err := g.local.SetProfileImage(ctx, email, r.Payload); err != nil {
		return result.FromError[string](err)
	}
	return r
}

func (g *Gateway) RememberEmail(ctx context.Context, email string) result.Result[struct{}] {
	if err := g.local.SetRememberedEmail(ctx, email); err != nil {
		return result.FromError[struct{}](err)
	}
	return result.Ok(struct{}{})
}

func (g *Gateway) RememberedEmail(ctx context.Context) result.Result[string] {
	e, err := g.local.RememberedEmail(ctx)
	if err != nil {
		return result.FromError[string](err)
	}
	return result.Ok(e)
}

// PersistReminders saves the derived reminder entries of the current user.
// Without a session it is a no-op.
func (g *Gateway) PersistReminders(ctx context.Context, entries []models.ReminderEntry) error {
	email := g.sess.Email()
	if email == "" {
		return nil
	}
	return g.local.SaveReminders(ctx, email, entries)
}

// Notifications lists the persisted reminder entries, newest first.
func (g *Gateway) Notifications(ctx context.Context) result.Result[[]models.ReminderEntry] {
	email, rerr := g.owner()
	if rerr != nil {
		return result.Result[[]models.ReminderEntry]{Err: rerr}
	}
	entries, err := g.local.Reminders(ctx, email)
	if err != nil {
		return result.FromError[[]models.ReminderEntry](err)
	}
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return result.Ok(entries)
}

// ClearNotifications empties the persisted list. Armed timers are untouched.
func (g *Gateway) ClearNotifications(ctx context.Context) result.Result[struct{}] {
	email, rerr := g.owner()
	if rerr != nil {
		return result.Result[struct{}]{Err: rerr}
	}
	if err := g.local.SaveReminders(ctx, email, nil); err != nil {
		return result.FromError[struct{}](err)
	}
	return result.Ok(struct{}{})
}
