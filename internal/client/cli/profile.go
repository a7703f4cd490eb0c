package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/taskly/internal/client/lifecycle"
	"github.com/dmitrijs2005/taskly/internal/client/models"
	"github.com/dmitrijs2005/taskly/internal/filex"
	"github.com/dmitrijs2005/taskly/internal/netx"
)

const maxAvatarBytes = 5 << 20

func (a *App) Profile(ctx context.Context) error {
	r := a.gw.GetProfile(ctx)
	if !r.OK {
		return r.Err
	}
	u := r.Payload
	a.printf("Name:    %s\n", u.DisplayName())
	a.printf("Email:   %s\n", u.Email)
	if u.Bio != "" {
		a.printf("Bio:     %s\n", u.Bio)
	}
	if !u.CreatedAt.IsZero() {
		a.printf("Joined:  %s\n", u.CreatedAt.Local().Format("2006-01-02"))
	}
	if th := a.gw.Theme(ctx); th.OK {
		a.printf("Theme:   %s\n", th.Payload)
	}
	if img := a.gw.ProfileImage(ctx); img.OK {
		ref := img.Payload
		if strings.HasPrefix(ref, "data:") {
			ref = "(stored on this device)"
		}
		a.printf("Avatar:  %s\n", ref)
	}
	return nil
}

func (a *App) EditProfile(ctx context.Context) error {
	u, _ := a.gw.Session().User()

	first, err := a.promptDefault("First name", u.FirstName)
	if err != nil {
		return err
	}
	last, err := a.promptDefault("Last name", u.LastName)
	if err != nil {
		return err
	}
	bio, err := a.promptDefault("Bio", u.Bio)
	if err != nil {
		return err
	}

	r := a.gw.UpdateProfile(ctx, models.ProfilePatch{FirstName: &first, LastName: &last, Bio: &bio})
	if !r.OK {
		return r.Err
	}
	a.printf("Profile updated\n")
	return nil
}

func (a *App) Passwd(ctx context.Context) error {
	var change models.PasswordChange
	var err error

	if change.CurrentPassword, err = a.password("Current password"); err != nil {
		return err
	}
	if change.NewPassword, err = a.password("New password"); err != nil {
		return err
	}
	confirm, err := a.password("Confirm new password")
	if err != nil {
		return err
	}
	if verr := lifecycle.ValidatePasswordChange(change, confirm); verr != nil {
		return verr
	}

	r := a.gw.ChangePassword(ctx, change)
	if !r.OK {
		return r.Err
	}
	a.printf("%s\n", r.Payload)
	return nil
}

func (a *App) Theme(ctx context.Context, name string) error {
	theme := models.Theme(strings.ToLower(name))
	if !theme.Valid() {
		return fmt.Errorf("unknown theme %q", name)
	}
	r := a.gw.SetTheme(ctx, theme)
	if !r.OK {
		return r.Err
	}
	a.printf("Theme set to %s\n", theme)
	return nil
}

// Avatar uploads an image file as the profile picture.
func (a *App) Avatar(ctx context.Context, path string) error {
	data, err := filex.ReadLimited(path, maxAvatarBytes)
	if err != nil {
		return err
	}
	contentType, ok := netx.DetectImageType(data)
	if !ok {
		return fmt.Errorf("%s is not a png, jpeg, gif or webp image", path)
	}
	r := a.gw.SetProfileImage(ctx, contentType, data)
	if !r.OK {
		return r.Err
	}
	a.printf("Profile image updated\n")
	return nil
}
