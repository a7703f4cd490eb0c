package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/taskly/internal/client/models"
	"github.com/dmitrijs2005/taskly/internal/client/result"
	"github.com/dmitrijs2005/taskly/internal/common"
)

// Register creates an account. A successful remote registration is mirrored
// locally so the user can later log in offline; an offline registration
// lives only in the local directory until the user logs in online.
// Either way the new user is logged in.
func (g *Gateway) Register(ctx context.Context, reg models.Registration) result.Result[models.AuthPayload] {
	reg.Email = common.NormalizeEmail(reg.Email)
	return run(ctx, g, call[models.AuthPayload]{
		op:        "register",
		anonymous: true,
		remote: func(ctx context.Context) (models.AuthPayload, error) {
			return g.remote.Register(ctx, reg)
		},
		mirror: func(ctx context.Context, p models.AuthPayload) error {
			return g.establish(ctx, p, reg.Password)
		},
		local: func(ctx context.Context) (models.AuthPayload, error) {
			u := models.User{
				Email:     reg.Email,
				FirstName: reg.FirstName,
				LastName:  reg.LastName,
				CreatedAt: g.now().UTC(),
				Theme:     models.ThemeLight,
			}
			if err := g.local.SaveUser(ctx, u, reg.Password); err != nil {
				return models.AuthPayload{}, err
			}
			p := models.AuthPayload{User: u}
			return p, g.startSession(ctx, p)
		},
	})
}

// Login authenticates remotely, or against the local verifier when offline.
func (g *Gateway) Login(ctx context.Context, creds models.Credentials) result.Result[models.AuthPayload] {
	creds.Email = common.NormalizeEmail(creds.Email)
	return run(ctx, g, call[models.AuthPayload]{
		op:        "login",
		anonymous: true,
		remote: func(ctx context.Context) (models.AuthPayload, error) {
			return g.remote.Login(ctx, creds)
		},
		mirror: func(ctx context.Context, p models.AuthPayload) error {
			return g.establish(ctx, p, creds.Password)
		},
		local: func(ctx context.Context) (models.AuthPayload, error) {
			u, err := g.local.VerifyPassword(ctx, creds.Email, creds.Password)
			switch {
			case errors.Is(err, common.ErrorNotFound):
				return models.AuthPayload{}, &result.Error{Kind: result.KindInvalidCredentials, Detail: "User not found"}
			case errors.Is(err, common.ErrorUnauthorized):
				return models.AuthPayload{}, &result.Error{Kind: result.KindInvalidCredentials, Detail: "Invalid password"}
			case err != nil:
				return models.AuthPayload{}, err
			}
			p := models.AuthPayload{User: u}
			return p, g.startSession(ctx, p)
		},
	})
}

// establish runs after a remote register/login: session first, so the
// caller is logged in even if the local mirror write fails.
func (g *Gateway) establish(ctx context.Context, p models.AuthPayload, password string) error {
	p.User.Email = common.NormalizeEmail(p.User.Email)
	if err := g.startSession(ctx, p); err != nil {
		return err
	}
	return g.local.MirrorUser(ctx, p.User, password)
}

func (g *Gateway) startSession(ctx context.Context, p models.AuthPayload) error {
	g.sess.Set(p.Token, p.User)
	if err := g.local.SaveSession(ctx, p.Token, p.User); err != nil {
		return err
	}
	return g.local.InitUserData(ctx, p.User.Email, p.User.DisplayName())
}

// Logout forgets the session in memory and on disk. Local data stays.
func (g *Gateway) Logout(ctx context.Context) result.Result[struct{}] {
	g.sess.Clear()
	if err := g.local.ClearSession(ctx); err != nil {
		return result.FromError[struct{}](err)
	}
	return result.Ok(struct{}{})
}

// RestoreSession loads the persisted session and refreshes the profile.
// It fails with SessionExpired when nothing was saved or the server
// rejects the saved token.
func (g *Gateway) RestoreSession(ctx context.Context) result.Result[models.User] {
	token, err := g.local.SessionToken(ctx)
	if err != nil {
		return result.FromError[models.User](err)
	}
	u, err := g.local.CurrentUser(ctx)
	if err != nil {
		return result.FromError[models.User](err)
	}
	if u == nil {
		return result.Fail[models.User](result.KindSessionExpired, "no saved session")
	}
	g.sess.Set(token, *u)
	if token == "" {
		// offline session: nothing to validate against the server
		return result.Ok(*u)
	}
	return g.GetProfile(ctx)
}

func (g *Gateway) GetProfile(ctx context.Context) result.Result[models.User] {
	return run(ctx, g, call[models.User]{
		op:     "get_profile",
		remote: g.remote.GetProfile,
		mirror: g.mirrorProfile,
		local: func(ctx context.Context) (models.User, error) {
			email, rerr := g.owner()
			if rerr != nil {
				return models.User{}, rerr
			}
			lu, err := g.local.FindUserByEmail(ctx, email)
			if err != nil {
				return models.User{}, err
			}
			if lu == nil {
				u, _ := g.sess.User()
				return u, nil
			}
			return lu.Profile, nil
		},
	})
}

func (g *Gateway) UpdateProfile(ctx context.Context, patch models.ProfilePatch) result.Result[models.User] {
	return run(ctx, g, call[models.User]{
		op: "update_profile",
		remote: func(ctx context.Context) (models.User, error) {
			return g.remote.UpdateProfile(ctx, patch)
		},
		mirror: g.mirrorProfile,
		local: func(ctx context.Context) (models.User, error) {
			email, rerr := g.owner()
			if rerr != nil {
				return models.User{}, rerr
			}
			u, err := g.local.UpdateUser(ctx, email, patch)
			if errors.Is(err, common.ErrorNotFound) {
				return models.User{}, &result.Error{Kind: result.KindInternal, Detail: "user is not in the local directory"}
			}
			if err != nil {
				return models.User{}, err
			}
			g.sess.SetUser(u)
			return u, nil
		},
	})
}

// mirrorProfile copies a server profile into the session and local store.
func (g *Gateway) mirrorProfile(ctx context.Context, u models.User) error {
	u.Email = common.NormalizeEmail(u.Email)
	g.sess.SetUser(u)
	if err := g.local.SetCurrentUser(ctx, u); err != nil {
		return err
	}
	_, err := g.local.UpdateUser(ctx, u.Email, models.ProfilePatch{
		FirstName:       &u.FirstName,
		LastName:        &u.LastName,
		Bio:             &u.Bio,
		Theme:           &u.Theme,
		HasSeenTutorial: &u.HasSeenTutorial,
	})
	if errors.Is(err, common.ErrorNotFound) {
		// restored sessions may predate the local directory entry
		return nil
	}
	return err
}

// ChangePassword verifies the current password and stores the new one.
func (g *Gateway) ChangePassword(ctx context.Context, change models.PasswordChange) result.Result[string] {
	return run(ctx, g, call[string]{
		op: "change_password",
		remote: func(ctx context.Context) (string, error) {
			return g.remote.ChangePassword(ctx, change)
		},
		mirror: func(ctx context.Context, _ string) error {
			email, rerr := g.owner()
			if rerr != nil {
				return rerr
			}
			err := g.local.SetPassword(ctx, email, change.NewPassword)
			if errors.Is(err, common.ErrorNotFound) {
				return nil
			}
			return err
		},
		local: func(ctx context.Context) (string, error) {
			email, rerr := g.owner()
			if rerr != nil {
				return "", rerr
			}
			if _, err := g.local.VerifyPassword(ctx, email, change.CurrentPassword); err != nil {
				if errors.Is(err, common.ErrorUnauthorized) {
					return "", &result.Error{Kind: result.KindInvalidCredentials, Detail: "Current password is incorrect"}
				}
				return "", err
			}
			if err := g.local.SetPassword(ctx, email, change.NewPassword); err != nil {
				return "", err
			}
			return "Password changed successfully", nil
		},
	})
}
