package cli

import (
	"context"

	"github.com/dmitrijs2005/taskly/internal/client/lifecycle"
	"github.com/dmitrijs2005/taskly/internal/client/models"
	"github.com/dmitrijs2005/taskly/internal/common"
)

// getSimpleText, getTextWithDefault and getPassword are indirections used to
// facilitate testing.
var (
	getSimpleText      = GetSimpleText
	getTextWithDefault = GetTextWithDefault
	getPassword        = GetPassword
)

const tutorialText = `Getting started:
  add                 create a task (title, description, date, time, priority, reminder)
  list                show your active tasks
  swipe <id> -100     archive a task, swipe <id> 100 deletes it
  archived / restore  look at and bring back archived tasks
  reminders           see reminders that were scheduled
Everything works offline too; changes are kept on this device.`

func (a *App) prompt(p string) (string, error) {
	return getSimpleText(a.reader, p, a.out)
}

func (a *App) promptDefault(p, def string) (string, error) {
	return getTextWithDefault(a.reader, p, def, a.out)
}

func (a *App) password(p string) (string, error) {
	pw, err := getPassword(p, a.out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}

// Register prompts for the sign-up fields, validates them and creates the
// account. On success the user is logged in.
func (a *App) Register(ctx context.Context) error {
	var reg models.Registration
	var err error

	if reg.Email, err = a.prompt("Enter email"); err != nil {
		return err
	}
	if reg.FirstName, err = a.prompt("First name"); err != nil {
		return err
	}
	if reg.LastName, err = a.prompt("Last name"); err != nil {
		return err
	}
	if reg.Password, err = a.password("Enter password"); err != nil {
		return err
	}
	confirm, err := a.password("Confirm password")
	if err != nil {
		return err
	}

	if verr := lifecycle.ValidateRegistration(reg, confirm); verr != nil {
		return verr
	}

	r := a.gw.Register(ctx, reg)
	if !r.OK {
		return r.Err
	}
	a.printf("Account created. Welcome, %s!\n", r.Payload.User.DisplayName())
	a.afterLogin(ctx)
	return nil
}

// Login prompts for credentials, offering the remembered email as default.
func (a *App) Login(ctx context.Context) error {
	remembered := a.gw.RememberedEmail(ctx).Payload

	email, err := a.promptDefault("Enter email", remembered)
	if err != nil {
		return err
	}
	pw, err := a.password("Enter password")
	if err != nil {
		return err
	}

	creds := models.Credentials{Email: email, Password: pw}
	if verr := lifecycle.ValidateCredentials(creds); verr != nil {
		return verr
	}

	r := a.gw.Login(ctx, creds)
	if !r.OK {
		return r.Err
	}
	if rr := a.gw.RememberEmail(ctx, email); !rr.OK {
		a.log.Warn(ctx, "could not remember email", "err", rr.Err)
	}
	a.printf("Login successful (%s mode)\n", a.watcher.Mode())
	a.afterLogin(ctx)
	return nil
}

// afterLogin shows the tutorial once per user and arms reminders.
func (a *App) afterLogin(ctx context.Context) {
	if seen := a.gw.TutorialSeen(ctx); seen.OK && !seen.Payload {
		a.printf("%s\n", tutorialText)
		if r := a.gw.MarkTutorialSeen(ctx); !r.OK {
			a.log.Warn(ctx, "could not save tutorial flag", "err", r.Err)
		}
	}
	a.loadTasks(ctx)
}

func (a *App) loadTasks(ctx context.Context) {
	r := a.tasks.Load(ctx)
	if !r.OK {
		a.printf("Could not load tasks: %s\n", r.Message())
		return
	}
	a.printf("You have %d active task(s).\n", len(r.Payload))
}

// Logout ends the session; local data stays for the next offline login.
func (a *App) Logout(ctx context.Context) error {
	a.sched.Stop()
	if r := a.gw.Logout(ctx); !r.OK {
		return r.Err
	}
	a.printf("Logged out\n")
	return nil
}

