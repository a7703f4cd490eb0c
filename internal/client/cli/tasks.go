package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/taskly/internal/client/lifecycle"
	"github.com/dmitrijs2005/taskly/internal/client/models"
)

const stamp = "2006-01-02 15:04"

func formatTask(t models.Task) string {
	s := fmt.Sprintf("%s  %s  %s %s  [%s]", t.ID, t.Title, t.Date, t.Time, t.Priority)
	if t.Reminder != nil {
		s += fmt.Sprintf("  reminder %s", t.Reminder.FiresAt.Local().Format(stamp))
	}
	if t.ArchivedAt != nil {
		s += fmt.Sprintf("  archived %s", t.ArchivedAt.Local().Format(stamp))
	}
	if t.Description != "" {
		s += "\n    " + strings.ReplaceAll(t.Description, "\n", "\n    ")
	}
	return s
}

func (a *App) printTasks(tasks []models.Task) {
	if len(tasks) == 0 {
		a.printf("No tasks.\n")
		return
	}
	for _, t := range tasks {
		a.printf("%s\n", formatTask(t))
	}
}

func (a *App) List(ctx context.Context) error {
	r := a.tasks.Load(ctx)
	if !r.OK {
		return r.Err
	}
	a.printTasks(r.Payload)
	return nil
}

// Archived lists the archive newest first, or empties it after confirmation.
func (a *App) Archived(ctx context.Context, clear bool) error {
	if clear {
		return a.emptyArchive(ctx)
	}
	r := a.tasks.Archived(ctx)
	if !r.OK {
		return r.Err
	}
	a.printTasks(r.Payload)
	return nil
}

func (a *App) emptyArchive(ctx context.Context) error {
	list := a.tasks.Archived(ctx)
	if !list.OK {
		return list.Err
	}
	if len(list.Payload) == 0 {
		a.printf("Archive is already empty.\n")
		return nil
	}
	answer, err := a.prompt(fmt.Sprintf("Permanently delete all %d archived tasks? (y/N)", len(list.Payload)))
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
		a.printf("Cancelled\n")
		return nil
	}
	r := a.tasks.EmptyArchive(ctx)
	if !r.OK {
		if r.Payload > 0 {
			a.printf("%d archived tasks deleted before the error\n", r.Payload)
		}
		return r.Err
	}
	a.printf("%d archived tasks deleted\n", r.Payload)
	return nil
}

// readForm prompts for every task field, offering cur as defaults.
func (a *App) readForm(cur models.Task) (lifecycle.TaskForm, error) {
	var f lifecycle.TaskForm
	var err error

	if f.Title, err = a.promptDefault("Title", cur.Title); err != nil {
		return f, err
	}
	if f.Description, err = a.promptDefault("Description", cur.Description); err != nil {
		return f, err
	}
	if f.Date, err = a.promptDefault("Date (YYYY-MM-DD)", cur.Date); err != nil {
		return f, err
	}
	if f.Time, err = a.promptDefault("Time (HH:MM)", cur.Time); err != nil {
		return f, err
	}
	if f.Priority, err = a.promptDefault("Priority (low/medium/high)", string(cur.Priority)); err != nil {
		return f, err
	}

	def := "none"
	if cur.Reminder != nil {
		def = strconv.Itoa(cur.Reminder.OffsetMinutes)
	}
	choice, err := a.promptDefault("Reminder minutes before (5/10/30/custom/none)", def)
	if err != nil {
		return f, err
	}
	custom := ""
	if strings.EqualFold(choice, "custom") {
		if custom, err = a.prompt("Custom minutes"); err != nil {
			return f, err
		}
	} else if n, convErr := strconv.Atoi(choice); convErr == nil && cur.Reminder != nil && n == cur.Reminder.OffsetMinutes {
		// keep a previously chosen custom offset
		choice, custom = "custom", choice
	}

	offset, verr := lifecycle.ParseReminderChoice(choice, custom)
	if verr != nil {
		return f, verr
	}
	f.ReminderOffset = offset
	return f, nil
}

func (a *App) Add(ctx context.Context) error {
	f, err := a.readForm(models.Task{Priority: models.PriorityMedium})
	if err != nil {
		return err
	}
	r := a.tasks.Create(ctx, f)
	if !r.OK {
		return r.Err
	}
	a.printf("Task %s created\n", r.Payload.ID)
	return nil
}

// Edit only offers active tasks; archived ones must be restored first.
func (a *App) Edit(ctx context.Context, id string) error {
	active := a.tasks.Active()
	i := models.FindTask(active, id)
	if i < 0 {
		a.printf("Task %s is not in your active list\n", id)
		return nil
	}
	f, err := a.readForm(active[i])
	if err != nil {
		return err
	}
	r := a.tasks.Edit(ctx, id, f)
	if !r.OK {
		return r.Err
	}
	a.printf("Task %s updated\n", id)
	return nil
}

func (a *App) Archive(ctx context.Context, id string) error {
	r := a.tasks.Archive(ctx, id)
	if !r.OK {
		return r.Err
	}
	a.printf("Task %s archived\n", id)
	return nil
}

func (a *App) Restore(ctx context.Context, id string) error {
	r := a.tasks.Restore(ctx, id)
	if !r.OK {
		return r.Err
	}
	a.printf("Task %s restored\n", id)
	return nil
}

// Delete asks for confirmation; deletion cannot be undone.
func (a *App) Delete(ctx context.Context, id string) error {
	answer, err := a.prompt(fmt.Sprintf("Delete task %s permanently? (y/N)", id))
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
		a.printf("Cancelled\n")
		return nil
	}
	r := a.tasks.Delete(ctx, id)
	if !r.OK {
		return r.Err
	}
	a.printf("Task %s deleted\n", id)
	return nil
}

func (a *App) Swipe(ctx context.Context, id, dx string) error {
	v, err := strconv.ParseFloat(dx, 64)
	if err != nil {
		return fmt.Errorf("dx must be a number: %w", err)
	}
	action, rerr := a.tasks.Swipe(ctx, id, v)
	if rerr != nil {
		return rerr
	}
	if action == lifecycle.SwipeCancel {
		a.printf("Swipe cancelled\n")
		return nil
	}
	a.printf("Task %s: %s\n", id, action)
	return nil
}

func (a *App) Search(ctx context.Context, q string) error {
	a.printTasks(a.tasks.Search(q))
	return nil
}

// Reminders lists scheduled reminders, newest first, or clears the list.
func (a *App) Reminders(ctx context.Context, clear bool) error {
	if clear {
		if r := a.gw.ClearNotifications(ctx); !r.OK {
			return r.Err
		}
		a.printf("Reminders cleared\n")
		return nil
	}
	r := a.gw.Notifications(ctx)
	if !r.OK {
		return r.Err
	}
	if len(r.Payload) == 0 {
		a.printf("No reminders.\n")
		return nil
	}
	for _, e := range r.Payload {
		a.printf("%s  %s  %s\n", e.FiresAt.Local().Format(stamp), e.TaskID, e.Title)
	}
	return nil
}
