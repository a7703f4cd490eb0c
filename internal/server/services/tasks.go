package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskly/internal/common"
	"github.com/dmitrijs2005/taskly/internal/dbx"
	"github.com/dmitrijs2005/taskly/internal/server/models"
	"github.com/dmitrijs2005/taskly/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"

	// Zone offsets run from UTC-12 to UTC+14, so the due instant of a wall
	// clock date and time lies within this window around that wall clock
	// read as UTC.
	maxZoneAhead  = 14 * time.Hour
	maxZoneBehind = 12 * time.Hour
)

var priorities = map[string]bool{"low": true, "medium": true, "high": true}

// Reminder is the reminder part of a task write.
type Reminder struct {
	FiresAt       time.Time
	OffsetMinutes int
}

// TaskInput carries the user-editable fields of a task.
type TaskInput struct {
	Title       string
	Description string
	Date        string
	Time        string
	Priority    string
	Reminder    *Reminder
}

func (in *TaskInput) validate() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Priority = strings.ToLower(strings.TrimSpace(in.Priority))

	if in.Title == "" || in.Date == "" || in.Time == "" || in.Priority == "" {
		return invalid("Please fill in all fields")
	}
	if _, err := time.Parse(dateLayout, in.Date); err != nil {
		return invalid("Date must be YYYY-MM-DD")
	}
	if _, err := time.Parse(timeLayout, in.Time); err != nil {
		return invalid("Time must be HH:MM")
	}
	if !priorities[in.Priority] {
		return invalid("Priority must be low, medium or high")
	}
	if r := in.Reminder; r != nil {
		if r.OffsetMinutes < 0 || r.FiresAt.IsZero() {
			return invalid("Invalid reminder")
		}
		// the client owns the zone; only pairs impossible in every zone are rejected
		wall, _ := time.Parse(dateLayout+" "+timeLayout, in.Date+" "+in.Time)
		due := r.FiresAt.Add(time.Duration(r.OffsetMinutes) * time.Minute)
		if due.Before(wall.Add(-maxZoneAhead)) || due.After(wall.Add(maxZoneBehind)) {
			return invalid("Reminder does not match the task's date and time")
		}
	}
	return nil
}

func (in *TaskInput) applyTo(t *models.Task) {
	t.Title = in.Title
	t.Description = in.Description
	t.Date = in.Date
	t.Time = in.Time
	t.Priority = in.Priority
	t.ReminderFiresAt, t.ReminderOffset = nil, nil
	if in.Reminder != nil {
		firesAt, offset := in.Reminder.FiresAt.UTC(), in.Reminder.OffsetMinutes
		t.ReminderFiresAt, t.ReminderOffset = &firesAt, &offset
	}
}

// TaskService manages the tasks of signed-in users. Ids that are malformed,
// missing or owned by someone else all yield common.ErrorNotFound.
type TaskService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	newID       func() string
	now         func() time.Time
}

func NewTaskService(db *sql.DB, m repomanager.RepositoryManager) *TaskService {
	return &TaskService{db: db, repomanager: m, newID: uuid.NewString, now: time.Now}
}

// List returns the active tasks of userID in creation order.
func (s *TaskService) List(ctx context.Context, userID string) ([]*models.Task, error) {
	return s.repomanager.Tasks(s.db).ListByUser(ctx, userID, false)
}

// ListArchived returns the archived tasks of userID, newest first.
func (s *TaskService) ListArchived(ctx context.Context, userID string) ([]*models.Task, error) {
	return s.repomanager.Tasks(s.db).ListByUser(ctx, userID, true)
}

func (s *TaskService) Create(ctx context.Context, userID string, in TaskInput) (*models.Task, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	t := &models.Task{ID: s.newID(), UserID: userID}
	in.applyTo(t)

	if err := s.repomanager.Tasks(s.db).Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Update rewrites the editable fields of an active task. Archived tasks are
// not editable and report common.ErrorNotFound.
func (s *TaskService) Update(ctx context.Context, userID, id string, in TaskInput) (*models.Task, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	return dbx.InTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) (*models.Task, error) {
		repo := s.repomanager.Tasks(tx)

		t, err := repo.Get(ctx, userID, id)
		if err != nil {
			return nil, err
		}
		if t.Archived {
			return nil, common.ErrorNotFound
		}

		in.applyTo(t)
		if err := repo.Update(ctx, t); err != nil {
			return nil, err
		}
		return t, nil
	})
}

// Delete removes a task whether it is active or archived.
func (s *TaskService) Delete(ctx context.Context, userID, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	return s.repomanager.Tasks(s.db).Delete(ctx, userID, id)
}

// Archive moves an active task to the archive, stamping archivedAt.
func (s *TaskService) Archive(ctx context.Context, userID, id string) (*models.Task, error) {
	return s.setArchived(ctx, userID, id, true)
}

// Restore moves an archived task back to the active set.
func (s *TaskService) Restore(ctx context.Context, userID, id string) (*models.Task, error) {
	return s.setArchived(ctx, userID, id, false)
}

func (s *TaskService) setArchived(ctx context.Context, userID, id string, archived bool) (*models.Task, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	return s.repomanager.Tasks(s.db).SetArchived(ctx, userID, id, archived, s.now().UTC())
}

func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.Join(common.ErrorNotFound, err)
	}
	return nil
}
