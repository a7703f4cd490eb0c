package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Priority of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Reminder says when a task's notification fires and how far ahead of the
// due moment that is.
type Reminder struct {
	FiresAt       time.Time `json:"firesAt"`
	OffsetMinutes int       `json:"offsetMinutes"`
}

type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Date        string     `json:"date"`
	Time        string     `json:"time"`
	Priority    Priority   `json:"priority"`
	Reminder    *Reminder  `json:"reminder,omitempty"`
	Archived    bool       `json:"archived"`
	ArchivedAt  *time.Time `json:"archivedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	// Pending marks a task written to the local store while the server was
	// unreachable. The server never sets it.
	Pending bool `json:"pending,omitempty"`
}

// TaskInput carries the user-editable fields of a task. It is the body of
// both create and update requests; Reminder nil means "no reminder".
type TaskInput struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Priority    Priority  `json:"priority"`
	Reminder    *Reminder `json:"reminder,omitempty"`
}

// ApplyTo overwrites the editable fields of t with in.
func (in TaskInput) ApplyTo(t *Task) {
	t.Title = in.Title
	t.Description = in.Description
	t.Date = in.Date
	t.Time = in.Time
	t.Priority = in.Priority
	t.Reminder = in.Reminder
}

// Due combines Date and Time in loc.
func (t Task) Due(loc *time.Location) (time.Time, error) {
	return CombineDateTime(t.Date, t.Time, loc)
}

// Matches reports whether q (case-insensitive) occurs in the title or description.
func (t Task) Matches(q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Title+" "+t.Description), q)
}

// CombineDateTime parses a YYYY-MM-DD date and an HH:MM time in loc.
func CombineDateTime(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	ts, err := time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("combine %q %q: %w", date, clock, err)
	}
	return ts, nil
}

// ComputeReminder returns the reminder for a task due at date/clock with the
// given offset: firesAt = due - offset minutes.
func ComputeReminder(date, clock string, offsetMinutes int, loc *time.Location) (*Reminder, error) {
	due, err := CombineDateTime(date, clock, loc)
	if err != nil {
		return nil, err
	}
	return &Reminder{
		FiresAt:       due.Add(-time.Duration(offsetMinutes) * time.Minute),
		OffsetMinutes: offsetMinutes,
	}, nil
}

// ReminderEntry is derived from an active task that carries a reminder.
type ReminderEntry struct {
	TaskID  string    `json:"taskId"`
	Title   string    `json:"title"`
	FiresAt time.Time `json:"firesAt"`
}

// DeriveReminders lists the reminder entries of tasks in task order.
func DeriveReminders(tasks []Task) []ReminderEntry {
	out := make([]ReminderEntry, 0, len(tasks))
	for _, t := range tasks {
		if t.Archived || t.Reminder == nil {
			continue
		}
		out = append(out, ReminderEntry{TaskID: t.ID, Title: t.Title, FiresAt: t.Reminder.FiresAt})
	}
	return out
}

// FindTask returns the index of the task with id, or -1.
func FindTask(tasks []Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// SortArchived orders archived tasks newest-archived first.
func SortArchived(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return archivedAt(tasks[i]).After(archivedAt(tasks[j]))
	})
}

func archivedAt(t Task) time.Time {
	if t.ArchivedAt == nil {
		return time.Time{}
	}
	return *t.ArchivedAt
}
