package models

import "time"

// Task is a to-do item owned by UserID. Date is YYYY-MM-DD and Time is
// HH:MM. The reminder columns are either both set or both nil.
type Task struct {
	ID              string
	UserID          string
	Title           string
	Description     string
	Date            string
	Time            string
	Priority        string
	ReminderFiresAt *time.Time
	ReminderOffset  *int
	Archived        bool
	ArchivedAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasReminder reports whether the task carries a reminder.
func (t *Task) HasReminder() bool {
	return t.ReminderFiresAt != nil && t.ReminderOffset != nil
}
