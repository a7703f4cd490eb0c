package lifecycle

import (
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskly/internal/client/models"
	"github.com/dmitrijs2005/taskly/internal/client/result"
	"github.com/dmitrijs2005/taskly/internal/common"
)

// ReminderPresets are the offsets offered before "custom".
var ReminderPresets = []int{5, 10, 30}

// TaskForm is the raw user input for create and edit.
type TaskForm struct {
	Title       string
	Description string
	Date        string
	Time        string
	Priority    string
	// ReminderOffset in minutes; nil means no reminder.
	ReminderOffset *int
}

func invalid(detail string) *result.Error {
	return &result.Error{Kind: result.KindValidationFailed, Detail: detail}
}

// Input validates f and converts it into a TaskInput with its reminder
// computed in loc. Description is the only optional field.
func (f TaskForm) Input(loc *time.Location) (models.TaskInput, *result.Error) {
	in := models.TaskInput{
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
		Date:        strings.TrimSpace(f.Date),
		Time:        strings.TrimSpace(f.Time),
		Priority:    models.Priority(strings.ToLower(strings.TrimSpace(f.Priority))),
	}
	if in.Title == "" || in.Date == "" || in.Time == "" || in.Priority == "" {
		return in, invalid("Please fill in all fields")
	}
	if _, err := time.Parse(models.DateLayout, in.Date); err != nil {
		return in, invalid("Date must be YYYY-MM-DD")
	}
	if _, err := time.Parse(models.TimeLayout, in.Time); err != nil {
		return in, invalid("Time must be HH:MM")
	}
	if !in.Priority.Valid() {
		return in, invalid("Priority must be low, medium or high")
	}
	if f.ReminderOffset != nil {
		if *f.ReminderOffset < 0 {
			return in, invalid("Reminder offset must not be negative")
		}
		r, err := models.ComputeReminder(in.Date, in.Time, *f.ReminderOffset, loc)
		if err != nil {
			return in, invalid(err.Error())
		}
		in.Reminder = r
	}
	return in, nil
}

// ParseReminderChoice turns a menu choice into an offset. choice is "" or
// "none" for no reminder, one of the presets, or "custom" with the minutes
// in custom.
func ParseReminderChoice(choice, custom string) (*int, *result.Error) {
	choice = strings.ToLower(strings.TrimSpace(choice))
	switch choice {
	case "", "none", "no":
		return nil, nil
	case "custom":
		n, err := strconv.Atoi(strings.TrimSpace(custom))
		if err != nil || n < 0 {
			return nil, invalid("Custom reminder must be a non-negative number of minutes")
		}
		return &n, nil
	}
	n, err := strconv.Atoi(choice)
	if err == nil {
		for _, p := range ReminderPresets {
			if p == n {
				return &n, nil
			}
		}
	}
	return nil, invalid("Choose 5, 10, 30, custom or none")
}

// ValidateRegistration checks sign-up input before anything is sent.
func ValidateRegistration(reg models.Registration, confirm string) *result.Error {
	if strings.TrimSpace(reg.Email) == "" || reg.Password == "" ||
		strings.TrimSpace(reg.FirstName) == "" || strings.TrimSpace(reg.LastName) == "" {
		return invalid("Please fill in all fields")
	}
	if !common.IsValidEmail(strings.TrimSpace(reg.Email)) {
		return invalid("Please enter a valid email address")
	}
	if len(reg.Password) < common.MinPasswordLength {
		return invalid("Password must be at least 6 characters")
	}
	if reg.Password != confirm {
		return invalid("Passwords do not match")
	}
	return nil
}

func ValidateCredentials(c models.Credentials) *result.Error {
	if strings.TrimSpace(c.Email) == "" || c.Password == "" {
		return invalid("Please enter email and password")
	}
	if !common.IsValidEmail(strings.TrimSpace(c.Email)) {
		return invalid("Please enter a valid email address")
	}
	return nil
}

func ValidatePasswordChange(c models.PasswordChange, confirm string) *result.Error {
	if c.CurrentPassword == "" || c.NewPassword == "" {
		return invalid("Please fill in all fields")
	}
	if len(c.NewPassword) < common.MinPasswordLength {
		return invalid("Password must be at least 6 characters")
	}
	if c.NewPassword != confirm {
		return invalid("Passwords do not match")
	}
	return nil
}
