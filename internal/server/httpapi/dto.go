package httpapi

import (
	"time"

	"github.com/dmitrijs2005/taskly/internal/server/models"
	"github.com/dmitrijs2005/taskly/internal/server/services"
)

type userDTO struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	Bio             string    `json:"bio"`
	Theme           string    `json:"theme"`
	ProfileImage    string    `json:"profileImage,omitempty"`
	IsGoogleUser    bool      `json:"isGoogleUser"`
	HasSeenTutorial bool      `json:"hasSeenTutorial"`
	CreatedAt       time.Time `json:"createdAt"`
}

func toUserDTO(u *models.User) userDTO {
	return userDTO{
		ID:              u.ID,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Bio:             u.Bio,
		Theme:           u.Theme,
		ProfileImage:    u.ProfileImage,
		IsGoogleUser:    u.IsGoogleUser,
		HasSeenTutorial: u.HasSeenTutorial,
		CreatedAt:       u.CreatedAt,
	}
}

type reminderDTO struct {
	FiresAt       time.Time `json:"firesAt"`
	OffsetMinutes int       `json:"offsetMinutes"`
}

type taskDTO struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Date        string       `json:"date"`
	Time        string       `json:"time"`
	Priority    string       `json:"priority"`
	Reminder    *reminderDTO `json:"reminder,omitempty"`
	Archived    bool         `json:"archived"`
	ArchivedAt  *time.Time   `json:"archivedAt,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
}

func toTaskDTO(t *models.Task) taskDTO {
	out := taskDTO{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Date:        t.Date,
		Time:        t.Time,
		Priority:    t.Priority,
		Archived:    t.Archived,
		ArchivedAt:  t.ArchivedAt,
		CreatedAt:   t.CreatedAt,
	}
	if t.HasReminder() {
		out.Reminder = &reminderDTO{FiresAt: *t.ReminderFiresAt, OffsetMinutes: *t.ReminderOffset}
	}
	return out
}

func toTaskDTOs(ts []*models.Task) []taskDTO {
	out := make([]taskDTO, 0, len(ts))
	for _, t := range ts {
		out = append(out, toTaskDTO(t))
	}
	return out
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileRequest struct {
	FirstName       *string `json:"firstName"`
	LastName        *string `json:"lastName"`
	Bio             *string `json:"bio"`
	Theme           *string `json:"theme"`
	HasSeenTutorial *bool   `json:"hasSeenTutorial"`
}

func (r profileRequest) patch() services.ProfilePatch {
	return services.ProfilePatch{
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		Bio:             r.Bio,
		Theme:           r.Theme,
		HasSeenTutorial: r.HasSeenTutorial,
	}
}

type passwordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type imageRequest struct {
	ContentType string `json:"contentType"`
}

type taskRequest struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Date        string       `json:"date"`
	Time        string       `json:"time"`
	Priority    string       `json:"priority"`
	Reminder    *reminderDTO `json:"reminder"`
}

func (r taskRequest) input() services.TaskInput {
	in := services.TaskInput{
		Title:       r.Title,
		Description: r.Description,
		Date:        r.Date,
		Time:        r.Time,
		Priority:    r.Priority,
	}
	if r.Reminder != nil {
		in.Reminder = &services.Reminder{FiresAt: r.Reminder.FiresAt, OffsetMinutes: r.Reminder.OffsetMinutes}
	}
	return in
}
