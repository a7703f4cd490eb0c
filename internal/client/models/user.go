// Package models defines the client-side data model of Taskly: users, tasks
// and the reminder entries derived from them.
package models

import "time"

// Theme is the visual theme a user picked.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
	ThemeBlue  Theme = "blue"
	ThemeGreen Theme = "green"
)

// Valid reports whether t is one of the known themes.
func (t Theme) Valid() bool {
	switch t {
	case ThemeLight, ThemeDark, ThemeBlue, ThemeGreen:
		return true
	}
	return false
}

// User is the profile snapshot shared by the API and the local mirror.
// Credentials never live here.
type User struct {
	Email           string    `json:"email"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	Bio             string    `json:"bio"`
	CreatedAt       time.Time `json:"createdAt"`
	Theme           Theme     `json:"theme"`
	IsGoogleUser    bool      `json:"isGoogleUser"`
	HasSeenTutorial bool      `json:"hasSeenTutorial"`
}

// DisplayName is "First Last", or the email when no name is set.
func (u User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Email
	}
}

// Registration is the body of a sign-up request.
type Registration struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Credentials is the body of a login request.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PasswordChange is the body of a change-password request.
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ProfilePatch is a partial profile update; nil fields are left untouched.
type ProfilePatch struct {
	FirstName       *string `json:"firstName,omitempty"`
	LastName        *string `json:"lastName,omitempty"`
	Bio             *string `json:"bio,omitempty"`
	Theme           *Theme  `json:"theme,omitempty"`
	HasSeenTutorial *bool   `json:"hasSeenTutorial,omitempty"`
}

// Apply merges the non-nil fields of p into u.
func (p ProfilePatch) Apply(u *User) {
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.Theme != nil {
		u.Theme = *p.Theme
	}
	if p.HasSeenTutorial != nil {
		u.HasSeenTutorial = *p.HasSeenTutorial
	}
}

// IsEmpty reports whether the patch changes nothing.
func (p ProfilePatch) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Bio == nil && p.Theme == nil && p.HasSeenTutorial == nil
}

// AuthPayload is what a successful register or login yields.
// Token is empty when the identity was established offline.
type AuthPayload struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// ProfileImageUpload is the server's answer to an avatar upload request.
type ProfileImageUpload struct {
	UploadURL string `json:"uploadUrl"`
	ImageURL  string `json:"imageUrl"`
}
