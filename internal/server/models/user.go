// Package models holds the server-side records persisted in PostgreSQL.
package models

import "time"

// User is a registered account. PasswordHash is a bcrypt hash and never
// leaves the server.
type User struct {
	ID              string
	Email           string
	PasswordHash    string
	FirstName       string
	LastName        string
	Bio             string
	Theme           string
	ProfileImage    string
	IsGoogleUser    bool
	HasSeenTutorial bool
	CreatedAt       time.Time
}
