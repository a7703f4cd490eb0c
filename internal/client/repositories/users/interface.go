// Package users is the local user directory: profile snapshots plus the
// salted password verifier used to authenticate while offline.
package users

import (
	"context"

	"github.com/dmitrijs2005/taskly/internal/client/models"
)

// LocalUser is a directory row. Email lookups are case-insensitive.
type LocalUser struct {
	Profile  models.User
	Salt     []byte
	Verifier []byte
}

type Repository interface {
	// Create fails with common.ErrorAlreadyExists for a taken email.
	Create(ctx context.Context, u LocalUser) error
	// Upsert creates or replaces the row for u.Profile.Email.
	Upsert(ctx context.Context, u LocalUser) error
	// FindByEmail returns common.ErrorNotFound when there is no such user.
	FindByEmail(ctx context.Context, email string) (*LocalUser, error)
	UpdateProfile(ctx context.Context, profile models.User) error
	UpdateVerifier(ctx context.Context, email string, salt, verifier []byte) error
}
