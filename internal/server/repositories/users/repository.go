// Package users persists Taskly accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/taskly/internal/server/models"
)

// Repository is the storage of user accounts. Lookups by email are
// case-insensitive. Missing rows yield common.ErrorNotFound and a duplicate
// email on Create yields common.ErrorAlreadyExists.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}
