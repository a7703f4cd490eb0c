// Package tasks persists Taskly tasks. Every call is scoped to the owning
// user, so a foreign id behaves exactly like a missing one.
package tasks

import (
	"context"
	"time"

	"github.com/dmitrijs2005/taskly/internal/server/models"
)

type Repository interface {
	// ListByUser returns the active tasks in creation order, or the archived
	// ones newest-archived first.
	ListByUser(ctx context.Context, userID string, archived bool) ([]*models.Task, error)
	Create(ctx context.Context, task *models.Task) error
	Get(ctx context.Context, userID, id string) (*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, userID, id string) error
	// SetArchived flips the archived flag. It only matches a task currently in
	// the opposite state, so archiving an archived task is common.ErrorNotFound.
	SetArchived(ctx context.Context, userID, id string, archived bool, at time.Time) (*models.Task, error)
}
