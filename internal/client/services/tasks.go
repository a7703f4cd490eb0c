package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/taskly/internal/client/models"
	"github.com/dmitrijs2005/taskly/internal/client/result"
	"github.com/dmitrijs2005/taskly/internal/common"
)

// withOwner adapts a local operation that needs the current user's email.
func withOwner[T any](g *Gateway, fn func(ctx context.Context, owner string) (T, error)) func(ctx context.Context) (T, error) {
	return func(ctx context.Context) (T, error) {
		email, rerr := g.owner()
		if rerr != nil {
			var zero T
			return zero, rerr
		}
		return fn(ctx, email)
	}
}

// mirrorWithOwner is withOwner for mirror callbacks.
func mirrorWithOwner[T any](g *Gateway, fn func(ctx context.Context, owner string, v T) error) func(ctx context.Context, v T) error {
	return func(ctx context.Context, v T) error {
		email, rerr := g.owner()
		if rerr != nil {
			return rerr
		}
		return fn(ctx, email, v)
	}
}

func (g *Gateway) ListTasks(ctx context.Context) result.Result[[]models.Task] {
	return run(ctx, g, call[[]models.Task]{
		op:     "list_tasks",
		remote: g.remote.ListTasks,
		mirror: mirrorWithOwner(g, g.local.ReplaceTasks),
		local:  withOwner(g, g.local.Tasks),
	})
}

// ListArchived returns the archive newest-archived first.
func (g *Gateway) ListArchived(ctx context.Context) result.Result[[]models.Task] {
	r := run(ctx, g, call[[]models.Task]{
		op:     "list_archived",
		remote: g.remote.ListArchived,
		mirror: mirrorWithOwner(g, g.local.ReplaceArchive),
		local:  withOwner(g, g.local.Archive),
	})
	if r.OK {
		models.SortArchived(r.Payload)
	}
	return r
}

// CreateTask is not idempotent: each call creates a new task.
func (g *Gateway) CreateTask(ctx context.Context, in models.TaskInput) result.Result[models.Task] {
	return run(ctx, g, call[models.Task]{
		op: "create_task",
		remote: func(ctx context.Context) (models.Task, error) {
			return g.remote.CreateTask(ctx, in)
		},
		mirror: mirrorWithOwner(g, g.local.PutTask),
		local: withOwner(g, func(ctx context.Context, owner string) (models.Task, error) {
			return g.local.AddTask(ctx, owner, in)
		}),
	})
}

func (g *Gateway) UpdateTask(ctx context.Context, id string, in models.TaskInput) result.Result[models.Task] {
	return run(ctx, g, call[models.Task]{
		op: "update_task",
		remote: func(ctx context.Context) (models.Task, error) {
			return g.remote.UpdateTask(ctx, id, in)
		},
		mirror: mirrorWithOwner(g, g.local.PutTask),
		local: withOwner(g, func(ctx context.Context, owner string) (models.Task, error) {
			return g.local.UpdateTask(ctx, owner, id, in)
		}),
	})
}

func (g *Gateway) DeleteTask(ctx context.Context, id string) result.Result[struct{}] {
	return run(ctx, g, call[struct{}]{
		op: "delete_task",
		remote: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, g.remote.DeleteTask(ctx, id)
		},
		mirror: mirrorWithOwner(g, func(ctx context.Context, owner string, _ struct{}) error {
			err := g.local.DeleteTask(ctx, owner, id)
			if errors.Is(err, common.ErrorNotFound) {
				return nil
			}
			return err
		}),
		local: withOwner(g, func(ctx context.Context, owner string) (struct{}, error) {
			return struct{}{}, g.local.DeleteTask(ctx, owner, id)
		}),
	})
}

func (g *Gateway) ArchiveTask(ctx context.Context, id string) result.Result[models.Task] {
	return run(ctx, g, call[models.Task]{
		op: "archive_task",
		remote: func(ctx context.Context) (models.Task, error) {
			return g.remote.ArchiveTask(ctx, id)
		},
		mirror: mirrorWithOwner(g, func(ctx context.Context, owner string, t models.Task) error {
			t.Archived = true
			return g.local.PutTask(ctx, owner, t)
		}),
		local: withOwner(g, func(ctx context.Context, owner string) (models.Task, error) {
			return g.local.ArchiveTask(ctx, owner, id)
		}),
	})
}

func (g *Gateway) RestoreTask(ctx context.Context, id string) result.Result[models.Task] {
	return run(ctx, g, call[models.Task]{
		op: "restore_task",
		remote: func(ctx context.Context) (models.Task, error) {
			return g.remote.RestoreTask(ctx, id)
		},
		mirror: mirrorWithOwner(g, func(ctx context.Context, owner string, t models.Task) error {
			t.Archived = false
			return g.local.PutTask(ctx, owner, t)
		}),
		local: withOwner(g, func(ctx context.Context, owner string) (models.Task, error) {
			return g.local.RestoreTask(ctx, owner, id)
		}),
	})
}
