package client

import (
	"context"

	"github.com/dmitrijs2005/taskly/internal/client/models"
)

// Client is the REST API contract the Sync Gateway depends on.
type Client interface {
	Ping(ctx context.Context) error

	Register(ctx context.Context, reg models.Registration) (models.AuthPayload, error)
	Login(ctx context.Context, creds models.Credentials) (models.AuthPayload, error)
	GetProfile(ctx context.Context) (models.User, error)
	UpdateProfile(ctx context.Context, patch models.ProfilePatch) (models.User, error)
	ChangePassword(ctx context.Context, change models.PasswordChange) (string, error)
	RequestProfileImageUpload(ctx context.Context, contentType string) (models.ProfileImageUpload, error)

	ListTasks(ctx context.Context) ([]models.Task, error)
	CreateTask(ctx context.Context, in models.TaskInput) (models.Task, error)
	UpdateTask(ctx context.Context, id string, in models.TaskInput) (models.Task, error)
	DeleteTask(ctx context.Context, id string) error
	ArchiveTask(ctx context.Context, id string) (models.Task, error)
	ListArchived(ctx context.Context) ([]models.Task, error)
	RestoreTask(ctx context.Context, id string) (models.Task, error)
}

// TokenSource yields the bearer token to attach, or "" for none.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource with a fixed value.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }
