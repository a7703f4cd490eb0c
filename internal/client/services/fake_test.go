package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/taskly/internal/client/client"
	"github.com/dmitrijs2005/taskly/internal/client/models"
)

// fakeClient is an in-memory client.Client. Setting err makes every call
// fail with it; calls records the method names in order.
type fakeClient struct {
	mu    sync.Mutex
	err   error
	calls []string

	users    map[string]string
	profiles map[string]models.User
	token    string
	current  string

	tasks    []models.Task
	archived []models.Task
	nextID   int
	upload   models.ProfileImageUpload
}

var _ client.Client = (*fakeClient)(nil)

func newFakeClient() *fakeClient {
	return &fakeClient{users: map[string]string{}, profiles: map[string]models.User{}}
}

func (f *fakeClient) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	return f.err
}

func (f *fakeClient) called(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeClient) Ping(ctx context.Context) error { return f.record("Ping") }

func (f *fakeClient) Register(ctx context.Context, reg models.Registration) (models.AuthPayload, error) {
	if err := f.record("Register"); err != nil {
		return models.AuthPayload{}, err
	}
	if _, ok := f.users[reg.Email]; ok {
		return models.AuthPayload{}, &client.RequestFailedError{Status: 409, Message: "User already exists"}
	}
	f.users[reg.Email] = reg.Password
	u := models.User{Email: reg.Email, FirstName: reg.FirstName, LastName: reg.LastName, Theme: models.ThemeLight}
	f.profiles[reg.Email] = u
	f.current = reg.Email
	f.token = "tok-" + reg.Email
	return models.AuthPayload{Token: f.token, User: u}, nil
}

func (f *fakeClient) Login(ctx context.Context, creds models.Credentials) (models.AuthPayload, error) {
	if err := f.record("Login"); err != nil {
		return models.AuthPayload{}, err
	}
	if pw, ok := f.users[creds.Email]; !ok || pw != creds.Password {
		return models.AuthPayload{}, client.ErrUnauthorized
	}
	f.current = creds.Email
	f.token = "tok-" + creds.Email
	return models.AuthPayload{Token: f.token, User: f.profiles[creds.Email]}, nil
}

func (f *fakeClient) GetProfile(ctx context.Context) (models.User, error) {
	if err := f.record("GetProfile"); err != nil {
		return models.User{}, err
	}
	return f.profiles[f.current], nil
}

func (f *fakeClient) UpdateProfile(ctx context.Context, patch models.ProfilePatch) (models.User, error) {
	if err := f.record("UpdateProfile"); err != nil {
		return models.User{}, err
	}
	u := f.profiles[f.current]
	patch.Apply(&u)
	f.profiles[f.current] = u
	return u, nil
}

func (f *fakeClient) ChangePassword(ctx context.Context, change models.PasswordChange) (string, error) {
	if err := f.record("ChangePassword"); err != nil {
		return "", err
	}
	if f.users[f.current] != change.CurrentPassword {
		return "", &client.RequestFailedError{Status: 400, Message: "Current password is incorrect"}
	}
	f.users[f.current] = change.NewPassword
	return "Password changed successfully", nil
}

func (f *fakeClient) RequestProfileImageUpload(ctx context.Context, contentType string) (models.ProfileImageUpload, error) {
	if err := f.record("RequestProfileImageUpload"); err != nil {
		return models.ProfileImageUpload{}, err
	}
	return f.upload, nil
}

func (f *fakeClient) ListTasks(ctx context.Context) ([]models.Task, error) {
	if err := f.record("ListTasks"); err != nil {
		return nil, err
	}
	return append([]models.Task(nil), f.tasks...), nil
}

func (f *fakeClient) ListArchived(ctx context.Context) ([]models.Task, error) {
	if err := f.record("ListArchived"); err != nil {
		return nil, err
	}
	return append([]models.Task(nil), f.archived...), nil
}

func (f *fakeClient) CreateTask(ctx context.Context, in models.TaskInput) (models.Task, error) {
	if err := f.record("CreateTask"); err != nil {
		return models.Task{}, err
	}
	f.nextID++
	t := models.Task{ID: fmt.Sprintf("srv%d", f.nextID)}
	in.ApplyTo(&t)
	f.tasks = append(f.tasks, t)
	return t, nil
}

func (f *fakeClient) UpdateTask(ctx context.Context, id string, in models.TaskInput) (models.Task, error) {
	if err := f.record("UpdateTask"); err != nil {
		return models.Task{}, err
	}
	i := models.FindTask(f.tasks, id)
	if i < 0 {
		return models.Task{}, &client.RequestFailedError{Status: 404, Message: "Task not found"}
	}
	in.ApplyTo(&f.tasks[i])
	return f.tasks[i], nil
}

func (f *fakeClient) DeleteTask(ctx context.Context, id string) error {
	if err := f.record("DeleteTask"); err != nil {
		return err
	}
	if i := models.FindTask(f.tasks, id); i >= 0 {
		f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
		return nil
	}
	if i := models.FindTask(f.archived, id); i >= 0 {
		f.archived = append(f.archived[:i], f.archived[i+1:]...)
		return nil
	}
	return &client.RequestFailedError{Status: 404, Message: "Task not found"}
}

func (f *fakeClient) ArchiveTask(ctx context.Context, id string) (models.Task, error) {
	if err := f.record("ArchiveTask"); err != nil {
		return models.Task{}, err
	}
	i := models.FindTask(f.tasks, id)
	if i < 0 {
		return models.Task{}, &client.RequestFailedError{Status: 404, Message: "Task not found"}
	}
	t := f.tasks[i]
	f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
	t.Archived = true
	f.archived = append(f.archived, t)
	return t, nil
}

func (f *fakeClient) RestoreTask(ctx context.Context, id string) (models.Task, error) {
	if err := f.record("RestoreTask"); err != nil {
		return models.Task{}, err
	}
	i := models.FindTask(f.archived, id)
	if i < 0 {
		return models.Task{}, &client.RequestFailedError{Status: 404, Message: "Task not found"}
	}
	t := f.archived[i]
	f.archived = append(f.archived[:i], f.archived[i+1:]...)
	t.Archived = false
	t.ArchivedAt = nil
	f.tasks = append(f.tasks, t)
	return t, nil
}

type switchConn struct{ online bool }

func (c *switchConn) Online() bool { return c.online }

type countingNotifier struct{ n int }

func (c *countingNotifier) SessionExpired() { c.n++ }
