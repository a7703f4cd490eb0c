package services

import (
	"context"
	"database/sql"
	"sort"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/taskly/internal/common"
	"github.com/dmitrijs2005/taskly/internal/dbx"
	"github.com/dmitrijs2005/taskly/internal/server/models"
	"github.com/dmitrijs2005/taskly/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/taskly/internal/server/repositories/users"
	"github.com/dmitrijs2005/taskly/internal/server/storage"
	"github.com/stretchr/testify/require"
)

type memUsers struct {
	byID      map[string]*models.User
	err       error
	updateErr error
}

func newMemUsers() *memUsers { return &memUsers{byID: map[string]*models.User{}} }

func (m *memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, x := range m.byID {
		if x.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	cp := *u
	cp.CreatedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m.byID[u.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.byID {
		if u.Email == common.NormalizeEmail(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) Update(_ context.Context, u *models.User) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	old, ok := m.byID[u.ID]
	if !ok {
		return common.ErrorNotFound
	}
	cp := *u
	cp.PasswordHash = old.PasswordHash
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) UpdatePassword(_ context.Context, id, hash string) error {
	u, ok := m.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.PasswordHash = hash
	return nil
}

type memTasks struct {
	byID map[string]*models.Task
	seq  int
	err  error
}

func newMemTasks() *memTasks { return &memTasks{byID: map[string]*models.Task{}} }

func (m *memTasks) ListByUser(_ context.Context, userID string, archived bool) ([]*models.Task, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := []*models.Task{}
	for _, t := range m.byID {
		if t.UserID == userID && t.Archived == archived {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memTasks) Create(_ context.Context, t *models.Task) error {
	if m.err != nil {
		return m.err
	}
	m.seq++
	t.CreatedAt = time.Date(2025, 1, 1, 0, m.seq, 0, 0, time.UTC)
	t.UpdatedAt = t.CreatedAt
	cp := *t
	m.byID[t.ID] = &cp
	return nil
}

func (m *memTasks) Get(_ context.Context, userID, id string) (*models.Task, error) {
	t, ok := m.byID[id]
	if !ok || t.UserID != userID {
		return nil, common.ErrorNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memTasks) Update(_ context.Context, t *models.Task) error {
	if m.err != nil {
		return m.err
	}
	old, ok := m.byID[t.ID]
	if !ok || old.UserID != t.UserID {
		return common.ErrorNotFound
	}
	cp := *t
	m.byID[t.ID] = &cp
	return nil
}

func (m *memTasks) Delete(_ context.Context, userID, id string) error {
	t, ok := m.byID[id]
	if !ok || t.UserID != userID {
		return common.ErrorNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memTasks) SetArchived(_ context.Context, userID, id string, archived bool, at time.Time) (*models.Task, error) {
	t, ok := m.byID[id]
	if !ok || t.UserID != userID || t.Archived == archived {
		return nil, common.ErrorNotFound
	}
	t.Archived = archived
	t.ArchivedAt = nil
	if archived {
		t.ArchivedAt = &at
	}
	cp := *t
	return &cp, nil
}

type fakeManager struct {
	users *memUsers
	tasks *memTasks
}

func (f *fakeManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (f *fakeManager) Users(dbx.DBTX) users.Repository             { return f.users }
func (f *fakeManager) Tasks(dbx.DBTX) tasks.Repository             { return f.tasks }

type staticIssuer struct{ err error }

func (s staticIssuer) Issue(userID string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "token-" + userID, nil
}

type fakePresigner struct {
	err error
}

func (f fakePresigner) PresignImageUpload(_ context.Context, userID, contentType string) (storage.Upload, error) {
	if f.err != nil {
		return storage.Upload{}, f.err
	}
	key := "avatars/" + userID + "/img"
	return storage.Upload{UploadURL: "https://s3.test/" + key + "?sig=1", PublicURL: "https://cdn.test/" + key, Key: key}, nil
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}
