package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskly/internal/common"
	"github.com/dmitrijs2005/taskly/internal/server/models"
	"github.com/dmitrijs2005/taskly/internal/server/services"
	"github.com/dmitrijs2005/taskly/internal/server/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

var created = time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)

type mockUsers struct {
	RegisterFunc      func(ctx context.Context, reg services.Registration) (*models.User, string, error)
	LoginFunc         func(ctx context.Context, email, password string) (*models.User, string, error)
	ProfileFunc       func(ctx context.Context, userID string) (*models.User, error)
	UpdateProfileFunc func(ctx context.Context, userID string, patch services.ProfilePatch) (*models.User, error)
	ChangePassFunc    func(ctx context.Context, userID, current, next string) error
	ImageFunc         func(ctx context.Context, userID, contentType string) (storage.Upload, error)
}

func (m *mockUsers) Register(ctx context.Context, reg services.Registration) (*models.User, string, error) {
	return m.RegisterFunc(ctx, reg)
}
func (m *mockUsers) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	return m.LoginFunc(ctx, email, password)
}
func (m *mockUsers) Profile(ctx context.Context, userID string) (*models.User, error) {
	return m.ProfileFunc(ctx, userID)
}
func (m *mockUsers) UpdateProfile(ctx context.Context, userID string, patch services.ProfilePatch) (*models.User, error) {
	return m.UpdateProfileFunc(ctx, userID, patch)
}
func (m *mockUsers) ChangePassword(ctx context.Context, userID, current, next string) error {
	return m.ChangePassFunc(ctx, userID, current, next)
}
func (m *mockUsers) ProfileImageUpload(ctx context.Context, userID, contentType string) (storage.Upload, error) {
	return m.ImageFunc(ctx, userID, contentType)
}

type mockTasks struct {
	ListFunc    func(ctx context.Context, userID string, archived bool) ([]*models.Task, error)
	CreateFunc  func(ctx context.Context, userID string, in services.TaskInput) (*models.Task, error)
	UpdateFunc  func(ctx context.Context, userID, id string, in services.TaskInput) (*models.Task, error)
	DeleteFunc  func(ctx context.Context, userID, id string) error
	ArchiveFunc func(ctx context.Context, userID, id string, archived bool) (*models.Task, error)
}

func (m *mockTasks) List(ctx context.Context, userID string) ([]*models.Task, error) {
	return m.ListFunc(ctx, userID, false)
}
func (m *mockTasks) ListArchived(ctx context.Context, userID string) ([]*models.Task, error) {
	return m.ListFunc(ctx, userID, true)
}
func (m *mockTasks) Create(ctx context.Context, userID string, in services.TaskInput) (*models.Task, error) {
	return m.CreateFunc(ctx, userID, in)
}
func (m *mockTasks) Update(ctx context.Context, userID, id string, in services.TaskInput) (*models.Task, error) {
	return m.UpdateFunc(ctx, userID, id, in)
}
func (m *mockTasks) Delete(ctx context.Context, userID, id string) error {
	return m.DeleteFunc(ctx, userID, id)
}
func (m *mockTasks) Archive(ctx context.Context, userID, id string) (*models.Task, error) {
	return m.ArchiveFunc(ctx, userID, id, true)
}
func (m *mockTasks) Restore(ctx context.Context, userID, id string) (*models.Task, error) {
	return m.ArchiveFunc(ctx, userID, id, false)
}

// tokenMap verifies "Bearer <token>" against a fixed table.
type tokenMap map[string]string

func (m tokenMap) Verify(token string) (string, error) {
	if token == "expired" {
		return "", common.ErrTokenExpired
	}
	id, ok := m[token]
	if !ok {
		return "", common.ErrInvalidToken
	}
	return id, nil
}

func newServer(u *mockUsers, ts *mockTasks) *gin.Engine {
	if u == nil {
		u = &mockUsers{}
	}
	if ts == nil {
		ts = &mockTasks{}
	}
	return NewRouter(NewHandler(u, ts, nil), tokenMap{"good": "u-1"}, []string{"http://app.test"})
}

func do(t *testing.T, r http.Handler, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w, out
}

func sampleUser() *models.User {
	return &models.User{ID: "u-1", Email: "ann@example.com", PasswordHash: "secret-hash", FirstName: "Ann", LastName: "Lee", Theme: "light", CreatedAt: created}
}

func TestHealth(t *testing.T) {
	w, out := do(t, newServer(nil, nil), http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", out["status"])
}

func TestRegister(t *testing.T) {
	u := &mockUsers{RegisterFunc: func(_ context.Context, reg services.Registration) (*models.User, string, error) {
		assert.Equal(t, "ann@example.com", reg.Email)
		assert.Equal(t, "Ann", reg.FirstName)
		return sampleUser(), "tok", nil
	}}

	w, out := do(t, newServer(u, nil), http.MethodPost, "/api/register", "",
		map[string]string{"email": "ann@example.com", "password": "secret1", "firstName": "Ann", "lastName": "Lee"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "tok", out["token"])
	user := out["user"].(map[string]any)
	assert.Equal(t, "ann@example.com", user["email"])
	assert.Equal(t, "Ann", user["firstName"])
	assert.Equal(t, false, user["hasSeenTutorial"])
	assert.NotContains(t, w.Body.String(), "secret-hash")
}

func TestRegister_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"duplicate", common.ErrorAlreadyExists, http.StatusConflict, "User already exists"},
		{"validation", &services.ValidationError{Message: "Please enter a valid email address"}, http.StatusBadRequest, "Please enter a valid email address"},
		{"internal", errors.New("db down"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &mockUsers{RegisterFunc: func(context.Context, services.Registration) (*models.User, string, error) {
				return nil, "", tt.err
			}}
			w, out := do(t, newServer(u, nil), http.MethodPost, "/api/register", "", map[string]string{"email": "x"})
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, false, out["success"])
			assert.Equal(t, tt.msg, out["error"])
		})
	}
}

func TestLogin(t *testing.T) {
	u := &mockUsers{LoginFunc: func(_ context.Context, email, password string) (*models.User, string, error) {
		if password != "secret1" {
			return nil, "", common.ErrorUnauthorized
		}
		return sampleUser(), "tok", nil
	}}
	srv := newServer(u, nil)

	w, out := do(t, srv, http.MethodPost, "/api/login", "", map[string]string{"email": "ann@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tok", out["token"])

	w, out = do(t, srv, http.MethodPost, "/api/login", "", map[string]string{"email": "ann@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", out["error"])
}

func TestBadJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewBufferString("{"))
	w := httptest.NewRecorder()
	newServer(nil, nil).ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthMiddleware(t *testing.T) {
	srv := newServer(&mockUsers{ProfileFunc: func(_ context.Context, id string) (*models.User, error) {
		assert.Equal(t, "u-1", id)
		return sampleUser(), nil
	}}, nil)

	w, out := do(t, srv, http.MethodGet, "/api/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Authorization required", out["error"])

	w, out = do(t, srv, http.MethodGet, "/api/profile", "expired", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token expired", out["error"])

	w, _ = do(t, srv, http.MethodGet, "/api/profile", "forged", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, out = do(t, srv, http.MethodGet, "/api/profile", "good", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ann@example.com", out["user"].(map[string]any)["email"])
}

func TestUpdateProfile_PassesOnlyGivenFields(t *testing.T) {
	u := &mockUsers{UpdateProfileFunc: func(_ context.Context, _ string, p services.ProfilePatch) (*models.User, error) {
		assert.Nil(t, p.FirstName)
		require.NotNil(t, p.Theme)
		require.NotNil(t, p.HasSeenTutorial)
		out := sampleUser()
		out.Theme = *p.Theme
		out.HasSeenTutorial = *p.HasSeenTutorial
		return out, nil
	}}

	w, out := do(t, newServer(u, nil), http.MethodPut, "/api/profile", "good", map[string]any{"theme": "dark", "hasSeenTutorial": true})
	assert.Equal(t, http.StatusOK, w.Code)
	user := out["user"].(map[string]any)
	assert.Equal(t, "dark", user["theme"])
	assert.Equal(t, true, user["hasSeenTutorial"])
}

func TestChangePassword_WrongCurrentIsBadRequest(t *testing.T) {
	u := &mockUsers{ChangePassFunc: func(_ context.Context, _, current, _ string) error {
		if current != "secret1" {
			return &services.ValidationError{Message: "Current password is incorrect"}
		}
		return nil
	}}
	srv := newServer(u, nil)

	w, out := do(t, srv, http.MethodPost, "/api/change-password", "good", map[string]string{"currentPassword": "x", "newPassword": "newpass1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Current password is incorrect", out["error"])

	w, out = do(t, srv, http.MethodPost, "/api/change-password", "good", map[string]string{"currentPassword": "secret1", "newPassword": "newpass1"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Password changed successfully", out["message"])
}

func TestProfileImage(t *testing.T) {
	u := &mockUsers{ImageFunc: func(_ context.Context, _, ct string) (storage.Upload, error) {
		if ct == "" {
			return storage.Upload{}, storage.ErrDisabled
		}
		return storage.Upload{UploadURL: "https://s3/put", PublicURL: "https://cdn/img.png"}, nil
	}}
	srv := newServer(u, nil)

	w, out := do(t, srv, http.MethodPost, "/api/profile/image", "good", map[string]string{"contentType": "image/png"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://s3/put", out["uploadUrl"])
	assert.Equal(t, "https://cdn/img.png", out["imageUrl"])

	w, _ = do(t, srv, http.MethodPost, "/api/profile/image", "good", map[string]string{})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestTasks_ListShapes(t *testing.T) {
	fires, offset := created.Add(-30*time.Minute), 30
	archivedAt := created.Add(time.Hour)
	ts := &mockTasks{ListFunc: func(_ context.Context, _ string, archived bool) ([]*models.Task, error) {
		if archived {
			return []*models.Task{{ID: "t-2", Title: "Old", Archived: true, ArchivedAt: &archivedAt, CreatedAt: created}}, nil
		}
		return []*models.Task{{ID: "t-1", Title: "Pay rent", Date: "2025-01-01", Time: "08:30", Priority: "high",
			ReminderFiresAt: &fires, ReminderOffset: &offset, CreatedAt: created}}, nil
	}}
	srv := newServer(nil, ts)

	w, out := do(t, srv, http.MethodGet, "/api/tasks", "good", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	list := out["tasks"].([]any)
	require.Len(t, list, 1)
	task := list[0].(map[string]any)
	assert.Equal(t, "t-1", task["id"])
	assert.Equal(t, "08:30", task["time"])
	rem := task["reminder"].(map[string]any)
	assert.Equal(t, float64(30), rem["offsetMinutes"])
	assert.Equal(t, "2025-01-01T07:30:00Z", rem["firesAt"])
	assert.NotContains(t, task, "archivedAt")

	w, out = do(t, srv, http.MethodGet, "/api/tasks/archived", "good", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	old := out["tasks"].([]any)[0].(map[string]any)
	assert.Equal(t, true, old["archived"])
	assert.Equal(t, "2025-01-01T09:00:00Z", old["archivedAt"])
	assert.NotContains(t, old, "reminder")
}

func TestTasks_EmptyListIsArray(t *testing.T) {
	ts := &mockTasks{ListFunc: func(context.Context, string, bool) ([]*models.Task, error) { return nil, nil }}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer good")
	newServer(nil, ts).ServeHTTP(w, req)
	assert.JSONEq(t, `{"success":true,"tasks":[]}`, w.Body.String())
}

func TestTasks_CreateAndUpdate(t *testing.T) {
	ts := &mockTasks{
		CreateFunc: func(_ context.Context, userID string, in services.TaskInput) (*models.Task, error) {
			assert.Equal(t, "u-1", userID)
			require.NotNil(t, in.Reminder)
			assert.Equal(t, 10, in.Reminder.OffsetMinutes)
			return &models.Task{ID: "t-9", Title: in.Title, CreatedAt: created}, nil
		},
		UpdateFunc: func(_ context.Context, _, id string, in services.TaskInput) (*models.Task, error) {
			assert.Nil(t, in.Reminder)
			if id != "t-9" {
				return nil, common.ErrorNotFound
			}
			return &models.Task{ID: id, Title: in.Title, CreatedAt: created}, nil
		},
	}
	srv := newServer(nil, ts)

	body := map[string]any{"title": "Walk", "date": "2025-01-02", "time": "09:00", "priority": "low",
		"reminder": map[string]any{"firesAt": "2025-01-02T08:50:00Z", "offsetMinutes": 10}}
	w, out := do(t, srv, http.MethodPost, "/api/tasks", "good", body)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "t-9", out["task"].(map[string]any)["id"])

	upd := map[string]any{"title": "Walk dog", "date": "2025-01-02", "time": "09:00", "priority": "low"}
	w, out = do(t, srv, http.MethodPut, "/api/tasks/t-9", "good", upd)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Walk dog", out["task"].(map[string]any)["title"])

	w, out = do(t, srv, http.MethodPut, "/api/tasks/nope", "good", upd)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Task not found", out["error"])
}

func TestTasks_ArchiveRestoreDelete(t *testing.T) {
	var calls []string
	ts := &mockTasks{
		ArchiveFunc: func(_ context.Context, _, id string, archived bool) (*models.Task, error) {
			if archived {
				calls = append(calls, "archive:"+id)
			} else {
				calls = append(calls, "restore:"+id)
			}
			return &models.Task{ID: id, Archived: archived, CreatedAt: created}, nil
		},
		DeleteFunc: func(_ context.Context, _, id string) error {
			calls = append(calls, "delete:"+id)
			if id == "gone" {
				return common.ErrorNotFound
			}
			return nil
		},
	}
	srv := newServer(nil, ts)

	w, out := do(t, srv, http.MethodPost, "/api/tasks/t-1/archive", "good", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, out["task"].(map[string]any)["archived"])

	w, _ = do(t, srv, http.MethodPost, "/api/tasks/t-1/restore", "good", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, out = do(t, srv, http.MethodDelete, "/api/tasks/t-1", "good", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, out["success"])

	w, _ = do(t, srv, http.MethodDelete, "/api/tasks/gone", "good", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, []string{"archive:t-1", "restore:t-1", "delete:t-1", "delete:gone"}, calls)
}

func TestCORS(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/tasks", nil)
	req.Header.Set("Origin", "http://app.test")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()

	newServer(nil, nil).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://app.test", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCorsConfig(t *testing.T) {
	assert.True(t, corsConfig(nil).AllowAllOrigins)
	assert.True(t, corsConfig([]string{"http://a.test", "*"}).AllowAllOrigins)

	c := corsConfig([]string{"http://a.test"})
	assert.False(t, c.AllowAllOrigins)
	assert.True(t, c.AllowCredentials)
	assert.Equal(t, []string{"http://a.test"}, c.AllowOrigins)
}
