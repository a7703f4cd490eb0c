package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskly/internal/client/models"
	"github.com/dmitrijs2005/taskly/internal/common"
)

// HTTPClient implements Client over net/http.
type HTTPClient struct {
	baseURL string
	hc      *http.Client
	tokens  TokenSource
}

// NewHTTPClient builds a client for baseURL (scheme://host[:port], without
// the /api prefix). A zero timeout leaves requests unbounded.
func NewHTTPClient(baseURL string, timeout time.Duration, tokens TokenSource) *HTTPClient {
	if tokens == nil {
		tokens = StaticToken("")
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/") + common.APIBasePath,
		hc:      &http.Client{Timeout: timeout},
		tokens:  tokens,
	}
}

// envelope holds the fields every response shares.
type envelope struct {
	Success *bool  `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Do performs one request. body (if non-nil) is sent as JSON; on success the
// response JSON is decoded into out (if non-nil).
func (c *HTTPClient) Do(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, endpoint, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if tok := c.tokens.Token(); tok != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+tok)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read %s %s: %v", ErrUnavailable, method, endpoint, err)
	}

	var env envelope
	if len(data) > 0 {
		// a non-JSON error page still yields a RequestFailedError below
		_ = json.Unmarshal(data, &env)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RequestFailedError{Status: resp.StatusCode, Message: env.Error}
	}
	if env.Success != nil && !*env.Success {
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		return &RequestFailedError{Status: resp.StatusCode, Message: msg}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode %s %s: %w", method, endpoint, err)
		}
	}
	return nil
}

func taskPath(id string, suffix string) string {
	return "/tasks/" + url.PathEscape(id) + suffix
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.Do(ctx, http.MethodGet, "/health", nil, &out); err != nil {
		return err
	}
	if out.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (c *HTTPClient) Register(ctx context.Context, reg models.Registration) (models.AuthPayload, error) {
	var out models.AuthPayload
	err := c.Do(ctx, http.MethodPost, "/register", reg, &out)
	return out, err
}

func (c *HTTPClient) Login(ctx context.Context, creds models.Credentials) (models.AuthPayload, error) {
	var out models.AuthPayload
	err := c.Do(ctx, http.MethodPost, "/login", creds, &out)
	return out, err
}

type userResponse struct {
	User models.User `json:"user"`
}

func (c *HTTPClient) GetProfile(ctx context.Context) (models.User, error) {
	var out userResponse
	err := c.Do(ctx, http.MethodGet, "/profile", nil, &out)
	return out.User, err
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, patch models.ProfilePatch) (models.User, error) {
	var out userResponse
	err := c.Do(ctx, http.MethodPut, "/profile", patch, &out)
	return out.User, err
}

func (c *HTTPClient) ChangePassword(ctx context.Context, change models.PasswordChange) (string, error) {
	var out envelope
	err := c.Do(ctx, http.MethodPost, "/change-password", change, &out)
	return out.Message, err
}

func (c *HTTPClient) RequestProfileImageUpload(ctx context.Context, contentType string) (models.ProfileImageUpload, error) {
	var out models.ProfileImageUpload
	body := map[string]string{"contentType": contentType}
	err := c.Do(ctx, http.MethodPost, "/profile/image", body, &out)
	return out, err
}

type taskResponse struct {
	Task models.Task `json:"task"`
}

type tasksResponse struct {
	Tasks []models.Task `json:"tasks"`
}

func (c *HTTPClient) listTasks(ctx context.Context, endpoint string) ([]models.Task, error) {
	var out tasksResponse
	if err := c.Do(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		return nil, err
	}
	if out.Tasks == nil {
		out.Tasks = []models.Task{}
	}
	return out.Tasks, nil
}

func (c *HTTPClient) taskCall(ctx context.Context, method, endpoint string, body any) (models.Task, error) {
	var out taskResponse
	err := c.Do(ctx, method, endpoint, body, &out)
	return out.Task, err
}

func (c *HTTPClient) ListTasks(ctx context.Context) ([]models.Task, error) {
	return c.listTasks(ctx, "/tasks")
}

func (c *HTTPClient) ListArchived(ctx context.Context) ([]models.Task, error) {
	return c.listTasks(ctx, "/tasks/archived")
}

func (c *HTTPClient) CreateTask(ctx context.Context, in models.TaskInput) (models.Task, error) {
	return c.taskCall(ctx, http.MethodPost, "/tasks", in)
}

func (c *HTTPClient) UpdateTask(ctx context.Context, id string, in models.TaskInput) (models.Task, error) {
	return c.taskCall(ctx, http.MethodPut, taskPath(id, ""), in)
}

func (c *HTTPClient) DeleteTask(ctx context.Context, id string) error {
	return c.Do(ctx, http.MethodDelete, taskPath(id, ""), nil, nil)
}

func (c *HTTPClient) ArchiveTask(ctx context.Context, id string) (models.Task, error) {
	return c.taskCall(ctx, http.MethodPost, taskPath(id, "/archive"), nil)
}

func (c *HTTPClient) RestoreTask(ctx context.Context, id string) (models.Task, error) {
	return c.taskCall(ctx, http.MethodPost, taskPath(id, "/restore"), nil)
}
