// Package httpapi exposes the Taskly REST API over gin. Every route lives
// under /api and answers with a JSON object carrying "success" plus either
// the payload or an "error" message.
package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/taskly/internal/common"
	"github.com/dmitrijs2005/taskly/internal/logging"
	"github.com/dmitrijs2005/taskly/internal/server/models"
	"github.com/dmitrijs2005/taskly/internal/server/services"
	"github.com/dmitrijs2005/taskly/internal/server/storage"
	"github.com/gin-gonic/gin"
)

// Users is the account side of the API.
type Users interface {
	Register(ctx context.Context, reg services.Registration) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	Profile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, patch services.ProfilePatch) (*models.User, error)
	ChangePassword(ctx context.Context, userID, current, next string) error
	ProfileImageUpload(ctx context.Context, userID, contentType string) (storage.Upload, error)
}

// Tasks is the task side of the API.
type Tasks interface {
	List(ctx context.Context, userID string) ([]*models.Task, error)
	ListArchived(ctx context.Context, userID string) ([]*models.Task, error)
	Create(ctx context.Context, userID string, in services.TaskInput) (*models.Task, error)
	Update(ctx context.Context, userID, id string, in services.TaskInput) (*models.Task, error)
	Delete(ctx context.Context, userID, id string) error
	Archive(ctx context.Context, userID, id string) (*models.Task, error)
	Restore(ctx context.Context, userID, id string) (*models.Task, error)
}

// Handler serves the API routes.
type Handler struct {
	users Users
	tasks Tasks
	log   logging.Logger
}

func NewHandler(users Users, tasks Tasks, log logging.Logger) *Handler {
	if log == nil {
		log = logging.Nop()
	}
	return &Handler{users: users, tasks: tasks, log: log}
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": msg})
}

// writeError maps service errors onto status codes. notFound is the message
// used for common.ErrorNotFound.
func (h *Handler) writeError(c *gin.Context, err error, notFound string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		fail(c, http.StatusBadRequest, verr.Message)
	case errors.Is(err, common.ErrorValidation):
		fail(c, http.StatusBadRequest, "Invalid request")
	case errors.Is(err, common.ErrorNotFound):
		fail(c, http.StatusNotFound, notFound)
	case errors.Is(err, common.ErrorAlreadyExists):
		fail(c, http.StatusConflict, "User already exists")
	case errors.Is(err, common.ErrorUnauthorized):
		fail(c, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, storage.ErrDisabled):
		fail(c, http.StatusServiceUnavailable, "Profile images are not available")
	default:
		h.log.Error(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.FullPath(), "error", err)
		fail(c, http.StatusInternalServerError, "Internal server error")
	}
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}
