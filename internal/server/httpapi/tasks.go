package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/taskly/internal/server/models"
	"github.com/gin-gonic/gin"
)

const taskNotFound = "Task not found"

func (h *Handler) listTasks(c *gin.Context) {
	h.respondList(c, h.tasks.List)
}

func (h *Handler) listArchived(c *gin.Context) {
	h.respondList(c, h.tasks.ListArchived)
}

func (h *Handler) respondList(c *gin.Context, list func(context.Context, string) ([]*models.Task, error)) {
	ts, err := list(c.Request.Context(), c.GetString(userIDKey))
	if err != nil {
		h.writeError(c, err, taskNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "tasks": toTaskDTOs(ts)})
}

func (h *Handler) createTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	t, err := h.tasks.Create(c.Request.Context(), c.GetString(userIDKey), req.input())
	if err != nil {
		h.writeError(c, err, taskNotFound)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "task": toTaskDTO(t)})
}

func (h *Handler) updateTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	t, err := h.tasks.Update(c.Request.Context(), c.GetString(userIDKey), c.Param("id"), req.input())
	if err != nil {
		h.writeError(c, err, taskNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "task": toTaskDTO(t)})
}

func (h *Handler) deleteTask(c *gin.Context) {
	if err := h.tasks.Delete(c.Request.Context(), c.GetString(userIDKey), c.Param("id")); err != nil {
		h.writeError(c, err, taskNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Task deleted"})
}

func (h *Handler) archiveTask(c *gin.Context) {
	h.respondTask(c, h.tasks.Archive)
}

func (h *Handler) restoreTask(c *gin.Context) {
	h.respondTask(c, h.tasks.Restore)
}

func (h *Handler) respondTask(c *gin.Context, op func(context.Context, string, string) (*models.Task, error)) {
	t, err := op(c.Request.Context(), c.GetString(userIDKey), c.Param("id"))
	if err != nil {
		h.writeError(c, err, taskNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "task": toTaskDTO(t)})
}
