package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/taskly/internal/server/services"
	"github.com/gin-gonic/gin"
)

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	u, token, err := h.users.Register(c.Request.Context(), services.Registration{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.writeError(c, err, "User not found")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "token": token, "user": toUserDTO(u)})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	u, token, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err, "User not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "token": token, "user": toUserDTO(u)})
}

func (h *Handler) profile(c *gin.Context) {
	u, err := h.users.Profile(c.Request.Context(), c.GetString(userIDKey))
	if err != nil {
		h.writeError(c, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": toUserDTO(u)})
}

func (h *Handler) updateProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	u, err := h.users.UpdateProfile(c.Request.Context(), c.GetString(userIDKey), req.patch())
	if err != nil {
		h.writeError(c, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": toUserDTO(u)})
}

func (h *Handler) changePassword(c *gin.Context) {
	var req passwordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := h.users.ChangePassword(c.Request.Context(), c.GetString(userIDKey), req.CurrentPassword, req.NewPassword)
	if err != nil {
		h.writeError(c, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password changed successfully"})
}

func (h *Handler) profileImage(c *gin.Context) {
	var req imageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	up, err := h.users.ProfileImageUpload(c.Request.Context(), c.GetString(userIDKey), req.ContentType)
	if err != nil {
		h.writeError(c, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "uploadUrl": up.UploadURL, "imageUrl": up.PublicURL})
}
