package httpapi

import (
	"time"

	"github.com/dmitrijs2005/taskly/internal/common"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine with CORS, request logging and the
// authenticated route group.
func NewRouter(h *Handler, verifier TokenVerifier, allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(h.log))
	r.Use(cors.New(corsConfig(allowedOrigins)))

	api := r.Group(common.APIBasePath)
	{
		api.GET("/health", h.health)
		api.POST("/register", h.register)
		api.POST("/login", h.login)
	}

	authed := api.Group("")
	authed.Use(AuthMiddleware(verifier))
	{
		authed.GET("/profile", h.profile)
		authed.PUT("/profile", h.updateProfile)
		authed.POST("/profile/image", h.profileImage)
		authed.POST("/change-password", h.changePassword)

		authed.GET("/tasks", h.listTasks)
		authed.GET("/tasks/archived", h.listArchived)
		authed.POST("/tasks", h.createTask)
		authed.PUT("/tasks/:id", h.updateTask)
		authed.DELETE("/tasks/:id", h.deleteTask)
		authed.POST("/tasks/:id/archive", h.archiveTask)
		authed.POST("/tasks/:id/restore", h.restoreTask)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", common.AuthorizationHeaderName},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
