package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter wires all routes onto a gin engine
func NewRouter(auth *AuthService, handlers *Handlers) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery())

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api")

	users := api.Group("/users")
	users.POST("", handlers.Register)
	users.POST("/login", handlers.Login)
	users.GET("/profile", Auth(auth), handlers.Profile)

	projects := api.Group("/projects")
	projects.Use(Auth(auth))
	projects.GET("", handlers.ListProjects)
	projects.POST("", handlers.CreateProject)
	projects.PUT("/:id", handlers.UpdateProject)
	projects.DELETE("/:id", handlers.DeleteProject)

	entries := api.Group("/time-entries")
	entries.Use(Auth(auth))
	entries.GET("", handlers.ListTimeEntries)
	entries.POST("", handlers.CreateTimeEntry)
	entries.PUT("/:id", handlers.UpdateTimeEntry)
	entries.DELETE("/:id", handlers.DeleteTimeEntry)

	return engine
}
