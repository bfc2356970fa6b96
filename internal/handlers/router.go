package handlers

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/taskflow/backend/internal/auth"
	"github.com/taskflow/backend/internal/cache"
	"github.com/taskflow/backend/internal/config"
	"github.com/taskflow/backend/internal/middleware"
	"github.com/taskflow/backend/internal/monitoring"
	"github.com/taskflow/backend/internal/services"
)

// Dependencies bundles everything the router wires into handlers. Cache
// and RateLimiter may be nil; the corresponding features are then skipped.
type Dependencies struct {
	DB          *gorm.DB
	Tokens      *auth.TokenService
	Users       services.UserService
	Projects    services.ProjectService
	Boards      services.BoardService
	Tasks       services.TaskService
	Cache       *cache.RedisCache
	Metrics     *monitoring.Metrics
	RateLimiter *middleware.RateLimiter
}

// NewRouter assembles the Gin engine: recovery, CORS, metrics, rate
// limiting, health endpoints, and the /api/v1 resource routes.
func NewRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware())
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	if deps.RateLimiter != nil {
		router.Use(deps.RateLimiter.Middleware())
	}

	router.GET("/healthz", monitoring.HealthHandler(deps.DB, deps.Cache))
	router.GET("/readyz", monitoring.ReadinessHandler(deps.DB))
	router.GET("/livez", monitoring.LivenessHandler())
	if deps.Metrics != nil {
		router.GET("/metrics", deps.Metrics.Handler())
	}

	authHandler := NewAuthHandler(deps.DB, deps.Users, deps.Tokens)
	userHandler := NewUserHandler(deps.DB, deps.Users)
	projectHandler := NewProjectHandler(deps.DB, deps.Projects)
	boardHandler := NewBoardHandler(deps.DB, deps.Boards)
	taskHandler := NewTaskHandler(deps.DB, deps.Tasks)

	api := router.Group("/api/v1")

	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.RequireAuth(deps.DB, deps.Tokens, deps.Users))
	{
		authed.GET("/users/me", userHandler.Me)
		authed.PUT("/users/me", userHandler.UpdateMe)

		authed.POST("/projects", projectHandler.Create)
		authed.GET("/projects", projectHandler.List)
		authed.GET("/projects/:id", projectHandler.Get)
		authed.PUT("/projects/:id", projectHandler.Update)
		authed.DELETE("/projects/:id", projectHandler.Delete)

		authed.POST("/boards", boardHandler.Create)
		authed.GET("/boards", boardHandler.List)
		authed.GET("/boards/:id", boardHandler.Get)
		authed.PUT("/boards/:id", boardHandler.Update)
		authed.DELETE("/boards/:id", boardHandler.Delete)

		authed.POST("/tasks", taskHandler.Create)
		authed.GET("/tasks", taskHandler.List)
		authed.GET("/tasks/:id", taskHandler.Get)
		authed.PUT("/tasks/:id", taskHandler.Update)
		authed.PATCH("/tasks/:id/status", taskHandler.UpdateStatus)
		authed.DELETE("/tasks/:id", taskHandler.Delete)
	}

	return router
}
