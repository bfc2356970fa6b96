package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/taskflow/backend/internal/middleware"
	"github.com/taskflow/backend/internal/services"
)

// ProjectHandler exposes project CRUD scoped to the authenticated owner.
// A project owned by another user renders as 404, never 403.
type ProjectHandler struct {
	db       *gorm.DB
	projects services.ProjectService
}

func NewProjectHandler(db *gorm.DB, projects services.ProjectService) *ProjectHandler {
	return &ProjectHandler{db: db, projects: projects}
}

func (h *ProjectHandler) Create(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req services.ProjectCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	project, err := h.projects.Create(h.db, req, user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, project)
}

func (h *ProjectHandler) List(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	skip, limit := parseListParams(c)
	projects, err := h.projects.List(h.db, user.ID, skip, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, projects)
}

func (h *ProjectHandler) Get(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	id, ok := parseIDParam(c, "project")
	if !ok {
		return
	}

	project, err := h.projects.GetByID(h.db, id, user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if project == nil {
		respondNotFound(c, "project")
		return
	}

	c.JSON(http.StatusOK, project)
}

func (h *ProjectHandler) Update(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	id, ok := parseIDParam(c, "project")
	if !ok {
		return
	}

	var upd services.ProjectUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		respondBindError(c, err)
		return
	}

	project, err := h.projects.Update(h.db, id, user.ID, upd)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if project == nil {
		respondNotFound(c, "project")
		return
	}

	c.JSON(http.StatusOK, project)
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	id, ok := parseIDParam(c, "project")
	if !ok {
		return
	}

	removed, err := h.projects.Delete(h.db, id, user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !removed {
		respondNotFound(c, "project")
		return
	}

	c.Status(http.StatusNoContent)
}
