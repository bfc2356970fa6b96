package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/taskflow/backend/internal/models"
	"github.com/taskflow/backend/internal/services"
)

type TaskHandler struct {
	db    *gorm.DB
	tasks services.TaskService
}

func NewTaskHandler(db *gorm.DB, tasks services.TaskService) *TaskHandler {
	return &TaskHandler{db: db, tasks: tasks}
}

type TaskStatusUpdate struct {
	Status string `json:"status" binding:"required"`
}

func (h *TaskHandler) Create(c *gin.Context) {
	var req services.TaskCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	task, err := h.tasks.Create(h.db, req)
	if err != nil {
		if errors.Is(err, services.ErrBoardNotFound) {
			respondNotFound(c, "board")
			return
		}
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) List(c *gin.Context) {
	var filter services.TaskFilter
	if raw := c.Query("board_id"); raw != "" {
		boardID, err := models.GUIDFromString(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid board_id"})
			return
		}
		filter.BoardID = &boardID
	}
	if status := c.Query("status"); status != "" {
		if !models.ValidTaskStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status filter"})
			return
		}
		filter.Status = &status
	}

	skip, limit := parseListParams(c)
	tasks, err := h.tasks.List(h.db, filter, skip, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "task")
	if !ok {
		return
	}

	task, err := h.tasks.GetByID(h.db, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if task == nil {
		respondNotFound(c, "task")
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "task")
	if !ok {
		return
	}

	var upd services.TaskUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		respondBindError(c, err)
		return
	}

	task, err := h.tasks.Update(h.db, id, upd)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if task == nil {
		respondNotFound(c, "task")
		return
	}

	c.JSON(http.StatusOK, task)
}

// UpdateStatus handles PATCH /tasks/:id/status. A literal outside the
// status enum is rejected with 422 before reaching the service layer.
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "task")
	if !ok {
		return
	}

	var req TaskStatusUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if !models.ValidTaskStatus(req.Status) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "invalid status",
			"details": "status must be one of: todo, in_progress, done",
		})
		return
	}

	task, err := h.tasks.UpdateStatus(h.db, id, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if task == nil {
		respondNotFound(c, "task")
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "task")
	if !ok {
		return
	}

	removed, err := h.tasks.Delete(h.db, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !removed {
		respondNotFound(c, "task")
		return
	}

	c.Status(http.StatusNoContent)
}
