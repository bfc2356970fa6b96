package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/taskflow/backend/internal/models"
	"github.com/taskflow/backend/internal/services"
)

type BoardHandler struct {
	db     *gorm.DB
	boards services.BoardService
}

func NewBoardHandler(db *gorm.DB, boards services.BoardService) *BoardHandler {
	return &BoardHandler{db: db, boards: boards}
}

func (h *BoardHandler) Create(c *gin.Context) {
	var req services.BoardCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	board, err := h.boards.Create(h.db, req)
	if err != nil {
		if errors.Is(err, services.ErrProjectNotFound) {
			respondNotFound(c, "project")
			return
		}
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, board)
}

func (h *BoardHandler) List(c *gin.Context) {
	var filter services.BoardFilter
	if raw := c.Query("project_id"); raw != "" {
		projectID, err := models.GUIDFromString(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project_id"})
			return
		}
		filter.ProjectID = &projectID
	}

	skip, limit := parseListParams(c)
	boards, err := h.boards.List(h.db, filter, skip, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, boards)
}

func (h *BoardHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "board")
	if !ok {
		return
	}

	board, err := h.boards.GetByID(h.db, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if board == nil {
		respondNotFound(c, "board")
		return
	}

	c.JSON(http.StatusOK, board)
}

func (h *BoardHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "board")
	if !ok {
		return
	}

	var upd services.BoardUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		respondBindError(c, err)
		return
	}

	board, err := h.boards.Update(h.db, id, upd)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if board == nil {
		respondNotFound(c, "board")
		return
	}

	c.JSON(http.StatusOK, board)
}

func (h *BoardHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "board")
	if !ok {
		return
	}

	removed, err := h.boards.Delete(h.db, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !removed {
		respondNotFound(c, "board")
		return
	}

	c.Status(http.StatusNoContent)
}
