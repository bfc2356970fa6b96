package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/taskflow/backend/internal/middleware"
	"github.com/taskflow/backend/internal/services"
)

type UserHandler struct {
	db    *gorm.DB
	users services.UserService
}

func NewUserHandler(db *gorm.DB, users services.UserService) *UserHandler {
	return &UserHandler{db: db, users: users}
}

func (h *UserHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var upd services.UserUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		respondBindError(c, err)
		return
	}

	updated, err := h.users.Update(h.db, user.ID, upd)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if updated == nil {
		respondNotFound(c, "user")
		return
	}

	c.JSON(http.StatusOK, updated)
}
