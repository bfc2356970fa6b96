package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/taskflow/backend/internal/models"
	"github.com/taskflow/backend/internal/services"
)

// parseListParams reads skip/limit query parameters. Out-of-range values
// are clamped by the service layer.
func parseListParams(c *gin.Context) (int, int) {
	skip, err := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil || skip < 0 {
		skip = 0
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(services.DefaultListLimit)))
	if err != nil {
		limit = services.DefaultListLimit
	}
	return skip, limit
}

// parseIDParam reads a GUID path parameter. A malformed id cannot name an
// existing record, so it renders as not found.
func parseIDParam(c *gin.Context, resource string) (models.GUID, bool) {
	id, err := models.GUIDFromString(c.Param("id"))
	if err != nil {
		respondNotFound(c, resource)
		return models.GUID{}, false
	}
	return id, true
}

func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, gin.H{
		"error": resource + " not found",
	})
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "invalid request data",
		"details": err.Error(),
	})
}

// respondServiceError surfaces an unexpected service failure as 400 with a
// message. The request fails atomically and is not retried.
func respondServiceError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "request failed",
		"details": err.Error(),
	})
}
