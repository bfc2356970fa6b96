package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/taskflow/backend/internal/auth"
	"github.com/taskflow/backend/internal/models"
	"github.com/taskflow/backend/internal/services"
)

// CurrentUserKey is the gin context key holding the authenticated user.
const CurrentUserKey = "current_user"

// RequireAuth gates a route group behind bearer authentication: extract the
// token, verify it, resolve the subject to a user record, and reject with
// 401 at every step. It runs before any handler logic that assumes an
// authenticated actor.
func RequireAuth(db *gorm.DB, tokens *auth.TokenService, users services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing_token", "Authorization header is required")
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, "invalid_token_format", "Authorization header must use Bearer token")
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		subject, ok := tokens.Verify(tokenStr)
		if !ok {
			abortUnauthorized(c, "invalid_token", "Token validation failed")
			return
		}

		user, err := users.GetByUsername(db, subject)
		if err != nil || user == nil || !user.IsActive {
			abortUnauthorized(c, "invalid_token", "Token validation failed")
			return
		}

		c.Set(CurrentUserKey, user)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":   code,
		"message": message,
	})
}

// CurrentUser returns the user resolved by RequireAuth.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(CurrentUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}
