package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/taskflow/backend/internal/auth"
	"github.com/taskflow/backend/internal/services"
)

type AuthHandler struct {
	db     *gorm.DB
	users  services.UserService
	tokens *auth.TokenService
}

func NewAuthHandler(db *gorm.DB, users services.UserService, tokens *auth.TokenService) *AuthHandler {
	return &AuthHandler{db: db, users: users, tokens: tokens}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.users.Register(h.db, req)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) || errors.Is(err, services.ErrUsernameTaken) {
			c.JSON(http.StatusConflict, gin.H{
				"error":   "registration failed",
				"details": err.Error(),
			})
			return
		}
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// Login verifies credentials and issues a bearer token. Unknown username
// and wrong password produce the same response.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.users.Authenticate(h.db, req.Username, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "invalid_credentials",
			"message": "Invalid username or password",
		})
		return
	}

	token, err := h.tokens.Issue(user.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "token_generation_failed",
			"message": "Failed to generate authentication token",
		})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.tokens.TTL().Seconds()),
	})
}
