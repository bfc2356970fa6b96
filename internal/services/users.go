package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/taskflow/backend/internal/auth"
	"github.com/taskflow/backend/internal/models"
)

var (
	ErrEmailTaken    = errors.New("email already exists")
	ErrUsernameTaken = errors.New("username already exists")
)

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"max=100"`
}

// UserUpdate carries a partial update. Nil fields are left untouched.
type UserUpdate struct {
	Email    *string `json:"email" binding:"omitempty,email"`
	FullName *string `json:"full_name"`
	Password *string `json:"password" binding:"omitempty,min=8"`
}

type UserService interface {
	Register(db *gorm.DB, req RegisterRequest) (*models.User, error)
	Authenticate(db *gorm.DB, username, password string) (*models.User, error)
	GetByID(db *gorm.DB, id models.GUID) (*models.User, error)
	GetByUsername(db *gorm.DB, username string) (*models.User, error)
	Update(db *gorm.DB, id models.GUID, upd UserUpdate) (*models.User, error)
	Delete(db *gorm.DB, id models.GUID) (bool, error)
}

type UserServiceImpl struct {
	hasher *auth.Hasher
}

func NewUserService(hasher *auth.Hasher) *UserServiceImpl {
	return &UserServiceImpl{hasher: hasher}
}

func (s *UserServiceImpl) Register(db *gorm.DB, req RegisterRequest) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	if err := db.Model(&models.User{}).Where("username = ?", req.Username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		ID:             models.NewGUID(),
		Username:       req.Username,
		Email:          req.Email,
		HashedPassword: hashed,
		FullName:       req.FullName,
		IsActive:       true,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&user).Error
	}); err != nil {
		return nil, err
	}

	return &user, nil
}

// Authenticate resolves a user by username and verifies the password.
// Unknown username, wrong password, and inactive account all return
// (nil, nil) so callers cannot tell them apart.
func (s *UserServiceImpl) Authenticate(db *gorm.DB, username, password string) (*models.User, error) {
	user, err := s.GetByUsername(db, username)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, nil
	}
	if !auth.VerifyPassword(password, user.HashedPassword) {
		return nil, nil
	}
	return user, nil
}

func (s *UserServiceImpl) GetByID(db *gorm.DB, id models.GUID) (*models.User, error) {
	var user models.User
	err := db.Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserServiceImpl) GetByUsername(db *gorm.DB, username string) (*models.User, error) {
	var user models.User
	err := db.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserServiceImpl) Update(db *gorm.DB, id models.GUID, upd UserUpdate) (*models.User, error) {
	user, err := s.GetByID(db, id)
	if err != nil || user == nil {
		return nil, err
	}

	if upd.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*upd.Email))
	}
	if upd.FullName != nil {
		user.FullName = *upd.FullName
	}
	if upd.Password != nil {
		hashed, err := s.hasher.Hash(*upd.Password)
		if err != nil {
			return nil, err
		}
		user.HashedPassword = hashed
	}
	user.UpdatedAt = time.Now()

	if err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Save(user).Error
	}); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserServiceImpl) Delete(db *gorm.DB, id models.GUID) (bool, error) {
	result := db.Where("id = ?", id).Delete(&models.User{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
