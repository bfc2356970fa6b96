package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/taskflow/backend/internal/models"
)

// ErrProjectNotFound reports a board create referencing an absent project.
var ErrProjectNotFound = errors.New("project not found")

type BoardCreate struct {
	ProjectID models.GUID `json:"project_id" binding:"required"`
	Name      string      `json:"name" binding:"required,min=1,max=200"`
	Position  int         `json:"position"`
}

// BoardUpdate carries a partial update. Nil fields are left untouched.
type BoardUpdate struct {
	Name     *string `json:"name" binding:"omitempty,min=1,max=200"`
	Position *int    `json:"position"`
}

type BoardFilter struct {
	ProjectID *models.GUID
}

type BoardService interface {
	Create(db *gorm.DB, req BoardCreate) (*models.Board, error)
	GetByID(db *gorm.DB, id models.GUID) (*models.Board, error)
	List(db *gorm.DB, filter BoardFilter, skip, limit int) ([]models.Board, error)
	Update(db *gorm.DB, id models.GUID, upd BoardUpdate) (*models.Board, error)
	Delete(db *gorm.DB, id models.GUID) (bool, error)
}

type BoardServiceImpl struct{}

func NewBoardService() *BoardServiceImpl {
	return &BoardServiceImpl{}
}

func (s *BoardServiceImpl) Create(db *gorm.DB, req BoardCreate) (*models.Board, error) {
	var count int64
	if err := db.Model(&models.Project{}).Where("id = ?", req.ProjectID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrProjectNotFound
	}

	board := models.Board{
		ID:        models.NewGUID(),
		ProjectID: req.ProjectID,
		Name:      req.Name,
		Position:  req.Position,
		CreatedAt: time.Now(),
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&board).Error
	}); err != nil {
		return nil, err
	}
	return &board, nil
}

func (s *BoardServiceImpl) GetByID(db *gorm.DB, id models.GUID) (*models.Board, error) {
	var board models.Board
	err := db.Where("id = ?", id).First(&board).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &board, nil
}

func (s *BoardServiceImpl) List(db *gorm.DB, filter BoardFilter, skip, limit int) ([]models.Board, error) {
	boards := []models.Board{}
	query := db.Model(&models.Board{})
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	err := query.Order("position, created_at").
		Offset(clampSkip(skip)).
		Limit(clampLimit(limit)).
		Find(&boards).Error
	if err != nil {
		return nil, err
	}
	return boards, nil
}

func (s *BoardServiceImpl) Update(db *gorm.DB, id models.GUID, upd BoardUpdate) (*models.Board, error) {
	board, err := s.GetByID(db, id)
	if err != nil || board == nil {
		return nil, err
	}

	if upd.Name != nil {
		board.Name = *upd.Name
	}
	if upd.Position != nil {
		board.Position = *upd.Position
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Save(board).Error
	}); err != nil {
		return nil, err
	}
	return board, nil
}

func (s *BoardServiceImpl) Delete(db *gorm.DB, id models.GUID) (bool, error) {
	result := db.Where("id = ?", id).Delete(&models.Board{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
