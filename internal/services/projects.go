package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/taskflow/backend/internal/models"
)

type ProjectCreate struct {
	Name        string `json:"name" binding:"required,min=1,max=200"`
	Description string `json:"description"`
}

// ProjectUpdate carries a partial update. Nil fields are left untouched.
type ProjectUpdate struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description"`
}

// ProjectService scopes every read and write to the owning user. A project
// owned by someone else looks exactly like a project that does not exist.
type ProjectService interface {
	Create(db *gorm.DB, req ProjectCreate, createdBy models.GUID) (*models.Project, error)
	GetByID(db *gorm.DB, id, owner models.GUID) (*models.Project, error)
	List(db *gorm.DB, owner models.GUID, skip, limit int) ([]models.Project, error)
	Update(db *gorm.DB, id, owner models.GUID, upd ProjectUpdate) (*models.Project, error)
	Delete(db *gorm.DB, id, owner models.GUID) (bool, error)
}

type ProjectServiceImpl struct{}

func NewProjectService() *ProjectServiceImpl {
	return &ProjectServiceImpl{}
}

func (s *ProjectServiceImpl) Create(db *gorm.DB, req ProjectCreate, createdBy models.GUID) (*models.Project, error) {
	project := models.Project{
		ID:          models.NewGUID(),
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   createdBy,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&project).Error
	}); err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *ProjectServiceImpl) GetByID(db *gorm.DB, id, owner models.GUID) (*models.Project, error) {
	var project models.Project
	err := db.Where("id = ? AND created_by = ?", id, owner).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *ProjectServiceImpl) List(db *gorm.DB, owner models.GUID, skip, limit int) ([]models.Project, error) {
	projects := []models.Project{}
	err := db.Where("created_by = ?", owner).
		Order("created_at").
		Offset(clampSkip(skip)).
		Limit(clampLimit(limit)).
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func (s *ProjectServiceImpl) Update(db *gorm.DB, id, owner models.GUID, upd ProjectUpdate) (*models.Project, error) {
	project, err := s.GetByID(db, id, owner)
	if err != nil || project == nil {
		return nil, err
	}

	if upd.Name != nil {
		project.Name = *upd.Name
	}
	if upd.Description != nil {
		project.Description = *upd.Description
	}
	project.UpdatedAt = time.Now()

	if err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Save(project).Error
	}); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectServiceImpl) Delete(db *gorm.DB, id, owner models.GUID) (bool, error) {
	result := db.Where("id = ? AND created_by = ?", id, owner).Delete(&models.Project{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
