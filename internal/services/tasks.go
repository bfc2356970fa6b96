package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/taskflow/backend/internal/models"
)

// ErrBoardNotFound reports a task create referencing an absent board.
var ErrBoardNotFound = errors.New("board not found")

type TaskCreate struct {
	BoardID     models.GUID  `json:"board_id" binding:"required"`
	Title       string       `json:"title" binding:"required,min=1,max=200"`
	Description string       `json:"description"`
	Priority    string       `json:"priority" binding:"omitempty,oneof=low medium high"`
	Status      string       `json:"status" binding:"omitempty,oneof=todo in_progress done"`
	Assignee    *models.GUID `json:"assignee"`
	DueDate     *time.Time   `json:"due_date"`
}

// TaskUpdate carries a partial update. Nil fields are left untouched.
type TaskUpdate struct {
	Title       *string      `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string      `json:"description"`
	Priority    *string      `json:"priority" binding:"omitempty,oneof=low medium high"`
	Status      *string      `json:"status" binding:"omitempty,oneof=todo in_progress done"`
	Assignee    *models.GUID `json:"assignee"`
	DueDate     *time.Time   `json:"due_date"`
}

// TaskFilter holds equality filters combined with AND.
type TaskFilter struct {
	BoardID *models.GUID
	Status  *string
}

type TaskService interface {
	Create(db *gorm.DB, req TaskCreate) (*models.Task, error)
	GetByID(db *gorm.DB, id models.GUID) (*models.Task, error)
	List(db *gorm.DB, filter TaskFilter, skip, limit int) ([]models.Task, error)
	Update(db *gorm.DB, id models.GUID, upd TaskUpdate) (*models.Task, error)
	UpdateStatus(db *gorm.DB, id models.GUID, status string) (*models.Task, error)
	Delete(db *gorm.DB, id models.GUID) (bool, error)
}

type TaskServiceImpl struct{}

func NewTaskService() *TaskServiceImpl {
	return &TaskServiceImpl{}
}

func (s *TaskServiceImpl) Create(db *gorm.DB, req TaskCreate) (*models.Task, error) {
	var count int64
	if err := db.Model(&models.Board{}).Where("id = ?", req.BoardID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrBoardNotFound
	}

	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}
	if req.Status == "" {
		req.Status = models.StatusTodo
	}

	task := models.Task{
		ID:          models.NewGUID(),
		BoardID:     req.BoardID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
		Assignee:    req.Assignee,
		DueDate:     req.DueDate,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&task).Error
	}); err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *TaskServiceImpl) GetByID(db *gorm.DB, id models.GUID) (*models.Task, error) {
	var task models.Task
	err := db.Where("id = ?", id).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *TaskServiceImpl) List(db *gorm.DB, filter TaskFilter, skip, limit int) ([]models.Task, error) {
	tasks := []models.Task{}
	query := db.Model(&models.Task{})
	if filter.BoardID != nil {
		query = query.Where("board_id = ?", *filter.BoardID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	err := query.Order("created_at").
		Offset(clampSkip(skip)).
		Limit(clampLimit(limit)).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *TaskServiceImpl) Update(db *gorm.DB, id models.GUID, upd TaskUpdate) (*models.Task, error) {
	task, err := s.GetByID(db, id)
	if err != nil || task == nil {
		return nil, err
	}

	if upd.Title != nil {
		task.Title = *upd.Title
	}
	if upd.Description != nil {
		task.Description = *upd.Description
	}
	if upd.Priority != nil {
		task.Priority = *upd.Priority
	}
	if upd.Status != nil {
		task.Status = *upd.Status
	}
	if upd.Assignee != nil {
		task.Assignee = upd.Assignee
	}
	if upd.DueDate != nil {
		task.DueDate = upd.DueDate
	}
	task.UpdatedAt = time.Now()

	if err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Save(task).Error
	}); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateStatus applies a single status change. Any status may follow any
// other; no workflow ordering is enforced.
func (s *TaskServiceImpl) UpdateStatus(db *gorm.DB, id models.GUID, status string) (*models.Task, error) {
	task, err := s.GetByID(db, id)
	if err != nil || task == nil {
		return nil, err
	}

	task.Status = status
	task.UpdatedAt = time.Now()

	if err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Save(task).Error
	}); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskServiceImpl) Delete(db *gorm.DB, id models.GUID) (bool, error) {
	result := db.Where("id = ?", id).Delete(&models.Task{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
