package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/taskflow/backend/internal/cache"
	"github.com/taskflow/backend/internal/models"
)

const (
	taskCacheTTL     = 30 * time.Minute
	taskListCacheTTL = 5 * time.Minute
)

// CachedTaskService decorates a TaskService with a Redis read-through
// cache. Mutations invalidate the affected entries; cache failures are
// ignored so the database remains the source of truth.
type CachedTaskService struct {
	inner TaskService
	cache *cache.RedisCache
}

func NewCachedTaskService(inner TaskService, cacheInstance *cache.RedisCache) *CachedTaskService {
	return &CachedTaskService{inner: inner, cache: cacheInstance}
}

func taskKey(id models.GUID) string {
	return fmt.Sprintf("task:%s", id)
}

func taskListKey(filter TaskFilter, skip, limit int) string {
	board := "*"
	if filter.BoardID != nil {
		board = filter.BoardID.String()
	}
	status := "*"
	if filter.Status != nil {
		status = *filter.Status
	}
	return fmt.Sprintf("tasks:%s:%s:%d:%d", board, status, skip, limit)
}

func (s *CachedTaskService) Create(db *gorm.DB, req TaskCreate) (*models.Task, error) {
	task, err := s.inner.Create(db, req)
	if err != nil {
		return nil, err
	}

	s.cache.Set(taskKey(task.ID), task, taskCacheTTL)
	s.cache.DeletePattern("tasks:*")

	return task, nil
}

func (s *CachedTaskService) GetByID(db *gorm.DB, id models.GUID) (*models.Task, error) {
	var cached models.Task
	if err := s.cache.Get(taskKey(id), &cached); err == nil {
		return &cached, nil
	}

	task, err := s.inner.GetByID(db, id)
	if err != nil || task == nil {
		return task, err
	}

	s.cache.Set(taskKey(id), task, taskCacheTTL)
	return task, nil
}

func (s *CachedTaskService) List(db *gorm.DB, filter TaskFilter, skip, limit int) ([]models.Task, error) {
	key := taskListKey(filter, skip, limit)

	var cached []models.Task
	if err := s.cache.Get(key, &cached); err == nil {
		return cached, nil
	}

	tasks, err := s.inner.List(db, filter, skip, limit)
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, tasks, taskListCacheTTL)
	return tasks, nil
}

func (s *CachedTaskService) Update(db *gorm.DB, id models.GUID, upd TaskUpdate) (*models.Task, error) {
	task, err := s.inner.Update(db, id, upd)
	if err != nil || task == nil {
		return task, err
	}

	s.cache.Set(taskKey(id), task, taskCacheTTL)
	s.cache.DeletePattern("tasks:*")

	return task, nil
}

func (s *CachedTaskService) UpdateStatus(db *gorm.DB, id models.GUID, status string) (*models.Task, error) {
	task, err := s.inner.UpdateStatus(db, id, status)
	if err != nil || task == nil {
		return task, err
	}

	s.cache.Set(taskKey(id), task, taskCacheTTL)
	s.cache.DeletePattern("tasks:*")

	return task, nil
}

func (s *CachedTaskService) Delete(db *gorm.DB, id models.GUID) (bool, error) {
	removed, err := s.inner.Delete(db, id)
	if err != nil {
		return false, err
	}
	if removed {
		s.cache.Delete(taskKey(id))
		s.cache.DeletePattern("tasks:*")
	}
	return removed, nil
}
