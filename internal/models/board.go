package models

import (
	"time"
)

type Board struct {
	ID        GUID   `json:"id" gorm:"primaryKey"`
	ProjectID GUID   `json:"project_id" gorm:"not null;index"`
	Name      string `json:"name" gorm:"not null"`
	Position  int    `json:"position" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`

	Tasks []Task `json:"tasks,omitempty" gorm:"foreignKey:BoardID"`
}
