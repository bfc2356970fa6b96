package models

import (
	"time"
)

type Project struct {
	ID          GUID   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"not null;index"`
	Description string `json:"description"`
	CreatedBy   GUID   `json:"created_by" gorm:"not null;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Boards []Board `json:"boards,omitempty" gorm:"foreignKey:ProjectID"`
}
