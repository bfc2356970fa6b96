package models

import (
	"time"
)

type User struct {
	ID             GUID   `json:"id" gorm:"primaryKey"`
	Username       string `json:"username" gorm:"unique;not null"`
	Email          string `json:"email" gorm:"unique;not null"`
	HashedPassword string `json:"-" gorm:"not null"`
	FullName       string `json:"full_name"`
	IsActive       bool   `json:"is_active" gorm:"default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Projects []Project `json:"projects,omitempty" gorm:"foreignKey:CreatedBy"`
}
