package models

import (
	"time"
)

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Username     string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Password     string    `gorm:"size:128;not null" json:"-"`
	Role         string    `gorm:"size:16;not null;default:'user'" json:"role"`
	TokenVersion int       `gorm:"default:1" json:"-"`
	Account      *Account  `gorm:"foreignKey:UserID" json:"account,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"-"`
}
