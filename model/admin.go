package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminAccount is a console account, separate from the user directory.
// ID doubles as the login identifier (e.g. "admin").
type AdminAccount struct {
	ID           string    `gorm:"primaryKey;size:64" json:"id"`
	Name         string    `gorm:"size:64;not null" json:"name"`
	PasswordHash string    `gorm:"size:72;not null" json:"-"`
	Role         string    `gorm:"size:16;not null" json:"role"` // admin | moderator
	CreatedBy    string    `gorm:"size:64" json:"created_by"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// UserRole records an elevated role granted to a regular user.
type UserRole struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	UserID     string    `gorm:"size:36;not null;uniqueIndex" json:"user_id"`
	Role       string    `gorm:"size:16;not null" json:"role"` // user | moderator | admin
	AssignedBy string    `gorm:"size:64" json:"assigned_by"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (r *UserRole) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
