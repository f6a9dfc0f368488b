package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the authoritative identity directory row.
type User struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	Name         string     `gorm:"size:64;not null" json:"name"`
	Email        string     `gorm:"uniqueIndex;size:128;not null" json:"email"`
	PasswordHash string     `gorm:"size:72;not null" json:"-"`
	Institution  string     `gorm:"size:128" json:"institution,omitempty"`
	Phone        string     `gorm:"size:32" json:"phone,omitempty"`
	Status       int        `gorm:"default:1" json:"status"` // 0=disabled 1=active
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Profile is the self-maintained public profile row. It is created
// best-effort at registration and may lag behind or be missing entirely;
// identity resolution falls back to it when the directory row is absent.
type Profile struct {
	UserID    string    `gorm:"primaryKey;size:36" json:"user_id"`
	Name      string    `gorm:"size:64" json:"name"`
	Email     string    `gorm:"size:128" json:"email"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
