package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Complaint states.
const (
	ComplaintPending  = "pending"
	ComplaintResolved = "resolved"
)

// Complaint is a support complaint submitted from the public landing form.
type Complaint struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	Email      string     `gorm:"size:128;not null" json:"email"`
	Phone      string     `gorm:"size:32" json:"phone"`
	Subject    string     `gorm:"size:200;not null" json:"subject"`
	Message    string     `gorm:"type:text;not null" json:"message"`
	Status     string     `gorm:"size:16;default:'pending'" json:"status"`
	AdminReply *string    `gorm:"type:text" json:"admin_reply,omitempty"`
	RepliedAt  *time.Time `json:"replied_at,omitempty"`
	RepliedBy  string     `gorm:"size:64" json:"replied_by,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (c *Complaint) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
