package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GroupMessage is one append-only group chat message.
// Mentions holds a JSON array of mentioned user IDs; mentioned IDs are not
// validated against the sender's friend set.
type GroupMessage struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	UserID    string         `gorm:"size:36;not null;index" json:"user_id"`
	Message   string         `gorm:"size:500;not null" json:"message"`
	Mentions  datatypes.JSON `json:"mentions"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
}

func (m *GroupMessage) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
