package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Presence states for a study session.
const (
	StatusStudying = "studying"
	StatusBreak    = "break"
	StatusOffline  = "offline"
)

// StudySession is the self-reported presence record, at most one per user.
// last_active is refreshed only on explicit status updates; there is no
// automatic expiry to offline on inactivity.
type StudySession struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	UserID     string    `gorm:"size:36;not null;uniqueIndex" json:"user_id"`
	Status     string    `gorm:"size:16;not null" json:"status"`
	Subject    *string   `gorm:"size:128" json:"subject,omitempty"`
	StartedAt  time.Time `gorm:"autoCreateTime" json:"started_at"`
	LastActive time.Time `json:"last_active"`
}

func (s *StudySession) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
