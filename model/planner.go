package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Task priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Task is a per-user todo item bound to a calendar day.
type Task struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;not null;index" json:"user_id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Completed bool      `gorm:"default:false" json:"completed"`
	Date      string    `gorm:"size:10;not null" json:"date"` // YYYY-MM-DD
	Priority  string    `gorm:"size:8;default:'medium'" json:"priority"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (t *Task) BeforeCreate(*gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// Exam is a per-user scheduled exam entry.
type Exam struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;not null;index" json:"user_id"`
	Subject   string    `gorm:"size:128;not null" json:"subject"`
	Date      string    `gorm:"size:10;not null" json:"date"` // YYYY-MM-DD
	Time      string    `gorm:"size:5" json:"time"`           // HH:MM
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (e *Exam) BeforeCreate(*gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// Note is a user note; group notes are visible to every signed-in user.
type Note struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	UserID      string    `gorm:"size:36;not null;index" json:"user_id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Content     string    `gorm:"type:text" json:"content"`
	IsGroupNote bool      `gorm:"default:false" json:"is_group_note"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (n *Note) BeforeCreate(*gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}

// UserSettings holds the pomodoro timer configuration, created with
// defaults on first read.
type UserSettings struct {
	UserID    string `gorm:"primaryKey;size:36" json:"user_id"`
	WorkTime  int    `gorm:"default:25" json:"work_time"`
	BreakTime int    `gorm:"default:5" json:"break_time"`
}

// UserPreferences holds UI preferences.
type UserPreferences struct {
	UserID        string `gorm:"primaryKey;size:36" json:"user_id"`
	DarkMode      bool   `gorm:"default:false" json:"dark_mode"`
	Notifications bool   `gorm:"default:true" json:"notifications"`
}
