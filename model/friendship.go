package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Friendship is one directed edge of a confirmed friend relationship.
// Edges are always created and deleted in symmetric pairs (A→B and B→A).
// The unique index on the directed pair makes duplicate edge inserts fail,
// which is what keeps racing accept calls idempotent.
type Friendship struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_friend_edge" json:"user_id"`
	FriendID  string    `gorm:"size:36;not null;uniqueIndex:idx_friend_edge" json:"friend_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (f *Friendship) BeforeCreate(*gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// Friend request lifecycle states. Accepted and rejected are terminal.
const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestRejected = "rejected"
)

// FriendRequest tracks a pending/accepted/rejected friend request.
type FriendRequest struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	SenderID   string    `gorm:"size:36;not null;index" json:"sender_id"`
	ReceiverID string    `gorm:"size:36;not null;index" json:"receiver_id"`
	Status     string    `gorm:"size:16;default:'pending'" json:"status"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r *FriendRequest) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
