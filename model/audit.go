package model

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog records one console or security-sensitive action.
type AuditLog struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	TraceID   string         `gorm:"size:36;index" json:"trace_id"`
	ActorID   string         `gorm:"size:64;index" json:"actor_id"`
	ActorRole string         `gorm:"size:16" json:"actor_role"`
	Action    string         `gorm:"size:64;index" json:"action"`
	Detail    datatypes.JSON `json:"detail"`
	Error     string         `gorm:"size:500" json:"error"`
	IP        string         `gorm:"size:45" json:"ip"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
}
