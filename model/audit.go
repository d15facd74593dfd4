package model

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog records gameplay and operator events.
type AuditLog struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	TraceID   string         `gorm:"index:idx_audit_trace;size:36" json:"trace_id"`
	Action    string         `gorm:"size:64;not null;index:idx_audit_action" json:"action"`
	ActorID   string         `gorm:"size:64;index:idx_audit_actor" json:"actor_id"`
	Slot      string         `gorm:"size:64" json:"slot"`
	SimTime   float64        `json:"sim_time"`
	Detail    datatypes.JSON `json:"detail"`
	Error     string         `gorm:"type:text" json:"error"`
	IP        string         `gorm:"size:45" json:"ip"`
	CreatedAt time.Time      `gorm:"index:idx_audit_created;autoCreateTime:milli" json:"created_at"`
}
