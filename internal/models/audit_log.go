package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditLog records every moderation-relevant action: report intake
// with its computed decision, workflow transitions, sanctions, and
// auto-actions. Detail carries the action-specific payload as JSONB.
type AuditLog struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ActorID    *uuid.UUID     `gorm:"type:uuid;index" json:"actor_id,omitempty"`
	Action     string         `gorm:"not null;size:100;index" json:"action"`
	TargetType string         `gorm:"size:20" json:"target_type,omitempty"`
	TargetID   string         `gorm:"size:255;index" json:"target_id,omitempty"`
	Detail     datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"detail"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
}
