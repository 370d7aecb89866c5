package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User account states driven by moderation sanctions.
const (
	UserStatusActive    = "active"
	UserStatusSuspended = "suspended"
	UserStatusBanned    = "banned"
)

type User struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email          string         `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Password       string         `gorm:"not null" json:"-"`
	Role           string         `gorm:"size:20;default:'user'" json:"role"`
	Status         string         `gorm:"size:20;default:'active';index" json:"status"`
	WarningCount   int            `gorm:"default:0" json:"warning_count"`
	SuspendedUntil *time.Time     `json:"suspended_until,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}
