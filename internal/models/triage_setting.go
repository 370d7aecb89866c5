package models

import (
	"time"

	"github.com/google/uuid"
)

// TriageSetting is a typed key/value override for the triage scoring
// configuration (category weights, tier thresholds). Defaults are
// seeded at startup; admins tune individual keys at runtime.
type TriageSetting struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Key       string    `gorm:"not null;size:100;uniqueIndex" json:"key"`
	Value     string    `gorm:"not null;size:500" json:"value"`
	Type      string    `gorm:"not null;size:20;default:'string'" json:"type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
