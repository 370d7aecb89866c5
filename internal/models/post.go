package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HiddenReasonAutoReport marks content hidden by the triage auto-action
// rather than by an admin.
const HiddenReasonAutoReport = "auto_report"

type Post struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AuthorID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"author_id"`
	Content      string         `gorm:"type:text;not null" json:"content"`
	IsHidden     bool           `gorm:"default:false;index" json:"is_hidden"`
	HiddenReason string         `gorm:"size:50" json:"hidden_reason,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Author       User           `gorm:"foreignKey:AuthorID" json:"-"`
}

type Comment struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PostID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"post_id"`
	AuthorID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"author_id"`
	Content      string         `gorm:"type:text;not null" json:"content"`
	IsHidden     bool           `gorm:"default:false;index" json:"is_hidden"`
	HiddenReason string         `gorm:"size:50" json:"hidden_reason,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Author       User           `gorm:"foreignKey:AuthorID" json:"-"`
}
