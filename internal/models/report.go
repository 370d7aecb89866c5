package models

import (
	"time"

	"github.com/google/uuid"
)

// Report workflow states. Terminal states feed back into reporter
// trust aggregates for future triage runs.
const (
	ReportStatusPending   = "pending"
	ReportStatusReviewing = "reviewing"
	ReportStatusResolved  = "resolved"
	ReportStatusRejected  = "rejected"
)

// Report target types.
const (
	TargetTypePost    = "post"
	TargetTypeComment = "comment"
	TargetTypeUser    = "user"
)

// Report stores an abuse report together with the triage decision
// computed at intake. Score, Priority and FalseReportProbability are
// immutable after creation; only workflow fields change.
type Report struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ReporterID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"reporter_id"`
	TargetType     string     `gorm:"not null;size:20;index:idx_reports_target" json:"target_type"`
	TargetID       string     `gorm:"not null;size:255;index:idx_reports_target" json:"target_id"`
	TargetAuthorID *uuid.UUID `gorm:"type:uuid;index" json:"target_author_id,omitempty"`
	Category       string     `gorm:"not null;size:50;index" json:"category"`
	Description    string     `gorm:"size:2000" json:"description,omitempty"`

	Score                  float64 `gorm:"not null" json:"score"`
	Priority               string  `gorm:"not null;size:20;index" json:"priority"`
	FalseReportProbability float64 `gorm:"not null;default:0" json:"false_report_probability"`
	AutoAction             string  `gorm:"size:50" json:"auto_action,omitempty"`

	Status         string     `gorm:"not null;default:'pending';size:20;index" json:"status"`
	ResolutionNote string     `gorm:"size:1000" json:"resolution_note,omitempty"`
	ResolvedBy     *uuid.UUID `gorm:"type:uuid" json:"resolved_by,omitempty"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Reporter  User      `gorm:"foreignKey:ReporterID" json:"-"`
}
