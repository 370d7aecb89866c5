package models

import (
	"time"

	"github.com/google/uuid"
)

// Sanction actions an admin can attach when resolving a report.
const (
	SanctionWarn          = "warn"
	SanctionSuspend       = "suspend"
	SanctionBan           = "ban"
	SanctionRemoveContent = "remove_content"
)

// Sanction records a moderation action taken against a user as the
// outcome of a resolved report. Each sanction is independently
// auditable.
type Sanction struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"` // nil for content-only sanctions
	ReportID  *uuid.UUID `gorm:"type:uuid;index" json:"report_id,omitempty"`
	Action    string     `gorm:"not null;size:30" json:"action"`
	Note      string     `gorm:"size:1000" json:"note,omitempty"`
	IssuedBy  uuid.UUID  `gorm:"type:uuid;not null" json:"issued_by"`
	CreatedAt time.Time  `json:"created_at"`
}
