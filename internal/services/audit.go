package services

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/modguard/modguard/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Audit actions written by the intake and resolution paths.
const (
	AuditReportSubmitted   = "report.submitted"
	AuditReportTransition  = "report.status_changed"
	AuditContentAutoHidden = "content.auto_hidden"
	AuditSanctionIssued    = "sanction.issued"
	AuditSettingChanged    = "triage_setting.changed"
)

func writeAudit(tx *gorm.DB, actorID *uuid.UUID, action, targetType, targetID string, detail map[string]interface{}) error {
	payload, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("marshal audit detail: %w", err)
	}

	entry := models.AuditLog{
		ID:         uuid.New(),
		ActorID:    actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Detail:     datatypes.JSON(payload),
	}
	return tx.Create(&entry).Error
}
