package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/modguard/modguard/internal/models"
	"github.com/modguard/modguard/internal/triage"
	"gorm.io/gorm"
)

// GormHistoryStore implements the three history ports against the
// reports and users tables. Reporter trust is derived from how the
// reporter's past reports were resolved, which closes the feedback
// loop: today's resolution outcome is tomorrow's trust input.
type GormHistoryStore struct {
	db *gorm.DB
}

func NewGormHistoryStore(db *gorm.DB) *GormHistoryStore {
	return &GormHistoryStore{db: db}
}

func (s *GormHistoryStore) ReporterHistory(ctx context.Context, reporterID uuid.UUID) (*triage.ReporterHistory, error) {
	var h triage.ReporterHistory

	base := s.db.WithContext(ctx).Model(&models.Report{}).Where("reporter_id = ?", reporterID)

	var total, valid, falseCount int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count reporter reports: %w", err)
	}
	if err := base.Session(&gorm.Session{}).Where("status = ?", models.ReportStatusResolved).Count(&valid).Error; err != nil {
		return nil, fmt.Errorf("count valid reports: %w", err)
	}
	if err := base.Session(&gorm.Session{}).Where("status = ?", models.ReportStatusRejected).Count(&falseCount).Error; err != nil {
		return nil, fmt.Errorf("count false reports: %w", err)
	}

	h.TotalReports = int(total)
	h.ValidReports = int(valid)
	h.FalseReports = int(falseCount)
	return &h, nil
}

func (s *GormHistoryStore) TargetHistory(ctx context.Context, targetType, targetID string) (*triage.TargetHistory, error) {
	var h triage.TargetHistory

	base := s.db.WithContext(ctx).Model(&models.Report{}).
		Where("target_type = ? AND target_id = ?", targetType, targetID)

	var reported, violations int64
	if err := base.Session(&gorm.Session{}).Count(&reported).Error; err != nil {
		return nil, fmt.Errorf("count target reports: %w", err)
	}
	if err := base.Session(&gorm.Session{}).Where("status = ?", models.ReportStatusResolved).Count(&violations).Error; err != nil {
		return nil, fmt.Errorf("count target violations: %w", err)
	}
	h.ReportedCount = int(reported)
	h.ViolationCount = int(violations)

	var last models.Report
	err := base.Session(&gorm.Session{}).
		Where("status = ? AND resolved_at IS NOT NULL", models.ReportStatusResolved).
		Order("resolved_at DESC").First(&last).Error
	if err == nil {
		h.LastViolation = last.ResolvedAt
	} else if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("last violation lookup: %w", err)
	}

	if targetType == models.TargetTypeUser {
		if userID, err := uuid.Parse(targetID); err == nil {
			var user models.User
			if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err == nil {
				h.WarningCount = user.WarningCount
			}
		}
	}

	return &h, nil
}

func (s *GormHistoryStore) RecentReports(ctx context.Context, targetType, targetID string, limit int) ([]triage.PreviousReport, error) {
	var rows []models.Report
	err := s.db.WithContext(ctx).Model(&models.Report{}).
		Select("created_at").
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("recent reports lookup: %w", err)
	}

	previous := make([]triage.PreviousReport, len(rows))
	for i, r := range rows {
		previous[i] = triage.PreviousReport{CreatedAt: r.CreatedAt}
	}
	return previous, nil
}

// GormReportStore implements ReportStore: the dedup lookup and the
// transactional report insert with its audit entry.
type GormReportStore struct {
	db *gorm.DB
}

func NewGormReportStore(db *gorm.DB) *GormReportStore {
	return &GormReportStore{db: db}
}

func (s *GormReportStore) CountRecentByReporter(ctx context.Context, reporterID uuid.UUID, targetType, targetID string, since time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Report{}).
		Where("reporter_id = ? AND target_type = ? AND target_id = ? AND created_at > ?",
			reporterID, targetType, targetID, since).
		Count(&count).Error
	return count, err
}

func (s *GormReportStore) CreateWithAudit(ctx context.Context, report *models.Report, configVersion string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(report).Error; err != nil {
			return err
		}
		return writeAudit(tx, &report.ReporterID, AuditReportSubmitted, report.TargetType, report.TargetID, map[string]interface{}{
			"report_id":                report.ID,
			"category":                 report.Category,
			"score":                    report.Score,
			"priority":                 report.Priority,
			"false_report_probability": report.FalseReportProbability,
			"auto_action":              report.AutoAction,
			"config_version":           configVersion,
		})
	})
}

func (s *GormReportStore) RecordAutoHide(ctx context.Context, report *models.Report) error {
	return writeAudit(s.db.WithContext(ctx), nil, AuditContentAutoHidden, report.TargetType, report.TargetID, map[string]interface{}{
		"report_id": report.ID,
		"reason":    models.HiddenReasonAutoReport,
	})
}

// GormContentStore hides and removes posts and comments. User targets
// have no single content row; hiding them is a no-op because user
// sanctions go through the resolution workflow instead.
type GormContentStore struct {
	db *gorm.DB
}

func NewGormContentStore(db *gorm.DB) *GormContentStore {
	return &GormContentStore{db: db}
}

func (s *GormContentStore) Hide(ctx context.Context, targetType, targetID, reason string) error {
	updates := map[string]interface{}{"is_hidden": true, "hidden_reason": reason}

	switch targetType {
	case models.TargetTypePost:
		return s.update(ctx, &models.Post{}, targetID, updates)
	case models.TargetTypeComment:
		return s.update(ctx, &models.Comment{}, targetID, updates)
	case models.TargetTypeUser:
		slog.Info("auto-hide skipped for user target", "target_id", targetID)
		return nil
	default:
		return ErrInvalidTarget
	}
}

func (s *GormContentStore) Remove(ctx context.Context, targetType, targetID string) error {
	switch targetType {
	case models.TargetTypePost:
		return s.remove(ctx, &models.Post{}, targetID)
	case models.TargetTypeComment:
		return s.remove(ctx, &models.Comment{}, targetID)
	default:
		return ErrInvalidTarget
	}
}

func (s *GormContentStore) update(ctx context.Context, model interface{}, targetID string, updates map[string]interface{}) error {
	result := s.db.WithContext(ctx).Model(model).Where("id = ?", targetID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTargetNotFound
	}
	return nil
}

func (s *GormContentStore) remove(ctx context.Context, model interface{}, targetID string) error {
	result := s.db.WithContext(ctx).Where("id = ?", targetID).Delete(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTargetNotFound
	}
	return nil
}

// SentryNotifier surfaces critical reports to the error-tracking side
// channel so the on-call admin sees them without polling the panel.
type SentryNotifier struct{}

func (SentryNotifier) NotifyCritical(_ context.Context, report *models.Report) error {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentry.LevelWarning)
		scope.SetTag("category", report.Category)
		scope.SetTag("priority", report.Priority)
		scope.SetExtra("report_id", report.ID.String())
		scope.SetExtra("target", report.TargetType+":"+report.TargetID)
		sentry.CaptureMessage("critical report received")
	})
	slog.Info("critical report notification sent",
		"report_id", report.ID,
		"category", report.Category,
		"score", report.Score,
	)
	return nil
}
