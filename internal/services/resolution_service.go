package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/modguard/modguard/internal/dto"
	"github.com/modguard/modguard/internal/models"
	"gorm.io/gorm"
)

// SuspensionDuration applied by the suspend sanction.
const SuspensionDuration = 7 * 24 * time.Hour

// allowedTransitions encodes the workflow state machine. Terminal
// states have no outgoing edges; resolving straight from pending is
// permitted so admins can close obvious cases in one step.
var allowedTransitions = map[string]map[string]bool{
	models.ReportStatusPending: {
		models.ReportStatusReviewing: true,
		models.ReportStatusResolved:  true,
		models.ReportStatusRejected:  true,
	},
	models.ReportStatusReviewing: {
		models.ReportStatusResolved: true,
		models.ReportStatusRejected: true,
	},
}

// ResolutionService drives admin-side report workflow transitions.
// It never touches the triage decision: score and priority are frozen
// at intake, but resolved/rejected outcomes become the reporter trust
// input of future submissions.
type ResolutionService struct {
	db      *gorm.DB
	content ContentStore
	stats   *StatsService
}

func NewResolutionService(db *gorm.DB, content ContentStore, stats *StatsService) *ResolutionService {
	return &ResolutionService{db: db, content: content, stats: stats}
}

// Transition moves a report to a new workflow state, optionally
// applying a sanction to the target author when resolving.
func (s *ResolutionService) Transition(ctx context.Context, reportID, adminID uuid.UUID, req *dto.TransitionReportRequest) (*models.Report, error) {
	var report models.Report
	if err := s.db.WithContext(ctx).First(&report, "id = ?", reportID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrReportNotFound
		}
		return nil, &PersistenceError{Op: "report lookup", Err: err}
	}

	if !allowedTransitions[report.Status][req.Status] {
		return nil, ErrBadTransition
	}
	if req.Sanction != "" {
		if req.Status != models.ReportStatusResolved {
			return nil, ErrInvalidSanction
		}
		switch req.Sanction {
		case models.SanctionWarn, models.SanctionSuspend, models.SanctionBan, models.SanctionRemoveContent:
		default:
			return nil, ErrInvalidSanction
		}
		if req.Sanction != models.SanctionRemoveContent && report.TargetAuthorID == nil {
			return nil, ErrSanctionNoAuthor
		}
	}

	previous := report.Status
	report.Status = req.Status
	report.ResolutionNote = req.ResolutionNote
	if req.Status == models.ReportStatusResolved || req.Status == models.ReportStatusRejected {
		now := time.Now()
		report.ResolvedBy = &adminID
		report.ResolvedAt = &now
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&report).Error; err != nil {
			return err
		}
		if req.Sanction != "" {
			if err := s.applySanction(ctx, tx, &report, adminID, req); err != nil {
				return err
			}
		}
		return writeAudit(tx, &adminID, AuditReportTransition, report.TargetType, report.TargetID, map[string]interface{}{
			"report_id": report.ID,
			"from":      previous,
			"to":        report.Status,
			"sanction":  req.Sanction,
		})
	})
	if err != nil {
		if err == ErrTargetNotFound || err == ErrSanctionNoAuthor {
			return nil, err
		}
		return nil, &PersistenceError{Op: "report transition", Err: err}
	}

	if s.stats != nil {
		s.stats.Invalidate()
	}

	slog.Info("report transitioned",
		"report_id", report.ID,
		"from", previous,
		"to", report.Status,
		"sanction", req.Sanction,
	)
	return &report, nil
}

func (s *ResolutionService) applySanction(ctx context.Context, tx *gorm.DB, report *models.Report, adminID uuid.UUID, req *dto.TransitionReportRequest) error {
	if req.Sanction == models.SanctionRemoveContent {
		if err := s.content.Remove(ctx, report.TargetType, report.TargetID); err != nil {
			return err
		}
	} else {
		userID := *report.TargetAuthorID
		switch req.Sanction {
		case models.SanctionWarn:
			err := tx.Model(&models.User{}).Where("id = ?", userID).
				UpdateColumn("warning_count", gorm.Expr("warning_count + 1")).Error
			if err != nil {
				return err
			}
		case models.SanctionSuspend:
			until := time.Now().Add(SuspensionDuration)
			err := tx.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
				"status":          models.UserStatusSuspended,
				"suspended_until": until,
			}).Error
			if err != nil {
				return err
			}
		case models.SanctionBan:
			err := tx.Model(&models.User{}).Where("id = ?", userID).
				Update("status", models.UserStatusBanned).Error
			if err != nil {
				return err
			}
		}
	}

	sanction := models.Sanction{
		ID:       uuid.New(),
		Action:   req.Sanction,
		Note:     req.ResolutionNote,
		IssuedBy: adminID,
		ReportID: &report.ID,
	}
	if report.TargetAuthorID != nil {
		sanction.UserID = report.TargetAuthorID
	}
	if err := tx.Create(&sanction).Error; err != nil {
		return err
	}

	return writeAudit(tx, &adminID, AuditSanctionIssued, report.TargetType, report.TargetID, map[string]interface{}{
		"report_id": report.ID,
		"sanction":  req.Sanction,
	})
}
