package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/modguard/modguard/internal/dto"
	"github.com/modguard/modguard/internal/models"
	"github.com/modguard/modguard/internal/triage"
)

const (
	// DedupWindow rejects a second report from the same reporter
	// against the same target. It is a separate business concept from
	// triage.Config.BurstWindow (corroboration detection) even though
	// both are currently 24h.
	DedupWindow = 24 * time.Hour

	// RecentReportLimit caps the previous-report list fed into the
	// corroboration-burst step.
	RecentReportLimit = 10
)

// TriageProvider hands out the currently configured scoring engine.
// Implemented by SettingsService so weight tuning takes effect without
// restarting intake.
type TriageProvider interface {
	Engine() *triage.Engine
	Config() triage.Config
}

// ReportStore persists reports and their audit entries.
type ReportStore interface {
	CountRecentByReporter(ctx context.Context, reporterID uuid.UUID, targetType, targetID string, since time.Time) (int64, error)
	CreateWithAudit(ctx context.Context, report *models.Report, configVersion string) error
	RecordAutoHide(ctx context.Context, report *models.Report) error
}

// IntakeService owns report submission: validation, the dedup guard,
// concurrent history reads, the triage call, persistence, the
// auto-hide action and auditing.
type IntakeService struct {
	store    ReportStore
	triage   TriageProvider
	reporter ReporterHistoryPort
	target   TargetHistoryPort
	recent   RecentReportsPort
	content  ContentStore
	notifier Notifier
	stats    *StatsService
}

func NewIntakeService(
	store ReportStore,
	provider TriageProvider,
	reporter ReporterHistoryPort,
	target TargetHistoryPort,
	recent RecentReportsPort,
	content ContentStore,
	notifier Notifier,
	stats *StatsService,
) *IntakeService {
	return &IntakeService{
		store:    store,
		triage:   provider,
		reporter: reporter,
		target:   target,
		recent:   recent,
		content:  content,
		notifier: notifier,
		stats:    stats,
	}
}

// Submit validates and triages a report, persists it with the computed
// decision and returns both. Duplicate and validation failures are
// terminal; storage failures come back as *PersistenceError.
func (s *IntakeService) Submit(ctx context.Context, reporterID uuid.UUID, req *dto.SubmitReportRequest) (*models.Report, *triage.Decision, error) {
	if reporterID == uuid.Nil || req.TargetType == "" || req.TargetID == "" || req.Category == "" {
		return nil, nil, ErrMissingFields
	}
	switch req.TargetType {
	case models.TargetTypePost, models.TargetTypeComment, models.TargetTypeUser:
	default:
		return nil, nil, ErrInvalidTarget
	}

	duplicates, err := s.store.CountRecentByReporter(ctx, reporterID, req.TargetType, req.TargetID, time.Now().Add(-DedupWindow))
	if err != nil {
		return nil, nil, &PersistenceError{Op: "dedup check", Err: err}
	}
	if duplicates > 0 {
		return nil, nil, ErrDuplicateReport
	}

	reporterHist, targetHist, previous := s.fetchHistories(ctx, reporterID, req.TargetType, req.TargetID)

	decision := s.triage.Engine().ComputeDecision(req.Category, reporterHist, targetHist, previous)

	report := &models.Report{
		ID:                     uuid.New(),
		ReporterID:             reporterID,
		TargetType:             req.TargetType,
		TargetID:               req.TargetID,
		Category:               req.Category,
		Description:            req.Description,
		Score:                  decision.Score,
		Priority:               string(decision.Priority),
		FalseReportProbability: decision.FalseReportProbability,
		AutoAction:             string(decision.Feedback.AutoAction),
		Status:                 models.ReportStatusPending,
	}
	if req.TargetAuthorID != "" {
		if authorID, err := uuid.Parse(req.TargetAuthorID); err == nil {
			report.TargetAuthorID = &authorID
		}
	}

	if err := s.store.CreateWithAudit(ctx, report, s.triage.Config().Version); err != nil {
		return nil, nil, &PersistenceError{Op: "report insert", Err: err}
	}

	if decision.Feedback.AutoAction == triage.AutoActionTemporaryHide {
		s.autoHide(ctx, report)
	}

	if decision.Priority == triage.PriorityCritical && s.notifier != nil {
		if err := s.notifier.NotifyCritical(ctx, report); err != nil {
			slog.Warn("critical report notification failed", "report_id", report.ID, "error", err)
		}
	}

	if s.stats != nil {
		s.stats.Invalidate()
	}

	slog.Info("report submitted",
		"report_id", report.ID,
		"category", report.Category,
		"priority", report.Priority,
		"score", report.Score,
	)
	return report, &decision, nil
}

// fetchHistories issues the three independent read-only lookups
// concurrently. A failed lookup degrades to "no adjustment" for that
// step rather than failing the submission; the engine tolerates nils.
func (s *IntakeService) fetchHistories(ctx context.Context, reporterID uuid.UUID, targetType, targetID string) (*triage.ReporterHistory, *triage.TargetHistory, []triage.PreviousReport) {
	var (
		wg           sync.WaitGroup
		reporterHist *triage.ReporterHistory
		targetHist   *triage.TargetHistory
		previous     []triage.PreviousReport
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		h, err := s.reporter.ReporterHistory(ctx, reporterID)
		if err != nil {
			slog.Warn("reporter history lookup failed", "reporter_id", reporterID, "error", err)
			return
		}
		reporterHist = h
	}()
	go func() {
		defer wg.Done()
		h, err := s.target.TargetHistory(ctx, targetType, targetID)
		if err != nil {
			slog.Warn("target history lookup failed", "target_id", targetID, "error", err)
			return
		}
		targetHist = h
	}()
	go func() {
		defer wg.Done()
		p, err := s.recent.RecentReports(ctx, targetType, targetID, RecentReportLimit)
		if err != nil {
			slog.Warn("recent reports lookup failed", "target_id", targetID, "error", err)
			return
		}
		previous = p
	}()
	wg.Wait()

	return reporterHist, targetHist, previous
}

// autoHide is best effort after the report is persisted: a failed hide
// leaves the report for admin review instead of rolling it back.
func (s *IntakeService) autoHide(ctx context.Context, report *models.Report) {
	if err := s.content.Hide(ctx, report.TargetType, report.TargetID, models.HiddenReasonAutoReport); err != nil {
		slog.Error("auto-hide failed", "report_id", report.ID, "target_id", report.TargetID, "error", err)
		return
	}
	if err := s.store.RecordAutoHide(ctx, report); err != nil {
		slog.Error("audit write failed", "action", AuditContentAutoHidden, "error", err)
	}
}
