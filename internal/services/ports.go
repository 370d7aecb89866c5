package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/modguard/modguard/internal/models"
	"github.com/modguard/modguard/internal/triage"
)

// The three read-only history ports keep the scoring engine free of
// storage concerns. Intake depends on these interfaces so tests can
// substitute fakes.

type ReporterHistoryPort interface {
	ReporterHistory(ctx context.Context, reporterID uuid.UUID) (*triage.ReporterHistory, error)
}

type TargetHistoryPort interface {
	TargetHistory(ctx context.Context, targetType, targetID string) (*triage.TargetHistory, error)
}

type RecentReportsPort interface {
	RecentReports(ctx context.Context, targetType, targetID string, limit int) ([]triage.PreviousReport, error)
}

// ContentStore hides or removes reported content. The triage
// auto-action and the remove_content sanction go through it.
type ContentStore interface {
	Hide(ctx context.Context, targetType, targetID, reason string) error
	Remove(ctx context.Context, targetType, targetID string) error
}

// Notifier is a best-effort side channel for alerting admins about
// critical reports. Failures are logged and swallowed; they never
// fail a submission.
type Notifier interface {
	NotifyCritical(ctx context.Context, report *models.Report) error
}
