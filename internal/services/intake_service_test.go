package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/modguard/modguard/internal/dto"
	"github.com/modguard/modguard/internal/models"
	"github.com/modguard/modguard/internal/triage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReportStore struct {
	recentCount int64
	countErr    error
	createErr   error

	created   []*models.Report
	autoHides []*models.Report
}

func (f *fakeReportStore) CountRecentByReporter(_ context.Context, _ uuid.UUID, _, _ string, _ time.Time) (int64, error) {
	return f.recentCount, f.countErr
}

func (f *fakeReportStore) CreateWithAudit(_ context.Context, report *models.Report, _ string) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, report)
	return nil
}

func (f *fakeReportStore) RecordAutoHide(_ context.Context, report *models.Report) error {
	f.autoHides = append(f.autoHides, report)
	return nil
}

type fakeHistoryStore struct {
	reporter    *triage.ReporterHistory
	reporterErr error
	target      *triage.TargetHistory
	targetErr   error
	previous    []triage.PreviousReport
	previousErr error

	recentLimit int
}

func (f *fakeHistoryStore) ReporterHistory(_ context.Context, _ uuid.UUID) (*triage.ReporterHistory, error) {
	return f.reporter, f.reporterErr
}

func (f *fakeHistoryStore) TargetHistory(_ context.Context, _, _ string) (*triage.TargetHistory, error) {
	return f.target, f.targetErr
}

func (f *fakeHistoryStore) RecentReports(_ context.Context, _, _ string, limit int) ([]triage.PreviousReport, error) {
	f.recentLimit = limit
	return f.previous, f.previousErr
}

type fakeContentStore struct {
	hidden    []string
	hideErr   error
	removed   []string
	removeErr error
}

func (f *fakeContentStore) Hide(_ context.Context, targetType, targetID, _ string) error {
	if f.hideErr != nil {
		return f.hideErr
	}
	f.hidden = append(f.hidden, targetType+":"+targetID)
	return nil
}

func (f *fakeContentStore) Remove(_ context.Context, targetType, targetID string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, targetType+":"+targetID)
	return nil
}

type fakeNotifier struct {
	notified []*models.Report
	err      error
}

func (f *fakeNotifier) NotifyCritical(_ context.Context, report *models.Report) error {
	if f.err != nil {
		return f.err
	}
	f.notified = append(f.notified, report)
	return nil
}

type intakeFixture struct {
	svc      *IntakeService
	store    *fakeReportStore
	history  *fakeHistoryStore
	content  *fakeContentStore
	notifier *fakeNotifier
}

func newIntakeFixture() *intakeFixture {
	store := &fakeReportStore{}
	history := &fakeHistoryStore{}
	content := &fakeContentStore{}
	notifier := &fakeNotifier{}
	// SettingsService without a DB serves the default config.
	provider := NewSettingsService(nil)

	return &intakeFixture{
		svc:      NewIntakeService(store, provider, history, history, history, content, notifier, nil),
		store:    store,
		history:  history,
		content:  content,
		notifier: notifier,
	}
}

func validRequest() *dto.SubmitReportRequest {
	return &dto.SubmitReportRequest{
		TargetType: models.TargetTypePost,
		TargetID:   uuid.NewString(),
		Category:   triage.CategorySpam,
	}
}

func TestSubmitValidation(t *testing.T) {
	fx := newIntakeFixture()
	ctx := context.Background()
	reporterID := uuid.New()

	tests := []struct {
		name       string
		reporterID uuid.UUID
		mutate     func(*dto.SubmitReportRequest)
		wantErr    error
	}{
		{"missing reporter", uuid.Nil, func(r *dto.SubmitReportRequest) {}, ErrMissingFields},
		{"missing target type", reporterID, func(r *dto.SubmitReportRequest) { r.TargetType = "" }, ErrMissingFields},
		{"missing target id", reporterID, func(r *dto.SubmitReportRequest) { r.TargetID = "" }, ErrMissingFields},
		{"missing category", reporterID, func(r *dto.SubmitReportRequest) { r.Category = "" }, ErrMissingFields},
		{"bad target type", reporterID, func(r *dto.SubmitReportRequest) { r.TargetType = "channel" }, ErrInvalidTarget},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)
			_, _, err := fx.svc.Submit(ctx, tt.reporterID, req)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, fx.store.created)
		})
	}
}

func TestSubmitDuplicateRejected(t *testing.T) {
	fx := newIntakeFixture()
	fx.store.recentCount = 1

	_, _, err := fx.svc.Submit(context.Background(), uuid.New(), validRequest())
	require.ErrorIs(t, err, ErrDuplicateReport)
	assert.Empty(t, fx.store.created)
}

func TestSubmitDedupCheckFailureIsPersistenceError(t *testing.T) {
	fx := newIntakeFixture()
	fx.store.countErr = errors.New("connection reset")

	_, _, err := fx.svc.Submit(context.Background(), uuid.New(), validRequest())
	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "dedup check", pe.Op)
}

func TestSubmitPersistsDecision(t *testing.T) {
	fx := newIntakeFixture()
	reporterID := uuid.New()
	authorID := uuid.New()

	req := validRequest()
	req.Category = triage.CategoryHarassment
	req.Description = "keeps spamming my mentions"
	req.TargetAuthorID = authorID.String()

	report, decision, err := fx.svc.Submit(context.Background(), reporterID, req)
	require.NoError(t, err)
	require.Len(t, fx.store.created, 1)

	assert.Equal(t, models.ReportStatusPending, report.Status)
	assert.Equal(t, reporterID, report.ReporterID)
	require.NotNil(t, report.TargetAuthorID)
	assert.Equal(t, authorID, *report.TargetAuthorID)

	// Base 75, no histories: high tier.
	assert.InDelta(t, 75, report.Score, 0.0001)
	assert.Equal(t, string(triage.PriorityHigh), report.Priority)
	assert.Equal(t, decision.Score, report.Score)
	assert.Equal(t, string(decision.Priority), report.Priority)
	assert.Equal(t, decision.FalseReportProbability, report.FalseReportProbability)

	// Non-critical report: no hide, no notification.
	assert.Empty(t, fx.content.hidden)
	assert.Empty(t, fx.notifier.notified)
	assert.Equal(t, RecentReportLimit, fx.history.recentLimit)
}

func TestSubmitCriticalAutoHidesAndNotifies(t *testing.T) {
	fx := newIntakeFixture()

	req := validRequest()
	req.Category = triage.CategoryChildSafety

	report, decision, err := fx.svc.Submit(context.Background(), uuid.New(), req)
	require.NoError(t, err)

	assert.Equal(t, triage.PriorityCritical, decision.Priority)
	assert.Equal(t, string(triage.AutoActionTemporaryHide), report.AutoAction)
	require.Len(t, fx.content.hidden, 1)
	assert.Equal(t, models.TargetTypePost+":"+req.TargetID, fx.content.hidden[0])
	require.Len(t, fx.store.autoHides, 1)
	require.Len(t, fx.notifier.notified, 1)
	assert.Equal(t, report.ID, fx.notifier.notified[0].ID)
}

func TestSubmitCriticalWithoutAutoHideCategory(t *testing.T) {
	fx := newIntakeFixture()

	req := validRequest()
	req.Category = triage.CategoryHateSpeech // critical base score, not auto-hide eligible

	report, decision, err := fx.svc.Submit(context.Background(), uuid.New(), req)
	require.NoError(t, err)

	assert.Equal(t, triage.PriorityCritical, decision.Priority)
	assert.Empty(t, report.AutoAction)
	assert.Empty(t, fx.content.hidden)
	require.Len(t, fx.notifier.notified, 1)
}

func TestSubmitHistoriesFlowIntoDecision(t *testing.T) {
	fx := newIntakeFixture()
	fx.history.reporter = &triage.ReporterHistory{TotalReports: 10, ValidReports: 2, FalseReports: 8}

	req := validRequest()
	req.Category = triage.CategoryHarassment

	report, decision, err := fx.svc.Submit(context.Background(), uuid.New(), req)
	require.NoError(t, err)

	assert.InDelta(t, 15.75, report.Score, 0.0001)
	assert.Equal(t, string(triage.PriorityLow), report.Priority)
	assert.InDelta(t, 0.8, decision.FalseReportProbability, 0.0001)
}

func TestSubmitDegradesWhenHistoryLookupsFail(t *testing.T) {
	fx := newIntakeFixture()
	fx.history.reporterErr = errors.New("timeout")
	fx.history.targetErr = errors.New("timeout")
	fx.history.previousErr = errors.New("timeout")

	req := validRequest()
	req.Category = triage.CategoryHarassment

	report, _, err := fx.svc.Submit(context.Background(), uuid.New(), req)
	require.NoError(t, err)
	// All adjustments skipped: plain base score.
	assert.InDelta(t, 75, report.Score, 0.0001)
}

func TestSubmitNotifierFailureIsSwallowed(t *testing.T) {
	fx := newIntakeFixture()
	fx.notifier.err = errors.New("smtp down")

	req := validRequest()
	req.Category = triage.CategoryViolence

	report, _, err := fx.svc.Submit(context.Background(), uuid.New(), req)
	require.NoError(t, err)
	assert.Equal(t, string(triage.PriorityCritical), report.Priority)
	require.Len(t, fx.store.created, 1)
}

func TestSubmitAutoHideFailureKeepsReport(t *testing.T) {
	fx := newIntakeFixture()
	fx.content.hideErr = errors.New("target gone")

	req := validRequest()
	req.Category = triage.CategoryFraud

	report, _, err := fx.svc.Submit(context.Background(), uuid.New(), req)
	require.NoError(t, err)
	assert.Equal(t, string(triage.AutoActionTemporaryHide), report.AutoAction)
	require.Len(t, fx.store.created, 1)
	assert.Empty(t, fx.store.autoHides)
}

func TestSubmitPersistFailure(t *testing.T) {
	fx := newIntakeFixture()
	fx.store.createErr = errors.New("disk full")

	_, _, err := fx.svc.Submit(context.Background(), uuid.New(), validRequest())
	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "report insert", pe.Op)
}
