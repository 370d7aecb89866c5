package triage

import (
	"math"
	"testing"
	"time"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func newTestEngine() *Engine {
	return NewEngineAt(DefaultConfig(), func() time.Time { return testNow })
}

func daysAgo(d int) *time.Time {
	t := testNow.AddDate(0, 0, -d)
	return &t
}

func hoursAgo(h int) time.Time {
	return testNow.Add(-time.Duration(h) * time.Hour)
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.0001
}

func TestCategoryBaseScores(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		category  string
		wantScore float64
		wantTier  Priority
	}{
		{CategoryChildSafety, 100, PriorityCritical},
		{CategoryFraud, 95, PriorityCritical},
		{CategoryViolence, 90, PriorityCritical},
		{CategoryHateSpeech, 85, PriorityCritical},
		{CategoryHarassment, 75, PriorityHigh},
		{CategoryInappropriate, 60, PriorityHigh},
		{CategoryMisinformation, 50, PriorityMedium},
		{CategoryCopyright, 40, PriorityMedium},
		{CategorySpam, 30, PriorityLow},
		{CategoryOther, 20, PriorityLow},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			got := e.ComputeDecision(tt.category, nil, nil, nil)
			if !almostEqual(got.Score, tt.wantScore) {
				t.Errorf("score = %.2f, want %.2f", got.Score, tt.wantScore)
			}
			if got.Priority != tt.wantTier {
				t.Errorf("priority = %s, want %s", got.Priority, tt.wantTier)
			}
		})
	}
}

func TestUnknownCategoryUsesDefaultWeight(t *testing.T) {
	e := newTestEngine()

	for _, category := range []string{"", "unknown", "gambling", "CHILD_SAFETY"} {
		got := e.ComputeDecision(category, nil, nil, nil)
		if !almostEqual(got.Score, 20) {
			t.Errorf("ComputeDecision(%q) score = %.2f, want 20", category, got.Score)
		}
		if got.Priority != PriorityLow {
			t.Errorf("ComputeDecision(%q) priority = %s, want low", category, got.Priority)
		}
	}
}

func TestReporterTrustAdjustment(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		name          string
		reporter      *ReporterHistory
		wantScore     float64
		wantTier      Priority
		wantFalseProb float64
	}{
		{
			name:          "unknown reporter is neutral",
			reporter:      &ReporterHistory{},
			wantScore:     75, // validRate defaults to 0.5, multiplier 1.0
			wantTier:      PriorityHigh,
			wantFalseProb: 0,
		},
		{
			name:          "trusted reporter boosts 1.5x",
			reporter:      &ReporterHistory{TotalReports: 20, ValidReports: 20},
			wantScore:     112.5,
			wantTier:      PriorityCritical,
			wantFalseProb: 0,
		},
		{
			name:          "habitual false reporter collapses the score",
			reporter:      &ReporterHistory{TotalReports: 10, ValidReports: 2, FalseReports: 8},
			wantScore:     15.75, // 75 * 0.7 * 0.3
			wantTier:      PriorityLow,
			wantFalseProb: 0.8,
		},
		{
			name:          "moderate false reporter gets the 0.6 multiplier only",
			reporter:      &ReporterHistory{TotalReports: 10, ValidReports: 6, FalseReports: 4},
			wantScore:     49.5, // 75 * 1.1 * 0.6, high branch must not also fire
			wantTier:      PriorityMedium,
			wantFalseProb: 0.4,
		},
		{
			name:          "below five reports probability stays zero",
			reporter:      &ReporterHistory{TotalReports: 4, FalseReports: 4},
			wantScore:     37.5, // 75 * 0.5, no false-report multiplier
			wantTier:      PriorityMedium,
			wantFalseProb: 0,
		},
		{
			name:          "five reports is the inclusive threshold",
			reporter:      &ReporterHistory{TotalReports: 5, FalseReports: 5},
			wantScore:     11.25, // 75 * 0.5 * 0.3
			wantTier:      PriorityLow,
			wantFalseProb: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.ComputeDecision(CategoryHarassment, tt.reporter, nil, nil)
			if !almostEqual(got.Score, tt.wantScore) {
				t.Errorf("score = %.4f, want %.4f", got.Score, tt.wantScore)
			}
			if got.Priority != tt.wantTier {
				t.Errorf("priority = %s, want %s", got.Priority, tt.wantTier)
			}
			if !almostEqual(got.FalseReportProbability, tt.wantFalseProb) {
				t.Errorf("falseReportProbability = %.4f, want %.4f", got.FalseReportProbability, tt.wantFalseProb)
			}
		})
	}
}

func TestTargetHistoryAdjustment(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		name      string
		target    *TargetHistory
		wantScore float64
	}{
		{"no history", nil, 30},
		{"violations below cap", &TargetHistory{ViolationCount: 2}, 50},
		{"violations capped at 30", &TargetHistory{ViolationCount: 5}, 60},
		{"heavily reported bonus", &TargetHistory{ReportedCount: 6}, 45},
		{"reported count at threshold adds nothing", &TargetHistory{ReportedCount: 5}, 30},
		{"violation 2 days ago", &TargetHistory{LastViolation: daysAgo(2)}, 50},
		{"violation 20 days ago", &TargetHistory{LastViolation: daysAgo(20)}, 40},
		{"violation 90 days ago", &TargetHistory{LastViolation: daysAgo(90)}, 30},
		{
			"everything stacks",
			&TargetHistory{ViolationCount: 5, ReportedCount: 12, LastViolation: daysAgo(2)},
			95, // 30 + 30 + 15 + 20
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.ComputeDecision(CategorySpam, nil, tt.target, nil)
			if !almostEqual(got.Score, tt.wantScore) {
				t.Errorf("score = %.2f, want %.2f", got.Score, tt.wantScore)
			}
		})
	}
}

func TestCorroborationBurst(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		name      string
		previous  []PreviousReport
		wantScore float64
		wantTier  Priority
	}{
		{"no previous reports", nil, 75, PriorityHigh},
		{
			"one recent report",
			[]PreviousReport{{CreatedAt: hoursAgo(1)}},
			90, PriorityCritical,
		},
		{
			"three recent reports push to critical",
			[]PreviousReport{{CreatedAt: hoursAgo(1)}, {CreatedAt: hoursAgo(5)}, {CreatedAt: hoursAgo(23)}},
			120, PriorityCritical,
		},
		{
			"burst bonus capped at 45",
			[]PreviousReport{
				{CreatedAt: hoursAgo(1)}, {CreatedAt: hoursAgo(2)}, {CreatedAt: hoursAgo(3)},
				{CreatedAt: hoursAgo(4)}, {CreatedAt: hoursAgo(5)},
			},
			120, PriorityCritical,
		},
		{
			"stale reports outside 24h ignored",
			[]PreviousReport{{CreatedAt: hoursAgo(25)}, {CreatedAt: hoursAgo(48)}},
			75, PriorityHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.ComputeDecision(CategoryHarassment, nil, nil, tt.previous)
			if !almostEqual(got.Score, tt.wantScore) {
				t.Errorf("score = %.2f, want %.2f", got.Score, tt.wantScore)
			}
			if got.Priority != tt.wantTier {
				t.Errorf("priority = %s, want %s", got.Priority, tt.wantTier)
			}
		})
	}
}

func TestFalseReportOverride(t *testing.T) {
	e := newTestEngine()
	habitual := &ReporterHistory{TotalReports: 10, ValidReports: 2, FalseReports: 8}

	t.Run("non-critical tier forced to low", func(t *testing.T) {
		// 85 * 0.7 = 59.5 would be medium without the override.
		got := e.ComputeDecision(CategoryHateSpeech, habitual, nil, nil)
		if got.Score >= e.cfg.CriticalThreshold {
			t.Fatalf("setup broken: score %.2f already critical", got.Score)
		}
		if got.Priority != PriorityLow {
			t.Errorf("priority = %s, want low", got.Priority)
		}
		if got.Feedback.Message != msgCautious {
			t.Errorf("message = %q, want cautious message", got.Feedback.Message)
		}
		if got.Feedback.EstimatedTime != etaLow {
			t.Errorf("estimated time = %q, want %q", got.Feedback.EstimatedTime, etaLow)
		}
	})

	t.Run("critical tier is exempt", func(t *testing.T) {
		// 100*0.7*0.3 = 21, +30 violations +20 recency +45 burst = 116.
		target := &TargetHistory{ViolationCount: 5, ReportedCount: 3, LastViolation: daysAgo(2)}
		previous := []PreviousReport{
			{CreatedAt: hoursAgo(1)}, {CreatedAt: hoursAgo(2)}, {CreatedAt: hoursAgo(3)},
		}
		got := e.ComputeDecision(CategoryChildSafety, habitual, target, previous)
		if got.Priority != PriorityCritical {
			t.Errorf("priority = %s, want critical (override must not downgrade)", got.Priority)
		}
		// Cautious feedback still wins, so no auto action fires.
		if got.Feedback.AutoAction != "" {
			t.Errorf("autoAction = %q, want none when falseReportProbability > 0.7", got.Feedback.AutoAction)
		}
		if got.Feedback.Message != msgCautious {
			t.Errorf("message = %q, want cautious message", got.Feedback.Message)
		}
	})
}

func TestAutoAction(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		name     string
		category string
		reporter *ReporterHistory
		want     AutoAction
	}{
		{"critical violence auto-hides", CategoryViolence, nil, AutoActionTemporaryHide},
		{"critical child safety auto-hides", CategoryChildSafety, nil, AutoActionTemporaryHide},
		{"critical fraud auto-hides", CategoryFraud, nil, AutoActionTemporaryHide},
		{"critical hate speech does not", CategoryHateSpeech, nil, ""},
		{
			"non-critical violence does not",
			CategoryViolence,
			&ReporterHistory{TotalReports: 10, ValidReports: 1}, // 90 * 0.6 = 54
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.ComputeDecision(tt.category, tt.reporter, nil, nil)
			if got.Feedback.AutoAction != tt.want {
				t.Errorf("autoAction = %q, want %q (priority %s)", got.Feedback.AutoAction, tt.want, got.Priority)
			}
		})
	}
}

func TestFeedbackPerTier(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		category string
		wantMsg  string
		wantETA  string
	}{
		{CategoryChildSafety, msgCritical, etaCritical},
		{CategoryHarassment, msgHigh, etaHigh},
		{CategoryMisinformation, msgMedium, etaMedium},
		{CategorySpam, msgLow, etaLow},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			got := e.ComputeDecision(tt.category, nil, nil, nil)
			if got.Feedback.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", got.Feedback.Message, tt.wantMsg)
			}
			if got.Feedback.EstimatedTime != tt.wantETA {
				t.Errorf("estimatedTime = %q, want %q", got.Feedback.EstimatedTime, tt.wantETA)
			}
		})
	}
}

func TestDecisionIsDeterministic(t *testing.T) {
	e := newTestEngine()
	reporter := &ReporterHistory{TotalReports: 12, ValidReports: 9, FalseReports: 3}
	target := &TargetHistory{ViolationCount: 1, ReportedCount: 7, LastViolation: daysAgo(10)}
	previous := []PreviousReport{{CreatedAt: hoursAgo(2)}, {CreatedAt: hoursAgo(30)}}

	first := e.ComputeDecision(CategoryFraud, reporter, target, previous)
	second := e.ComputeDecision(CategoryFraud, reporter, target, previous)
	if first != second {
		t.Errorf("identical inputs produced different decisions:\n%+v\n%+v", first, second)
	}
}

func TestTargetHistoryStrictlyIncreasesScore(t *testing.T) {
	e := newTestEngine()
	target := &TargetHistory{ViolationCount: 5, LastViolation: daysAgo(2)}

	without := e.ComputeDecision(CategoryHarassment, nil, nil, nil)
	with := e.ComputeDecision(CategoryHarassment, nil, target, nil)
	if with.Score <= without.Score {
		t.Errorf("score with history %.2f not greater than without %.2f", with.Score, without.Score)
	}
	if !almostEqual(with.Score-without.Score, 50) { // min(50,30) + 20 recency
		t.Errorf("history delta = %.2f, want 50", with.Score-without.Score)
	}
}
