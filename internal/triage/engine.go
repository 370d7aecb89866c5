package triage

import (
	"math"
	"time"
)

// Report categories. Unlisted values are accepted and scored at the
// default weight.
const (
	CategoryChildSafety    = "child_safety"
	CategoryFraud          = "fraud"
	CategoryViolence       = "violence"
	CategoryHateSpeech     = "hate_speech"
	CategoryHarassment     = "harassment"
	CategoryInappropriate  = "inappropriate"
	CategoryMisinformation = "misinformation"
	CategoryCopyright      = "copyright"
	CategorySpam           = "spam"
	CategoryOther          = "other"
)

type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

type AutoAction string

const AutoActionTemporaryHide AutoAction = "temporary_hide"

// ReporterHistory aggregates a reporter's track record. ValidReports
// were resolved in the reporter's favor, FalseReports were rejected.
type ReporterHistory struct {
	TotalReports int
	ValidReports int
	FalseReports int
}

// TargetHistory aggregates how often the reported target has been
// flagged and confirmed before.
type TargetHistory struct {
	ViolationCount int
	ReportedCount  int
	WarningCount   int
	LastViolation  *time.Time
}

// PreviousReport is a prior report against the same target, used to
// detect a corroboration burst.
type PreviousReport struct {
	CreatedAt time.Time
}

type Feedback struct {
	Message       string     `json:"message"`
	EstimatedTime string     `json:"estimated_time"`
	AutoAction    AutoAction `json:"auto_action,omitempty"`
}

// Decision is the immutable output of a triage computation. It is
// persisted with the report at intake time and never recomputed.
type Decision struct {
	Score                  float64  `json:"score"`
	Priority               Priority `json:"priority"`
	FalseReportProbability float64  `json:"false_report_probability"`
	Feedback               Feedback `json:"feedback"`
}

// Engine scores incoming reports. It performs no I/O; history inputs
// are supplied by the caller, and the clock is injectable for tests.
type Engine struct {
	cfg Config
	now func() time.Time
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg, now: time.Now}
}

// NewEngineAt returns an engine with a fixed clock.
func NewEngineAt(cfg Config, now func() time.Time) *Engine {
	return &Engine{cfg: cfg, now: now}
}

// ComputeDecision runs the full scoring pipeline: category base score,
// reporter trust adjustment, target history adjustment, corroboration
// burst, tier classification, false-report override, and feedback
// derivation. Nil histories skip their adjustment steps; the function
// never fails.
func (e *Engine) ComputeDecision(category string, reporter *ReporterHistory, target *TargetHistory, previous []PreviousReport) Decision {
	now := e.now()
	score := e.cfg.weightFor(category)

	falseProb := 0.0
	if reporter != nil {
		validRate := 0.5
		if reporter.TotalReports > 0 {
			validRate = float64(reporter.ValidReports) / float64(reporter.TotalReports)
		}
		score *= e.cfg.TrustBase + validRate

		if reporter.TotalReports >= e.cfg.MinReportsForProbability {
			falseProb = float64(reporter.FalseReports) / float64(reporter.TotalReports)
			if falseProb > e.cfg.HighFalseProbCutoff {
				score *= e.cfg.HighFalseProbMultiplier
			} else if falseProb > e.cfg.MidFalseProbCutoff {
				score *= e.cfg.MidFalseProbMultiplier
			}
		}
	}

	if target != nil {
		score += math.Min(float64(target.ViolationCount)*e.cfg.ViolationStep, e.cfg.ViolationCap)
		if target.ReportedCount > e.cfg.HeavilyReportedMin {
			score += e.cfg.HeavilyReportedBonus
		}
		if target.LastViolation != nil {
			since := now.Sub(*target.LastViolation)
			if since < e.cfg.RecentViolationWindow {
				score += e.cfg.RecentViolationBonus
			} else if since < e.cfg.PastViolationWindow {
				score += e.cfg.PastViolationBonus
			}
		}
	}

	recent := 0
	cutoff := now.Add(-e.cfg.BurstWindow)
	for _, p := range previous {
		if p.CreatedAt.After(cutoff) {
			recent++
		}
	}
	score += math.Min(float64(recent)*e.cfg.BurstStep, e.cfg.BurstCap)

	priority := e.classify(score)

	// A habitual false-reporter never escalates a claim on category
	// severity alone, but a genuinely critical score is exempt.
	if falseProb > e.cfg.FalseReportOverrideCutoff && priority != PriorityCritical {
		priority = PriorityLow
	}

	return Decision{
		Score:                  score,
		Priority:               priority,
		FalseReportProbability: falseProb,
		Feedback:               e.feedback(category, priority, falseProb),
	}
}

func (e *Engine) classify(score float64) Priority {
	switch {
	case score >= e.cfg.CriticalThreshold:
		return PriorityCritical
	case score >= e.cfg.HighThreshold:
		return PriorityHigh
	case score >= e.cfg.MediumThreshold:
		return PriorityMedium
	default:
		return PriorityLow
	}
}
