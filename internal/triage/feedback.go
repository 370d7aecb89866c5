package triage

// Submitter-facing feedback text per tier. The cautious variant is
// returned to reporters with a high false-report probability before
// any tier branch is consulted.
const (
	msgCritical = "Your report has been prioritized and will be handled urgently."
	msgHigh     = "Thank you for your report. We will act on it quickly."
	msgMedium   = "Your report will be reviewed in order."
	msgLow      = "Your report will be reviewed."
	msgCautious = "Your report has been received and will be reviewed carefully."

	etaCritical = "within 24 hours"
	etaHigh     = "1-2 business days"
	etaMedium   = "3-5 business days"
	etaLow      = "5-7 business days"
)

func (e *Engine) feedback(category string, priority Priority, falseProb float64) Feedback {
	if falseProb > e.cfg.FalseReportOverrideCutoff {
		return Feedback{Message: msgCautious, EstimatedTime: etaLow}
	}

	switch priority {
	case PriorityCritical:
		fb := Feedback{Message: msgCritical, EstimatedTime: etaCritical}
		if e.cfg.AutoHideCategories[category] {
			fb.AutoAction = AutoActionTemporaryHide
		}
		return fb
	case PriorityHigh:
		return Feedback{Message: msgHigh, EstimatedTime: etaHigh}
	case PriorityMedium:
		return Feedback{Message: msgMedium, EstimatedTime: etaMedium}
	default:
		return Feedback{Message: msgLow, EstimatedTime: etaLow}
	}
}
