package triage

import "time"

// Config holds every tunable of the scoring pipeline. All weights and
// thresholds live here rather than as literals in the engine so that
// tuning never touches call sites. Version identifies the active table
// in audit records.
type Config struct {
	Version string

	// Step 1: category base scores. Categories absent from the table
	// score DefaultWeight.
	CategoryWeights map[string]float64
	DefaultWeight   float64

	// Step 2: reporter trust. Score is multiplied by
	// TrustBase + validRate, so an unknown reporter (validRate 0.5)
	// is neutral at TrustBase 0.5.
	TrustBase float64

	// False-report probability is only computed once a reporter has
	// at least MinReportsForProbability resolved submissions.
	MinReportsForProbability int
	HighFalseProbCutoff      float64
	HighFalseProbMultiplier  float64
	MidFalseProbCutoff       float64
	MidFalseProbMultiplier   float64

	// Step 3: target history.
	ViolationStep         float64
	ViolationCap          float64
	HeavilyReportedMin    int
	HeavilyReportedBonus  float64
	RecentViolationWindow time.Duration
	RecentViolationBonus  float64
	PastViolationWindow   time.Duration
	PastViolationBonus    float64

	// Step 4: corroboration burst. Named independently of the intake
	// dedup window even though both are currently 24h.
	BurstWindow time.Duration
	BurstStep   float64
	BurstCap    float64

	// Step 5: tier thresholds, applied to the fully adjusted score.
	CriticalThreshold float64
	HighThreshold     float64
	MediumThreshold   float64

	// Step 6: a reporter above this false-report probability never
	// escalates a non-critical report.
	FalseReportOverrideCutoff float64

	// Step 7: categories eligible for automatic hiding when critical.
	AutoHideCategories map[string]bool
}

// DefaultConfig returns the production weight table and thresholds.
func DefaultConfig() Config {
	return Config{
		Version: "v1",

		CategoryWeights: map[string]float64{
			CategoryChildSafety:    100,
			CategoryFraud:          95,
			CategoryViolence:       90,
			CategoryHateSpeech:     85,
			CategoryHarassment:     75,
			CategoryInappropriate:  60,
			CategoryMisinformation: 50,
			CategoryCopyright:      40,
			CategorySpam:           30,
			CategoryOther:          20,
		},
		DefaultWeight: 20,

		TrustBase: 0.5,

		MinReportsForProbability: 5,
		HighFalseProbCutoff:      0.5,
		HighFalseProbMultiplier:  0.3,
		MidFalseProbCutoff:       0.3,
		MidFalseProbMultiplier:   0.6,

		ViolationStep:         10,
		ViolationCap:          30,
		HeavilyReportedMin:    5,
		HeavilyReportedBonus:  15,
		RecentViolationWindow: 7 * 24 * time.Hour,
		RecentViolationBonus:  20,
		PastViolationWindow:   30 * 24 * time.Hour,
		PastViolationBonus:    10,

		BurstWindow: 24 * time.Hour,
		BurstStep:   15,
		BurstCap:    45,

		CriticalThreshold: 85,
		HighThreshold:     60,
		MediumThreshold:   35,

		FalseReportOverrideCutoff: 0.7,

		AutoHideCategories: map[string]bool{
			CategoryViolence:    true,
			CategoryChildSafety: true,
			CategoryFraud:       true,
		},
	}
}

func (c Config) weightFor(category string) float64 {
	if w, ok := c.CategoryWeights[category]; ok {
		return w
	}
	return c.DefaultWeight
}
