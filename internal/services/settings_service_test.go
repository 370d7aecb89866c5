package services

import (
	"testing"

	"github.com/modguard/modguard/internal/triage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplySetting(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr bool
		check   func(t *testing.T, cfg triage.Config)
	}{
		{
			name: "category weight override", key: "weight.spam", value: "42",
			check: func(t *testing.T, cfg triage.Config) {
				assert.Equal(t, 42.0, cfg.CategoryWeights[triage.CategorySpam])
			},
		},
		{
			name: "new category weight", key: "weight.doxxing", value: "80",
			check: func(t *testing.T, cfg triage.Config) {
				assert.Equal(t, 80.0, cfg.CategoryWeights["doxxing"])
			},
		},
		{
			name: "default weight", key: "default_weight", value: "25",
			check: func(t *testing.T, cfg triage.Config) {
				assert.Equal(t, 25.0, cfg.DefaultWeight)
			},
		},
		{
			name: "critical threshold", key: "threshold.critical", value: "90",
			check: func(t *testing.T, cfg triage.Config) {
				assert.Equal(t, 90.0, cfg.CriticalThreshold)
			},
		},
		{
			name: "high threshold", key: "threshold.high", value: "65",
			check: func(t *testing.T, cfg triage.Config) {
				assert.Equal(t, 65.0, cfg.HighThreshold)
			},
		},
		{
			name: "medium threshold", key: "threshold.medium", value: "40",
			check: func(t *testing.T, cfg triage.Config) {
				assert.Equal(t, 40.0, cfg.MediumThreshold)
			},
		},
		{
			name: "version label", key: "version", value: "v2-tuned",
			check: func(t *testing.T, cfg triage.Config) {
				assert.Equal(t, "v2-tuned", cfg.Version)
			},
		},
		{name: "empty version rejected", key: "version", value: "", wantErr: true},
		{name: "non-numeric weight rejected", key: "weight.spam", value: "lots", wantErr: true},
		{name: "negative weight rejected", key: "weight.spam", value: "-5", wantErr: true},
		{name: "weight key without category", key: "weight.", value: "10", wantErr: true},
		{name: "unknown threshold", key: "threshold.severe", value: "10", wantErr: true},
		{name: "unknown key", key: "burst_cap", value: "10", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := triage.DefaultConfig()
			err := applySetting(&cfg, tt.key, tt.value)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestApplySettingLeavesOtherFieldsAlone(t *testing.T) {
	cfg := triage.DefaultConfig()
	require.NoError(t, applySetting(&cfg, "weight.spam", "42"))

	defaults := triage.DefaultConfig()
	assert.Equal(t, defaults.CriticalThreshold, cfg.CriticalThreshold)
	assert.Equal(t, defaults.DefaultWeight, cfg.DefaultWeight)
	assert.Equal(t, defaults.CategoryWeights[triage.CategoryFraud], cfg.CategoryWeights[triage.CategoryFraud])
}

func TestSettingsServiceServesDefaultsBeforeLoad(t *testing.T) {
	svc := NewSettingsService(nil)

	cfg := svc.Config()
	defaults := triage.DefaultConfig()
	assert.Equal(t, defaults.Version, cfg.Version)
	assert.Equal(t, defaults.CriticalThreshold, cfg.CriticalThreshold)

	decision := svc.Engine().ComputeDecision(triage.CategorySpam, nil, nil, nil)
	assert.Equal(t, triage.PriorityLow, decision.Priority)
}

func TestFormatFloatRoundTrips(t *testing.T) {
	for _, f := range []float64{0, 0.3, 30, 85, 100} {
		got, err := parseWeight(formatFloat(f))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
}
