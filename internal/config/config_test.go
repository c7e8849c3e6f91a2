package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 30, cfg.Analytics.MinCancellationSamples)
	assert.Equal(t, 200, cfg.Analytics.MinBookingWindowSamples)
	assert.InDelta(t, 1.0, cfg.Analytics.ClassBaseMultipliers[3], 1e-9, "3-star is the baseline")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("MIN_CANCELLATION_SAMPLES", "50")
	t.Setenv("WEIGHT_RATING", "0.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 50, cfg.Analytics.MinCancellationSamples)
	assert.InDelta(t, 0.5, cfg.Analytics.Weights.Rating, 1e-9)
}

func TestClassBaseMultipliersEnvOverride(t *testing.T) {
	t.Setenv("CLASS_BASE_MULTIPLIERS", "1:0.6, 2:0.8, 3:1.0, 4:1.4, 5:2.0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.InDelta(t, 0.6, cfg.Analytics.ClassBaseMultipliers[1], 1e-9)
	assert.InDelta(t, 2.0, cfg.Analytics.ClassBaseMultipliers[5], 1e-9)
}

func TestClassBaseMultipliersMalformedEnvKeepsDefaults(t *testing.T) {
	t.Setenv("CLASS_BASE_MULTIPLIERS", "1:0.6,not-a-pair")

	cfg, err := Load()
	require.NoError(t, err)

	assert.InDelta(t, 0.55, cfg.Analytics.ClassBaseMultipliers[1], 1e-9)
	assert.InDelta(t, 1.80, cfg.Analytics.ClassBaseMultipliers[5], 1e-9)
}

func TestValidateRejectsIncoherentTiers(t *testing.T) {
	a := loadAnalyticsConfig()
	a.CancellationElevated = 0.5
	a.CancellationHigh = 0.3
	assert.Error(t, a.Validate())

	a = loadAnalyticsConfig()
	a.OverbookingMedium = 0.2
	a.OverbookingHigh = 0.1
	assert.Error(t, a.Validate())

	a = loadAnalyticsConfig()
	a.MinCancellationSamples = 0
	assert.Error(t, a.Validate())

	a = loadAnalyticsConfig()
	a.Weights = ScoringWeights{}
	assert.Error(t, a.Validate())
}
