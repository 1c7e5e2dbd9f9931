package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/swim-conditions/internal/readings"
)

func TestAdviseDangerousWaterLeadsWarnings(t *testing.T) {
	score := Compute(roughReadings(), DefaultTidePreference(), scoreTime)

	require.NotEmpty(t, score.Warnings)
	assert.Equal(t, "Do not swim: water quality is dangerous", score.Warnings[0])
	assert.Contains(t, score.Warnings, "Heavy upstream dam releases: expect stronger, colder currents")
	assert.Contains(t, score.Warnings, "Overall conditions are dangerous today")
	assert.Empty(t, score.Recommendations)
}

func TestAdviseSlackTideRecommendation(t *testing.T) {
	score := Compute(calmReadings(), DefaultTidePreference(), scoreTime)

	assert.Contains(t, score.Recommendations, "Slack tide: excellent window for open-water swimming")
	assert.Contains(t, score.Recommendations, "Conditions are excellent: enjoy your swim")
	assert.Empty(t, score.Warnings)
}

func TestAdviseEmptyButNotNil(t *testing.T) {
	// Middling conditions that trip no rule at all.
	f := Factors{
		WaterQuality: WaterQualityFactor{Score: 100, Status: readings.QualitySafe},
		TideCurrent:  TideCurrentFactor{Score: 85, Phase: readings.PhaseFlood, SpeedKnots: 0.8},
		Waves:        WaveFactor{Score: 60, State: SeaModerate},
		Weather:      WeatherFactor{Score: 80, Band: WindModerate},
		DamReleases:  DamFactor{Score: 100, Level: readings.ReleaseLow},
	}

	recs, warns := Advise(f, 55)

	assert.NotNil(t, recs)
	assert.NotNil(t, warns)
	assert.Empty(t, recs)
	assert.Empty(t, warns)
}
