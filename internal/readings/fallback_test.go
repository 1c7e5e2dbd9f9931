package readings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeriveCurrent(t *testing.T) {
	pos := Coordinates{Lat: 37.8083, Lon: -122.4265}
	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		phase     TidePhase
		rate      float64
		wantSpeed float64
		wantDir   float64
	}{
		{name: "flood points into the cove", phase: PhaseFlood, rate: 1.5, wantSpeed: 0.6, wantDir: 90},
		{name: "ebb points out", phase: PhaseEbb, rate: -2.0, wantSpeed: 0.8, wantDir: 270},
		{name: "slack has no direction", phase: PhaseSlack, rate: 0.1, wantSpeed: 0.04, wantDir: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveCurrent(TidePrediction{
				Timestamp:           at,
				Phase:               tt.phase,
				ChangeRateFtPerHour: tt.rate,
			}, pos)

			assert.Equal(t, SourceCalculated, got.Source)
			assert.Equal(t, at, got.Timestamp)
			assert.Equal(t, pos, got.Position)
			assert.InDelta(t, tt.wantSpeed, got.SpeedKnots, 1e-9)
			assert.Equal(t, tt.wantDir, got.DirectionDeg)
		})
	}
}

func TestMergeWindTakesWindFieldsOnly(t *testing.T) {
	gust := 22.5
	base := WeatherReading{
		Source:       "nws",
		TemperatureF: 58,
		WindSpeedMph: 4,
		VisibilityMi: 10,
		Condition:    "Fog",
	}
	windSrc := WeatherReading{
		Source:           "openweather",
		TemperatureF:     61,
		WindSpeedMph:     17,
		WindDirectionDeg: 250,
		GustMph:          &gust,
		Condition:        "Clear",
	}

	got := MergeWind(base, windSrc)

	assert.Equal(t, "nws+openweather", got.Source)
	assert.Equal(t, 17.0, got.WindSpeedMph)
	assert.Equal(t, 250.0, got.WindDirectionDeg)
	assert.Equal(t, &gust, got.GustMph)
	// Everything that is not wind stays with the base reading.
	assert.Equal(t, 58.0, got.TemperatureF)
	assert.Equal(t, 10.0, got.VisibilityMi)
	assert.Equal(t, "Fog", got.Condition)
}

func TestFallbacksCarryUnavailableSource(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	weather := FallbackWeather(now)
	assert.Equal(t, SourceUnavailable, weather.Source)
	assert.Equal(t, 60.0, weather.TemperatureF)
	assert.Equal(t, 10.0, weather.WindSpeedMph)

	waves := FallbackWave(now)
	assert.Equal(t, SourceUnavailable, waves.Source)
	assert.Zero(t, waves.HeightFt)

	quality := FallbackWaterQuality(now)
	assert.Equal(t, SourceUnavailable, quality.Source)
	assert.Equal(t, QualityAdvisory, quality.Status)
	assert.Nil(t, quality.EnterococcusMPN)
}

func TestWaterQualityStatusAtLeast(t *testing.T) {
	assert.Equal(t, QualityAdvisory, QualitySafe.AtLeast(QualityAdvisory))
	assert.Equal(t, QualityDangerous, QualityDangerous.AtLeast(QualityAdvisory))
	assert.Equal(t, QualityWarning, QualityWarning.AtLeast(QualityWarning))
}
