package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/swim-conditions/internal/conditions"
	"github.com/i474232898/swim-conditions/internal/observability"
	"github.com/i474232898/swim-conditions/internal/readings"
	"github.com/i474232898/swim-conditions/internal/scoring"
	"github.com/i474232898/swim-conditions/internal/store"
)

var apiTestTime = time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)

func fptr(v float64) *float64 { return &v }

// floodReadings is a benign reading set on a gentle flood tide.
func floodReadings() readings.ReadingSet {
	return readings.ReadingSet{
		Tide: readings.TidePrediction{
			Timestamp:           apiTestTime,
			Source:              "noaa-tides",
			HeightFt:            3.2,
			State:               readings.TideNormal,
			Phase:               readings.PhaseFlood,
			ChangeRateFtPerHour: 0.8,
		},
		Current: readings.CurrentReading{
			Timestamp:  apiTestTime,
			Source:     "noaa-currents",
			SpeedKnots: 0.3,
		},
		Weather: readings.WeatherReading{
			Timestamp:    apiTestTime,
			Source:       "nws",
			TemperatureF: 60,
			WindSpeedMph: 4,
			VisibilityMi: 10,
			Condition:    "Clear",
		},
		Waves: readings.WaveReading{
			Timestamp: apiTestTime,
			Source:    "open-meteo-marine",
			HeightFt:  1.5,
		},
		WaterQuality: readings.WaterQualityReading{
			Timestamp:       apiTestTime,
			Source:          "beach-watch",
			EnterococcusMPN: fptr(40),
			Status:          readings.QualitySafe,
		},
		Overflows: []readings.OverflowEvent{},
		DamReleases: &readings.DamReleaseAggregate{
			Timestamp:   apiTestTime,
			Source:      "usgs-dams",
			TotalCFS:    2500,
			Avg24hCFS:   2400,
			Avg48hCFS:   2300,
			Peak48hCFS:  3000,
			SampleCount: 10,
			Trend:       readings.TrendStable,
			Level:       readings.ReleaseLow,
		},
	}
}

func newTestApp(t *testing.T, snaps ...conditions.Snapshot) *fiber.App {
	t.Helper()
	return newTestAppWithPreference(t, scoring.DefaultTidePreference(), snaps...)
}

func newTestAppWithPreference(t *testing.T, pref scoring.TidePreference, snaps ...conditions.Snapshot) *fiber.App {
	t.Helper()

	memStore := store.NewMemoryStore()
	for _, snap := range snaps {
		require.NoError(t, memStore.Save(context.Background(), snap))
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := conditions.NewService(nil, memStore, pref, clockwork.NewFakeClockAt(apiTestTime), log, observability.NewMetricsForTesting())

	app := fiber.New()
	RegisterRoutes(app, svc)
	return app
}

func seededSnapshot(id string, at time.Time) conditions.Snapshot {
	rs := floodReadings()
	return conditions.Snapshot{
		ID:        id,
		Timestamp: at,
		Score:     scoring.Compute(rs, scoring.DefaultTidePreference(), at),
		Readings:  rs,
		Sources: map[string]conditions.SourceReport{
			"noaa-tides": {Status: conditions.SourceOK},
		},
	}
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, v))
}

func TestConditionsEndpoint(t *testing.T) {
	app := newTestApp(t, seededSnapshot("snap-1", apiTestTime))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/conditions", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var snap conditions.Snapshot
	decodeBody(t, resp, &snap)
	assert.Equal(t, "snap-1", snap.ID)
	assert.Equal(t, scoring.RatingExcellent, snap.Score.Rating)
	assert.Equal(t, "noaa-tides", snap.Readings.Tide.Source)
}

func TestConditionsEndpointEmptyStore(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/conditions", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestScoreEndpointAppliesPreference(t *testing.T) {
	app := newTestApp(t, seededSnapshot("snap-1", apiTestTime))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/conditions/score?flood=40&slack=90", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Preference scoring.TidePreference `json:"preference"`
		Score      scoring.SwimScore      `json:"score"`
	}
	decodeBody(t, resp, &payload)

	assert.Equal(t, 40, payload.Preference.Flood)
	// Ebb was not supplied, so the default stays.
	assert.Equal(t, 85, payload.Preference.Ebb)
	assert.Equal(t, 40, payload.Score.Factors.TideCurrent.Score)
}

func TestScoreEndpointDefaultsToSitePreference(t *testing.T) {
	sitePref := scoring.TidePreference{Slack: 100, Flood: 40, Ebb: 30}
	app := newTestAppWithPreference(t, sitePref, seededSnapshot("snap-1", apiTestTime))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/conditions/score", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Preference scoring.TidePreference `json:"preference"`
		Score      scoring.SwimScore      `json:"score"`
	}
	decodeBody(t, resp, &payload)

	// No weights supplied: the site's configured preference applies.
	assert.Equal(t, sitePref, payload.Preference)
	assert.Equal(t, 40, payload.Score.Factors.TideCurrent.Score)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/conditions/score?flood=90", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	decodeBody(t, resp, &payload)
	// An explicit weight overrides the site default; unsupplied ones keep it.
	assert.Equal(t, 90, payload.Preference.Flood)
	assert.Equal(t, 30, payload.Preference.Ebb)
	assert.Equal(t, 90, payload.Score.Factors.TideCurrent.Score)
}

func TestScoreEndpointValidation(t *testing.T) {
	app := newTestApp(t, seededSnapshot("snap-1", apiTestTime))

	for _, query := range []string{"slack=150", "flood=-5", "ebb=sideways"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/conditions/score?"+query, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "query %q", query)
	}
}

func TestReadingsEndpoint(t *testing.T) {
	app := newTestApp(t, seededSnapshot("snap-1", apiTestTime))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/readings", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Readings readings.ReadingSet                `json:"readings"`
		Sources  map[string]conditions.SourceReport `json:"sources"`
	}
	decodeBody(t, resp, &payload)
	assert.Equal(t, readings.PhaseFlood, payload.Readings.Tide.Phase)
	assert.Equal(t, conditions.SourceOK, payload.Sources["noaa-tides"].Status)
}

func TestDamsEndpoint(t *testing.T) {
	app := newTestApp(t, seededSnapshot("snap-1", apiTestTime))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/dams", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var agg readings.DamReleaseAggregate
	decodeBody(t, resp, &agg)
	assert.Equal(t, readings.ReleaseLow, agg.Level)
	assert.InDelta(t, 2500.0, agg.TotalCFS, 1e-9)
}

func TestDamsEndpointUnavailable(t *testing.T) {
	snap := seededSnapshot("snap-1", apiTestTime)
	snap.Readings.DamReleases = nil
	snap.Score = scoring.Compute(snap.Readings, scoring.DefaultTidePreference(), apiTestTime)
	app := newTestApp(t, snap)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/dams", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
