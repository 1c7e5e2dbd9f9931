package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/swim-conditions/internal/readings"
)

func TestOpenMeteoMarineProviderFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "wave_height,wave_period,wave_direction", q.Get("current"))
		assert.Equal(t, "GMT", q.Get("timezone"))

		w.Write([]byte(`{"current":{
			"time":"2026-03-14T09:30",
			"interval":900,
			"wave_height":0.52,
			"wave_period":8.2,
			"wave_direction":280.0}}`))
	}))
	defer srv.Close()

	p := NewOpenMeteoMarineProvider(srv.Client(), readings.Coordinates{Lat: 37.8083, Lon: -122.4265})
	p.baseURL = srv.URL

	reading, err := p.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "open-meteo-marine", reading.Source)
	assert.Equal(t, time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC), reading.Timestamp)
	assert.InDelta(t, 0.52*feetPerMeter, reading.HeightFt, 1e-9)
	require.NotNil(t, reading.SwellPeriodSec)
	assert.InDelta(t, 8.2, *reading.SwellPeriodSec, 1e-9)
	require.NotNil(t, reading.SwellDirectionDeg)
	assert.InDelta(t, 280.0, *reading.SwellDirectionDeg, 1e-9)
}

func TestOpenMeteoMarineProviderNoCoverage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"current":{"time":"2026-03-14T09:30","wave_height":null}}`))
	}))
	defer srv.Close()

	p := NewOpenMeteoMarineProvider(srv.Client(), readings.Coordinates{})
	p.baseURL = srv.URL

	_, err := p.Fetch(context.Background())
	assert.ErrorIs(t, err, readings.ErrNoData)
}
