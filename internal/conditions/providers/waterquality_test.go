package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/swim-conditions/internal/readings"
)

func TestBeachWatchProviderDiscoversNearestStation(t *testing.T) {
	site := readings.Coordinates{Lat: 37.8083, Lon: -122.4265}
	var discoveries atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/stations":
			discoveries.Add(1)
			w.Write([]byte(`[
				{"id":"LA-01","name":"Santa Monica Pier","latitude":34.0086,"longitude":-118.4986},
				{"id":"SF-21","name":"Aquatic Park","latitude":37.8074,"longitude":-122.4240}]`))
		case "/stations/SF-21/results/latest":
			w.Write([]byte(`{
				"stationId":"SF-21",
				"sampleTime":"2026-03-13T17:00:00Z",
				"enterococcus":40,
				"status":"Safe",
				"notes":"routine sample"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	cache := NewStationCache(24 * time.Hour)
	clock := clockwork.NewFakeClockAt(time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC))
	p := NewBeachWatchProvider(srv.Client(), srv.URL, site, cache, clock)

	reading, err := p.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "beach-watch", reading.Source)
	assert.Equal(t, "SF-21", reading.StationID)
	require.NotNil(t, reading.EnterococcusMPN)
	assert.InDelta(t, 40.0, *reading.EnterococcusMPN, 1e-9)
	assert.Equal(t, readings.QualitySafe, reading.Status)
	assert.Equal(t, "routine sample", reading.Notes)

	// A second fetch inside the TTL reuses the cached station.
	_, err = p.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), discoveries.Load())
}

func TestBeachWatchProviderNoStations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	p := NewBeachWatchProvider(srv.Client(), srv.URL, readings.Coordinates{}, NewStationCache(0), clockwork.NewFakeClockAt(time.Now()))

	_, err := p.Fetch(context.Background())
	assert.ErrorIs(t, err, readings.ErrNoData)
}

func TestStationCacheExpiry(t *testing.T) {
	now := time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC)
	cache := NewStationCache(time.Hour)

	_, ok := cache.get(now)
	assert.False(t, ok)

	cache.put("SF-21", now)

	id, ok := cache.get(now.Add(30 * time.Minute))
	assert.True(t, ok)
	assert.Equal(t, "SF-21", id)

	_, ok = cache.get(now.Add(2 * time.Hour))
	assert.False(t, ok)
}
