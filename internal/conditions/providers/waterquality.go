package providers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sony/gobreaker"

	"github.com/i474232898/swim-conditions/internal/readings"
)

const defaultStationTTL = 24 * time.Hour

// StationCache remembers which monitoring station serves the site so the
// discovery call runs at most once per TTL. The caller owns the cache and
// hands it to the provider; a zero TTL means the default of 24 hours.
type StationCache struct {
	mu     sync.Mutex
	ttl    time.Duration
	id     string
	expiry time.Time
}

func NewStationCache(ttl time.Duration) *StationCache {
	if ttl <= 0 {
		ttl = defaultStationTTL
	}
	return &StationCache{ttl: ttl}
}

func (c *StationCache) get(now time.Time) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.id == "" || now.After(c.expiry) {
		return "", false
	}
	return c.id, true
}

func (c *StationCache) put(id string, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.id = id
	c.expiry = now.Add(c.ttl)
}

type beachStation struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type beachSample struct {
	StationID    string   `json:"stationId"`
	SampleTime   string   `json:"sampleTime"`
	Enterococcus *float64 `json:"enterococcus"`
	Status       string   `json:"status"`
	Notes        string   `json:"notes"`
}

// BeachWatchProvider reads bacteria samples from a beach monitoring feed.
// The station nearest the site is discovered once and remembered in the
// cache; samples are then fetched by station ID.
type BeachWatchProvider struct {
	name    string
	baseURL string
	site    readings.Coordinates
	cache   *StationCache
	clock   clockwork.Clock
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewBeachWatchProvider(client *http.Client, baseURL string, site readings.Coordinates, cache *StationCache, clock clockwork.Clock) *BeachWatchProvider {
	return &BeachWatchProvider{
		name:    "beach-watch",
		baseURL: strings.TrimRight(baseURL, "/"),
		site:    site,
		cache:   cache,
		clock:   clock,
		httpCfg: defaultHTTPConfig(client),
		circuit: newBreaker("beach-watch"),
	}
}

func (p *BeachWatchProvider) Name() string { return p.name }

func (p *BeachWatchProvider) Fetch(ctx context.Context) (readings.WaterQualityReading, error) {
	now := p.clock.Now().UTC()

	stationID, ok := p.cache.get(now)
	if !ok {
		var err error
		stationID, err = p.discoverStation(ctx)
		if err != nil {
			return readings.WaterQualityReading{}, fmt.Errorf("discover station: %w", err)
		}
		p.cache.put(stationID, now)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, fmt.Sprintf("%s/stations/%s/results/latest", p.baseURL, stationID), nil)
	})
	if err != nil {
		return readings.WaterQualityReading{}, err
	}

	var sample beachSample
	if err := decodeJSON(resp, &sample); err != nil {
		return readings.WaterQualityReading{}, err
	}
	if sample.SampleTime == "" {
		return readings.WaterQualityReading{}, readings.ErrNoData
	}
	at, err := time.Parse(time.RFC3339, sample.SampleTime)
	if err != nil {
		return readings.WaterQualityReading{}, fmt.Errorf("parse sample time %q: %w", sample.SampleTime, err)
	}

	return readings.WaterQualityReading{
		Timestamp:       at.UTC(),
		Source:          p.name,
		StationID:       stationID,
		EnterococcusMPN: sample.Enterococcus,
		Status:          readings.WaterQualityStatus(strings.ToLower(sample.Status)),
		Notes:           sample.Notes,
	}, nil
}

// discoverStation picks the monitoring station closest to the site.
func (p *BeachWatchProvider) discoverStation(ctx context.Context) (string, error) {
	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, p.baseURL+"/stations", nil)
	})
	if err != nil {
		return "", err
	}

	var stations []beachStation
	if err := decodeJSON(resp, &stations); err != nil {
		return "", err
	}
	if len(stations) == 0 {
		return "", readings.ErrNoData
	}

	best := stations[0]
	bestDist := readings.HaversineMiles(p.site, readings.Coordinates{Lat: best.Latitude, Lon: best.Longitude})
	for _, st := range stations[1:] {
		dist := readings.HaversineMiles(p.site, readings.Coordinates{Lat: st.Latitude, Lon: st.Longitude})
		if dist < bestDist {
			best, bestDist = st, dist
		}
	}
	return best.ID, nil
}
