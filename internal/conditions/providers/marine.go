package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/swim-conditions/internal/readings"
)

const (
	openMeteoTimeLayout = "2006-01-02T15:04"
	feetPerMeter        = 3.28084
)

// OpenMeteoMarineProvider reads the current sea state from the Open-Meteo
// marine API for a fixed coordinate. Heights arrive in meters.
type OpenMeteoMarineProvider struct {
	name    string
	baseURL string
	site    readings.Coordinates
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoMarineProvider(client *http.Client, site readings.Coordinates) *OpenMeteoMarineProvider {
	return &OpenMeteoMarineProvider{
		name:    "open-meteo-marine",
		baseURL: "https://marine-api.open-meteo.com/v1/marine",
		site:    site,
		httpCfg: defaultHTTPConfig(client),
		circuit: newBreaker("open-meteo-marine"),
	}
}

func (p *OpenMeteoMarineProvider) Name() string { return p.name }

func (p *OpenMeteoMarineProvider) Fetch(ctx context.Context) (readings.WaveReading, error) {
	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", p.site.Lat))
		values.Set("longitude", fmt.Sprintf("%f", p.site.Lon))
		values.Set("current", "wave_height,wave_period,wave_direction")
		values.Set("timezone", "GMT")
		return http.NewRequest(http.MethodGet, p.baseURL+"?"+values.Encode(), nil)
	})
	if err != nil {
		return readings.WaveReading{}, err
	}

	var payload struct {
		Current struct {
			Time          string   `json:"time"`
			WaveHeight    *float64 `json:"wave_height"`
			WavePeriod    *float64 `json:"wave_period"`
			WaveDirection *float64 `json:"wave_direction"`
		} `json:"current"`
	}
	if err := decodeJSON(resp, &payload); err != nil {
		return readings.WaveReading{}, err
	}
	if payload.Current.Time == "" || payload.Current.WaveHeight == nil {
		return readings.WaveReading{}, readings.ErrNoData
	}

	at, err := time.Parse(openMeteoTimeLayout, payload.Current.Time)
	if err != nil {
		return readings.WaveReading{}, fmt.Errorf("parse marine time %q: %w", payload.Current.Time, err)
	}

	reading := readings.WaveReading{
		Timestamp: at.UTC(),
		Source:    p.name,
		HeightFt:  *payload.Current.WaveHeight * feetPerMeter,
	}
	if payload.Current.WavePeriod != nil {
		sec := *payload.Current.WavePeriod
		reading.SwellPeriodSec = &sec
	}
	if payload.Current.WaveDirection != nil {
		deg := *payload.Current.WaveDirection
		reading.SwellDirectionDeg = &deg
	}
	return reading, nil
}
