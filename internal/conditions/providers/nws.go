package providers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/swim-conditions/internal/readings"
)

const (
	nwsBaseURL   = "https://api.weather.gov"
	nwsUserAgent = "swim-conditions (https://github.com/i474232898/swim-conditions)"

	kmhPerMph    = 1.609344
	metersPerMi  = 1609.344
	pascalsPerMb = 100.0

	// Reported when the station omits visibility, common on clear days.
	defaultVisibilityMi = 10.0
)

type nwsQuantity struct {
	Value *float64 `json:"value"`
}

type nwsObservationResponse struct {
	Properties struct {
		Timestamp          string      `json:"timestamp"`
		TextDescription    string      `json:"textDescription"`
		Temperature        nwsQuantity `json:"temperature"`
		WindSpeed          nwsQuantity `json:"windSpeed"`
		WindDirection      nwsQuantity `json:"windDirection"`
		WindGust           nwsQuantity `json:"windGust"`
		Visibility         nwsQuantity `json:"visibility"`
		BarometricPressure nwsQuantity `json:"barometricPressure"`
		RelativeHumidity   nwsQuantity `json:"relativeHumidity"`
	} `json:"properties"`
}

// NWSProvider reads the latest observation for a National Weather Service
// station. The API reports SI units, so values are converted on the way in.
type NWSProvider struct {
	name    string
	baseURL string
	station string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewNWSProvider(client *http.Client, station string) *NWSProvider {
	return &NWSProvider{
		name:    "nws",
		baseURL: nwsBaseURL,
		station: station,
		httpCfg: defaultHTTPConfig(client),
		circuit: newBreaker("nws"),
	}
}

func (p *NWSProvider) Name() string { return p.name }

func (p *NWSProvider) Fetch(ctx context.Context) (readings.WeatherReading, error) {
	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/stations/%s/observations/latest", p.baseURL, p.station), nil)
		if err != nil {
			return nil, err
		}
		// api.weather.gov rejects requests without an identifying agent.
		req.Header.Set("User-Agent", nwsUserAgent)
		req.Header.Set("Accept", "application/geo+json")
		return req, nil
	})
	if err != nil {
		return readings.WeatherReading{}, err
	}

	var payload nwsObservationResponse
	if err := decodeJSON(resp, &payload); err != nil {
		return readings.WeatherReading{}, err
	}

	props := payload.Properties
	if props.Temperature.Value == nil && props.WindSpeed.Value == nil {
		return readings.WeatherReading{}, readings.ErrNoData
	}

	at, err := time.Parse(time.RFC3339, props.Timestamp)
	if err != nil {
		return readings.WeatherReading{}, fmt.Errorf("parse observation time %q: %w", props.Timestamp, err)
	}

	reading := readings.WeatherReading{
		Timestamp: at.UTC(),
		Source:    p.name,
		Condition: props.TextDescription,
	}
	if props.Temperature.Value != nil {
		reading.TemperatureF = *props.Temperature.Value*9/5 + 32
	}
	if props.WindSpeed.Value != nil {
		reading.WindSpeedMph = *props.WindSpeed.Value / kmhPerMph
	}
	if props.WindDirection.Value != nil {
		reading.WindDirectionDeg = *props.WindDirection.Value
	}
	if props.WindGust.Value != nil {
		gust := *props.WindGust.Value / kmhPerMph
		reading.GustMph = &gust
	}
	reading.VisibilityMi = defaultVisibilityMi
	if props.Visibility.Value != nil {
		reading.VisibilityMi = *props.Visibility.Value / metersPerMi
	}
	if props.BarometricPressure.Value != nil {
		mb := *props.BarometricPressure.Value / pascalsPerMb
		reading.PressureMb = &mb
	}
	if props.RelativeHumidity.Value != nil {
		pct := *props.RelativeHumidity.Value
		reading.HumidityPct = &pct
	}
	return reading, nil
}
