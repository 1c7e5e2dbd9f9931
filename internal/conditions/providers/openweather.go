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

// OpenWeatherProvider reads current conditions from OpenWeatherMap for a
// fixed coordinate. It backs the wind fields of the merged weather reading.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	site    readings.Coordinates
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *http.Client, apiKey string, site readings.Coordinates) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name:    "openweather",
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5/weather",
		site:    site,
		httpCfg: defaultHTTPConfig(client),
		circuit: newBreaker("openweather"),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

func (p *OpenWeatherProvider) Fetch(ctx context.Context) (readings.WeatherReading, error) {
	if p.apiKey == "" {
		return readings.WeatherReading{}, fmt.Errorf("openweather api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("appid", p.apiKey)
		values.Set("units", "imperial")
		values.Set("lat", fmt.Sprintf("%f", p.site.Lat))
		values.Set("lon", fmt.Sprintf("%f", p.site.Lon))

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return readings.WeatherReading{}, err
	}

	var payload struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp     float64 `json:"temp"`
			Humidity float64 `json:"humidity"`
			Pressure float64 `json:"pressure"`
		} `json:"main"`
		Wind struct {
			Speed float64  `json:"speed"`
			Deg   float64  `json:"deg"`
			Gust  *float64 `json:"gust"`
		} `json:"wind"`
		Visibility float64 `json:"visibility"`
		Weather    []struct {
			Main string `json:"main"`
		} `json:"weather"`
	}
	if err := decodeJSON(resp, &payload); err != nil {
		return readings.WeatherReading{}, err
	}

	if payload.Dt == 0 {
		return readings.WeatherReading{}, readings.ErrNoData
	}
	ts := time.Unix(payload.Dt, 0).UTC()

	condition := "Unknown"
	if len(payload.Weather) > 0 {
		condition = payload.Weather[0].Main
	}

	reading := readings.WeatherReading{
		Timestamp:        ts,
		Source:           p.name,
		TemperatureF:     payload.Main.Temp,
		WindSpeedMph:     payload.Wind.Speed,
		WindDirectionDeg: payload.Wind.Deg,
		Condition:        condition,
		VisibilityMi:     defaultVisibilityMi,
	}
	if payload.Visibility > 0 {
		reading.VisibilityMi = payload.Visibility / metersPerMi
	}
	if payload.Wind.Gust != nil {
		gust := *payload.Wind.Gust
		reading.GustMph = &gust
	}
	if payload.Main.Pressure > 0 {
		mb := payload.Main.Pressure
		reading.PressureMb = &mb
	}
	if payload.Main.Humidity > 0 {
		pct := payload.Main.Humidity
		reading.HumidityPct = &pct
	}
	return reading, nil
}
