package providers

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sony/gobreaker"

	"github.com/i474232898/swim-conditions/internal/readings"
)

type coopsCurrentPrediction struct {
	Time          string  `json:"Time"`
	VelocityMajor float64 `json:"Velocity_Major"`
	MeanFloodDir  float64 `json:"meanFloodDir"`
	MeanEbbDir    float64 `json:"meanEbbDir"`
}

type coopsCurrentsResponse struct {
	CurrentPredictions struct {
		Predictions []coopsCurrentPrediction `json:"cp"`
	} `json:"current_predictions"`
	Error *coopsError `json:"error,omitempty"`
}

// NoaaCurrentsProvider reads current predictions from the NOAA CO-OPS
// datagetter for a single current station. Positive major-axis velocity is
// flood, negative is ebb.
type NoaaCurrentsProvider struct {
	name     string
	baseURL  string
	station  string
	position readings.Coordinates
	clock    clockwork.Clock
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
}

func NewNoaaCurrentsProvider(client *http.Client, station string, position readings.Coordinates, clock clockwork.Clock) *NoaaCurrentsProvider {
	return &NoaaCurrentsProvider{
		name:     "noaa-currents",
		baseURL:  coopsBaseURL,
		station:  station,
		position: position,
		clock:    clock,
		httpCfg:  defaultHTTPConfig(client),
		circuit:  newBreaker("noaa-currents"),
	}
}

func (p *NoaaCurrentsProvider) Name() string { return p.name }

func (p *NoaaCurrentsProvider) Fetch(ctx context.Context) (readings.CurrentReading, error) {
	now := p.clock.Now().UTC()

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, func() (*http.Request, error) {
		values := url.Values{}
		values.Set("product", "currents_predictions")
		values.Set("application", "swim-conditions")
		values.Set("station", p.station)
		values.Set("begin_date", now.Add(-time.Hour).Format(coopsDateLayout))
		values.Set("end_date", now.Add(time.Hour).Format(coopsDateLayout))
		values.Set("time_zone", "gmt")
		values.Set("units", "english")
		values.Set("interval", "30")
		values.Set("format", "json")
		return http.NewRequest(http.MethodGet, p.baseURL+"?"+values.Encode(), nil)
	})
	if err != nil {
		return readings.CurrentReading{}, err
	}

	var payload coopsCurrentsResponse
	if err := decodeJSON(resp, &payload); err != nil {
		return readings.CurrentReading{}, err
	}
	if payload.Error != nil {
		return readings.CurrentReading{}, fmt.Errorf("coops error: %s", payload.Error.Message)
	}
	preds := payload.CurrentPredictions.Predictions
	if len(preds) == 0 {
		return readings.CurrentReading{}, readings.ErrNoData
	}

	nearest, err := nearestCurrentPrediction(preds, now)
	if err != nil {
		return readings.CurrentReading{}, err
	}

	direction := nearest.pred.MeanFloodDir
	if nearest.pred.VelocityMajor < 0 {
		direction = nearest.pred.MeanEbbDir
	}
	return readings.CurrentReading{
		Timestamp:    nearest.at,
		Source:       p.name,
		SpeedKnots:   math.Abs(nearest.pred.VelocityMajor),
		DirectionDeg: direction,
		Position:     p.position,
	}, nil
}

type timedCurrentPrediction struct {
	at   time.Time
	pred coopsCurrentPrediction
}

func nearestCurrentPrediction(preds []coopsCurrentPrediction, now time.Time) (timedCurrentPrediction, error) {
	var best timedCurrentPrediction
	bestDelta := time.Duration(math.MaxInt64)
	for _, raw := range preds {
		at, err := time.Parse(coopsTimeLayout, raw.Time)
		if err != nil {
			return timedCurrentPrediction{}, fmt.Errorf("parse current time %q: %w", raw.Time, err)
		}
		delta := at.Sub(now)
		if delta < 0 {
			delta = -delta
		}
		if delta < bestDelta {
			bestDelta = delta
			best = timedCurrentPrediction{at: at, pred: raw}
		}
	}
	return best, nil
}
