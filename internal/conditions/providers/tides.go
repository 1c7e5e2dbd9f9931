package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sony/gobreaker"

	"github.com/i474232898/swim-conditions/internal/readings"
)

const (
	coopsBaseURL    = "https://api.tidesandcurrents.noaa.gov/api/prod/datagetter"
	coopsTimeLayout = "2006-01-02 15:04"
	coopsDateLayout = "20060102 15:04"

	// Predicted rates below this magnitude count as slack water.
	slackRateFtPerHour = 0.25
	// A reading this close to a predicted extreme reports the high/low state.
	extremeWindow = 30 * time.Minute
)

type coopsPrediction struct {
	Time   string `json:"t"`
	Height string `json:"v"`
	Type   string `json:"type,omitempty"`
}

type coopsPredictionsResponse struct {
	Predictions []coopsPrediction `json:"predictions"`
	Error       *coopsError       `json:"error,omitempty"`
}

type coopsError struct {
	Message string `json:"message"`
}

type tidePoint struct {
	at     time.Time
	height float64
}

// NoaaTidesProvider reads tide predictions from the NOAA CO-OPS datagetter
// for a single station. Each fetch combines a six-minute series around the
// current time with the next day of high/low extremes.
type NoaaTidesProvider struct {
	name    string
	baseURL string
	station string
	clock   clockwork.Clock
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewNoaaTidesProvider(client *http.Client, station string, clock clockwork.Clock) *NoaaTidesProvider {
	return &NoaaTidesProvider{
		name:    "noaa-tides",
		baseURL: coopsBaseURL,
		station: station,
		clock:   clock,
		httpCfg: defaultHTTPConfig(client),
		circuit: newBreaker("noaa-tides"),
	}
}

func (p *NoaaTidesProvider) Name() string { return p.name }

func (p *NoaaTidesProvider) Fetch(ctx context.Context) (readings.TidePrediction, error) {
	now := p.clock.Now().UTC()

	series, err := p.fetchSeries(ctx, now.Add(-time.Hour), now.Add(time.Hour), "6")
	if err != nil {
		return readings.TidePrediction{}, fmt.Errorf("tide series: %w", err)
	}
	if len(series) == 0 {
		return readings.TidePrediction{}, readings.ErrNoData
	}

	// Start an hour back so an extreme that just passed still informs the
	// high/low state.
	extremes, err := p.fetchExtremes(ctx, now.Add(-time.Hour), now.Add(24*time.Hour))
	if err != nil {
		return readings.TidePrediction{}, fmt.Errorf("tide extremes: %w", err)
	}

	height, rate := interpolateSeries(series, now)
	pred := readings.TidePrediction{
		Timestamp:           now,
		Source:              p.name,
		HeightFt:            height,
		ChangeRateFtPerHour: rate,
		Phase:               phaseForRate(rate),
		State:               stateNearExtremes(extremes, now),
	}
	for i := range extremes {
		ev := extremes[i]
		if !ev.Timestamp.After(now) {
			continue
		}
		if ev.Type == readings.TideHigh && pred.NextHigh == nil {
			pred.NextHigh = &extremes[i]
		}
		if ev.Type == readings.TideLow && pred.NextLow == nil {
			pred.NextLow = &extremes[i]
		}
	}
	return pred, nil
}

func (p *NoaaTidesProvider) fetchSeries(ctx context.Context, begin, end time.Time, interval string) ([]tidePoint, error) {
	preds, err := p.fetchPredictions(ctx, begin, end, interval)
	if err != nil {
		return nil, err
	}
	points := make([]tidePoint, 0, len(preds))
	for _, raw := range preds {
		at, err := time.Parse(coopsTimeLayout, raw.Time)
		if err != nil {
			return nil, fmt.Errorf("parse prediction time %q: %w", raw.Time, err)
		}
		height, err := strconv.ParseFloat(raw.Height, 64)
		if err != nil {
			return nil, fmt.Errorf("parse prediction height %q: %w", raw.Height, err)
		}
		points = append(points, tidePoint{at: at, height: height})
	}
	return points, nil
}

func (p *NoaaTidesProvider) fetchExtremes(ctx context.Context, begin, end time.Time) ([]readings.TideEvent, error) {
	preds, err := p.fetchPredictions(ctx, begin, end, "hilo")
	if err != nil {
		return nil, err
	}
	events := make([]readings.TideEvent, 0, len(preds))
	for _, raw := range preds {
		at, err := time.Parse(coopsTimeLayout, raw.Time)
		if err != nil {
			return nil, fmt.Errorf("parse extreme time %q: %w", raw.Time, err)
		}
		height, err := strconv.ParseFloat(raw.Height, 64)
		if err != nil {
			return nil, fmt.Errorf("parse extreme height %q: %w", raw.Height, err)
		}
		state := readings.TideNormal
		switch raw.Type {
		case "H":
			state = readings.TideHigh
		case "L":
			state = readings.TideLow
		}
		events = append(events, readings.TideEvent{Timestamp: at, HeightFt: height, Type: state})
	}
	return events, nil
}

func (p *NoaaTidesProvider) fetchPredictions(ctx context.Context, begin, end time.Time, interval string) ([]coopsPrediction, error) {
	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, func() (*http.Request, error) {
		values := url.Values{}
		values.Set("product", "predictions")
		values.Set("application", "swim-conditions")
		values.Set("station", p.station)
		values.Set("begin_date", begin.Format(coopsDateLayout))
		values.Set("end_date", end.Format(coopsDateLayout))
		values.Set("datum", "MLLW")
		values.Set("time_zone", "gmt")
		values.Set("units", "english")
		values.Set("interval", interval)
		values.Set("format", "json")
		return http.NewRequest(http.MethodGet, p.baseURL+"?"+values.Encode(), nil)
	})
	if err != nil {
		return nil, err
	}

	var payload coopsPredictionsResponse
	if err := decodeJSON(resp, &payload); err != nil {
		return nil, err
	}
	if payload.Error != nil {
		return nil, fmt.Errorf("coops error: %s", payload.Error.Message)
	}
	return payload.Predictions, nil
}

// interpolateSeries returns the height at the series point nearest to now and
// the rate of change across that point's neighbours.
func interpolateSeries(series []tidePoint, now time.Time) (height, rateFtPerHour float64) {
	idx := 0
	for i, pt := range series {
		if pt.at.After(now) {
			break
		}
		idx = i
	}

	prev, next := idx, idx
	if idx > 0 {
		prev = idx - 1
	}
	if idx < len(series)-1 {
		next = idx + 1
	}

	height = series[idx].height
	hours := series[next].at.Sub(series[prev].at).Hours()
	if hours > 0 {
		rateFtPerHour = (series[next].height - series[prev].height) / hours
	}
	return height, rateFtPerHour
}

func phaseForRate(rateFtPerHour float64) readings.TidePhase {
	switch {
	case rateFtPerHour > slackRateFtPerHour:
		return readings.PhaseFlood
	case rateFtPerHour < -slackRateFtPerHour:
		return readings.PhaseEbb
	default:
		return readings.PhaseSlack
	}
}

func stateNearExtremes(extremes []readings.TideEvent, now time.Time) readings.TideState {
	for _, ev := range extremes {
		delta := ev.Timestamp.Sub(now)
		if delta < 0 {
			delta = -delta
		}
		if delta <= extremeWindow && ev.Type != readings.TideNormal {
			return ev.Type
		}
	}
	return readings.TideNormal
}
