package conditions

import (
	"context"

	"github.com/i474232898/swim-conditions/internal/readings"
)

// One small interface per reading kind. Providers own their transport,
// resilience, and payload parsing; the orchestrator only sees typed readings.
// A provider returns readings.ErrNoData (possibly wrapped) when its upstream
// answered but carried nothing for the site.

type TideProvider interface {
	Name() string
	Fetch(ctx context.Context) (readings.TidePrediction, error)
}

type CurrentProvider interface {
	Name() string
	Fetch(ctx context.Context) (readings.CurrentReading, error)
}

type WeatherProvider interface {
	Name() string
	Fetch(ctx context.Context) (readings.WeatherReading, error)
}

type WaveProvider interface {
	Name() string
	Fetch(ctx context.Context) (readings.WaveReading, error)
}

type WaterQualityProvider interface {
	Name() string
	Fetch(ctx context.Context) (readings.WaterQualityReading, error)
}

type OverflowProvider interface {
	Name() string
	Fetch(ctx context.Context) ([]readings.OverflowEvent, error)
}

type DamFlowProvider interface {
	Name() string
	Fetch(ctx context.Context) ([]readings.DamFlowSample, error)
}

// Sources bundles every provider the orchestrator fans out to. Tide is
// mandatory; every other slot may be nil, which reads as "source not
// configured" and follows the same fallback path as a failed lookup.
type Sources struct {
	Tide         TideProvider
	Current      CurrentProvider
	Weather      WeatherProvider // carries temperature, visibility, condition
	Wind         WeatherProvider // preferred for wind speed, direction, gust
	Waves        WaveProvider
	WaveBackup   WaveProvider // buoy, tried once when the primary fails
	WaterQuality WaterQualityProvider
	Overflows    OverflowProvider
	DamFlows     DamFlowProvider
}
