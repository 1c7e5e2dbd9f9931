package readings

import (
	"fmt"
	"math"
	"time"
)

// Documented fallback values, used when a source is unreachable so the scorer
// always sees a complete ReadingSet. Each carries SourceUnavailable so the
// factor scorers can recognize it and score neutrally.
const (
	fallbackTemperatureF = 60.0
	fallbackWindMph      = 10.0
	fallbackVisibilityMi = 10.0
)

// FallbackWeather returns the neutral weather reading used when no weather
// provider responded.
func FallbackWeather(now time.Time) WeatherReading {
	return WeatherReading{
		Timestamp:    now,
		Source:       SourceUnavailable,
		TemperatureF: fallbackTemperatureF,
		WindSpeedMph: fallbackWindMph,
		VisibilityMi: fallbackVisibilityMi,
		Condition:    "Unknown",
	}
}

// FallbackWave returns the placeholder wave reading used when neither the
// wave model nor the buoy responded. Height stays zero; the scorer keys off
// the source tag, not the height, so this does not read as flat calm.
func FallbackWave(now time.Time) WaveReading {
	return WaveReading{
		Timestamp: now,
		Source:    SourceUnavailable,
	}
}

// FallbackWaterQuality returns the cautious water-quality reading used when
// the monitoring program could not be reached. Advisory, not safe: missing
// bacteria data is not evidence of clean water.
func FallbackWaterQuality(now time.Time) WaterQualityReading {
	return WaterQualityReading{
		Timestamp: now,
		Source:    SourceUnavailable,
		Status:    QualityAdvisory,
		Notes:     "water quality data unavailable, assuming advisory",
	}
}

// MergeWind overlays the wind fields of windSrc onto base and tags the result
// with both provider names. Used when a dedicated provider supplies better
// wind observations than the one carrying temperature and visibility.
func MergeWind(base, windSrc WeatherReading) WeatherReading {
	merged := base
	merged.WindSpeedMph = windSrc.WindSpeedMph
	merged.WindDirectionDeg = windSrc.WindDirectionDeg
	merged.GustMph = windSrc.GustMph
	merged.Source = fmt.Sprintf("%s+%s", base.Source, windSrc.Source)
	return merged
}

// Flood tide pushes into the cove from the east, ebb drains west. Rough but
// serviceable for a single fixed site.
const (
	floodDirectionDeg = 90.0
	ebbDirectionDeg   = 270.0
)

// tideRateToKnots converts a tide height change rate (ft/hr) into an estimated
// surface current speed. Empirical ratio for shallow nearshore water.
const tideRateToKnots = 0.4

// DeriveCurrent estimates the surface current from the tide when no current
// station covers the site. Speed scales with how fast the water level is
// moving; direction follows the phase.
func DeriveCurrent(tide TidePrediction, pos Coordinates) CurrentReading {
	reading := CurrentReading{
		Timestamp:  tide.Timestamp,
		Source:     SourceCalculated,
		SpeedKnots: math.Abs(tide.ChangeRateFtPerHour) * tideRateToKnots,
		Position:   pos,
	}
	switch tide.Phase {
	case PhaseFlood:
		reading.DirectionDeg = floodDirectionDeg
	case PhaseEbb:
		reading.DirectionDeg = ebbDirectionDeg
	}
	return reading
}
