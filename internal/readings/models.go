package readings

import (
	"time"
)

// Source tag values shared by all reading kinds. Every reading carries the name
// of the provider that produced it; these two mark readings the fusion layer
// filled in itself.
const (
	// SourceUnavailable tags a documented fallback value used when a provider
	// returned nothing usable.
	SourceUnavailable = "unavailable"

	// SourceCalculated tags a reading derived from another reading rather than
	// fetched, e.g. a current estimate computed from the tide change rate.
	SourceCalculated = "calculated"
)

// Coordinates is a WGS-84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// TideState describes where the water level sits relative to the extremes.
type TideState string

const (
	TideHigh   TideState = "high"
	TideLow    TideState = "low"
	TideNormal TideState = "normal"
)

// TidePhase describes the direction of tidal water movement.
type TidePhase string

const (
	PhaseFlood TidePhase = "flood"
	PhaseEbb   TidePhase = "ebb"
	PhaseSlack TidePhase = "slack"
)

// TideEvent is a predicted tide extreme (a coming high or low water).
type TideEvent struct {
	Timestamp time.Time `json:"timestamp"`
	HeightFt  float64   `json:"heightFt"`
	Type      TideState `json:"type"`
}

// TidePrediction is the tide picture at the site for a moment in time.
// It is the one mandatory reading: scoring aborts without it.
type TidePrediction struct {
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`

	HeightFt float64   `json:"heightFt"`
	State    TideState `json:"state"`
	Phase    TidePhase `json:"phase"`

	// ChangeRateFtPerHour is signed: positive while flooding, negative while ebbing.
	ChangeRateFtPerHour float64 `json:"changeRateFtPerHour"`

	NextHigh *TideEvent `json:"nextHigh,omitempty"`
	NextLow  *TideEvent `json:"nextLow,omitempty"`
}

// CurrentReading is the water current at the site, either measured by a station
// or derived from the tide (see DeriveCurrent). The source tag tells them apart.
type CurrentReading struct {
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`

	SpeedKnots   float64     `json:"speedKnots"`
	DirectionDeg float64     `json:"directionDegrees"`
	Position     Coordinates `json:"position"`
}

// WeatherReading is surface weather at the site. Wind fields may come from a
// different provider than the rest after a field-level merge; the source tag is
// then a compound of both provider names.
type WeatherReading struct {
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`

	TemperatureF     float64  `json:"temperatureF"`
	WindSpeedMph     float64  `json:"windSpeedMph"`
	WindDirectionDeg float64  `json:"windDirectionDegrees"`
	GustMph          *float64 `json:"gustMph,omitempty"`
	VisibilityMi     float64  `json:"visibilityMi"`
	Condition        string   `json:"condition"`
	PressureMb       *float64 `json:"pressureMb,omitempty"`
	HumidityPct      *float64 `json:"humidityPercent,omitempty"`
}

// WaveReading is the sea state at the site.
type WaveReading struct {
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`

	HeightFt          float64  `json:"heightFt"`
	SwellPeriodSec    *float64 `json:"swellPeriodSec,omitempty"`
	SwellDirectionDeg *float64 `json:"swellDirectionDegrees,omitempty"`
}

// WaterQualityStatus classifies a bacterial sample or the water-quality factor.
// Ordering matters: safe < advisory < warning < dangerous.
type WaterQualityStatus string

const (
	QualitySafe      WaterQualityStatus = "safe"
	QualityAdvisory  WaterQualityStatus = "advisory"
	QualityWarning   WaterQualityStatus = "warning"
	QualityDangerous WaterQualityStatus = "dangerous"
)

var qualityRank = map[WaterQualityStatus]int{
	QualitySafe:      0,
	QualityAdvisory:  1,
	QualityWarning:   2,
	QualityDangerous: 3,
}

// AtLeast returns the more severe of s and floor.
func (s WaterQualityStatus) AtLeast(floor WaterQualityStatus) WaterQualityStatus {
	if qualityRank[s] < qualityRank[floor] {
		return floor
	}
	return s
}

// WaterQualityReading is the latest bacterial sample from the monitoring
// program covering the site. EnterococcusMPN is nil when the program published
// a status without a count.
type WaterQualityReading struct {
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`

	EnterococcusMPN *float64           `json:"enterococcusMPN,omitempty"`
	Status          WaterQualityStatus `json:"status"`
	Notes           string             `json:"notes,omitempty"`
	StationID       string             `json:"stationId,omitempty"`
}

// OverflowEvent is a reported sanitary sewer overflow near the site.
type OverflowEvent struct {
	ID         string      `json:"id"`
	ReportedAt time.Time   `json:"reportedAt"`
	Resolved   bool        `json:"resolved"`
	ResolvedAt *time.Time  `json:"resolvedAt,omitempty"`
	DistanceMi float64     `json:"distanceMi"`
	VolumeGal  float64     `json:"volumeGallons"`
	Location   Coordinates `json:"location"`
}

// ReadingSet is the complete, fallback-filled input to the scorer. Every field
// is populated after a successful gather; only DamReleases may be nil, meaning
// the dam feed was unreachable (distinct from a confirmed all-zero flow).
type ReadingSet struct {
	Tide         TidePrediction       `json:"tide"`
	Current      CurrentReading       `json:"current"`
	Weather      WeatherReading       `json:"weather"`
	Waves        WaveReading          `json:"waves"`
	WaterQuality WaterQualityReading  `json:"waterQuality"`
	Overflows    []OverflowEvent      `json:"overflowEvents"`
	DamReleases  *DamReleaseAggregate `json:"damReleases,omitempty"`
}
