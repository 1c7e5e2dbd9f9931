package readings

import "time"

// ReleaseLevel classifies an aggregate upstream release volume.
type ReleaseLevel string

const (
	ReleaseLow      ReleaseLevel = "low"
	ReleaseModerate ReleaseLevel = "moderate"
	ReleaseElevated ReleaseLevel = "elevated"
	ReleaseHigh     ReleaseLevel = "high"
	ReleaseExtreme  ReleaseLevel = "extreme"
)

// TrendDirection describes how combined flow has moved across the series.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// DamFlowSample is one gauge observation from an upstream monitoring station.
type DamFlowSample struct {
	StationID   string    `json:"stationId"`
	StationName string    `json:"stationName"`
	Timestamp   time.Time `json:"timestamp"`
	FlowCFS     float64   `json:"flowCfs"`
}

// DamStationSummary is the per-station view inside an aggregate.
type DamStationSummary struct {
	StationID      string    `json:"stationId"`
	StationName    string    `json:"stationName"`
	LatestCFS      float64   `json:"latestCfs"`
	LatestAt       time.Time `json:"latestAt"`
	Avg48hCFS      float64   `json:"avg48hCfs"`
	Peak48hCFS     float64   `json:"peak48hCfs"`
	PercentOfTotal float64   `json:"percentOfTotal"`
}

// DamReleaseAggregate is the merged release picture across all monitored
// upstream stations. TotalCFS sums each station's own latest sample even when
// their timestamps differ, so it can pair observations taken minutes apart.
type DamReleaseAggregate struct {
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`

	Stations []DamStationSummary `json:"stations"`

	TotalCFS    float64        `json:"totalCfs"`
	Avg24hCFS   float64        `json:"avg24hCfs"`
	Avg48hCFS   float64        `json:"avg48hCfs"`
	Peak48hCFS  float64        `json:"peak48hCfs"`
	PeakAt      time.Time      `json:"peakAt"`
	SampleCount int            `json:"sampleCount"`
	Trend       TrendDirection `json:"trend"`
	Level       ReleaseLevel   `json:"level"`
}
