package scoring

import (
	"time"

	"github.com/i474232898/swim-conditions/internal/readings"
)

// Rating buckets the overall score for display.
type Rating string

const (
	RatingExcellent Rating = "excellent"
	RatingGood      Rating = "good"
	RatingFair      Rating = "fair"
	RatingPoor      Rating = "poor"
	RatingDangerous Rating = "dangerous"
)

// SeaState classifies the wave factor.
type SeaState string

const (
	SeaCalm      SeaState = "calm"
	SeaModerate  SeaState = "moderate"
	SeaRough     SeaState = "rough"
	SeaDangerous SeaState = "dangerous"
)

// WindBand classifies the weather factor by wind speed.
type WindBand string

const (
	WindCalm     WindBand = "calm"
	WindLight    WindBand = "light"
	WindModerate WindBand = "moderate"
	WindFresh    WindBand = "fresh"
	WindStrong   WindBand = "strong"
	WindSevere   WindBand = "severe"
)

// WaterQualityFactor scores bacterial safety, including overflow caps.
type WaterQualityFactor struct {
	Score           int                         `json:"score"`
	Status          readings.WaterQualityStatus `json:"status"`
	EnterococcusMPN *float64                    `json:"enterococcusMPN,omitempty"`
	ActiveOverflows int                         `json:"activeOverflows"`
	RecentOverflows int                         `json:"recentOverflows"`
	Issues          []string                    `json:"issues,omitempty"`
}

// TideCurrentFactor scores water movement and echoes the inputs swimmers plan
// around.
type TideCurrentFactor struct {
	Score        int                `json:"score"`
	Phase        readings.TidePhase `json:"phase"`
	SpeedKnots   float64            `json:"currentSpeedKnots"`
	TideHeightFt float64            `json:"tideHeightFt"`
	Favorable    bool               `json:"favorable"`
	Issues       []string           `json:"issues,omitempty"`
}

// WaveFactor scores sea state by wave height.
type WaveFactor struct {
	Score    int      `json:"score"`
	State    SeaState `json:"state"`
	HeightFt float64  `json:"heightFt"`
	Issues   []string `json:"issues,omitempty"`
}

// WeatherFactor scores surface weather, dominated by wind.
type WeatherFactor struct {
	Score        int      `json:"score"`
	Band         WindBand `json:"windBand"`
	WindSpeedMph float64  `json:"windSpeedMph"`
	Condition    string   `json:"condition"`
	Issues       []string `json:"issues,omitempty"`
}

// DamFactor scores upstream reservoir releases as a leading indicator of bay
// current strength.
type DamFactor struct {
	Score          int                   `json:"score"`
	Level          readings.ReleaseLevel `json:"releaseLevel"`
	ScoringFlowCFS float64               `json:"scoringFlowCfs"`
	TopContributor string                `json:"topContributor,omitempty"`
	Issues         []string              `json:"issues,omitempty"`
}

// Factors is the fixed set of five factor variants. Each keeps its own shape
// rather than collapsing into a generic map, so display code never probes for
// fields that may not exist.
type Factors struct {
	WaterQuality WaterQualityFactor `json:"waterQuality"`
	TideCurrent  TideCurrentFactor  `json:"tideAndCurrent"`
	Waves        WaveFactor         `json:"waves"`
	Weather      WeatherFactor      `json:"weather"`
	DamReleases  DamFactor          `json:"damReleases"`
}

// SwimScore is the complete scored assessment for one gather cycle.
type SwimScore struct {
	Timestamp       time.Time `json:"timestamp"`
	OverallScore    int       `json:"overallScore"`
	Rating          Rating    `json:"rating"`
	Factors         Factors   `json:"factors"`
	Recommendations []string  `json:"recommendations"`
	Warnings        []string  `json:"warnings"`
}
