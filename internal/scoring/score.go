package scoring

import (
	"fmt"
	"math"
	"time"

	"github.com/i474232898/swim-conditions/internal/common"
	"github.com/i474232898/swim-conditions/internal/dams"
	"github.com/i474232898/swim-conditions/internal/readings"
)

// Factor weights in percent. They must sum to exactly 100; the overall score
// is the weighted integer average and nothing else.
const (
	WeightWaterQuality = 30
	WeightTideCurrent  = 25
	WeightWaves        = 20
	WeightWeather      = 15
	WeightDamReleases  = 10
)

// Compute derives the full swim score from one gathered reading set. It is a
// pure function: identical readings, preference, and timestamp always produce
// an identical score.
func Compute(rs readings.ReadingSet, pref TidePreference, now time.Time) SwimScore {
	factors := Factors{
		WaterQuality: scoreWaterQuality(rs.WaterQuality, rs.Overflows, now),
		TideCurrent:  scoreTideCurrent(rs.Tide, rs.Current, pref),
		Waves:        scoreWaves(rs.Waves),
		Weather:      scoreWeather(rs.Weather),
		DamReleases:  scoreDamReleases(rs.DamReleases),
	}

	weighted := factors.WaterQuality.Score*WeightWaterQuality +
		factors.TideCurrent.Score*WeightTideCurrent +
		factors.Waves.Score*WeightWaves +
		factors.Weather.Score*WeightWeather +
		factors.DamReleases.Score*WeightDamReleases
	overall := int(math.Round(float64(weighted) / 100))

	score := SwimScore{
		Timestamp:    now,
		OverallScore: overall,
		Rating:       rating(overall),
		Factors:      factors,
	}
	score.Recommendations, score.Warnings = Advise(factors, overall)
	return score
}

func rating(score int) Rating {
	switch {
	case score >= 80:
		return RatingExcellent
	case score >= 60:
		return RatingGood
	case score >= 40:
		return RatingFair
	case score >= 20:
		return RatingPoor
	default:
		return RatingDangerous
	}
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

// Enterococcus bands in MPN/100ml, following the beach program's posting
// thresholds.
const (
	enteroSafeMPN    = 104.0
	enteroPostedMPN  = 500.0
	enteroWarningMPN = 1000.0
)

// overflowCautionWindow is how long a resolved sewage overflow keeps the
// water-quality score capped.
const overflowCautionWindow = 72 * time.Hour

var statusScores = map[readings.WaterQualityStatus]int{
	readings.QualitySafe:      100,
	readings.QualityAdvisory:  70,
	readings.QualityWarning:   30,
	readings.QualityDangerous: 0,
}

func scoreWaterQuality(q readings.WaterQualityReading, overflows []readings.OverflowEvent, now time.Time) WaterQualityFactor {
	f := WaterQualityFactor{EnterococcusMPN: q.EnterococcusMPN}

	switch {
	case q.Source == readings.SourceUnavailable:
		f.Score, f.Status = 50, readings.QualityAdvisory
		f.Issues = append(f.Issues, "water quality data unavailable")
	case q.EnterococcusMPN != nil:
		mpn := *q.EnterococcusMPN
		switch {
		case mpn <= enteroSafeMPN:
			f.Score, f.Status = 100, readings.QualitySafe
		case mpn <= enteroPostedMPN:
			f.Score, f.Status = 70, readings.QualityAdvisory
			f.Issues = append(f.Issues, fmt.Sprintf("elevated bacteria count (%.0f MPN/100ml)", mpn))
		case mpn <= enteroWarningMPN:
			f.Score, f.Status = 30, readings.QualityWarning
			f.Issues = append(f.Issues, fmt.Sprintf("high bacteria count (%.0f MPN/100ml)", mpn))
		default:
			f.Score, f.Status = 0, readings.QualityDangerous
			f.Issues = append(f.Issues, fmt.Sprintf("very high bacteria count (%.0f MPN/100ml)", mpn))
		}
	default:
		// Sample without a count: trust the program's own classification.
		if s, ok := statusScores[q.Status]; ok {
			f.Score, f.Status = s, q.Status
		} else {
			f.Score, f.Status = 50, readings.QualityAdvisory
			f.Issues = append(f.Issues, "water quality report carried no classification")
		}
	}

	var unresolved, recent int
	for _, ev := range overflows {
		switch {
		case !ev.Resolved:
			unresolved++
		case now.Sub(ev.ReportedAt) <= overflowCautionWindow:
			recent++
		}
	}
	f.ActiveOverflows = unresolved
	f.RecentOverflows = recent

	switch {
	case unresolved > 0:
		f.Score = min(f.Score, 20)
		f.Status = readings.QualityDangerous
		f.Issues = append(f.Issues, fmt.Sprintf("%d active sewage overflow(s) near the swim area", unresolved))
	case recent > 0:
		f.Score = min(f.Score, 60)
		f.Status = f.Status.AtLeast(readings.QualityAdvisory)
		f.Issues = append(f.Issues, "sewage overflow reported nearby in the last 3 days")
	}

	f.Score = clampScore(f.Score)
	return f
}

// Water movement thresholds.
const (
	slackSpeedKnots  = 0.5
	moderateRateFtHr = 1.0
	strongRateFtHr   = 2.0
)

// Current-speed caps, applied in order with a running minimum so the most
// restrictive matching rule decides.
var currentSpeedCaps = []struct {
	aboveKnots float64
	cap        int
}{
	{aboveKnots: 2.0, cap: 20},
	{aboveKnots: 1.5, cap: 40},
	{aboveKnots: 1.0, cap: 65},
}

func scoreTideCurrent(tide readings.TidePrediction, current readings.CurrentReading, pref TidePreference) TideCurrentFactor {
	f := TideCurrentFactor{
		Phase:        tide.Phase,
		SpeedKnots:   current.SpeedKnots,
		TideHeightFt: tide.HeightFt,
	}

	if tide.Source == "" || tide.Source == readings.SourceUnavailable {
		f.Score = 50
		f.Issues = append(f.Issues, "tide data unavailable")
		return f
	}

	score := float64(pref.Weight(tide.Phase))

	switch rate := math.Abs(tide.ChangeRateFtPerHour); {
	case rate < moderateRateFtHr:
		// Gentle exchange, full phase score.
	case rate < strongRateFtHr:
		score = math.Min(score*0.7, 70)
		f.Issues = append(f.Issues, "tide moving quickly")
	default:
		score = math.Min(score*0.4, 40)
		f.Issues = append(f.Issues, "tide moving very quickly")
	}

	for _, rule := range currentSpeedCaps {
		if current.SpeedKnots > rule.aboveKnots && score > float64(rule.cap) {
			score = float64(rule.cap)
		}
	}
	if current.SpeedKnots > 1.0 {
		f.Issues = append(f.Issues, fmt.Sprintf("strong current (%.1f kt)", current.SpeedKnots))
	}

	f.Favorable = tide.Phase == readings.PhaseSlack || current.SpeedKnots < slackSpeedKnots
	f.Score = clampScore(int(math.Round(score)))
	return f
}

func scoreWaves(w readings.WaveReading) WaveFactor {
	f := WaveFactor{HeightFt: w.HeightFt}

	if w.Source == readings.SourceUnavailable || (w.Source == "" && w.HeightFt == 0) {
		f.Score, f.State = 50, SeaModerate
		f.Issues = append(f.Issues, "wave data unavailable")
		return f
	}

	switch {
	case w.HeightFt < 2:
		f.Score, f.State = 100, SeaCalm
	case w.HeightFt < 3:
		f.Score, f.State = 85, SeaCalm
	case w.HeightFt < 5:
		f.Score, f.State = 60, SeaModerate
		f.Issues = append(f.Issues, fmt.Sprintf("choppy water (%.1f ft waves)", w.HeightFt))
	case w.HeightFt < 8:
		f.Score, f.State = 30, SeaRough
		f.Issues = append(f.Issues, fmt.Sprintf("rough water (%.1f ft waves)", w.HeightFt))
	default:
		f.Score, f.State = 10, SeaDangerous
		f.Issues = append(f.Issues, fmt.Sprintf("dangerous surf (%.1f ft waves)", w.HeightFt))
	}
	return f
}

// rainKeywords match condition strings that imply runoff or storm hazard.
var rainKeywords = []string{"rain", "storm", "thunder", "shower", "squall", "drizzle"}

// rainScoreCap limits the weather score whenever precipitation shows up in
// the condition text.
const rainScoreCap = 40

func scoreWeather(w readings.WeatherReading) WeatherFactor {
	f := WeatherFactor{WindSpeedMph: w.WindSpeedMph, Condition: w.Condition}

	if w.Source == readings.SourceUnavailable {
		f.Score, f.Band = 50, WindModerate
		f.Issues = append(f.Issues, "weather data unavailable")
		return f
	}

	switch {
	case w.WindSpeedMph < 5:
		f.Score, f.Band = 100, WindCalm
	case w.WindSpeedMph < 10:
		f.Score, f.Band = 95, WindLight
	case w.WindSpeedMph < 15:
		f.Score, f.Band = 80, WindModerate
	case w.WindSpeedMph < 20:
		f.Score, f.Band = 60, WindFresh
		f.Issues = append(f.Issues, fmt.Sprintf("breezy (%.0f mph wind)", w.WindSpeedMph))
	case w.WindSpeedMph < 25:
		f.Score, f.Band = 35, WindStrong
		f.Issues = append(f.Issues, fmt.Sprintf("strong wind (%.0f mph)", w.WindSpeedMph))
	default:
		f.Score, f.Band = 15, WindSevere
		f.Issues = append(f.Issues, fmt.Sprintf("severe wind (%.0f mph)", w.WindSpeedMph))
	}

	if common.ContainsAnyFold(w.Condition, rainKeywords...) {
		if f.Score > rainScoreCap {
			f.Score = rainScoreCap
		}
		f.Issues = append(f.Issues, "rain or storm conditions reported")
	}
	return f
}

// Scoring flow blends recency-weighted averages against a discounted peak so
// a short release spike still registers after the average settles.
const (
	recentAvgWeight = 0.6
	olderAvgWeight  = 0.4
	peakDiscount    = 0.8
)

var releaseScores = map[readings.ReleaseLevel]int{
	readings.ReleaseLow:      100,
	readings.ReleaseModerate: 75,
	readings.ReleaseElevated: 65,
	readings.ReleaseHigh:     30,
	readings.ReleaseExtreme:  10,
}

func scoreDamReleases(agg *readings.DamReleaseAggregate) DamFactor {
	if agg == nil {
		return DamFactor{
			Score:  75,
			Level:  readings.ReleaseLow,
			Issues: []string{"dam release data unavailable"},
		}
	}

	flow := math.Max(recentAvgWeight*agg.Avg24hCFS+olderAvgWeight*agg.Avg48hCFS, peakDiscount*agg.Peak48hCFS)
	level := dams.ClassifyLevel(flow)

	f := DamFactor{
		Score:          releaseScores[level],
		Level:          level,
		ScoringFlowCFS: flow,
	}

	var top readings.DamStationSummary
	for _, st := range agg.Stations {
		if st.LatestCFS > top.LatestCFS {
			top = st
		}
	}
	if top.StationID != "" {
		f.TopContributor = top.StationName
	}

	switch level {
	case readings.ReleaseElevated:
		f.Issues = append(f.Issues, "elevated upstream dam releases")
	case readings.ReleaseHigh, readings.ReleaseExtreme:
		f.Issues = append(f.Issues, fmt.Sprintf("heavy upstream dam releases (%.0f CFS)", flow))
	}
	return f
}
