package dams

import (
	"sort"
	"time"

	"github.com/i474232898/swim-conditions/internal/readings"
)

// Station identifies an upstream gauge included in the release aggregate.
// The configured order is preserved in the output.
type Station struct {
	ID   string `json:"id" yaml:"id" validate:"required"`
	Name string `json:"name" yaml:"name" validate:"required"`
}

// combinedPoint is the summed flow across all stations at one exact
// observation time.
type combinedPoint struct {
	ts   time.Time
	flow float64
}

// Aggregate merges per-station gauge series into a single release picture.
// Stations with no samples stay listed at zero, station latests are summed
// as-is even when their observation times differ by a few minutes, and the
// result is always usable: an empty input yields a zero aggregate, never an
// error.
func Aggregate(stations []Station, samples []readings.DamFlowSample, now time.Time) readings.DamReleaseAggregate {
	byStation := make(map[string][]readings.DamFlowSample, len(stations))
	for _, s := range samples {
		byStation[s.StationID] = append(byStation[s.StationID], s)
	}

	agg := readings.DamReleaseAggregate{
		Stations: make([]readings.DamStationSummary, 0, len(stations)),
	}

	var newest time.Time
	for _, st := range stations {
		summary := readings.DamStationSummary{StationID: st.ID, StationName: st.Name}

		var sum float64
		for _, s := range byStation[st.ID] {
			sum += s.FlowCFS
			if s.FlowCFS > summary.Peak48hCFS {
				summary.Peak48hCFS = s.FlowCFS
			}
			if s.Timestamp.After(summary.LatestAt) {
				summary.LatestAt = s.Timestamp
				summary.LatestCFS = s.FlowCFS
			}
		}
		if n := len(byStation[st.ID]); n > 0 {
			summary.Avg48hCFS = sum / float64(n)
		}

		if summary.LatestAt.After(newest) {
			newest = summary.LatestAt
		}
		agg.TotalCFS += summary.LatestCFS
		agg.Stations = append(agg.Stations, summary)
	}

	if agg.TotalCFS > 0 {
		for i := range agg.Stations {
			agg.Stations[i].PercentOfTotal = agg.Stations[i].LatestCFS / agg.TotalCFS * 100
		}
	}

	combined := combineByTimestamp(samples)
	agg.SampleCount = len(combined)

	var sum48, sum24 float64
	var n24 int
	cutoff := now.Add(-24 * time.Hour)
	for _, p := range combined {
		sum48 += p.flow
		if p.ts.After(cutoff) {
			sum24 += p.flow
			n24++
		}
		if p.flow > agg.Peak48hCFS {
			agg.Peak48hCFS = p.flow
			agg.PeakAt = p.ts
		}
	}
	if len(combined) > 0 {
		agg.Avg48hCFS = sum48 / float64(len(combined))
	}
	if n24 > 0 {
		agg.Avg24hCFS = sum24 / float64(n24)
	}

	agg.Trend = trend(combined)
	agg.Level = ClassifyLevel(agg.TotalCFS)

	if newest.IsZero() {
		newest = now
	}
	agg.Timestamp = newest

	return agg
}

// combineByTimestamp sums flows across stations at each exact observation
// time. Gauges report on synchronized 15-minute marks, so exact matching
// pairs them; a stray unaligned sample simply forms its own point. Keys are
// UnixNano because time.Time equality is stricter than instant equality.
func combineByTimestamp(samples []readings.DamFlowSample) []combinedPoint {
	sums := make(map[int64]combinedPoint, len(samples))
	for _, s := range samples {
		key := s.Timestamp.UnixNano()
		p := sums[key]
		p.ts = s.Timestamp
		p.flow += s.FlowCFS
		sums[key] = p
	}

	points := make([]combinedPoint, 0, len(sums))
	for _, p := range sums {
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].ts.Before(points[j].ts) })
	return points
}

// Trend compares the mean of the first and last window of the combined
// series. Window size scales with series length so short series never
// compare overlapping halves.
const (
	trendMaxWindow     = 12
	trendRiseThreshold = 1.15
	trendFallThreshold = 0.85
)

func trend(points []combinedPoint) readings.TrendDirection {
	n := len(points) / 4
	if n > trendMaxWindow {
		n = trendMaxWindow
	}
	if n == 0 {
		return readings.TrendStable
	}

	var oldSum, newSum float64
	for _, p := range points[:n] {
		oldSum += p.flow
	}
	for _, p := range points[len(points)-n:] {
		newSum += p.flow
	}
	oldMean := oldSum / float64(n)
	newMean := newSum / float64(n)

	switch {
	case oldMean == 0 && newMean > 0:
		return readings.TrendIncreasing
	case newMean > oldMean*trendRiseThreshold:
		return readings.TrendIncreasing
	case newMean < oldMean*trendFallThreshold:
		return readings.TrendDecreasing
	default:
		return readings.TrendStable
	}
}
