package dams

import "github.com/i474232898/swim-conditions/internal/readings"

// Release level boundaries in combined cubic feet per second. Comparisons are
// strictly greater-than, so a total sitting exactly on a boundary takes the
// lower level.
const (
	extremeCFS  = 100000.0
	highCFS     = 80000.0
	elevatedCFS = 50000.0
	moderateCFS = 30000.0
)

// ClassifyLevel maps a combined flow volume onto a release level.
func ClassifyLevel(flowCFS float64) readings.ReleaseLevel {
	switch {
	case flowCFS > extremeCFS:
		return readings.ReleaseExtreme
	case flowCFS > highCFS:
		return readings.ReleaseHigh
	case flowCFS > elevatedCFS:
		return readings.ReleaseElevated
	case flowCFS > moderateCFS:
		return readings.ReleaseModerate
	default:
		return readings.ReleaseLow
	}
}
