package scoring

import "github.com/i474232898/swim-conditions/internal/readings"

// TidePreference weights each tide phase 0-100. Swimmers who like riding the
// flood can raise it; the default favors slack water.
type TidePreference struct {
	Slack int `json:"slack" yaml:"slack" validate:"min=0,max=100"`
	Flood int `json:"flood" yaml:"flood" validate:"min=0,max=100"`
	Ebb   int `json:"ebb" yaml:"ebb" validate:"min=0,max=100"`
}

// DefaultTidePreference returns the standard phase weighting.
func DefaultTidePreference() TidePreference {
	return TidePreference{Slack: 100, Flood: 85, Ebb: 85}
}

// Weight returns the preference weight for a phase. Unknown phases fall back
// to the slack weight.
func (p TidePreference) Weight(phase readings.TidePhase) int {
	switch phase {
	case readings.PhaseFlood:
		return p.Flood
	case readings.PhaseEbb:
		return p.Ebb
	default:
		return p.Slack
	}
}
