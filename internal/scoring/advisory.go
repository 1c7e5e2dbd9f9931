package scoring

import "github.com/i474232898/swim-conditions/internal/readings"

type adviceKind int

const (
	recommendation adviceKind = iota
	warning
)

// adviceRule is one row of the advisory table. Rules are evaluated top to
// bottom and every matching rule contributes its text, so the output order is
// fixed by the table alone.
type adviceRule struct {
	kind adviceKind
	text string
	when func(f Factors, overall int) bool
}

var adviceRules = []adviceRule{
	{
		kind: warning,
		text: "Do not swim: water quality is dangerous",
		when: func(f Factors, _ int) bool { return f.WaterQuality.Status == readings.QualityDangerous },
	},
	{
		kind: warning,
		text: "High bacteria levels: swimming is not recommended",
		when: func(f Factors, _ int) bool { return f.WaterQuality.Status == readings.QualityWarning },
	},
	{
		kind: warning,
		text: "Dangerous surf: stay out of the water",
		when: func(f Factors, _ int) bool { return f.Waves.State == SeaDangerous },
	},
	{
		kind: warning,
		text: "Rough water: experienced open-water swimmers only",
		when: func(f Factors, _ int) bool { return f.Waves.State == SeaRough },
	},
	{
		kind: warning,
		text: "Strong current: stay close to shore and swim with a partner",
		when: func(f Factors, _ int) bool { return f.TideCurrent.SpeedKnots > 1.5 },
	},
	{
		kind: warning,
		text: "High wind: expect chop and difficult sighting",
		when: func(f Factors, _ int) bool { return f.Weather.Band == WindStrong || f.Weather.Band == WindSevere },
	},
	{
		kind: warning,
		text: "Heavy upstream dam releases: expect stronger, colder currents",
		when: func(f Factors, _ int) bool {
			return f.DamReleases.Level == readings.ReleaseHigh || f.DamReleases.Level == readings.ReleaseExtreme
		},
	},
	{
		kind: warning,
		text: "Overall conditions are dangerous today",
		when: func(_ Factors, overall int) bool { return overall < 20 },
	},
	{
		kind: recommendation,
		text: "Slack tide: excellent window for open-water swimming",
		when: func(f Factors, _ int) bool { return f.TideCurrent.Phase == readings.PhaseSlack },
	},
	{
		kind: recommendation,
		text: "Conditions are excellent: enjoy your swim",
		when: func(f Factors, overall int) bool {
			return overall >= 80 && f.TideCurrent.Favorable && f.Waves.State == SeaCalm
		},
	},
	{
		kind: recommendation,
		text: "Good conditions overall: stay aware as the tide turns",
		when: func(_ Factors, overall int) bool { return overall >= 60 && overall < 80 },
	},
	{
		kind: recommendation,
		text: "Water quality is under advisory: avoid swallowing water",
		when: func(f Factors, _ int) bool { return f.WaterQuality.Status == readings.QualityAdvisory },
	},
	{
		kind: recommendation,
		text: "Upstream releases are elevated: expect cooler water",
		when: func(f Factors, _ int) bool { return f.DamReleases.Level == readings.ReleaseElevated },
	},
}

// Advise runs the rule table against the scored factors. Display-only output:
// nothing here feeds back into scoring.
func Advise(f Factors, overall int) (recommendations, warnings []string) {
	recommendations = make([]string, 0, 4)
	warnings = make([]string, 0, 4)

	for _, rule := range adviceRules {
		if !rule.when(f, overall) {
			continue
		}
		switch rule.kind {
		case recommendation:
			recommendations = append(recommendations, rule.text)
		case warning:
			warnings = append(warnings, rule.text)
		}
	}
	return recommendations, warnings
}
