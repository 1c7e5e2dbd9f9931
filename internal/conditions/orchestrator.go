package conditions

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/i474232898/swim-conditions/internal/dams"
	"github.com/i474232898/swim-conditions/internal/observability"
	"github.com/i474232898/swim-conditions/internal/readings"
)

// outcome is the settled result of one source lookup.
type outcome[T any] struct {
	value   T
	err     error
	ok      bool
	elapsed time.Duration
}

// settle runs one lookup under its own timeout so a slow source can never
// delay its siblings.
func settle[T any](ctx context.Context, timeout time.Duration, fetch func(context.Context) (T, error)) outcome[T] {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	v, err := fetch(ctx)
	return outcome[T]{value: v, err: err, ok: err == nil, elapsed: time.Since(start)}
}

// OrchestratorConfig carries the site-specific knobs for a gather.
type OrchestratorConfig struct {
	Site             readings.Coordinates
	DamStations      []dams.Station
	OverflowRadiusMi float64
	LookupTimeout    time.Duration
}

// Orchestrator fans out to every configured source, applies the fallback and
// merge rules, and hands the scorer a complete reading set.
type Orchestrator struct {
	sources  Sources
	site     readings.Coordinates
	stations []dams.Station

	overflowRadiusMi float64
	lookupTimeout    time.Duration

	clock   clockwork.Clock
	log     *slog.Logger
	metrics *observability.Metrics
}

func NewOrchestrator(sources Sources, cfg OrchestratorConfig, clock clockwork.Clock, log *slog.Logger, metrics *observability.Metrics) *Orchestrator {
	if cfg.LookupTimeout <= 0 {
		cfg.LookupTimeout = 10 * time.Second
	}
	if cfg.OverflowRadiusMi <= 0 {
		cfg.OverflowRadiusMi = 5
	}
	return &Orchestrator{
		sources:          sources,
		site:             cfg.Site,
		stations:         cfg.DamStations,
		overflowRadiusMi: cfg.OverflowRadiusMi,
		lookupTimeout:    cfg.LookupTimeout,
		clock:            clock,
		log:              log,
		metrics:          metrics,
	}
}

// Gather issues all source lookups concurrently, waits for every one to
// settle, and merges the results. The returned report carries one entry per
// attempted source. The error is a *CriticalFailure when no tide reading
// could be obtained; every other degradation is absorbed by fallback values.
func (o *Orchestrator) Gather(ctx context.Context) (readings.ReadingSet, map[string]SourceReport, error) {
	reports := make(map[string]SourceReport)

	if o.sources.Tide == nil {
		return readings.ReadingSet{}, reports, &CriticalFailure{Reason: "no tide source configured", Sources: reports}
	}

	var (
		wg sync.WaitGroup

		tideOut      outcome[readings.TidePrediction]
		currentOut   outcome[readings.CurrentReading]
		weatherOut   outcome[readings.WeatherReading]
		windOut      outcome[readings.WeatherReading]
		waveOut      outcome[readings.WaveReading]
		waveBakOut   outcome[readings.WaveReading]
		waveBakTried bool
		qualityOut   outcome[readings.WaterQualityReading]
		overflowOut  outcome[[]readings.OverflowEvent]
		damOut       outcome[[]readings.DamFlowSample]
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		tideOut = settle(ctx, o.lookupTimeout, o.sources.Tide.Fetch)
	}()

	if p := o.sources.Current; p != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			currentOut = settle(ctx, o.lookupTimeout, p.Fetch)
		}()
	}
	if p := o.sources.Weather; p != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			weatherOut = settle(ctx, o.lookupTimeout, p.Fetch)
		}()
	}
	if p := o.sources.Wind; p != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			windOut = settle(ctx, o.lookupTimeout, p.Fetch)
		}()
	}
	if p := o.sources.WaterQuality; p != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			qualityOut = settle(ctx, o.lookupTimeout, p.Fetch)
		}()
	}
	if p := o.sources.Overflows; p != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			overflowOut = settle(ctx, o.lookupTimeout, p.Fetch)
		}()
	}
	if p := o.sources.DamFlows; p != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			damOut = settle(ctx, o.lookupTimeout, p.Fetch)
		}()
	}

	// Wave chain: the primary model once, then the buoy once. No further
	// retries beyond that single fallback step.
	if o.sources.Waves != nil || o.sources.WaveBackup != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if p := o.sources.Waves; p != nil {
				waveOut = settle(ctx, o.lookupTimeout, p.Fetch)
				if waveOut.ok {
					return
				}
			}
			if p := o.sources.WaveBackup; p != nil {
				waveBakTried = true
				waveBakOut = settle(ctx, o.lookupTimeout, p.Fetch)
			}
		}()
	}

	wg.Wait()

	o.report(reports, o.sources.Tide.Name(), tideOut.err, tideOut.elapsed)
	if o.sources.Current != nil {
		o.report(reports, o.sources.Current.Name(), currentOut.err, currentOut.elapsed)
	}
	if o.sources.Weather != nil {
		o.report(reports, o.sources.Weather.Name(), weatherOut.err, weatherOut.elapsed)
	}
	if o.sources.Wind != nil {
		o.report(reports, o.sources.Wind.Name(), windOut.err, windOut.elapsed)
	}
	if o.sources.Waves != nil {
		o.report(reports, o.sources.Waves.Name(), waveOut.err, waveOut.elapsed)
	}
	if waveBakTried {
		o.report(reports, o.sources.WaveBackup.Name(), waveBakOut.err, waveBakOut.elapsed)
	}
	if o.sources.WaterQuality != nil {
		o.report(reports, o.sources.WaterQuality.Name(), qualityOut.err, qualityOut.elapsed)
	}
	if o.sources.Overflows != nil {
		o.report(reports, o.sources.Overflows.Name(), overflowOut.err, overflowOut.elapsed)
	}
	if o.sources.DamFlows != nil {
		o.report(reports, o.sources.DamFlows.Name(), damOut.err, damOut.elapsed)
	}

	if !tideOut.ok {
		failure := &CriticalFailure{Reason: "tide data unavailable", Sources: reports}
		o.log.Error("gather aborted", slog.String("error", failure.Error()))
		return readings.ReadingSet{}, reports, failure
	}

	now := o.clock.Now().UTC()
	rs := readings.ReadingSet{Tide: tideOut.value}

	if currentOut.ok {
		rs.Current = currentOut.value
	} else {
		rs.Current = readings.DeriveCurrent(rs.Tide, o.site)
	}

	switch {
	case weatherOut.ok && windOut.ok:
		rs.Weather = readings.MergeWind(weatherOut.value, windOut.value)
	case weatherOut.ok:
		rs.Weather = weatherOut.value
	case windOut.ok:
		rs.Weather = windOut.value
	default:
		rs.Weather = readings.FallbackWeather(now)
	}

	switch {
	case waveOut.ok:
		rs.Waves = waveOut.value
	case waveBakOut.ok:
		rs.Waves = waveBakOut.value
	default:
		rs.Waves = readings.FallbackWave(now)
	}

	if qualityOut.ok {
		rs.WaterQuality = qualityOut.value
	} else {
		rs.WaterQuality = readings.FallbackWaterQuality(now)
	}

	if overflowOut.ok {
		rs.Overflows = o.nearbyOverflows(overflowOut.value)
	}

	if damOut.ok {
		agg := dams.Aggregate(o.stations, damOut.value, now)
		agg.Source = o.sources.DamFlows.Name()
		rs.DamReleases = &agg
	}

	return rs, reports, nil
}

// report classifies a settled lookup, records it, and logs degradations.
func (o *Orchestrator) report(reports map[string]SourceReport, name string, err error, elapsed time.Duration) {
	rep := SourceReport{Status: SourceOK}
	switch {
	case err == nil:
	case errors.Is(err, readings.ErrNoData):
		rep.Status = SourceMissing
	default:
		rep.Status = SourceErrored
		rep.Error = err.Error()
	}
	reports[name] = rep
	o.metrics.ObserveSourceFetch(name, string(rep.Status), elapsed)

	switch rep.Status {
	case SourceMissing:
		o.log.Debug("source returned no data", slog.String("source", name))
	case SourceErrored:
		o.log.Warn("source lookup failed", slog.String("source", name), slog.String("error", rep.Error))
	}
}

// nearbyOverflows keeps events within the configured radius of the swim site
// and stamps each with its distance.
func (o *Orchestrator) nearbyOverflows(events []readings.OverflowEvent) []readings.OverflowEvent {
	kept := make([]readings.OverflowEvent, 0, len(events))
	for _, ev := range events {
		ev.DistanceMi = readings.HaversineMiles(o.site, ev.Location)
		if ev.DistanceMi <= o.overflowRadiusMi {
			kept = append(kept, ev)
		}
	}
	return kept
}
