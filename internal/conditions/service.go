package conditions

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/i474232898/swim-conditions/internal/observability"
	"github.com/i474232898/swim-conditions/internal/readings"
	"github.com/i474232898/swim-conditions/internal/scoring"
)

// Gatherer produces one complete reading set with per-source diagnostics.
type Gatherer interface {
	Gather(ctx context.Context) (readings.ReadingSet, map[string]SourceReport, error)
}

// Snapshot is one scored assessment cycle, the unit the store keeps and the
// API serves.
type Snapshot struct {
	ID        string                  `json:"id"`
	Timestamp time.Time               `json:"timestamp"`
	Score     scoring.SwimScore       `json:"score"`
	Readings  readings.ReadingSet     `json:"readings"`
	Sources   map[string]SourceReport `json:"sources"`
}

// SnapshotStore persists the latest snapshot.
type SnapshotStore interface {
	Save(ctx context.Context, snap Snapshot) error
	Latest(ctx context.Context) (Snapshot, error)
}

// Service ties the orchestrator, the scorer, and the snapshot store together.
// Refreshes score with the site's configured tide-phase preference.
type Service struct {
	gatherer Gatherer
	store    SnapshotStore
	pref     scoring.TidePreference
	clock    clockwork.Clock
	log      *slog.Logger
	metrics  *observability.Metrics
}

func NewService(g Gatherer, store SnapshotStore, pref scoring.TidePreference, clock clockwork.Clock, log *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		gatherer: g,
		store:    store,
		pref:     pref,
		clock:    clock,
		log:      log,
		metrics:  metrics,
	}
}

// Refresh runs one full gather-and-score cycle and stores the snapshot. On a
// critical failure nothing is written, so the last good snapshot stays
// served.
func (s *Service) Refresh(ctx context.Context) (Snapshot, error) {
	start := s.clock.Now()

	rs, reports, err := s.gatherer.Gather(ctx)
	if err != nil {
		s.metrics.ObserveRefreshFailure(s.clock.Now().Sub(start))
		s.log.Error("conditions refresh failed", slog.String("error", err.Error()))
		return Snapshot{}, err
	}

	now := s.clock.Now().UTC()
	score := scoring.Compute(rs, s.pref, now)

	snap := Snapshot{
		ID:        uuid.NewString(),
		Timestamp: now,
		Score:     score,
		Readings:  rs,
		Sources:   reports,
	}
	if err := s.store.Save(ctx, snap); err != nil {
		s.metrics.ObserveRefreshFailure(s.clock.Now().Sub(start))
		return Snapshot{}, fmt.Errorf("save snapshot: %w", err)
	}

	s.metrics.ObserveRefreshSuccess(s.clock.Now().Sub(start), score.OverallScore, snap.Timestamp)
	s.log.Info("conditions refreshed",
		slog.Int("overallScore", score.OverallScore),
		slog.String("rating", string(score.Rating)),
		slog.Int("warnings", len(score.Warnings)))
	return snap, nil
}

// Latest returns the most recent stored snapshot.
func (s *Service) Latest(ctx context.Context) (Snapshot, error) {
	return s.store.Latest(ctx)
}

// Preference returns the site's configured tide-phase preference.
func (s *Service) Preference() scoring.TidePreference {
	return s.pref
}

// Rescore recomputes the latest snapshot's score under a caller-supplied tide
// preference. The stored snapshot is untouched and the original timestamp is
// reused, so everything except the tide-and-current factor stays identical.
func (s *Service) Rescore(ctx context.Context, pref scoring.TidePreference) (scoring.SwimScore, error) {
	snap, err := s.store.Latest(ctx)
	if err != nil {
		return scoring.SwimScore{}, err
	}
	return scoring.Compute(snap.Readings, pref, snap.Score.Timestamp), nil
}
