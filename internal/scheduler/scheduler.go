package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/swim-conditions/internal/conditions"
)

const (
	defaultInterval   = 10 * time.Minute
	defaultRunTimeout = 2 * time.Minute
)

// Scheduler runs the gather-and-score cycle on a fixed interval.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *conditions.Service
	interval  time.Duration
	timeout   time.Duration
	log       *slog.Logger
}

// New creates a Scheduler. Interval and timeout fall back to defaults when
// non-positive.
func New(service *conditions.Service, interval, timeout time.Duration, log *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = defaultInterval
	}
	if timeout <= 0 {
		timeout = defaultRunTimeout
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		interval:  interval,
		timeout:   timeout,
		log:       log,
	}
}

// Start schedules the refresh job and starts the underlying scheduler. The
// first run fires immediately so the API has a snapshot soon after boot.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(s.interval).StartImmediately().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		snap, err := s.service.Refresh(ctx)
		if err != nil {
			s.log.Error("scheduled refresh failed", "error", err)
			return
		}
		s.log.Debug("scheduled refresh stored snapshot", "snapshotId", snap.ID)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future runs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
