package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/donaldgifford/product-search/internal/metrics"
)

// Scheduler runs idle-session eviction and snapshot pruning on a schedule.
type Scheduler struct {
	cron   *cron.Cron
	engine *Engine
	log    *slog.Logger

	evictionEntryID cron.EntryID
	pruneEntryID    cron.EntryID
}

// NewScheduler creates a new Scheduler for eng. A zero pruneInterval
// disables pruning.
func NewScheduler(
	eng *Engine,
	evictInterval time.Duration,
	pruneInterval time.Duration,
	log *slog.Logger,
) (*Scheduler, error) {
	c := cron.New()

	s := &Scheduler{
		cron:   c,
		engine: eng,
		log:    log,
	}

	var err error
	s.evictionEntryID, err = c.AddFunc("@every "+evictInterval.String(), s.runEviction)
	if err != nil {
		return nil, err
	}

	if pruneInterval > 0 && eng.HasStore() {
		s.pruneEntryID, err = c.AddFunc("@every "+pruneInterval.String(), s.runPrune)
		if err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Start begins running scheduled tasks.
func (s *Scheduler) Start() {
	s.log.Info("scheduler started")
	s.cron.Start()
	s.SyncNextRunTimestamps()
}

// Stop gracefully stops the scheduler, waiting for running jobs to finish.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

// SyncNextRunTimestamps exports the next run time of each job as a gauge.
func (s *Scheduler) SyncNextRunTimestamps() {
	if next := s.cron.Entry(s.evictionEntryID).Next; !next.IsZero() {
		metrics.SchedulerNextEvictionTimestamp.Set(float64(next.Unix()))
	}
	if s.pruneEntryID == 0 {
		return
	}
	if next := s.cron.Entry(s.pruneEntryID).Next; !next.IsZero() {
		metrics.SchedulerNextPruneTimestamp.Set(float64(next.Unix()))
	}
}

func (s *Scheduler) runEviction() {
	defer s.SyncNextRunTimestamps()
	n := s.engine.EvictIdle(context.Background())
	if n > 0 {
		s.log.Info("scheduled eviction finished", "evicted", n)
	}
}

func (s *Scheduler) runPrune() {
	defer s.SyncNextRunTimestamps()
	s.log.Info("scheduled snapshot prune starting")
	n, err := s.engine.PruneSnapshots(context.Background())
	if err != nil {
		s.log.Error("scheduled snapshot prune failed", "error", err)
		return
	}
	s.log.Info("scheduled snapshot prune finished", "pruned", n)
}
