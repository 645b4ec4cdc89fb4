// Package scheduler runs the periodic maintenance jobs: purging expired
// session progress and flushing the judge's inference cache.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// ProgressPurger removes persisted session records older than the cutoff.
type ProgressPurger interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// CachePersister flushes in-memory verdicts to durable storage.
type CachePersister interface {
	Persist(ctx context.Context) error
}

// ReviewCounter reports how many reviews are due across all users.
type ReviewCounter interface {
	CountAllDue(ctx context.Context) (int64, error)
}

type Scheduler struct {
	scheduler *gocron.Scheduler
	progress  ProgressPurger
	cache     CachePersister
	reviews   ReviewCounter
	ttl       time.Duration
	logger    *slog.Logger
}

func New(progress ProgressPurger, cache CachePersister, reviews ReviewCounter, ttl time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		progress:  progress,
		cache:     cache,
		reviews:   reviews,
		ttl:       ttl,
		logger:    logger,
	}
}

// Start registers the jobs and runs them asynchronously.
func (s *Scheduler) Start() {
	s.scheduler.Every(1).Hour().Do(s.purgeExpiredProgress)
	s.scheduler.Every(10).Minutes().Do(s.persistInferenceCache)
	s.scheduler.Every(1).Day().At("06:00").Do(s.logDueReviewCount)
	s.scheduler.StartAsync()
}

func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) purgeExpiredProgress() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-s.ttl)
	removed, err := s.progress.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Error("Failed to purge expired exercise progress", "error", err)
		return
	}
	if removed > 0 {
		s.logger.Info("Purged expired exercise progress", "removed", removed, "cutoff", cutoff)
	}
}

func (s *Scheduler) persistInferenceCache() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := s.cache.Persist(ctx); err != nil {
		s.logger.Error("Failed to persist inference cache", "error", err)
	}
}

func (s *Scheduler) logDueReviewCount() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	due, err := s.reviews.CountAllDue(ctx)
	if err != nil {
		s.logger.Error("Failed to count due reviews", "error", err)
		return
	}
	s.logger.Info("Due reviews across all users", "due", due)
}
