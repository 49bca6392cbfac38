package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"complaint_notification_engine/internal/infra/database"
)

// RetentionScheduler periodically prunes persisted engine state whose scope
// has not been touched within the retention TTL, so abandoned identity
// namespaces do not accumulate forever.
type RetentionScheduler struct {
	cronEngine *cron.Cron
	store      *database.PostgresStateStore
	logger     *logrus.Logger
	cronSpec   string
	ttl        time.Duration
}

func NewRetentionScheduler(
	store *database.PostgresStateStore,
	logger *logrus.Logger,
	cronSpec string, // e.g. "0 4 * * *" (4:00 AM daily)
	ttl time.Duration,
) *RetentionScheduler {
	return &RetentionScheduler{
		cronEngine: cron.New(cron.WithLocation(time.Local)), // Use server's local time for cron
		store:      store,
		logger:     logger,
		cronSpec:   cronSpec,
		ttl:        ttl,
	}
}

func (s *RetentionScheduler) Start() error {
	s.logger.Info("Starting state retention scheduler...")

	_, err := s.cronEngine.AddFunc(s.cronSpec, func() {
		s.logger.Debug("Cron job triggered for state retention sweep.")
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()

		cutoff := time.Now().Add(-s.ttl)
		removed, err := s.store.DeleteStale(ctx, cutoff)
		if err != nil {
			s.logger.WithError(err).Error("State retention sweep failed.")
			return
		}
		if removed > 0 {
			s.logger.WithField("removed", removed).Info("State retention sweep pruned stale scopes.")
		}
	})
	if err != nil {
		return err
	}

	s.cronEngine.Start()
	s.logger.Info("State retention scheduler started.")
	return nil
}

func (s *RetentionScheduler) Stop() {
	s.logger.Info("Stopping state retention scheduler...")
	ctx := s.cronEngine.Stop() // Stops scheduling new runs, waits for running jobs.
	<-ctx.Done()               // Wait for graceful shutdown
	s.logger.Info("State retention scheduler gracefully stopped.")
}
