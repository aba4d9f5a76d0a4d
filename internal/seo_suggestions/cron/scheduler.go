package cronjob

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/blogcraftai/blogcraft-backend/internal/logging"
)

// NightlySpec runs at 00:00:00 every day.
const NightlySpec = "0 0 0 * * *"

// Purger deletes suggestion history older than the retention window.
type Purger interface {
	PurgeHistory(ctx context.Context, retainFor time.Duration) (int64, error)
}

type Scheduler struct {
	purger    Purger
	retainFor time.Duration
	cron      *cron.Cron
}

func NewScheduler(purger Purger, retainFor time.Duration) *Scheduler {
	return &Scheduler{
		purger:    purger,
		retainFor: retainFor,
		cron:      cron.New(cron.WithSeconds()),
	}
}

// Start registers the nightly retention job and starts the cron runner.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(NightlySpec, func() {
		_, _ = s.RunOnce(context.Background())
	}); err != nil {
		return err
	}

	logging.Log.Infof("cron scheduler started (history retention %s, nightly at 00:00)", s.retainFor)
	s.cron.Start()
	return nil
}

// Stop halts scheduling and waits for a running job to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// RunOnce purges expired history immediately.
func (s *Scheduler) RunOnce(ctx context.Context) (int64, error) {
	logger := logging.NewLogger(ctx)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	n, err := s.purger.PurgeHistory(ctx, s.retainFor)
	if err != nil {
		logger.LogError("seo_history_purge", err)
		return 0, err
	}
	logger.LogInfof("seo_history_purge", "purged %d suggestion runs older than %s", n, s.retainFor)
	return n, nil
}
