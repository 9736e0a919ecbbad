package sweeper

import (
	"context"
	"time"

	"session-service/internal/logger"
	"session-service/internal/metrics"

	"github.com/robfig/cron/v3"
)

// Purger reclaims expired-but-present rows. *session.SQLStore satisfies it.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Sweeper periodically reclaims storage for expired sessions. The store
// never reaps on its own: rows past their expiration stay invisible to reads
// until this worker removes them or a later set overwrites them.
type Sweeper struct {
	purger   Purger
	schedule string
	cron     *cron.Cron
}

func New(purger Purger, schedule string) *Sweeper {
	return &Sweeper{
		purger:   purger,
		schedule: schedule,
		cron:     cron.New(),
	}
}

// Start registers the sweep job and starts the scheduler. The schedule is a
// standard 5-field cron expression.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.run); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *Sweeper) Stop() {
	s.cron.Stop()
}

func (s *Sweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	purged, err := s.purger.PurgeExpired(ctx)
	if err != nil {
		logger.Error("session sweep failed", map[string]any{
			"error": err.Error(),
		})
		return
	}

	metrics.SessionsPurged.Add(float64(purged))
	logger.Info("session sweep complete", map[string]any{
		"purged": purged,
	})
}
