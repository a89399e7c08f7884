package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Visitors idle this long are dropped from the rate limiter.
const limiterIdleTimeout = 10 * time.Minute

func (s *server) scheduleJobs(ctx context.Context) (*cron.Cron, error) {
	c := cron.New()

	if _, err := c.AddFunc(s.cfg.MetricsCron, func() {
		s.monitor.Collect(ctx)
	}); err != nil {
		return nil, fmt.Errorf("schedule metrics collection %q: %w", s.cfg.MetricsCron, err)
	}

	if _, err := c.AddFunc(s.cfg.SessionPurgeCron, func() {
		purged, err := s.auth.PurgeSessions(ctx)
		if err != nil {
			slog.Warn("Session purge failed", "error", err)
		}
		dropped := s.limiter.Cleanup(limiterIdleTimeout)
		if purged > 0 || dropped > 0 {
			slog.Info("Expired state purged", "sessions", purged, "visitors", dropped)
		}
	}); err != nil {
		return nil, fmt.Errorf("schedule session purge %q: %w", s.cfg.SessionPurgeCron, err)
	}

	return c, nil
}
