package ingestion

import (
	"context"
	"log/slog"
	"time"
)

// DirectoryRefresher is the part of Manager the scheduler drives.
type DirectoryRefresher interface {
	RefreshDirectory(ctx context.Context, callerID string) (*RunStats, error)
}

// Scheduler refreshes the agent directory on a fixed interval using the
// service caller's token, so new agents show up without a manual refresh.
type Scheduler struct {
	interval  time.Duration
	callerID  string
	refresher DirectoryRefresher
}

func NewScheduler(interval time.Duration, callerID string, refresher DirectoryRefresher) *Scheduler {
	return &Scheduler{
		interval:  interval,
		callerID:  callerID,
		refresher: refresher,
	}
}

// Start refreshes once immediately, then on every tick until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("[Scheduler] Starting agent directory refresh", "interval", s.interval)

	s.refresh(ctx)

	for {
		select {
		case <-ticker.C:
			s.refresh(ctx)
		case <-ctx.Done():
			slog.Info("[Scheduler] Stopping (context cancelled)")
			return nil
		}
	}
}

// refresh logs failures and waits for the next tick.
func (s *Scheduler) refresh(ctx context.Context) {
	stats, err := s.refresher.RefreshDirectory(ctx, s.callerID)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		slog.Error("[Scheduler] Agent directory refresh failed", "error", err)
		return
	}
	if stats == nil {
		return
	}
	slog.Info("[Scheduler] Agent directory refreshed",
		"run_id", stats.RunID,
		"fetched", stats.Fetched,
		"inserted", stats.Inserted)
}
