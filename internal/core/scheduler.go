package core

// scheduler.go provides the background polling loop.
//
// The upstream API has no push or cursor semantics, so the only way to see
// new donations is to re-fetch the full snapshot. The poller runs
// FetchAndReconcile immediately on start and then on every tick. Fetch
// failures are logged and the loop keeps going; a bad cycle reconciles
// nothing and never corrupts stored state.

import (
	"context"
	"log/slog"
	"time"
)

// StartPollScheduler runs the fetch loop until ctx is cancelled.
// It is meant to run in its own goroutine.
func (s *Service) StartPollScheduler(ctx context.Context, interval time.Duration) {
	slog.Info("poll scheduler started", "team_id", s.teamID, "interval", interval)

	s.runPoll(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("poll scheduler stopped")
			return
		case <-ticker.C:
			s.runPoll(ctx)
		}
	}
}

// runPoll performs one fetch-and-reconcile cycle.
func (s *Service) runPoll(ctx context.Context) {
	start := time.Now()

	result, err := s.FetchAndReconcile(ctx)
	if err != nil {
		slog.Error("poll failed", "error", err)
		return
	}

	if result.Inserted > 0 {
		slog.Info("poll reconciled new donations",
			"fetched", result.Fetched,
			"inserted", result.Inserted,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	} else {
		slog.Debug("poll found no new donations",
			"fetched", result.Fetched,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
