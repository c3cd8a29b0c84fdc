// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package snapshot

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Runner regenerates every site. *Generator satisfies it.
type Runner interface {
	GenerateAll(ctx context.Context) ([]Result, error)
}

// Scheduler regenerates all snapshots on a fixed interval.
type Scheduler struct {
	runner   Runner
	interval time.Duration
}

// NewScheduler creates a Scheduler. Run returns immediately when interval
// is not positive.
func NewScheduler(runner Runner, interval time.Duration) *Scheduler {
	return &Scheduler{runner: runner, interval: interval}
}

// Run regenerates snapshots every interval until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.interval <= 0 {
		return nil
	}
	zap.S().Infow("snapshot scheduler started", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zap.S().Infow("snapshot scheduler stopped")
			return nil
		case <-ticker.C:
			results, err := s.runner.GenerateAll(ctx)
			if err != nil {
				zap.S().Errorw("scheduled snapshot failed", "error", err)
				continue
			}
			failed := 0
			for _, r := range results {
				if !r.Success {
					failed++
				}
			}
			zap.S().Infow("scheduled snapshot finished", "sites", len(results), "failed", failed)
		}
	}
}
