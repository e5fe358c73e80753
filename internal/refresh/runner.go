// Package refresh runs periodic work, such as re-syncing the task snapshot,
// until its context is cancelled.
package refresh

import (
	"context"
	"log/slog"
	"time"
)

// Task is one unit of periodic work.
type Task func(ctx context.Context) error

// Runner invokes a Task immediately and then once per Interval.
type Runner struct {
	Name     string
	Interval time.Duration
	Task     Task
	Logger   *slog.Logger
}

// Run blocks until ctx is cancelled. Task errors are logged and never stop
// the loop; a tick that arrives while the task is still running is dropped.
func (r *Runner) Run(ctx context.Context) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if r.Interval <= 0 || r.Task == nil {
		logger.Warn("refresh runner not started", "name", r.Name, "interval", r.Interval)
		return
	}

	r.runOnce(ctx, logger)

	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("refresh runner stopped", "name", r.Name)
			return
		case <-ticker.C:
			r.runOnce(ctx, logger)
		}
	}
}

func (r *Runner) runOnce(ctx context.Context, logger *slog.Logger) {
	if ctx.Err() != nil {
		return
	}
	if err := r.Task(ctx); err != nil && ctx.Err() == nil {
		logger.Error("refresh task failed", "name", r.Name, "error", err)
	}
}
