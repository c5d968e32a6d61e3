package services

import (
	"context"
	"time"

	"bambu.printjobs/internal/core/logger"
	"bambu.printjobs/internal/core/ports"
)

const defaultWatchInterval = 10 * time.Second

// JobWatcher re-extracts the job list on a fixed interval and pushes every
// snapshot to its sinks. Snapshots are never compared with earlier ones.
type JobWatcher struct {
	jobs     *JobService
	interval time.Duration
	sinks    []ports.SnapshotSink
}

func NewJobWatcher(jobs *JobService, interval time.Duration, sinks ...ports.SnapshotSink) *JobWatcher {
	if interval <= 0 {
		interval = defaultWatchInterval
	}
	return &JobWatcher{
		jobs:     jobs,
		interval: interval,
		sinks:    sinks,
	}
}

// Start blocks until ctx is done.
func (w *JobWatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *JobWatcher) tick(ctx context.Context) {
	jobs, err := w.jobs.ListPrintJobs(ctx)
	if err != nil {
		logger.WarnContext(ctx, "Print job refresh failed", "error", err)
		return
	}
	for _, sink := range w.sinks {
		sink.PushSnapshot(ctx, jobs)
	}
}
