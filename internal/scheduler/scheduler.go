// Package scheduler runs the periodic maintenance sweeps: expiring
// stale orders, completing elapsed ones, advancing screening statuses
// and settling rental contracts.  One goroutine per job, one ticker
// per goroutine; a panicking or erroring run is contained to that tick.
package scheduler

import (
    "context"
    "sync"
    "time"

    "go.uber.org/zap"

    "github.com/iliyamo/cinema-order-engine/internal/logger"
    "github.com/iliyamo/cinema-order-engine/internal/metrics"
)

// JobFunc is one sweep iteration.  It returns how many rows it
// processed so runs can be logged meaningfully.
type JobFunc func(ctx context.Context) (int, error)

// Job pairs a sweep with its cadence.
type Job struct {
    Name     string
    Interval time.Duration
    Run      JobFunc
}

// Scheduler owns the background jobs.  Start launches them, Stop waits
// for in-flight runs to finish.
type Scheduler struct {
    jobs   []Job
    log    *zap.Logger
    cancel context.CancelFunc
    wg     sync.WaitGroup
}

// New builds a Scheduler over the given jobs.  Jobs with a
// non-positive interval or a nil func are rejected up front rather
// than silently skipped.
func New(jobs ...Job) *Scheduler {
    for _, j := range jobs {
        if j.Name == "" || j.Interval <= 0 || j.Run == nil {
            panic("scheduler: invalid job " + j.Name)
        }
    }
    return &Scheduler{jobs: jobs, log: logger.WithComponent("scheduler")}
}

// Start launches one goroutine per job.  Each job runs once
// immediately, then on every tick until the parent context is
// cancelled or Stop is called.
func (s *Scheduler) Start(parent context.Context) {
    ctx, cancel := context.WithCancel(parent)
    s.cancel = cancel
    for _, job := range s.jobs {
        s.wg.Add(1)
        go s.loop(ctx, job)
    }
    s.log.Info("scheduler started", zap.Int("jobs", len(s.jobs)))
}

// Stop cancels all jobs and blocks until their current runs return.
func (s *Scheduler) Stop() {
    if s.cancel == nil {
        return
    }
    s.cancel()
    s.wg.Wait()
    s.log.Info("scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, job Job) {
    defer s.wg.Done()

    ticker := time.NewTicker(job.Interval)
    defer ticker.Stop()

    s.runOnce(ctx, job)
    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
            s.runOnce(ctx, job)
        }
    }
}

func (s *Scheduler) runOnce(ctx context.Context, job Job) {
    defer func() {
        if r := recover(); r != nil {
            metrics.SchedulerRunsTotal.WithLabelValues(job.Name, "error").Inc()
            s.log.Error("job panicked", zap.String("job", job.Name), zap.Any("panic", r))
        }
    }()

    n, err := job.Run(ctx)
    if err != nil {
        metrics.SchedulerRunsTotal.WithLabelValues(job.Name, "error").Inc()
        s.log.Error("job run failed", zap.String("job", job.Name), zap.Error(err))
        return
    }
    metrics.SchedulerRunsTotal.WithLabelValues(job.Name, "ok").Inc()
    if n > 0 {
        s.log.Info("job run finished", zap.String("job", job.Name), zap.Int("processed", n))
    }
}
