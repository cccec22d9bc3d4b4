package scheduler

import (
    "context"
    "errors"
    "sync/atomic"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestJobRunsImmediatelyAndOnTicks(t *testing.T) {
    var runs int64
    s := New(Job{
        Name:     "count",
        Interval: 20 * time.Millisecond,
        Run: func(ctx context.Context) (int, error) {
            atomic.AddInt64(&runs, 1)
            return 1, nil
        },
    })
    s.Start(context.Background())
    time.Sleep(110 * time.Millisecond)
    s.Stop()

    got := atomic.LoadInt64(&runs)
    require.GreaterOrEqual(t, got, int64(3), "expected immediate run plus ticks")
}

func TestFailingJobDoesNotStopOthers(t *testing.T) {
    var good, bad int64
    s := New(
        Job{
            Name:     "bad",
            Interval: 15 * time.Millisecond,
            Run: func(ctx context.Context) (int, error) {
                atomic.AddInt64(&bad, 1)
                return 0, errors.New("storage offline")
            },
        },
        Job{
            Name:     "panicky",
            Interval: 15 * time.Millisecond,
            Run: func(ctx context.Context) (int, error) {
                panic("boom")
            },
        },
        Job{
            Name:     "good",
            Interval: 15 * time.Millisecond,
            Run: func(ctx context.Context) (int, error) {
                atomic.AddInt64(&good, 1)
                return 0, nil
            },
        },
    )
    s.Start(context.Background())
    time.Sleep(80 * time.Millisecond)
    s.Stop()

    assert.GreaterOrEqual(t, atomic.LoadInt64(&bad), int64(2), "failing job keeps rescheduling")
    assert.GreaterOrEqual(t, atomic.LoadInt64(&good), int64(2), "healthy job unaffected")
}

func TestStopWaitsForInFlightRun(t *testing.T) {
    started := make(chan struct{})
    var finished int64
    s := New(Job{
        Name:     "slow",
        Interval: time.Hour,
        Run: func(ctx context.Context) (int, error) {
            close(started)
            time.Sleep(30 * time.Millisecond)
            atomic.StoreInt64(&finished, 1)
            return 0, nil
        },
    })
    s.Start(context.Background())
    <-started
    s.Stop()
    assert.Equal(t, int64(1), atomic.LoadInt64(&finished), "Stop returned before the run finished")
}

func TestStopWithoutStartIsNoop(t *testing.T) {
    s := New(Job{Name: "idle", Interval: time.Second, Run: func(ctx context.Context) (int, error) { return 0, nil }})
    s.Stop()
}

func TestNewRejectsInvalidJob(t *testing.T) {
    assert.Panics(t, func() {
        New(Job{Name: "", Interval: time.Second, Run: func(ctx context.Context) (int, error) { return 0, nil }})
    })
    assert.Panics(t, func() {
        New(Job{Name: "x", Interval: 0, Run: func(ctx context.Context) (int, error) { return 0, nil }})
    })
    assert.Panics(t, func() {
        New(Job{Name: "x", Interval: time.Second})
    })
}
