package sampler

import (
	"sync"
	"time"

	"github.com/stackscope/stackscope/internal/aggregate"
	"github.com/stackscope/stackscope/internal/errorutil"
	"github.com/stackscope/stackscope/internal/timeutil"
)

// Loop is the cooperative trigger strategy: one background goroutine
// that alternates a jittered sleep with a sampling pass.
type Loop struct {
	agg      *aggregate.Aggregator
	interval timeutil.Interval

	mu       sync.Mutex
	started  bool
	stop     chan struct{}
	stopOnce sync.Once
}

func NewLoop(agg *aggregate.Aggregator, interval timeutil.Interval) *Loop {
	if interval == (timeutil.Interval{}) {
		interval = timeutil.DefaultInterval
	}
	return &Loop{
		agg:      agg,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Start spawns the sampling goroutine. It may be called at most once
// per instance and never blocks.
func (l *Loop) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started {
		return errorutil.ErrAlreadyStarted
	}
	l.started = true
	go l.run()
	return nil
}

// Stop signals the sampling goroutine to exit. It is safe to call any
// number of times and does not wait for the goroutine to terminate.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		close(l.stop)
	})
}

func (l *Loop) run() {
	timer := time.NewTimer(l.interval.Next())
	defer timer.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-timer.C:
			l.agg.Sample()
			timer.Reset(l.interval.Next())
		}
	}
}

var _ Sampler = (*Loop)(nil)
