//go:build linux

package sampler

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"

	"github.com/stackscope/stackscope/internal/aggregate"
	"github.com/stackscope/stackscope/internal/timeutil"
)

// IntervalTimer is the interrupt trigger strategy: a one-shot
// setitimer(2) whose expiry signal is drained by a goroutine that
// samples and re-arms. The timer class maps to the kernel clock and
// delivery signal; only one IntervalTimer per class may exist in the
// process at a time.
type IntervalTimer struct {
	agg      *aggregate.Aggregator
	interval timeutil.Interval
	class    TimerClass
	which    unix.ItimerWhich
	sig      os.Signal
	ch       chan os.Signal

	mu       sync.Mutex
	started  bool
	stopped  bool
	stopping atomic.Bool
}

func NewIntervalTimer(agg *aggregate.Aggregator, class TimerClass, interval timeutil.Interval) (*IntervalTimer, error) {
	var which unix.ItimerWhich
	var sig os.Signal
	switch class {
	case Real:
		which, sig = unix.ItimerReal, syscall.SIGALRM
	case Virtual:
		which, sig = unix.ItimerVirtual, syscall.SIGVTALRM
	case Prof:
		which, sig = unix.ItimerProf, syscall.SIGPROF
	default:
		return nil, fmt.Errorf("unknown timer class %d", int(class))
	}
	if interval == (timeutil.Interval{}) {
		interval = timeutil.DefaultInterval
	}
	if err := acquireTimerSlot(class); err != nil {
		return nil, err
	}
	return &IntervalTimer{
		agg:      agg,
		interval: interval,
		class:    class,
		which:    which,
		sig:      sig,
	}, nil
}

// Start registers the signal handler and arms the timer for one
// jittered interval. It is a no-op when already started or stopped.
func (t *IntervalTimer) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started || t.stopped {
		return nil
	}
	t.started = true
	t.ch = make(chan os.Signal, 1)
	signal.Notify(t.ch, t.sig)
	go t.drain()
	return t.arm()
}

// Stop disarms the timer, restores the previous signal disposition and
// releases the process-wide slot for this timer class. It is a no-op
// when called again and never waits for an in-flight pass.
func (t *IntervalTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.stopped = true
	if t.started {
		t.stopping.Store(true)
		if _, err := unix.Setitimer(t.which, unix.Itimerval{}); err != nil {
			log.Error().Err(err).Stringer("class", t.class).Msg("disarming interval timer")
		}
		// signal.Stop reinstates whatever disposition was in place before
		// Notify; skipping it would corrupt unrelated signal handling.
		signal.Stop(t.ch)
		close(t.ch)
	}
	releaseTimerSlot(t.class)
}

func (t *IntervalTimer) arm() error {
	next := t.interval.Next()
	_, err := unix.Setitimer(t.which, unix.Itimerval{
		Value: unix.NsecToTimeval(next.Nanoseconds()),
	})
	return err
}

// drain handles timer expiries. The timer is armed one-shot, so each
// expiry samples once and re-arms; a stop in progress wins the race
// against a late expiry by returning before either.
func (t *IntervalTimer) drain() {
	for range t.ch {
		if t.stopping.Load() {
			return
		}
		t.agg.Sample()
		if err := t.arm(); err != nil {
			log.Error().Err(err).Stringer("class", t.class).Msg("rearming interval timer")
			return
		}
	}
}

var _ Sampler = (*IntervalTimer)(nil)
