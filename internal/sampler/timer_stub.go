//go:build !linux

package sampler

import (
	"github.com/stackscope/stackscope/internal/aggregate"
	"github.com/stackscope/stackscope/internal/errorutil"
	"github.com/stackscope/stackscope/internal/timeutil"
)

// IntervalTimer needs setitimer(2); on other platforms construction
// fails and callers should fall back to Loop.
type IntervalTimer struct{}

func NewIntervalTimer(*aggregate.Aggregator, TimerClass, timeutil.Interval) (*IntervalTimer, error) {
	return nil, errorutil.ErrUnsupportedPlatform
}

func (t *IntervalTimer) Start() error { return errorutil.ErrUnsupportedPlatform }

func (t *IntervalTimer) Stop() {}

var _ Sampler = (*IntervalTimer)(nil)
