package timeutil

import (
	"math/rand"
	"time"
)

// Interval produces the randomized pauses between sampling passes.
// Durations are drawn uniformly from [Base, Base+Spread) so the sampling
// cadence never locks onto other periodic activity in this or a peer
// process.
type Interval struct {
	Base   time.Duration
	Spread time.Duration
}

// DefaultInterval draws pauses from [10ms, 20ms), around 67 samples
// per second at steady state.
var DefaultInterval = Interval{
	Base:   10 * time.Millisecond,
	Spread: 10 * time.Millisecond,
}

func (i Interval) Next() time.Duration {
	if i.Spread <= 0 {
		return i.Base
	}
	return i.Base + time.Duration(rand.Int63n(int64(i.Spread)))
}

// Rate returns the expected steady-state sampling frequency in hertz.
func (i Interval) Rate() float64 {
	mean := i.Base + i.Spread/2
	if mean <= 0 {
		return 0
	}
	return float64(time.Second) / float64(mean)
}
