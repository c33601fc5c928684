package sampler

import (
	"sync"

	"github.com/stackscope/stackscope/internal/errorutil"
)

// The kernel keeps one interval timer per class for the whole process,
// so the handler slot is a process-wide resource. The registry makes
// that ownership explicit: a slot is acquired at construction and held
// until the owning sampler is stopped.
var timerSlots = struct {
	sync.Mutex
	held map[TimerClass]bool
}{held: make(map[TimerClass]bool)}

func acquireTimerSlot(class TimerClass) error {
	timerSlots.Lock()
	defer timerSlots.Unlock()
	if timerSlots.held[class] {
		return errorutil.ErrTimerInUse
	}
	timerSlots.held[class] = true
	return nil
}

func releaseTimerSlot(class TimerClass) {
	timerSlots.Lock()
	defer timerSlots.Unlock()
	delete(timerSlots.held, class)
}
