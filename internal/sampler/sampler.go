// Package sampler drives periodic sampling passes against an aggregator.
//
// Two interchangeable strategies are provided: Loop runs a dedicated
// goroutine with randomized sleeps, and IntervalTimer (linux) rides a
// process-wide setitimer(2) signal. Construction never samples; Start
// begins and Stop ends. Stop never discards recorded data.
package sampler

import "fmt"

// Sampler is the common contract of both trigger strategies.
type Sampler interface {
	Start() error
	Stop()
}

// TimerClass selects which setitimer(2) clock the interval-timer
// strategy consumes.
type TimerClass int

const (
	// Real decrements in wall-clock time and delivers SIGALRM.
	Real TimerClass = iota
	// Virtual decrements only while the process executes in user space
	// and delivers SIGVTALRM.
	Virtual
	// Prof decrements while the process executes in user or kernel space
	// and delivers SIGPROF.
	Prof
)

func (c TimerClass) String() string {
	switch c {
	case Real:
		return "real"
	case Virtual:
		return "virtual"
	case Prof:
		return "prof"
	}
	return fmt.Sprintf("TimerClass(%d)", int(c))
}

func ParseTimerClass(s string) (TimerClass, error) {
	switch s {
	case "real":
		return Real, nil
	case "virtual":
		return Virtual, nil
	case "prof":
		return Prof, nil
	}
	return 0, fmt.Errorf("timer class must be one of 'real', 'virtual' or 'prof' (got %q)", s)
}
