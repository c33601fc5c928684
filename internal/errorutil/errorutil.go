package errorutil

import "errors"

// ErrAlreadyStarted is returned by Start() on a sampler instance that has
// already been started.
var ErrAlreadyStarted = errors.New("sampler already started")

// ErrTimerInUse is returned when constructing an interval-timer sampler
// for a timer class whose process-wide handler slot is already taken.
var ErrTimerInUse = errors.New("interval timer class already in use")

// ErrUnsupportedPlatform is returned when the host platform offers no
// interval-timer facility; callers should fall back to the loop sampler.
var ErrUnsupportedPlatform = errors.New("interval timers not supported on this platform")
