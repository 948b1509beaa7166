package worker

import "time"

// Param tunes the loop's waiting behavior. The defaults match the
// production cadence; tests shrink them.
type Param struct {
	// IdleSleep is the wait after an empty NextURL poll.
	IdleSleep time.Duration
	// StuckSleep is the longer wait when the frontier is non-empty but
	// every host is cooling down.
	StuckSleep time.Duration
	// DampingSleep follows every processed URL to reduce lock contention.
	DampingSleep time.Duration
	// MaxIdleStreak is the number of consecutive empty polls before the
	// worker considers stopping.
	MaxIdleStreak int
	// MaxIdleTime is the wall-clock idle span that, together with the
	// streak, triggers the termination check.
	MaxIdleTime time.Duration
}

func DefaultParam() Param {
	return Param{
		IdleSleep:     100 * time.Millisecond,
		StuckSleep:    time.Second,
		DampingSleep:  50 * time.Millisecond,
		MaxIdleStreak: 100,
		MaxIdleTime:   30 * time.Second,
	}
}
