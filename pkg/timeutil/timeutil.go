package timeutil

import (
	"math"
	"math/rand"
	"time"
)

// DurationPtr is a helper function to create a pointer to a time.Duration
func DurationPtr(d time.Duration) *time.Duration {
	return &d
}

// MaxDuration returns the largest duration in the slice, or zero for an
// empty slice.
func MaxDuration(durations []time.Duration) time.Duration {
	var max time.Duration
	for _, d := range durations {
		if d > max {
			max = d
		}
	}
	return max
}

// ExponentialBackoffDelay computes the delay before retry attempt n
// (1-based): initial * multiplier^(n-1), capped at the configured max,
// plus a random jitter in [0, jitter).
func ExponentialBackoffDelay(
	attempt int,
	jitter time.Duration,
	rng *rand.Rand,
	param BackoffParam,
) time.Duration {
	exponent := float64(attempt - 1)
	delay := float64(param.InitialDuration()) * math.Pow(param.Multiplier(), exponent)
	if delay > float64(param.MaxDuration()) {
		delay = float64(param.MaxDuration())
	}

	if jitter > 0 && rng != nil {
		delay += float64(rng.Int63n(int64(jitter)))
	}

	return time.Duration(delay)
}

// Sleeper abstracts time.Sleep so that loops with politeness waits and
// idle sleeps can be driven by tests without real wall-clock delays.
type Sleeper interface {
	Sleep(d time.Duration)
}

type RealSleeper struct{}

func NewRealSleeper() *RealSleeper {
	return &RealSleeper{}
}

func (s *RealSleeper) Sleep(d time.Duration) {
	time.Sleep(d)
}
