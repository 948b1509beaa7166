package timeutil_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/anvik-1/spacetime-crawler/pkg/timeutil"
)

func TestMaxDuration(t *testing.T) {
	cases := []struct {
		name      string
		durations []time.Duration
		want      time.Duration
	}{
		{"empty", nil, 0},
		{"single", []time.Duration{time.Second}, time.Second},
		{"picks largest", []time.Duration{time.Second, 3 * time.Second, time.Millisecond}, 3 * time.Second},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := timeutil.MaxDuration(c.durations); got != c.want {
				t.Errorf("MaxDuration(%v) = %v, want %v", c.durations, got, c.want)
			}
		})
	}
}

func TestExponentialBackoffDelay_GrowsAndCaps(t *testing.T) {
	param := timeutil.NewBackoffParam(100*time.Millisecond, 2.0, time.Second)

	d1 := timeutil.ExponentialBackoffDelay(1, 0, nil, param)
	d2 := timeutil.ExponentialBackoffDelay(2, 0, nil, param)
	d3 := timeutil.ExponentialBackoffDelay(3, 0, nil, param)

	if d1 != 100*time.Millisecond {
		t.Errorf("attempt 1 delay = %v, want 100ms", d1)
	}
	if d2 != 200*time.Millisecond {
		t.Errorf("attempt 2 delay = %v, want 200ms", d2)
	}
	if d3 != 400*time.Millisecond {
		t.Errorf("attempt 3 delay = %v, want 400ms", d3)
	}

	// Attempt 10 without the cap would be 51.2s
	d10 := timeutil.ExponentialBackoffDelay(10, 0, nil, param)
	if d10 != time.Second {
		t.Errorf("attempt 10 delay = %v, want capped 1s", d10)
	}
}

func TestExponentialBackoffDelay_JitterBounded(t *testing.T) {
	param := timeutil.NewBackoffParam(100*time.Millisecond, 2.0, time.Second)
	rng := rand.New(rand.NewSource(42))
	jitter := 50 * time.Millisecond

	for i := 0; i < 100; i++ {
		d := timeutil.ExponentialBackoffDelay(1, jitter, rng, param)
		if d < 100*time.Millisecond || d >= 150*time.Millisecond {
			t.Fatalf("jittered delay %v outside [100ms, 150ms)", d)
		}
	}
}

func TestDurationPtr(t *testing.T) {
	p := timeutil.DurationPtr(time.Second)
	if p == nil || *p != time.Second {
		t.Error("DurationPtr did not round-trip the value")
	}
}
