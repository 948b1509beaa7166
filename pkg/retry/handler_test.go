package retry_test

import (
	"errors"
	"testing"
	"time"

	"github.com/anvik-1/spacetime-crawler/pkg/failure"
	"github.com/anvik-1/spacetime-crawler/pkg/retry"
	"github.com/anvik-1/spacetime-crawler/pkg/timeutil"
)

type testErr struct {
	retryable bool
}

func (e *testErr) Error() string { return "test error" }

func (e *testErr) Severity() failure.Severity {
	if e.retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *testErr) IsRetryable() bool { return e.retryable }

func fastParam(maxAttempts int) retry.RetryParam {
	return retry.NewRetryParam(
		0,
		42,
		maxAttempts,
		timeutil.NewBackoffParam(time.Millisecond, 2.0, 5*time.Millisecond),
	)
}

func TestRetry_SucceedsFirstAttempt(t *testing.T) {
	result := retry.Retry(fastParam(3), func() (int, failure.ClassifiedError) {
		return 7, nil
	})

	if result.Err() != nil {
		t.Fatalf("unexpected error: %v", result.Err())
	}
	if result.Value() != 7 {
		t.Errorf("value = %d, want 7", result.Value())
	}
	if result.Attempts() != 1 {
		t.Errorf("attempts = %d, want 1", result.Attempts())
	}
}

func TestRetry_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	result := retry.Retry(fastParam(5), func() (string, failure.ClassifiedError) {
		calls++
		if calls < 3 {
			return "", &testErr{retryable: true}
		}
		return "ok", nil
	})

	if result.Err() != nil {
		t.Fatalf("unexpected error: %v", result.Err())
	}
	if result.Attempts() != 3 {
		t.Errorf("attempts = %d, want 3", result.Attempts())
	}
}

func TestRetry_StopsOnNonRetryable(t *testing.T) {
	calls := 0
	result := retry.Retry(fastParam(5), func() (string, failure.ClassifiedError) {
		calls++
		return "", &testErr{retryable: false}
	})

	if result.Err() == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	result := retry.Retry(fastParam(3), func() (string, failure.ClassifiedError) {
		return "", &testErr{retryable: true}
	})

	if result.Err() == nil {
		t.Fatal("expected exhausted error")
	}
	var retryErr *retry.RetryError
	if !errors.As(result.Err(), &retryErr) {
		t.Fatalf("expected RetryError, got %T", result.Err())
	}
	if retryErr.Cause != retry.ErrExhaustedAttempts {
		t.Errorf("cause = %s, want %s", retryErr.Cause, retry.ErrExhaustedAttempts)
	}
	if result.Attempts() != 3 {
		t.Errorf("attempts = %d, want 3", result.Attempts())
	}
}

func TestRetry_ZeroAttempts(t *testing.T) {
	result := retry.Retry(fastParam(0), func() (string, failure.ClassifiedError) {
		t.Fatal("fn must not be called")
		return "", nil
	})

	var retryErr *retry.RetryError
	if !errors.As(result.Err(), &retryErr) {
		t.Fatalf("expected RetryError, got %T", result.Err())
	}
	if retryErr.Cause != retry.ErrZeroAttempt {
		t.Errorf("cause = %s, want %s", retryErr.Cause, retry.ErrZeroAttempt)
	}
}
