package fetcher

import (
	"fmt"

	"github.com/anvik-1/spacetime-crawler/pkg/failure"
)

type FetchErrorCause string

const (
	ErrCauseRequestBuild   FetchErrorCause = "request build failure"
	ErrCauseNetworkFailure FetchErrorCause = "network failure"
	ErrCauseBodyRead       FetchErrorCause = "body read failure"
)

type FetchError struct {
	Message   string
	Retryable bool
	Cause     FetchErrorCause
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch error: %s: %s", e.Cause, e.Message)
}

func (e *FetchError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *FetchError) IsRetryable() bool {
	return e.Retryable
}

// Is allows errors.Is to match FetchError types
func (e *FetchError) Is(target error) bool {
	_, ok := target.(*FetchError)
	return ok
}
