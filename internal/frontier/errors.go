package frontier

import (
	"fmt"

	"github.com/anvik-1/spacetime-crawler/pkg/failure"
)

type StoreErrorCause string

const (
	ErrCauseOpenFailure  StoreErrorCause = "open failure"
	ErrCauseReadFailure  StoreErrorCause = "read failure"
	ErrCauseWriteFailure StoreErrorCause = "write failure"
	ErrCauseCorruptEntry StoreErrorCause = "corrupt entry"
)

type StoreError struct {
	Message   string
	Retryable bool
	Cause     StoreErrorCause
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("frontier store error: %s: %s", e.Cause, e.Message)
}

func (e *StoreError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *StoreError) IsRetryable() bool {
	return e.Retryable
}
