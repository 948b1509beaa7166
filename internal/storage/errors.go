package storage

import (
	"fmt"

	"github.com/anvik-1/spacetime-crawler/internal/journal"
	"github.com/anvik-1/spacetime-crawler/pkg/failure"
)

type StorageErrorCause string

const (
	ErrCausePathError             StorageErrorCause = "path error"
	ErrCauseWriteFailure          StorageErrorCause = "write failure"
	ErrCauseDiskFull              StorageErrorCause = "disk full"
	ErrCauseEncodeFailure         StorageErrorCause = "encode failure"
	ErrCauseHashComputationFailed StorageErrorCause = "hash computation failed"
)

type StorageError struct {
	Message   string
	Retryable bool
	Cause     StorageErrorCause
	Path      string
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s: %s", e.Cause, e.Message)
}

func (e *StorageError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *StorageError) IsRetryable() bool {
	return e.Retryable
}

func mapStorageErrorToJournalCause(err *StorageError) journal.Cause {
	switch err.Cause {
	case ErrCausePathError, ErrCauseWriteFailure, ErrCauseDiskFull:
		return journal.CauseStorageFailure
	default:
		return journal.CauseUnknown
	}
}
