package extractor

import (
	"fmt"

	"github.com/anvik-1/spacetime-crawler/pkg/failure"
)

type ExtractorErrorCause string

const (
	ErrCauseUnparsableHTML ExtractorErrorCause = "unparsable html"
)

type ExtractorError struct {
	Message   string
	Retryable bool
	Cause     ExtractorErrorCause
}

func (e *ExtractorError) Error() string {
	return fmt.Sprintf("extractor error: %s: %s", e.Cause, e.Message)
}

func (e *ExtractorError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *ExtractorError) IsRetryable() bool {
	return e.Retryable
}
