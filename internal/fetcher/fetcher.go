package fetcher

import (
	"context"
	"net/url"

	"github.com/anvik-1/spacetime-crawler/pkg/failure"
)

// Fetcher downloads one URL. Non-2xx statuses are results, not errors:
// the pipeline decides what a 404 means. Errors are reserved for
// transport-level failures that produced no response at all.
type Fetcher interface {
	Fetch(ctx context.Context, u url.URL) (Response, failure.ClassifiedError)
}
