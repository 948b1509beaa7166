package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/anvik-1/spacetime-crawler/internal/journal"
	"github.com/anvik-1/spacetime-crawler/pkg/failure"
	"github.com/anvik-1/spacetime-crawler/pkg/retry"
)

// maxBodyBytes bounds how much of a response body is read. One byte
// above the pipeline's size cap, so oversized pages are still
// detectable downstream.
const maxBodyBytes = 5<<20 + 1

/*
HTTPFetcher performs the real HTTP requests.

- Applies the configured user agent and timeout
- Routes through the cache server as an upstream proxy when configured
- Retries transport failures with exponential backoff
- Returns non-200 responses as results for the pipeline to classify
*/
type HTTPFetcher struct {
	httpClient *http.Client
	userAgent  string
	retryParam retry.RetryParam
	sink       journal.Sink
}

func NewHTTPFetcher(
	userAgent string,
	timeout time.Duration,
	cacheServer string,
	retryParam retry.RetryParam,
	sink journal.Sink,
) (*HTTPFetcher, error) {
	transport := http.DefaultTransport
	if cacheServer != "" {
		proxyURL, err := url.Parse(cacheServer)
		if err != nil {
			return nil, &FetchError{
				Message:   err.Error(),
				Retryable: false,
				Cause:     ErrCauseRequestBuild,
			}
		}
		transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	}

	return &HTTPFetcher{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		userAgent:  userAgent,
		retryParam: retryParam,
		sink:       sink,
	}, nil
}

func (h *HTTPFetcher) Fetch(ctx context.Context, u url.URL) (Response, failure.ClassifiedError) {
	startTime := time.Now()

	result := retry.Retry(h.retryParam, func() (Response, failure.ClassifiedError) {
		return h.fetchOnce(ctx, u)
	})

	if err := result.Err(); err != nil {
		h.sink.RecordError(
			time.Now(),
			"fetcher",
			"HTTPFetcher.Fetch",
			journal.CauseNetworkFailure,
			err.Error(),
			[]journal.Attribute{journal.NewAttr(journal.AttrURL, u.String())},
		)
		return Response{}, err
	}

	h.sink.RecordFetch(0, u.String(), result.Value().Status(), time.Since(startTime))
	return result.Value(), nil
}

func (h *HTTPFetcher) fetchOnce(ctx context.Context, u url.URL) (Response, failure.ClassifiedError) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Response{}, &FetchError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseRequestBuild,
		}
	}
	request.Header.Set("User-Agent", h.userAgent)

	response, err := h.httpClient.Do(request)
	if err != nil {
		return Response{}, &FetchError{
			Message:   err.Error(),
			Retryable: true,
			Cause:     ErrCauseNetworkFailure,
		}
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxBodyBytes))
	if err != nil {
		return Response{}, &FetchError{
			Message:   err.Error(),
			Retryable: true,
			Cause:     ErrCauseBodyRead,
		}
	}

	return NewResponse(response.StatusCode, body), nil
}
