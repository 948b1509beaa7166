package fetcher_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/anvik-1/spacetime-crawler/internal/fetcher"
	"github.com/anvik-1/spacetime-crawler/internal/journal"
	"github.com/anvik-1/spacetime-crawler/pkg/retry"
	"github.com/anvik-1/spacetime-crawler/pkg/timeutil"
)

func testSink(t *testing.T) *journal.Recorder {
	t.Helper()
	rec, err := journal.NewRecorder(zerolog.Nop(), t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return rec
}

func fastRetryParam(attempts int) retry.RetryParam {
	return retry.NewRetryParam(
		0,
		42,
		attempts,
		timeutil.NewBackoffParam(time.Millisecond, 2.0, 5*time.Millisecond),
	)
}

func serverURL(t *testing.T, server *httptest.Server) url.URL {
	t.Helper()
	u, err := url.Parse(server.URL)
	if err != nil {
		t.Fatal(err)
	}
	return *u
}

func TestHTTPFetcher_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "spacetime-crawler/test" {
			t.Errorf("user agent = %q", r.Header.Get("User-Agent"))
		}
		w.Write([]byte("<html><body>hello</body></html>"))
	}))
	defer server.Close()

	f, err := fetcher.NewHTTPFetcher("spacetime-crawler/test", time.Second, "", fastRetryParam(3), testSink(t))
	if err != nil {
		t.Fatal(err)
	}

	resp, fetchErr := f.Fetch(context.Background(), serverURL(t, server))
	if fetchErr != nil {
		t.Fatalf("Fetch failed: %v", fetchErr)
	}
	if resp.Status() != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.Status())
	}
	if string(resp.Body()) != "<html><body>hello</body></html>" {
		t.Errorf("body = %q", resp.Body())
	}
}

func TestHTTPFetcher_Non200IsAResultNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f, err := fetcher.NewHTTPFetcher("ua", time.Second, "", fastRetryParam(3), testSink(t))
	if err != nil {
		t.Fatal(err)
	}

	resp, fetchErr := f.Fetch(context.Background(), serverURL(t, server))
	if fetchErr != nil {
		t.Fatalf("404 must not surface as error: %v", fetchErr)
	}
	if resp.Status() != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.Status())
	}
}

func TestHTTPFetcher_RetriesTransportFailures(t *testing.T) {
	var attempts atomic.Int32

	// A listener that closes connections before responding twice, then succeeds.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) <= 2 {
			conn, _, err := w.(http.Hijacker).Hijack()
			if err == nil {
				conn.Close()
			}
			return
		}
		w.Write([]byte("recovered"))
	}))
	defer server.Close()

	f, err := fetcher.NewHTTPFetcher("ua", time.Second, "", fastRetryParam(5), testSink(t))
	if err != nil {
		t.Fatal(err)
	}

	resp, fetchErr := f.Fetch(context.Background(), serverURL(t, server))
	if fetchErr != nil {
		t.Fatalf("Fetch did not recover: %v", fetchErr)
	}
	if string(resp.Body()) != "recovered" {
		t.Errorf("body = %q", resp.Body())
	}
	if attempts.Load() != 3 {
		t.Errorf("attempts = %d, want 3", attempts.Load())
	}
}

func TestHTTPFetcher_ExhaustedRetriesReturnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, _, err := w.(http.Hijacker).Hijack()
		if err == nil {
			conn.Close()
		}
	}))
	defer server.Close()

	f, err := fetcher.NewHTTPFetcher("ua", time.Second, "", fastRetryParam(2), testSink(t))
	if err != nil {
		t.Fatal(err)
	}

	_, fetchErr := f.Fetch(context.Background(), serverURL(t, server))
	if fetchErr == nil {
		t.Fatal("expected error after exhausted retries")
	}
}

func TestNewHTTPFetcher_BadCacheServer(t *testing.T) {
	_, err := fetcher.NewHTTPFetcher("ua", time.Second, "://bad", fastRetryParam(1), nil)
	if err == nil {
		t.Fatal("expected error for invalid cache server url")
	}
}
