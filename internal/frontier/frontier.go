package frontier

import (
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/anvik-1/spacetime-crawler/internal/admission"
	"github.com/anvik-1/spacetime-crawler/internal/journal"
	"github.com/anvik-1/spacetime-crawler/pkg/limiter"
	"github.com/anvik-1/spacetime-crawler/pkg/urlutil"
)

/*
Frontier Responsibilities
- Own the crawl's to-be-downloaded state: one FIFO queue per host
- Deduplicate URLs across the whole crawl lifetime
- Enforce per-host politeness on dequeue
- Mirror every discovered URL into the durable store, synchronously
- Knows nothing about:
	- fetching
	- extraction
	- content dedup
	- page storage

It is a data structure + policy module, not a pipeline executor.

Durability invariant: when AddURL returns having accepted a URL, the URL
is in the durable store (completed=false) and in exactly one host queue.
A crash between dequeue and MarkURLComplete leaves the record
incomplete, so the URL is re-enqueued on the next start.
*/
type Frontier struct {
	// single coarse mutex co-owning queues, seen-set, host order and
	// store writes; splitting it risks losing the durability invariant
	mu sync.Mutex

	hostQueues map[string]*FIFOQueue[string]
	hostOrder  []string
	cursor     int
	seen       Set[string]

	store       *Store
	hostLimiter limiter.HostLimiter
	sink        journal.Sink
	logger      zerolog.Logger

	savePath string
	seeds    []url.URL
}

func NewFrontier(
	savePath string,
	seeds []url.URL,
	timeDelay time.Duration,
	hostLimiter limiter.HostLimiter,
	sink journal.Sink,
	logger zerolog.Logger,
) *Frontier {
	hostLimiter.SetBaseDelay(timeDelay)
	return &Frontier{
		hostQueues:  make(map[string]*FIFOQueue[string]),
		seen:        NewSet[string](),
		hostLimiter: hostLimiter,
		sink:        sink,
		logger:      logger.With().Str("component", "frontier").Logger(),
		savePath:    savePath,
		seeds:       seeds,
	}
}

// Init opens the durable store and rebuilds the in-memory state.
//
// With restart, any existing save file is deleted and the frontier is
// seeded fresh. Otherwise incomplete URLs that still pass admission are
// re-enqueued; an empty store falls back to the seeds.
func (f *Frontier) Init(restart bool, filter *admission.Filter) error {
	if _, err := os.Stat(f.savePath); err == nil {
		if restart {
			f.logger.Info().Str("save_file", f.savePath).Msg("found save file, deleting it")
			if err := os.Remove(f.savePath); err != nil {
				return &StoreError{
					Message:   err.Error(),
					Retryable: false,
					Cause:     ErrCauseOpenFailure,
				}
			}
		}
	} else if !restart {
		f.logger.Info().Str("save_file", f.savePath).Msg("did not find save file, starting from seed")
	}

	store, err := OpenStore(f.savePath)
	if err != nil {
		return err
	}
	f.store = store

	if restart {
		return f.seedFrontier()
	}

	total, tbd, err := f.loadSaveFile(filter)
	if err != nil {
		return err
	}
	f.logger.Info().
		Int("tbd", tbd).
		Int("total", total).
		Msg("restored frontier from save file")

	if total == 0 {
		return f.seedFrontier()
	}
	return nil
}

func (f *Frontier) seedFrontier() error {
	for _, seed := range f.seeds {
		if err := f.AddURL(seed); err != nil {
			return err
		}
	}
	return nil
}

// loadSaveFile re-enqueues every incomplete stored URL that still
// passes admission, and marks all stored URLs as seen.
func (f *Frontier) loadSaveFile(filter *admission.Filter) (total int, tbd int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	err = f.store.ForEach(func(urlhash string, entry Entry) error {
		total++

		parsed, parseErr := url.Parse(entry.URL)
		if parseErr != nil {
			f.logger.Warn().Str("url", entry.URL).Msg("skipping unparsable stored url")
			return nil
		}
		canonical := urlutil.Normalize(*parsed)
		f.seen.Add(canonical.String())

		if entry.Completed {
			return nil
		}
		if filter != nil && !filter.IsValid(canonical).Allowed {
			return nil
		}
		f.enqueueLocked(canonical)
		tbd++
		return nil
	})
	return total, tbd, err
}

// AddURL normalizes and registers u. Already-seen URLs are ignored; new
// URLs are persisted (completed=false) before they become visible in a
// host queue.
func (f *Frontier) AddURL(u url.URL) error {
	canonical := urlutil.Normalize(u)
	canonicalStr := canonical.String()
	urlhash := urlutil.URLHash(u)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.seen.Contains(canonicalStr) {
		return nil
	}

	// In-memory miss can still be a store hit: completed URLs are not
	// re-enqueued across restarts.
	stored, err := f.store.Has(urlhash)
	if err != nil {
		return err
	}
	if stored {
		f.seen.Add(canonicalStr)
		return nil
	}

	if err := f.store.Put(urlhash, Entry{URL: canonicalStr, Completed: false}); err != nil {
		return err
	}
	f.seen.Add(canonicalStr)
	f.enqueueLocked(canonical)
	return nil
}

// MarkURLComplete persists completion for u. Completing a URL the
// frontier has never seen is an invariant violation; it is logged and
// the completion is written anyway.
func (f *Frontier) MarkURLComplete(u url.URL) error {
	canonical := urlutil.Normalize(u)
	urlhash := urlutil.URLHash(u)

	f.mu.Lock()
	defer f.mu.Unlock()

	stored, err := f.store.Has(urlhash)
	if err != nil {
		return err
	}
	if !stored {
		f.logger.Error().Str("url", canonical.String()).Msg("completed url was never added")
		if f.sink != nil {
			f.sink.RecordError(
				time.Now(),
				"frontier",
				"Frontier.MarkURLComplete",
				journal.CauseInvariantViolation,
				"completed url was never added",
				[]journal.Attribute{journal.NewAttr(journal.AttrURL, canonical.String())},
			)
		}
	}

	return f.store.Put(urlhash, Entry{URL: canonical.String(), Completed: true})
}

// NextURL returns one URL that is ready to be downloaded, respecting
// per-host politeness. The second return value is false when no host is
// ready; callers distinguish "cooling down" from "drained" via
// TotalQueued.
//
// Hosts are scanned round-robin from a cursor, so the scan order is
// deterministic within an instance and no non-empty host queue is
// starved while others are served.
func (f *Frontier) NextURL() (url.URL, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	hostCount := len(f.hostOrder)
	for i := 0; i < hostCount; i++ {
		index := (f.cursor + i) % hostCount
		host := f.hostOrder[index]
		queue := f.hostQueues[host]

		if queue.Size() == 0 || !f.hostLimiter.Ready(host) {
			continue
		}

		raw, _ := queue.Dequeue()
		parsed, err := url.Parse(raw)
		if err != nil {
			// Cannot happen for URLs that passed AddURL; skip defensively.
			f.logger.Error().Str("url", raw).Msg("unparsable url in host queue")
			continue
		}

		f.hostLimiter.MarkLastFetchAsNow(host)
		f.cursor = (index + 1) % hostCount
		return *parsed, true
	}

	return url.URL{}, false
}

// TotalQueued returns the number of URLs waiting across all host queues.
func (f *Frontier) TotalQueued() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	total := 0
	for _, queue := range f.hostQueues {
		total += queue.Size()
	}
	return total
}

// Backoff delays future dequeues for the host of u after a fetch
// failure.
func (f *Frontier) Backoff(u url.URL) {
	f.hostLimiter.Backoff(urlutil.HostOf(u))
}

// ResetBackoff clears fetch-failure backoff for the host of u.
func (f *Frontier) ResetBackoff(u url.URL) {
	f.hostLimiter.ResetBackoff(urlutil.HostOf(u))
}

func (f *Frontier) Close() error {
	if f.store == nil {
		return nil
	}
	return f.store.Close()
}

// enqueueLocked appends the canonical URL to its host queue, creating
// the queue on first sight of the host. Caller must hold f.mu.
func (f *Frontier) enqueueLocked(canonical url.URL) {
	host := urlutil.HostOf(canonical)
	queue, exists := f.hostQueues[host]
	if !exists {
		queue = NewFIFOQueue[string]()
		f.hostQueues[host] = queue
		f.hostOrder = append(f.hostOrder, host)
	}
	queue.Enqueue(canonical.String())
}
