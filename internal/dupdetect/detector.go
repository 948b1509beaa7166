package dupdetect

import (
	"strings"
	"sync"

	"github.com/anvik-1/spacetime-crawler/internal/journal"
	"github.com/anvik-1/spacetime-crawler/pkg/hashutil"
)

// minTextLength is the minimum stripped length below which page text is
// not worth deduplicating or saving.
const minTextLength = 100

/*
Detector is the two-level duplicate-content check over extracted page
text:

 1. exact: hex MD5 of the text against a grow-only set,
 2. near: 64-bit SimHash against a bounded FIFO ring of recent
    fingerprints; Hamming distance at or under the threshold counts as
    a near-duplicate.

The ring bounds both memory and per-check cost: a scan is O(W) with
W <= the configured window. Duplicates separated by more than W unique
pages in between are not caught; that is a deliberate trade-off.
*/
type Detector struct {
	mu         sync.Mutex
	exactHashes map[string]struct{}
	ring       []fingerprintEntry
	ringStart  int
	window     int
	threshold  int
	sink       journal.Sink
}

func NewDetector(window int, threshold int, sink journal.Sink) *Detector {
	return &Detector{
		exactHashes: make(map[string]struct{}),
		ring:        make([]fingerprintEntry, 0, window),
		window:      window,
		threshold:   threshold,
		sink:        sink,
	}
}

// CheckText classifies the extracted text of url. Unique content is
// registered (exact hash inserted, fingerprint appended to the ring)
// before returning.
func (d *Detector) CheckText(url string, text string) Verdict {
	if len(strings.TrimSpace(text)) < minTextLength {
		return d.record(url, duplicate(KindTooShort))
	}

	exactHash := hashutil.MD5Hex([]byte(text))

	d.mu.Lock()
	if _, seen := d.exactHashes[exactHash]; seen {
		d.mu.Unlock()
		return d.record(url, duplicate(KindExact))
	}
	d.exactHashes[exactHash] = struct{}{}
	d.mu.Unlock()

	// Fingerprinting is O(words) and runs outside the mutex.
	simhash := Simhash64(text)

	d.mu.Lock()
	for _, entry := range d.ring {
		if HammingDistance(simhash, entry.simhash) <= d.threshold {
			d.mu.Unlock()
			return d.record(url, duplicate(KindSimilar))
		}
	}
	d.append(fingerprintEntry{simhash: simhash, url: url})
	d.mu.Unlock()

	return unique()
}

// ContentHash returns the exact-match identity of text.
func (d *Detector) ContentHash(text string) string {
	return hashutil.MD5Hex([]byte(text))
}

// RingSize reports the current number of fingerprints held.
func (d *Detector) RingSize() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.ring)
}

// append adds an entry, evicting the oldest when the window is full.
// Caller must hold d.mu.
func (d *Detector) append(entry fingerprintEntry) {
	if len(d.ring) < d.window {
		d.ring = append(d.ring, entry)
		return
	}
	d.ring[d.ringStart] = entry
	d.ringStart = (d.ringStart + 1) % d.window
}

func (d *Detector) record(url string, v Verdict) Verdict {
	if v.Duplicate && d.sink != nil {
		d.sink.RecordDuplicate(url, v.Kind)
	}
	return v
}
