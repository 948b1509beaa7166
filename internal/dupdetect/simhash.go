package dupdetect

import (
	"math/bits"
	"strings"

	"github.com/anvik-1/spacetime-crawler/pkg/hashutil"
)

const (
	// shingleSize is the number of consecutive words per SimHash token.
	shingleSize = 3
	// sampleAbove is the word count past which shingles are sampled
	// instead of enumerated, bounding fingerprint cost on long pages.
	sampleAbove = 500
	// sampleTarget is the approximate number of shingles kept when sampling.
	sampleTarget = 250
)

// Simhash64 computes the 64-bit locality-sensitive fingerprint of text:
// similar inputs produce fingerprints at small Hamming distance.
//
// Tokens are 3-word shingles hashed with a stable 64-bit hash; each
// shingle votes +1/-1 per bit position and the fingerprint keeps the
// sign of the vote tally.
func Simhash64(text string) uint64 {
	words := strings.Fields(text)

	// Degenerate input: hash the whole text
	if len(words) < shingleSize {
		return hashutil.Sum64(text)
	}

	step := 1
	if len(words) > sampleAbove {
		step = len(words) / sampleTarget
	}

	var votes [64]int
	for i := 0; i+shingleSize-1 < len(words); i += step {
		shingle := strings.Join(words[i:i+shingleSize], " ")
		h := hashutil.Sum64(shingle)
		for bit := 0; bit < 64; bit++ {
			if h&(1<<uint(bit)) != 0 {
				votes[bit]++
			} else {
				votes[bit]--
			}
		}
	}

	var fingerprint uint64
	for bit := 0; bit < 64; bit++ {
		if votes[bit] > 0 {
			fingerprint |= 1 << uint(bit)
		}
	}
	return fingerprint
}

// HammingDistance counts the bit positions at which two fingerprints
// differ.
func HammingDistance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}
