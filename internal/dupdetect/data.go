package dupdetect

// Duplicate kinds.
const (
	KindExact    = "exact"
	KindSimilar  = "similar"
	KindTooShort = "too_short"
)

// Verdict classifies one extracted page text. Kind is empty for unique
// content.
type Verdict struct {
	Duplicate bool
	Kind      string
}

func unique() Verdict {
	return Verdict{}
}

func duplicate(kind string) Verdict {
	return Verdict{Duplicate: true, Kind: kind}
}

// fingerprintEntry pairs a fingerprint with the URL it came from, for
// the duplicate report.
type fingerprintEntry struct {
	simhash uint64
	url     string
}
