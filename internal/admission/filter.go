package admission

import (
	"net/url"
	"strings"

	"github.com/anvik-1/spacetime-crawler/internal/journal"
	"github.com/anvik-1/spacetime-crawler/internal/trap"
	"github.com/anvik-1/spacetime-crawler/pkg/fileutil"
)

/*
Filter is the URL admission policy: an ordered sequence of checks that
short-circuits on the first rejection. Apart from the trap detector's
counters and the rejection stats it behaves as a pure predicate.

Check order:
 1. scheme
 2. blocked sibling domains
 3. allow-list domain match
 4. URL length
 5. calendar/event patterns
 6. known trap patterns (login, admin, wp-*)
 7. dynamic trap heuristics
 8. extension policy
 9. query format params
10. action endpoints
*/
type Filter struct {
	allowedDomains []string
	maxURLLength   int
	trapDetector   *trap.Detector
	sink           journal.Sink
}

func NewFilter(
	allowedDomains []string,
	maxURLLength int,
	trapDetector *trap.Detector,
	sink journal.Sink,
) *Filter {
	return &Filter{
		allowedDomains: allowedDomains,
		maxURLLength:   maxURLLength,
		trapDetector:   trapDetector,
		sink:           sink,
	}
}

// IsValid reports whether u may enter the frontier. Rejections are
// recorded against the rejection stats with their reason.
func (f *Filter) IsValid(u url.URL) Decision {
	decision := f.check(u)
	if !decision.Allowed && f.sink != nil {
		f.sink.RecordRejection(u.String(), decision.Reason)
	}
	return decision
}

func (f *Filter) check(u url.URL) Decision {
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return reject(ReasonInvalidScheme)
	}

	hostname := strings.ToLower(u.Hostname())

	// Blocked siblings are named before the allow-list match: several of
	// them are accidental suffix matches of allowed domains.
	for _, blocked := range blockedSubdomains {
		if hostname == blocked+".uci.edu" || strings.HasSuffix(hostname, "."+blocked+".uci.edu") {
			return reject(ReasonBlockedDomain)
		}
	}

	allowed := false
	for _, domain := range f.allowedDomains {
		if hostname == domain || strings.HasSuffix(hostname, "."+domain) {
			allowed = true
			break
		}
	}
	if !allowed {
		return reject(ReasonDomainNotAllowed)
	}

	raw := u.String()
	if len(raw) > f.maxURLLength {
		return reject(ReasonURLTooLong)
	}

	lowered := strings.ToLower(raw)

	if matchesAny(calendarPatterns, lowered) {
		return reject(ReasonCalendarTrap)
	}

	if matchesAny(knownTrapPatterns, lowered) {
		return reject(ReasonKnownTrap)
	}

	legitimate := matchesAny(legitimatePatterns, lowered)
	if f.trapDetector.IsTrap(u, legitimate) {
		return reject(ReasonURLTrap)
	}

	if ext := strings.ToLower(fileutil.GetFileExtension(u.Path)); ext != "" {
		_, invalid := invalidExtensions[ext]
		_, htmlBearing := allowedExtensions[ext]
		if invalid && !htmlBearing {
			return reject("ext_" + ext)
		}
	}

	if matchesAny(queryFormatPatterns, strings.ToLower(u.RawQuery)) {
		return reject(ReasonQueryFormat)
	}

	for _, endpoint := range actionEndpoints {
		if strings.Contains(lowered, endpoint) {
			return reject(ReasonActionEndpoint)
		}
	}

	return allow()
}
