package admission_test

import (
	"fmt"
	"net/url"
	"testing"

	"github.com/anvik-1/spacetime-crawler/internal/admission"
	"github.com/anvik-1/spacetime-crawler/internal/trap"
)

var testDomains = []string{"ics.uci.edu", "cs.uci.edu", "informatics.uci.edu", "stat.uci.edu"}

func newFilter() *admission.Filter {
	return admission.NewFilter(testDomains, 600, trap.NewDetector(), nil)
}

func mustURL(t *testing.T, raw string) url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("invalid url %q: %v", raw, err)
	}
	return *u
}

func TestIsValid_Accepts(t *testing.T) {
	f := newFilter()
	accepted := []string{
		"https://ics.uci.edu/courses/cs101/",
		"https://www.cs.uci.edu/faculty/",
		"http://stat.uci.edu/about.html",
		"https://vision.ics.uci.edu/papers.php",
		"https://cs.uci.edu/no-extension-page",
	}
	for _, raw := range accepted {
		if decision := f.IsValid(mustURL(t, raw)); !decision.Allowed {
			t.Errorf("IsValid(%s) rejected with %s, want accept", raw, decision.Reason)
		}
	}
}

func TestIsValid_RejectionReasons(t *testing.T) {
	cases := []struct {
		url    string
		reason string
	}{
		{"ftp://ics.uci.edu/a", admission.ReasonInvalidScheme},
		{"mailto:someone@ics.uci.edu", admission.ReasonInvalidScheme},
		{"https://physics.uci.edu/x", admission.ReasonBlockedDomain},
		{"https://www.eecs.uci.edu/x", admission.ReasonBlockedDomain},
		{"https://economics.uci.edu/x", admission.ReasonBlockedDomain},
		{"https://example.com/x", admission.ReasonDomainNotAllowed},
		{"https://uci.edu/x", admission.ReasonDomainNotAllowed},
		{"https://ics.uci.edu/calendar/2024", admission.ReasonCalendarTrap},
		{"https://ics.uci.edu/events/talk", admission.ReasonCalendarTrap},
		{"https://ics.uci.edu/news/2024/03/15", admission.ReasonCalendarTrap},
		{"https://ics.uci.edu/page?date=2024-03-15", admission.ReasonCalendarTrap},
		{"https://ics.uci.edu/feed.ics", admission.ReasonCalendarTrap},
		{"https://cs.uci.edu/wp-admin/options.php", admission.ReasonKnownTrap},
		{"https://cs.uci.edu/user/profile-page", admission.ReasonKnownTrap},
		{"https://cs.uci.edu/accounts", admission.ReasonKnownTrap},
		{"https://ics.uci.edu/paper.pdf", "ext_pdf"},
		{"https://ics.uci.edu/archive.tar.gz", "ext_gz"},
		{"https://ics.uci.edu/styles.css", "ext_css"},
		{"https://ics.uci.edu/page?format=pdf", admission.ReasonQueryFormat},
		{"https://ics.uci.edu/page?export=txt", admission.ReasonQueryFormat},
		{"https://ics.uci.edu/page?download=1", admission.ReasonQueryFormat},
		{"https://ics.uci.edu/print/page", admission.ReasonActionEndpoint},
		{"https://ics.uci.edu/page?search=x", admission.ReasonActionEndpoint},
	}

	for _, c := range cases {
		f := newFilter()
		decision := f.IsValid(mustURL(t, c.url))
		if decision.Allowed {
			t.Errorf("IsValid(%s) accepted, want reject %s", c.url, c.reason)
			continue
		}
		if decision.Reason != c.reason {
			t.Errorf("IsValid(%s) reason = %s, want %s", c.url, decision.Reason, c.reason)
		}
	}
}

func TestIsValid_URLTooLong(t *testing.T) {
	f := newFilter()

	long := "https://ics.uci.edu/p?x="
	for len(long) <= 600 {
		long += "a"
	}
	decision := f.IsValid(mustURL(t, long))
	if decision.Allowed || decision.Reason != admission.ReasonURLTooLong {
		t.Errorf("601-char URL: got %+v, want url_too_long rejection", decision)
	}
}

func TestIsValid_PaginationTrap(t *testing.T) {
	f := newFilter()

	decision := f.IsValid(mustURL(t, "https://stat.uci.edu/news?page=250"))
	if decision.Allowed || decision.Reason != admission.ReasonURLTrap {
		t.Errorf("page=250: got %+v, want url_trap rejection", decision)
	}
}

func TestIsValid_PatternFrequencyTrap(t *testing.T) {
	f := newFilter()

	for i := 0; i < 75; i++ {
		u := mustURL(t, fmt.Sprintf("https://stat.uci.edu/x/%d", i))
		if decision := f.IsValid(u); !decision.Allowed {
			t.Fatalf("call %d rejected with %s", i+1, decision.Reason)
		}
	}

	decision := f.IsValid(mustURL(t, "https://stat.uci.edu/x/424242"))
	if decision.Allowed || decision.Reason != admission.ReasonURLTrap {
		t.Errorf("76th patterned URL: got %+v, want url_trap rejection", decision)
	}
}

func TestIsValid_AllowedExtensionOverridesInvalid(t *testing.T) {
	f := newFilter()

	// php is in the allowed set and must pass even though query-free
	// binary extensions nearby would not.
	if decision := f.IsValid(mustURL(t, "https://ics.uci.edu/index.php")); !decision.Allowed {
		t.Errorf("index.php rejected with %s", decision.Reason)
	}
}

func TestIsValid_SubdomainOfAllowedDomain(t *testing.T) {
	f := newFilter()

	if decision := f.IsValid(mustURL(t, "https://archive.ics.uci.edu/ml/index.html")); !decision.Allowed {
		t.Errorf("subdomain of ics.uci.edu rejected with %s", decision.Reason)
	}
}
