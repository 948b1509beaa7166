package extractor

import (
	"net/url"

	"github.com/anvik-1/spacetime-crawler/pkg/failure"
)

// Extractor is the capability contract between the crawl pipeline and
// the HTML parser. The pipeline never imports an HTML library; it sees
// extracted text and resolved outlinks only.
type Extractor interface {
	// ExtractText returns the visible page text with boilerplate
	// subtrees removed and whitespace runs collapsed to single spaces.
	ExtractText(body []byte) (string, failure.ClassifiedError)

	// ExtractLinks returns the page's outlinks, resolved against
	// pageURL, fragment-free, deduplicated, and with self-references
	// dropped.
	ExtractLinks(pageURL url.URL, body []byte) ([]url.URL, failure.ClassifiedError)
}
