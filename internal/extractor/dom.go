package extractor

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/anvik-1/spacetime-crawler/pkg/failure"
	"github.com/anvik-1/spacetime-crawler/pkg/urlutil"
)

/*
DomExtractor parses response bytes with goquery.

Text extraction decomposes non-content subtrees before collecting text:
script, style, meta, link, noscript, header, footer, nav. Whatever text
remains is joined with single spaces.

Link extraction walks <a href>, skips inert hrefs, resolves each
against the page URL, drops fragments and self-references, and
deduplicates within the page.
*/
type DomExtractor struct{}

// boilerplateSelector lists the subtrees removed before text collection.
const boilerplateSelector = "script, style, meta, link, noscript, header, footer, nav"

// inertHrefs never lead anywhere.
var inertHrefs = map[string]struct{}{
	"":                  {},
	"#":                 {},
	"javascript:void(0)": {},
	"javascript:;":      {},
}

func NewDomExtractor() DomExtractor {
	return DomExtractor{}
}

func (d *DomExtractor) ExtractText(body []byte) (string, failure.ClassifiedError) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", &ExtractorError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseUnparsableHTML,
		}
	}

	doc.Find(boilerplateSelector).Remove()

	// Fields both splits on whitespace runs and drops empties, which
	// collapses the document to single-space-separated words.
	return strings.Join(strings.Fields(doc.Text()), " "), nil
}

func (d *DomExtractor) ExtractLinks(pageURL url.URL, body []byte) ([]url.URL, failure.ClassifiedError) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &ExtractorError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseUnparsableHTML,
		}
	}

	normalizedPageURL := urlutil.Normalize(pageURL)
	pageIdentity := normalizedPageURL.String()

	seen := make(map[string]struct{})
	var links []url.URL

	doc.Find("a[href]").Each(func(_ int, selection *goquery.Selection) {
		href, _ := selection.Attr("href")
		href = strings.TrimSpace(href)
		if _, inert := inertHrefs[href]; inert {
			return
		}
		if strings.HasPrefix(href, "#") {
			return
		}

		resolved, resolveErr := pageURL.Parse(href)
		if resolveErr != nil {
			return
		}
		resolved.Fragment = ""
		resolved.RawFragment = ""

		normalized := urlutil.Normalize(*resolved)
		identity := normalized.String()
		if identity == pageIdentity {
			return
		}
		if _, dup := seen[identity]; dup {
			return
		}
		seen[identity] = struct{}{}
		links = append(links, *resolved)
	})

	return links, nil
}
