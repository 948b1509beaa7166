package scraper

import (
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/anvik-1/spacetime-crawler/internal/admission"
	"github.com/anvik-1/spacetime-crawler/internal/dupdetect"
	"github.com/anvik-1/spacetime-crawler/internal/extractor"
	"github.com/anvik-1/spacetime-crawler/internal/fetcher"
	"github.com/anvik-1/spacetime-crawler/internal/journal"
	"github.com/anvik-1/spacetime-crawler/internal/storage"
	"github.com/anvik-1/spacetime-crawler/pkg/hashutil"
)

const (
	minBodyBytes = 100
	maxBodyBytes = 5 << 20

	minWordCount  = 50
	saveWordCount = 200
)

/*
Pipeline turns one fetched response into the page's admitted outlinks:

	status check -> size check -> text extraction -> word-count check ->
	duplicate check -> page-record save -> link admission

Duplicate pages still have their outlinks harvested so the link
structure of the site is preserved; only the content save is skipped.
*/
type Pipeline struct {
	domExtractor extractor.Extractor
	dupDetector  *dupdetect.Detector
	filter       *admission.Filter
	pageStore    storage.Sink
	sink         journal.Sink
	logger       zerolog.Logger
}

func NewPipeline(
	domExtractor extractor.Extractor,
	dupDetector *dupdetect.Detector,
	filter *admission.Filter,
	pageStore storage.Sink,
	sink journal.Sink,
	logger zerolog.Logger,
) Pipeline {
	return Pipeline{
		domExtractor: domExtractor,
		dupDetector:  dupDetector,
		filter:       filter,
		pageStore:    pageStore,
		sink:         sink,
		logger:       logger.With().Str("component", "scraper").Logger(),
	}
}

// Process runs the pipeline for pageURL and returns the outlinks that
// passed admission. It never fails the caller: every error path
// degrades to zero outlinks.
func (p *Pipeline) Process(pageURL url.URL, resp fetcher.Response) []url.URL {
	pageStr := pageURL.String()

	if resp.Status() != 200 || len(resp.Body()) == 0 {
		p.logger.Warn().Str("url", pageStr).Int("status", resp.Status()).Msg("fetch failure, no outlinks")
		return nil
	}

	if len(resp.Body()) < minBodyBytes {
		p.logger.Debug().Str("url", pageStr).Int("bytes", len(resp.Body())).Msg("body too small, skipping")
		return nil
	}
	if len(resp.Body()) > maxBodyBytes {
		p.logger.Debug().Str("url", pageStr).Int("bytes", len(resp.Body())).Msg("body too large, skipping")
		return nil
	}

	text, extractErr := p.domExtractor.ExtractText(resp.Body())
	if extractErr != nil {
		p.recordParseError(pageStr, extractErr.Error())
		return nil
	}

	words := strings.Fields(text)
	if len(words) < minWordCount {
		p.logger.Debug().Str("url", pageStr).Int("words", len(words)).Msg("too few words, skipping")
		return nil
	}

	verdict := p.dupDetector.CheckText(pageStr, text)

	links, linkErr := p.domExtractor.ExtractLinks(pageURL, resp.Body())
	if linkErr != nil {
		p.recordParseError(pageStr, linkErr.Error())
		links = nil
	}
	admitted := p.admitLinks(links)

	if verdict.Duplicate {
		// Harvest links, skip the content save.
		return admitted
	}

	if len(admitted) > 0 || len(words) > saveWordCount {
		p.savePage(pageStr, text, words)
	}

	return admitted
}

func (p *Pipeline) admitLinks(links []url.URL) []url.URL {
	var admitted []url.URL
	for _, link := range links {
		if p.filter.IsValid(link).Allowed {
			admitted = append(admitted, link)
		}
	}
	return admitted
}

func (p *Pipeline) savePage(pageStr string, text string, words []string) {
	contentHash, hashErr := hashutil.HashBytes([]byte(text), p.pageStore.HashAlgo())
	if hashErr != nil {
		// Unreachable for validated configs; fall back to MD5.
		contentHash = hashutil.MD5Hex([]byte(text))
	}

	_, writeErr := p.pageStore.Write(storage.PageRecord{
		URL:         pageStr,
		WordCount:   len(words),
		Words:       words,
		ContentHash: contentHash,
	})
	if writeErr != nil {
		p.logger.Error().Str("url", pageStr).Err(writeErr).Msg("page record write failed")
	}
}

// recordParseError logs a truncated parse failure; parse problems must
// never crash a worker or abort the URL.
func (p *Pipeline) recordParseError(pageStr string, message string) {
	if len(message) > 30 {
		message = message[:30]
	}
	p.sink.RecordError(
		time.Now(),
		"scraper",
		"Pipeline.Process",
		journal.CauseContentInvalid,
		message,
		[]journal.Attribute{journal.NewAttr(journal.AttrURL, pageStr)},
	)
}
