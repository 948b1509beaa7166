package report

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/anvik-1/spacetime-crawler/internal/frontier"
	"github.com/anvik-1/spacetime-crawler/internal/storage"
)

/*
Generator builds the post-crawl completion report from the durable
artifacts alone: the frontier store and the page store directory. It
runs after (or independently of) a crawl and never mutates either.
*/
type Generator struct {
	saveFile     string
	pageStoreDir string
}

const (
	topWordCount       = 50
	pendingSampleLimit = 10
	minTokenLength     = 3
)

func NewGenerator(saveFile string, pageStoreDir string) Generator {
	return Generator{
		saveFile:     saveFile,
		pageStoreDir: pageStoreDir,
	}
}

// Summarize reads the frontier and page stores into a Summary.
func (g *Generator) Summarize() (Summary, error) {
	summary := Summary{
		PagesByDomain: make(map[string]int),
	}

	store, err := frontier.OpenStore(g.saveFile)
	if err != nil {
		return Summary{}, err
	}
	defer store.Close()

	err = store.ForEach(func(_ string, entry frontier.Entry) error {
		summary.TotalURLs++

		parsed, parseErr := url.Parse(entry.URL)
		domain := "unknown"
		if parseErr == nil {
			domain = strings.ToLower(parsed.Host)
		}

		if entry.Completed {
			summary.CompletedURLs++
			summary.PagesByDomain[domain]++
		} else {
			summary.PendingURLs++
			if len(summary.PendingSamples) < pendingSampleLimit {
				summary.PendingSamples = append(summary.PendingSamples, entry.URL)
			}
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}

	if err := g.summarizePages(&summary); err != nil {
		return Summary{}, err
	}

	return summary, nil
}

func (g *Generator) summarizePages(summary *Summary) error {
	entries, err := os.ReadDir(g.pageStoreDir)
	if os.IsNotExist(err) {
		return nil // no pages saved is a valid outcome
	}
	if err != nil {
		return err
	}

	wordFrequencies := make(map[string]int)

	for _, dirEntry := range entries {
		if !strings.HasSuffix(dirEntry.Name(), ".json") {
			continue
		}

		raw, readErr := os.ReadFile(filepath.Join(g.pageStoreDir, dirEntry.Name()))
		if readErr != nil {
			continue
		}
		var record storage.PageRecord
		if json.Unmarshal(raw, &record) != nil {
			continue
		}

		summary.SavedPages++
		if record.WordCount > summary.LongestPageWords {
			summary.LongestPageWords = record.WordCount
			summary.LongestPageURL = record.URL
		}

		for _, word := range record.Words {
			for _, token := range tokenize(word) {
				if _, stop := stopWords[token]; stop {
					continue
				}
				if len(token) < minTokenLength {
					continue
				}
				wordFrequencies[token]++
			}
		}
	}

	summary.TopWords = rankWords(wordFrequencies, topWordCount)
	return nil
}

// tokenize lowercases and splits a stored word on non-ASCII-alphanumeric
// characters.
func tokenize(word string) []string {
	word = strings.ToLower(word)

	var tokens []string
	var current strings.Builder
	for _, r := range word {
		if r < 128 && (r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
			current.WriteRune(r)
			continue
		}
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}

func rankWords(frequencies map[string]int, limit int) []WordCount {
	ranked := make([]WordCount, 0, len(frequencies))
	for word, count := range frequencies {
		ranked = append(ranked, WordCount{Word: word, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Word < ranked[j].Word
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// Render produces the Markdown report. The output is validated against
// the structural rules before being returned.
func (g *Generator) Render(summary Summary) ([]byte, error) {
	var b strings.Builder

	b.WriteString("# Crawl Completion Report\n\n")

	b.WriteString("## Frontier\n\n")
	fmt.Fprintf(&b, "- Total URLs discovered: %d\n", summary.TotalURLs)
	fmt.Fprintf(&b, "- Successfully completed: %d\n", summary.CompletedURLs)
	fmt.Fprintf(&b, "- Still pending: %d\n", summary.PendingURLs)
	if summary.Completed() {
		b.WriteString("\nAll discovered URLs have been processed.\n")
	} else {
		b.WriteString("\nPending URLs:\n\n")
		for _, pending := range summary.PendingSamples {
			fmt.Fprintf(&b, "- %s\n", pending)
		}
		if summary.PendingURLs > len(summary.PendingSamples) {
			fmt.Fprintf(&b, "- and %d more\n", summary.PendingURLs-len(summary.PendingSamples))
		}
	}
	b.WriteString("\n")

	b.WriteString("## Pages By Domain\n\n")
	domains := make([]string, 0, len(summary.PagesByDomain))
	for domain := range summary.PagesByDomain {
		domains = append(domains, domain)
	}
	sort.Slice(domains, func(i, j int) bool {
		if summary.PagesByDomain[domains[i]] != summary.PagesByDomain[domains[j]] {
			return summary.PagesByDomain[domains[i]] > summary.PagesByDomain[domains[j]]
		}
		return domains[i] < domains[j]
	})
	for _, domain := range domains {
		fmt.Fprintf(&b, "- %s: %d\n", domain, summary.PagesByDomain[domain])
	}
	b.WriteString("\n")

	b.WriteString("## Saved Pages\n\n")
	fmt.Fprintf(&b, "- Pages with content saved: %d\n", summary.SavedPages)
	if summary.LongestPageURL != "" {
		fmt.Fprintf(&b, "- Longest page: %s (%d words)\n", summary.LongestPageURL, summary.LongestPageWords)
	}
	b.WriteString("\n")

	if len(summary.TopWords) > 0 {
		b.WriteString("## Top Words\n\n")
		for i, wc := range summary.TopWords {
			fmt.Fprintf(&b, "%d. %s (%d)\n", i+1, wc.Word, wc.Count)
		}
		b.WriteString("\n")
	}

	rendered := []byte(b.String())
	if err := validateStructure(rendered); err != nil {
		return nil, err
	}
	return rendered, nil
}

// Write renders the report for summary and writes it to path.
func (g *Generator) Write(summary Summary, path string) error {
	rendered, err := g.Render(summary)
	if err != nil {
		return err
	}
	return os.WriteFile(path, rendered, 0644)
}
