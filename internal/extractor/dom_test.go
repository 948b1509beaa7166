package extractor_test

import (
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/anvik-1/spacetime-crawler/internal/extractor"
)

func pageURL(t *testing.T, raw string) url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	return *u
}

const samplePage = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Sample</title>
  <link rel="stylesheet" href="/styles.css">
  <style>body { color: red; }</style>
  <script>var tracked = true;</script>
</head>
<body>
  <header>Site header navigation</header>
  <nav><a href="/nav-link">Nav</a></nav>
  <h1>Research   Projects</h1>
  <p>Our group studies      information retrieval.</p>
  <noscript>Enable JS</noscript>
  <a href="/projects/alpha">Alpha</a>
  <a href="projects/beta">Beta</a>
  <a href="https://stat.uci.edu/collab#team">Collab</a>
  <a href="#">Top</a>
  <a href="javascript:void(0)">Void</a>
  <a href="javascript:;">Noop</a>
  <a href="/page#section">Self section</a>
  <a href="/projects/alpha">Alpha again</a>
  <footer>Footer text</footer>
</body>
</html>`

func TestExtractText_RemovesBoilerplateAndCollapsesWhitespace(t *testing.T) {
	d := extractor.NewDomExtractor()

	text, err := d.ExtractText([]byte(samplePage))
	if err != nil {
		t.Fatalf("ExtractText failed: %v", err)
	}

	for _, banned := range []string{"color: red", "var tracked", "Site header", "Footer text", "Enable JS", "Nav"} {
		if strings.Contains(text, banned) {
			t.Errorf("boilerplate %q leaked into text: %q", banned, text)
		}
	}
	if !strings.Contains(text, "Research Projects") {
		t.Errorf("whitespace not collapsed: %q", text)
	}
	if !strings.Contains(text, "Our group studies information retrieval.") {
		t.Errorf("paragraph text missing or not collapsed: %q", text)
	}
}

func TestExtractLinks(t *testing.T) {
	d := extractor.NewDomExtractor()
	page := pageURL(t, "https://cs.uci.edu/page")

	links, err := d.ExtractLinks(page, []byte(samplePage))
	if err != nil {
		t.Fatalf("ExtractLinks failed: %v", err)
	}

	var got []string
	for _, l := range links {
		got = append(got, l.String())
	}
	sort.Strings(got)

	want := []string{
		"https://cs.uci.edu/nav-link",
		"https://cs.uci.edu/projects/alpha",
		"https://cs.uci.edu/projects/beta",
		"https://stat.uci.edu/collab",
	}
	if len(got) != len(want) {
		t.Fatalf("links = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("link[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestExtractLinks_DropsSelfReference(t *testing.T) {
	d := extractor.NewDomExtractor()
	page := pageURL(t, "https://cs.uci.edu/page")

	links, err := d.ExtractLinks(page, []byte(`<a href="/page">self</a><a href="/page#frag">self frag</a>`))
	if err != nil {
		t.Fatal(err)
	}
	if len(links) != 0 {
		t.Errorf("self references not dropped: %v", links)
	}
}

func TestExtractText_EmptyBody(t *testing.T) {
	d := extractor.NewDomExtractor()

	text, err := d.ExtractText(nil)
	if err != nil {
		t.Fatalf("ExtractText failed on empty body: %v", err)
	}
	if text != "" {
		t.Errorf("text = %q, want empty", text)
	}
}

