package storage_test

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/anvik-1/spacetime-crawler/internal/storage"
	"github.com/anvik-1/spacetime-crawler/pkg/hashutil"
)

func TestPageStore_WriteRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "crawl_data")
	store := storage.NewPageStore(dir, hashutil.HashAlgoMD5, nil)

	record := storage.PageRecord{
		URL:         "https://cs.uci.edu/research",
		WordCount:   3,
		Words:       []string{"alpha", "beta", "gamma"},
		ContentHash: "abc123",
	}

	result, err := store.Write(record)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	wantHash := md5.Sum([]byte("https://cs.uci.edu/research"))
	wantName := hex.EncodeToString(wantHash[:]) + ".json"
	if filepath.Base(result.Path()) != wantName {
		t.Errorf("filename = %s, want %s", filepath.Base(result.Path()), wantName)
	}

	content, readErr := os.ReadFile(result.Path())
	if readErr != nil {
		t.Fatalf("read failed: %v", readErr)
	}

	var decoded storage.PageRecord
	if jsonErr := json.Unmarshal(content, &decoded); jsonErr != nil {
		t.Fatalf("record is not valid JSON: %v", jsonErr)
	}
	if decoded.URL != record.URL || decoded.WordCount != 3 || len(decoded.Words) != 3 {
		t.Errorf("round-trip mismatch: %+v", decoded)
	}
}

func TestPageStore_TruncatesWordsToThousand(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "crawl_data")
	store := storage.NewPageStore(dir, hashutil.HashAlgoMD5, nil)

	words := make([]string, 1500)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}

	result, err := store.Write(storage.PageRecord{
		URL:       "https://cs.uci.edu/long",
		WordCount: 1500,
		Words:     words,
	})
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	content, _ := os.ReadFile(result.Path())
	var decoded storage.PageRecord
	if jsonErr := json.Unmarshal(content, &decoded); jsonErr != nil {
		t.Fatal(jsonErr)
	}
	if len(decoded.Words) != 1000 {
		t.Errorf("stored words = %d, want 1000", len(decoded.Words))
	}
	if decoded.WordCount != 1500 {
		t.Errorf("word count = %d, want 1500 (pre-truncation)", decoded.WordCount)
	}
}

func TestPageStore_OverwriteSafeRerun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "crawl_data")
	store := storage.NewPageStore(dir, hashutil.HashAlgoMD5, nil)

	record := storage.PageRecord{URL: "https://cs.uci.edu/page", WordCount: 1, Words: []string{"x"}}

	first, err := store.Write(record)
	if err != nil {
		t.Fatal(err)
	}
	second, err := store.Write(record)
	if err != nil {
		t.Fatal(err)
	}
	if first.Path() != second.Path() {
		t.Errorf("rerun produced a different path: %s vs %s", first.Path(), second.Path())
	}
}

func TestPageStore_EquivalentURLSpellingsShareAFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "crawl_data")
	store := storage.NewPageStore(dir, hashutil.HashAlgoMD5, nil)

	a, err := store.Write(storage.PageRecord{URL: "https://cs.uci.edu/page"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := store.Write(storage.PageRecord{URL: "HTTPS://CS.UCI.EDU/page#x"})
	if err != nil {
		t.Fatal(err)
	}
	if a.URLHash() != b.URLHash() {
		t.Errorf("equivalent spellings keyed differently: %s vs %s", a.URLHash(), b.URLHash())
	}
}
