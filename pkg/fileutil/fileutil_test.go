package fileutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/anvik-1/spacetime-crawler/pkg/fileutil"
)

func TestGetFileExtension(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"/a/b/page.html", "html"},
		{"/a/b/archive.tar.gz", "gz"},
		{"/a/b/noext", ""},
		{"/a/b/", ""},
		{"paper.PDF", "PDF"},
	}
	for _, c := range cases {
		if got := fileutil.GetFileExtension(c.path); got != c.want {
			t.Errorf("GetFileExtension(%q) = %q, want %q", c.path, got, c.want)
		}
	}
}

func TestEnsureDir(t *testing.T) {
	base := t.TempDir()

	if err := fileutil.EnsureDir(base, "nested", "deeper"); err != nil {
		t.Fatalf("EnsureDir failed: %v", err)
	}

	info, statErr := os.Stat(filepath.Join(base, "nested", "deeper"))
	if statErr != nil {
		t.Fatalf("expected directory to exist: %v", statErr)
	}
	if !info.IsDir() {
		t.Error("expected a directory")
	}

	// Idempotent on existing directory
	if err := fileutil.EnsureDir(base, "nested", "deeper"); err != nil {
		t.Errorf("EnsureDir on existing dir failed: %v", err)
	}
}

func TestAppendLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")

	if err := fileutil.AppendLine(path, []byte(`{"n":1}`)); err != nil {
		t.Fatalf("first append failed: %v", err)
	}
	if err := fileutil.AppendLine(path, []byte(`{"n":2}`)); err != nil {
		t.Fatalf("second append failed: %v", err)
	}

	content, readErr := os.ReadFile(path)
	if readErr != nil {
		t.Fatalf("read failed: %v", readErr)
	}
	want := "{\"n\":1}\n{\"n\":2}\n"
	if string(content) != want {
		t.Errorf("file content = %q, want %q", string(content), want)
	}
}
