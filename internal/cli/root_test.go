package cmd

import (
	"testing"
	"time"
)

func resetFlags() {
	cfgFile = ""
	seedURLs = nil
	saveFile = ""
	timeDelay = 0
	workers = 0
	cacheServer = ""
	userAgent = ""
	timeout = 0
	pageStore = ""
	logDir = ""
	metricsAddr = ""
}

func TestParseSeedURLs(t *testing.T) {
	urls, err := parseSeedURLs([]string{"https://www.ics.uci.edu", "https://www.stat.uci.edu"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(urls) != 2 {
		t.Errorf("parsed %d urls, want 2", len(urls))
	}
	if urls[0].Host != "www.ics.uci.edu" {
		t.Errorf("host = %s", urls[0].Host)
	}
}

func TestParseSeedURLs_Empty(t *testing.T) {
	if _, err := parseSeedURLs(nil); err == nil {
		t.Error("expected error for empty seed list")
	}
}

func TestResolveConfig_FlagsOverrideDefaults(t *testing.T) {
	resetFlags()
	defer resetFlags()

	seedURLs = []string{"https://www.ics.uci.edu"}
	workers = 8
	timeDelay = time.Second
	saveFile = "custom.db"

	cfg, err := resolveConfig()
	if err != nil {
		t.Fatalf("resolveConfig failed: %v", err)
	}

	if cfg.Workers() != 8 {
		t.Errorf("Workers = %d, want 8", cfg.Workers())
	}
	if cfg.TimeDelay() != time.Second {
		t.Errorf("TimeDelay = %v, want 1s", cfg.TimeDelay())
	}
	if cfg.SaveFile() != "custom.db" {
		t.Errorf("SaveFile = %s, want custom.db", cfg.SaveFile())
	}
}

func TestResolveConfig_RequiresSeeds(t *testing.T) {
	resetFlags()
	defer resetFlags()

	if _, err := resolveConfig(); err == nil {
		t.Error("expected error without seeds or config file")
	}
}
