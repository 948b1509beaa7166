package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/anvik-1/spacetime-crawler/pkg/hashutil"
)

// DefaultAllowedDomains is the crawl allow-list. A URL is admitted when
// its host equals one of these or is a subdomain of one.
var DefaultAllowedDomains = []string{
	"ics.uci.edu",
	"cs.uci.edu",
	"informatics.uci.edu",
	"stat.uci.edu",
}

type Config struct {
	//===============
	//  Crawl scope
	//===============
	// Initial pages given to the crawler to begin discovering and traversing other pages.
	seedURLs []url.URL
	// Domains the crawl is allowed to touch (exact host or subdomain match).
	allowedDomains []string

	//===============
	// Politeness
	//===============
	// Minimum, fixed waiting time enforced between two dequeues for the same host.
	timeDelay time.Duration
	// Number of crawl worker goroutines processing URLs concurrently.
	workers int

	//===============
	// Fetch
	//===============
	// Fetcher-specific upstream; opaque to the core.
	cacheServer string
	// User agent used in the request header
	userAgent string
	// Maximum time of a single fetch request
	timeout time.Duration
	// maximum attempts during retry
	maxAttempt int
	// initial delay for backoff
	backoffInitialDuration time.Duration
	// multiplier during exponential backoff
	backoffMultiplier float64
	// capped maximum delay for backoff to stop exponential multiplication
	backoffMaxDuration time.Duration
	// Randomized variation added on top of backoff delays
	jitter time.Duration
	// Controls the random number generator
	randomSeed int64

	//===============
	// Admission & dedup
	//===============
	// URLs longer than this are rejected outright
	maxURLLength int
	// Capacity of the near-duplicate fingerprint ring
	simhashWindow int
	// Maximum Hamming distance at which two fingerprints count as near-duplicates
	simhashThreshold int

	//===============
	// Output
	//===============
	// Path of the durable frontier store
	saveFile string
	// Directory holding one JSON record per saved page
	pageStoreDir string
	// Directory holding the processing log and reports
	logDir string
	// Hash algorithm for page-record content hashes (URL identity is always MD5)
	hashAlgo hashutil.HashAlgo
	// Optional listen address for the Prometheus /metrics endpoint
	metricsAddr string
}

type configDTO struct {
	SeedURLs               []string      `json:"seedUrls"`
	AllowedDomains         []string      `json:"allowedDomains,omitempty"`
	TimeDelay              time.Duration `json:"timeDelay,omitempty"`
	Workers                int           `json:"workers,omitempty"`
	CacheServer            string        `json:"cacheServer,omitempty"`
	UserAgent              string        `json:"userAgent,omitempty"`
	Timeout                time.Duration `json:"timeout,omitempty"`
	MaxAttempt             int           `json:"maxAttempt,omitempty"`
	BackoffInitialDuration time.Duration `json:"backoffInitialDuration,omitempty"`
	BackoffMultiplier      float64       `json:"backoffMultiplier,omitempty"`
	BackoffMaxDuration     time.Duration `json:"backoffMaxDuration,omitempty"`
	Jitter                 time.Duration `json:"jitter,omitempty"`
	RandomSeed             int64         `json:"randomSeed,omitempty"`
	MaxURLLength           int           `json:"maxUrlLength,omitempty"`
	SimhashWindow          int           `json:"simhashWindow,omitempty"`
	SimhashThreshold       int           `json:"simhashThreshold,omitempty"`
	SaveFile               string        `json:"saveFile,omitempty"`
	PageStoreDir           string        `json:"pageStoreDir,omitempty"`
	LogDir                 string        `json:"logDir,omitempty"`
	HashAlgo               string        `json:"hashAlgo,omitempty"`
	MetricsAddr            string        `json:"metricsAddr,omitempty"`
}

// envOverrides are applied last, on top of config-file values
// (WithConfigFile). Configs built from flags do not read them.
type envOverrides struct {
	TimeDelay   time.Duration `env:"CRAWLER_TIME_DELAY"`
	Workers     int           `env:"CRAWLER_WORKERS"`
	CacheServer string        `env:"CRAWLER_CACHE_SERVER"`
	UserAgent   string        `env:"CRAWLER_USER_AGENT"`
	SaveFile    string        `env:"CRAWLER_SAVE_FILE"`
	LogDir      string        `env:"CRAWLER_LOG_DIR"`
	MetricsAddr string        `env:"CRAWLER_METRICS_ADDR"`
}

func newConfigFromDTO(dto configDTO) (Config, error) {
	seedURLs, err := parseSeedURLs(dto.SeedURLs)
	if err != nil {
		return Config{}, err
	}

	// Start with default config
	cfg, err := WithDefault(seedURLs).Build()
	if err != nil {
		return Config{}, err
	}

	if len(dto.AllowedDomains) > 0 {
		cfg.allowedDomains = dto.AllowedDomains
	}
	if dto.TimeDelay != 0 {
		cfg.timeDelay = dto.TimeDelay
	}
	if dto.Workers != 0 {
		cfg.workers = dto.Workers
	}
	if dto.CacheServer != "" {
		cfg.cacheServer = dto.CacheServer
	}
	if dto.UserAgent != "" {
		cfg.userAgent = dto.UserAgent
	}
	if dto.Timeout != 0 {
		cfg.timeout = dto.Timeout
	}
	if dto.MaxAttempt != 0 {
		cfg.maxAttempt = dto.MaxAttempt
	}
	if dto.BackoffInitialDuration != 0 {
		cfg.backoffInitialDuration = dto.BackoffInitialDuration
	}
	if dto.BackoffMultiplier != 0 {
		cfg.backoffMultiplier = dto.BackoffMultiplier
	}
	if dto.BackoffMaxDuration != 0 {
		cfg.backoffMaxDuration = dto.BackoffMaxDuration
	}
	if dto.Jitter != 0 {
		cfg.jitter = dto.Jitter
	}
	if dto.RandomSeed != 0 {
		cfg.randomSeed = dto.RandomSeed
	}
	if dto.MaxURLLength != 0 {
		cfg.maxURLLength = dto.MaxURLLength
	}
	if dto.SimhashWindow != 0 {
		cfg.simhashWindow = dto.SimhashWindow
	}
	if dto.SimhashThreshold != 0 {
		cfg.simhashThreshold = dto.SimhashThreshold
	}
	if dto.SaveFile != "" {
		cfg.saveFile = dto.SaveFile
	}
	if dto.PageStoreDir != "" {
		cfg.pageStoreDir = dto.PageStoreDir
	}
	if dto.LogDir != "" {
		cfg.logDir = dto.LogDir
	}
	if dto.HashAlgo != "" {
		cfg.hashAlgo = hashutil.HashAlgo(dto.HashAlgo)
	}
	if dto.MetricsAddr != "" {
		cfg.metricsAddr = dto.MetricsAddr
	}

	return cfg, nil
}

func parseSeedURLs(raw []string) ([]url.URL, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: seedUrls cannot be empty", ErrInvalidConfig)
	}
	urls := make([]url.URL, 0, len(raw))
	for _, s := range raw {
		parsed, err := url.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("%w: seed URL %q: %s", ErrConfigParsingFail, s, err.Error())
		}
		urls = append(urls, *parsed)
	}
	return urls, nil
}

func WithConfigFile(path string) (Config, error) {
	_, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	configContent, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}
	cfgDTO := configDTO{}

	err = json.Unmarshal(configContent, &cfgDTO)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	cfg, err := newConfigFromDTO(cfgDTO)
	if err != nil {
		return Config{}, err
	}
	return applyEnvOverrides(cfg)
}

func applyEnvOverrides(cfg Config) (Config, error) {
	overrides := envOverrides{}
	if err := env.Parse(&overrides); err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrEnvParsingFail, err.Error())
	}

	if overrides.TimeDelay != 0 {
		cfg.timeDelay = overrides.TimeDelay
	}
	if overrides.Workers != 0 {
		cfg.workers = overrides.Workers
	}
	if overrides.CacheServer != "" {
		cfg.cacheServer = overrides.CacheServer
	}
	if overrides.UserAgent != "" {
		cfg.userAgent = overrides.UserAgent
	}
	if overrides.SaveFile != "" {
		cfg.saveFile = overrides.SaveFile
	}
	if overrides.LogDir != "" {
		cfg.logDir = overrides.LogDir
	}
	if overrides.MetricsAddr != "" {
		cfg.metricsAddr = overrides.MetricsAddr
	}
	return cfg, nil
}

// WithDefault creates a new Config with the provided seed URLs and default values for all other fields.
// seedUrls is mandatory and must not be empty - an error will be returned from Build if it is.
func WithDefault(seedUrls []url.URL) *Config {
	defaultConfig := Config{
		seedURLs:               seedUrls,
		allowedDomains:         DefaultAllowedDomains,
		timeDelay:              500 * time.Millisecond,
		workers:                4,
		userAgent:              "spacetime-crawler/1.0",
		timeout:                10 * time.Second,
		maxAttempt:             3,
		backoffInitialDuration: 100 * time.Millisecond,
		backoffMultiplier:      2.0,
		backoffMaxDuration:     10 * time.Second,
		jitter:                 0,
		randomSeed:             time.Now().UnixNano(),
		maxURLLength:           600,
		simhashWindow:          1000,
		simhashThreshold:       10,
		saveFile:               "frontier.db",
		pageStoreDir:           "crawl_data",
		logDir:                 "logs",
		hashAlgo:               hashutil.HashAlgoMD5,
	}
	return &defaultConfig
}

func (c *Config) WithSeedUrls(urls []url.URL) *Config {
	c.seedURLs = urls
	return c
}

func (c *Config) WithAllowedDomains(domains []string) *Config {
	c.allowedDomains = domains
	return c
}

func (c *Config) WithTimeDelay(delay time.Duration) *Config {
	c.timeDelay = delay
	return c
}

func (c *Config) WithWorkers(workers int) *Config {
	c.workers = workers
	return c
}

func (c *Config) WithCacheServer(server string) *Config {
	c.cacheServer = server
	return c
}

func (c *Config) WithUserAgent(agent string) *Config {
	c.userAgent = agent
	return c
}

func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.timeout = timeout
	return c
}

func (c *Config) WithMaxAttempt(attempts int) *Config {
	c.maxAttempt = attempts
	return c
}

func (c *Config) WithJitter(jitter time.Duration) *Config {
	c.jitter = jitter
	return c
}

func (c *Config) WithRandomSeed(seed int64) *Config {
	c.randomSeed = seed
	return c
}

func (c *Config) WithMaxURLLength(length int) *Config {
	c.maxURLLength = length
	return c
}

func (c *Config) WithSimhashWindow(window int) *Config {
	c.simhashWindow = window
	return c
}

func (c *Config) WithSimhashThreshold(threshold int) *Config {
	c.simhashThreshold = threshold
	return c
}

func (c *Config) WithSaveFile(path string) *Config {
	c.saveFile = path
	return c
}

func (c *Config) WithPageStoreDir(dir string) *Config {
	c.pageStoreDir = dir
	return c
}

func (c *Config) WithLogDir(dir string) *Config {
	c.logDir = dir
	return c
}

func (c *Config) WithHashAlgo(algo hashutil.HashAlgo) *Config {
	c.hashAlgo = algo
	return c
}

func (c *Config) WithMetricsAddr(addr string) *Config {
	c.metricsAddr = addr
	return c
}

func (c *Config) Build() (Config, error) {
	if len(c.seedURLs) == 0 {
		return Config{}, fmt.Errorf("%w: seedUrls cannot be empty", ErrInvalidConfig)
	}
	if c.workers < 1 {
		return Config{}, fmt.Errorf("%w: workers must be >= 1", ErrInvalidConfig)
	}
	if c.timeDelay < 0 {
		return Config{}, fmt.Errorf("%w: timeDelay cannot be negative", ErrInvalidConfig)
	}
	if c.simhashWindow < 1 {
		return Config{}, fmt.Errorf("%w: simhashWindow must be >= 1", ErrInvalidConfig)
	}
	switch c.hashAlgo {
	case hashutil.HashAlgoMD5, hashutil.HashAlgoSHA256, hashutil.HashAlgoBLAKE3:
	default:
		return Config{}, fmt.Errorf("%w: unsupported hashAlgo %q", ErrInvalidConfig, c.hashAlgo)
	}
	return *c, nil
}

func (c Config) SeedURLs() []url.URL              { return c.seedURLs }
func (c Config) AllowedDomains() []string         { return c.allowedDomains }
func (c Config) TimeDelay() time.Duration         { return c.timeDelay }
func (c Config) Workers() int                     { return c.workers }
func (c Config) CacheServer() string              { return c.cacheServer }
func (c Config) UserAgent() string                { return c.userAgent }
func (c Config) Timeout() time.Duration           { return c.timeout }
func (c Config) MaxAttempt() int                  { return c.maxAttempt }
func (c Config) BackoffInitialDuration() time.Duration { return c.backoffInitialDuration }
func (c Config) BackoffMultiplier() float64       { return c.backoffMultiplier }
func (c Config) BackoffMaxDuration() time.Duration { return c.backoffMaxDuration }
func (c Config) Jitter() time.Duration            { return c.jitter }
func (c Config) RandomSeed() int64                { return c.randomSeed }
func (c Config) MaxURLLength() int                { return c.maxURLLength }
func (c Config) SimhashWindow() int               { return c.simhashWindow }
func (c Config) SimhashThreshold() int            { return c.simhashThreshold }
func (c Config) SaveFile() string                 { return c.saveFile }
func (c Config) PageStoreDir() string             { return c.pageStoreDir }
func (c Config) LogDir() string                   { return c.logDir }
func (c Config) HashAlgo() hashutil.HashAlgo      { return c.hashAlgo }
func (c Config) MetricsAddr() string              { return c.metricsAddr }
