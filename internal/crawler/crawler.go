package crawler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/anvik-1/spacetime-crawler/internal/admission"
	"github.com/anvik-1/spacetime-crawler/internal/config"
	"github.com/anvik-1/spacetime-crawler/internal/dupdetect"
	"github.com/anvik-1/spacetime-crawler/internal/extractor"
	"github.com/anvik-1/spacetime-crawler/internal/fetcher"
	"github.com/anvik-1/spacetime-crawler/internal/frontier"
	"github.com/anvik-1/spacetime-crawler/internal/journal"
	"github.com/anvik-1/spacetime-crawler/internal/scraper"
	"github.com/anvik-1/spacetime-crawler/internal/storage"
	"github.com/anvik-1/spacetime-crawler/internal/trap"
	"github.com/anvik-1/spacetime-crawler/internal/worker"
	"github.com/anvik-1/spacetime-crawler/pkg/limiter"
	"github.com/anvik-1/spacetime-crawler/pkg/retry"
	"github.com/anvik-1/spacetime-crawler/pkg/timeutil"
)

/*
CrawlContext aggregates the crawl's shared state: frontier, admission
filter, trap detector, duplicate detector, page store, and the journal.
Everything is constructed here and passed by reference to the workers;
there are no package-level singletons.
*/
type CrawlContext struct {
	cfg      config.Config
	logger   zerolog.Logger
	recorder *journal.Recorder

	crawlFront  *frontier.Frontier
	filter      *admission.Filter
	dupDetector *dupdetect.Detector
	pipeline    scraper.Pipeline
	htmlFetcher fetcher.Fetcher
}

func New(cfg config.Config, logger zerolog.Logger) (*CrawlContext, error) {
	recorder, err := journal.NewRecorder(logger, cfg.LogDir())
	if err != nil {
		return nil, err
	}

	filter := admission.NewFilter(
		cfg.AllowedDomains(),
		cfg.MaxURLLength(),
		trap.NewDetector(),
		recorder,
	)

	crawlFront := frontier.NewFrontier(
		cfg.SaveFile(),
		cfg.SeedURLs(),
		cfg.TimeDelay(),
		limiter.NewConcurrentHostLimiter(),
		recorder,
		logger,
	)

	retryParam := retry.NewRetryParam(
		cfg.Jitter(),
		cfg.RandomSeed(),
		cfg.MaxAttempt(),
		timeutil.NewBackoffParam(
			cfg.BackoffInitialDuration(),
			cfg.BackoffMultiplier(),
			cfg.BackoffMaxDuration(),
		),
	)
	htmlFetcher, err := fetcher.NewHTTPFetcher(
		cfg.UserAgent(),
		cfg.Timeout(),
		cfg.CacheServer(),
		retryParam,
		recorder,
	)
	if err != nil {
		return nil, err
	}

	dupDetector := dupdetect.NewDetector(cfg.SimhashWindow(), cfg.SimhashThreshold(), recorder)
	domExtractor := extractor.NewDomExtractor()
	pageStore := storage.NewPageStore(cfg.PageStoreDir(), cfg.HashAlgo(), recorder)
	pipeline := scraper.NewPipeline(
		&domExtractor,
		dupDetector,
		filter,
		&pageStore,
		recorder,
		logger,
	)

	return &CrawlContext{
		cfg:         cfg,
		logger:      logger.With().Str("component", "crawler").Logger(),
		recorder:    recorder,
		crawlFront:  crawlFront,
		filter:      filter,
		dupDetector: dupDetector,
		pipeline:    pipeline,
		htmlFetcher: htmlFetcher,
	}, nil
}

// Recorder exposes the journal for the launcher (metrics endpoint,
// final snapshot printing).
func (c *CrawlContext) Recorder() *journal.Recorder {
	return c.recorder
}

// Run executes the crawl to completion: initialize the frontier, start
// the configured number of workers, wait for them to drain the
// frontier, then flush the reports. Cancelling ctx stops the workers
// after their in-flight URLs complete.
func (c *CrawlContext) Run(ctx context.Context, restart bool) error {
	crawlStart := time.Now()

	if err := c.crawlFront.Init(restart, c.filter); err != nil {
		return err
	}
	defer c.crawlFront.Close()

	metricsShutdown := c.serveMetrics()
	defer metricsShutdown()

	var wg sync.WaitGroup
	for id := 1; id <= c.cfg.Workers(); id++ {
		w := worker.NewWorker(
			id,
			c.crawlFront,
			c.htmlFetcher,
			&c.pipeline,
			c.recorder,
			timeutil.NewRealSleeper(),
			c.logger,
			worker.DefaultParam(),
		)
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Run(ctx)
		}()
	}
	wg.Wait()

	snapshot := c.recorder.StatsSnapshot()
	c.recorder.RecordFinalCrawlStats(
		snapshot.Processed,
		snapshot.Errors,
		snapshot.Saved,
		time.Since(crawlStart),
	)
	if err := c.recorder.WriteReports(); err != nil {
		c.logger.Error().Err(err).Msg("writing reports failed")
	}
	return nil
}

// serveMetrics starts the optional /metrics listener and returns its
// shutdown function.
func (c *CrawlContext) serveMetrics() func() {
	addr := c.cfg.MetricsAddr()
	if addr == "" {
		return func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(c.recorder.Registry(), promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			c.logger.Error().Err(err).Str("addr", addr).Msg("metrics listener failed")
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}
}
