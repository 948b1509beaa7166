package cmd

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/anvik-1/spacetime-crawler/internal/build"
	"github.com/anvik-1/spacetime-crawler/internal/config"
	"github.com/anvik-1/spacetime-crawler/internal/crawler"
)

var (
	cfgFile     string
	restart     bool
	seedURLs    []string
	saveFile    string
	timeDelay   time.Duration
	workers     int
	cacheServer string
	userAgent   string
	timeout     time.Duration
	pageStore   string
	logDir      string
	metricsAddr string
)

// parseSeedURLs converts a string slice of URLs to []url.URL
func parseSeedURLs(urlStrings []string) ([]url.URL, error) {
	if len(urlStrings) == 0 {
		return nil, fmt.Errorf("seed URLs cannot be empty")
	}

	var urls []url.URL
	for _, urlStr := range urlStrings {
		parsedURL, err := url.Parse(urlStr)
		if err != nil {
			return nil, fmt.Errorf("error parsing seed URL %s: %w", urlStr, err)
		}
		urls = append(urls, *parsedURL)
	}
	return urls, nil
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "spacetime-crawler",
	Short: "A polite, multi-worker web crawler for a fixed set of hostnames.",
	Long: `spacetime-crawler walks a small allow-list of related hostnames with
per-host politeness, durable restartable state, trap detection, and
exact + near-duplicate content filtering.

The frontier survives crashes: interrupted URLs are re-enqueued on the
next start, and --restart discards all saved state to begin fresh.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig()
		if err != nil {
			return err
		}

		logger := newLogger()

		crawlContext, err := crawler.New(cfg, logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := crawlContext.Run(ctx, restart); err != nil {
			return err
		}

		snapshot := crawlContext.Recorder().StatsSnapshot()
		fmt.Printf("Crawl finished: %d processed, %d saved, %d errors\n",
			snapshot.Processed, snapshot.Saved, snapshot.Errors)
		return nil
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file path (e.g., /home/myuser/config.json)")
	rootCmd.Flags().BoolVar(&restart, "restart", false, "discard the save file and start from the seed URLs")
	rootCmd.Flags().StringArrayVar(&seedURLs, "seed-url", []string{}, "one or more starting URLs (can be repeated)")
	rootCmd.Flags().StringVar(&saveFile, "save-file", "", "path of the durable frontier store")
	rootCmd.Flags().DurationVar(&timeDelay, "time-delay", 0, "politeness delay between fetches to the same host")
	rootCmd.Flags().IntVar(&workers, "workers", 0, "number of concurrent crawl workers")
	rootCmd.Flags().StringVar(&cacheServer, "cache-server", "", "upstream cache server for the fetcher")
	rootCmd.Flags().StringVar(&userAgent, "user-agent", "", "user agent string for HTTP requests")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 0, "timeout for HTTP requests")
	rootCmd.Flags().StringVar(&pageStore, "page-store-dir", "", "directory for saved page records")
	rootCmd.Flags().StringVar(&logDir, "log-dir", "", "directory for the processing log and reports")
	rootCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "listen address for the Prometheus /metrics endpoint")

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveConfig builds the effective Config from the config file or the
// CLI flags, whichever was given.
func resolveConfig() (config.Config, error) {
	if cfgFile != "" {
		return config.WithConfigFile(cfgFile)
	}

	parsedURLs, err := parseSeedURLs(seedURLs)
	if err != nil {
		return config.Config{}, fmt.Errorf("%w (pass --seed-url or --config-file)", err)
	}

	configBuilder := config.WithDefault(parsedURLs)
	if saveFile != "" {
		configBuilder = configBuilder.WithSaveFile(saveFile)
	}
	if timeDelay > 0 {
		configBuilder = configBuilder.WithTimeDelay(timeDelay)
	}
	if workers > 0 {
		configBuilder = configBuilder.WithWorkers(workers)
	}
	if cacheServer != "" {
		configBuilder = configBuilder.WithCacheServer(cacheServer)
	}
	if userAgent != "" {
		configBuilder = configBuilder.WithUserAgent(userAgent)
	}
	if timeout > 0 {
		configBuilder = configBuilder.WithTimeout(timeout)
	}
	if pageStore != "" {
		configBuilder = configBuilder.WithPageStoreDir(pageStore)
	}
	if logDir != "" {
		configBuilder = configBuilder.WithLogDir(logDir)
	}
	if metricsAddr != "" {
		configBuilder = configBuilder.WithMetricsAddr(metricsAddr)
	}

	return configBuilder.Build()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(build.FullVersion())
	},
}

func newLogger() zerolog.Logger {
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(writer).With().Timestamp().Logger()
}
