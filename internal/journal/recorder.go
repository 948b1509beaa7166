package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/anvik-1/spacetime-crawler/pkg/fileutil"
)

/*
Journal records what the crawl did, for post-run auditability and
failure diagnostics. It owns:
- the append-only JSON-lines processing log,
- rejection counters with up to 5 sampled URLs per reason,
- duplicate counters,
- progress counters,
- the Prometheus registry.

Recording is observational only and MUST NOT influence scheduling,
retries, or crawl termination.
*/

const rejectionSampleLimit = 5

type Sink interface {
	RecordFetch(workerID int, url string, status int, duration time.Duration)
	RecordProcessed(workerID int, url string, linkCount int)
	RecordRejection(url string, reason string)
	RecordDuplicate(url string, kind string)
	RecordPageSaved(url string, path string)
	RecordError(observedAt time.Time, packageName string, action string, cause Cause, errorString string, attrs []Attribute)
	RecordWorkerEvent(workerID int, message string)
}

type Finalizer interface {
	RecordFinalCrawlStats(totalProcessed int64, totalErrors int64, totalSaved int64, duration time.Duration)
}

type Recorder struct {
	logger  zerolog.Logger
	logPath string

	logMu sync.Mutex // serializes processing-log appends

	statsMu          sync.Mutex
	processed        int64
	saved            int64
	errors           int64
	rejectionCounts  map[string]int64
	rejectionSamples map[string][]string
	duplicateCounts  map[string]int64

	registry        *prometheus.Registry
	processedMetric prometheus.Counter
	savedMetric     prometheus.Counter
	rejectedMetric  *prometheus.CounterVec
	duplicateMetric *prometheus.CounterVec
	errorMetric     prometheus.Counter
}

// NewRecorder creates a Recorder appending its processing log under
// logDir. The directory is created if missing.
func NewRecorder(logger zerolog.Logger, logDir string) (*Recorder, error) {
	if err := fileutil.EnsureDir(logDir); err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Recorder{
		logger:           logger.With().Str("component", "journal").Logger(),
		logPath:          filepath.Join(logDir, "processing.jsonl"),
		rejectionCounts:  make(map[string]int64),
		rejectionSamples: make(map[string][]string),
		duplicateCounts:  make(map[string]int64),
		registry:         registry,
		processedMetric: factory.NewCounter(prometheus.CounterOpts{
			Name: "crawler_pages_processed_total",
			Help: "URLs dequeued and fully processed.",
		}),
		savedMetric: factory.NewCounter(prometheus.CounterOpts{
			Name: "crawler_pages_saved_total",
			Help: "Page records persisted to the page store.",
		}),
		rejectedMetric: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "crawler_url_rejections_total",
			Help: "URLs rejected by the admission filter, by reason.",
		}, []string{"reason"}),
		duplicateMetric: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "crawler_duplicate_pages_total",
			Help: "Pages classified as duplicate content, by kind.",
		}, []string{"kind"}),
		errorMetric: factory.NewCounter(prometheus.CounterOpts{
			Name: "crawler_errors_total",
			Help: "Errors recorded during the crawl.",
		}),
	}, nil
}

// Registry exposes the Prometheus registry for the optional /metrics
// listener wired by the launcher.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) RecordFetch(workerID int, url string, status int, duration time.Duration) {
	r.logger.Info().
		Int("worker", workerID).
		Str("url", url).
		Int("status", status).
		Dur("duration", duration).
		Msg("downloaded")

	r.appendEvent(event{
		Timestamp: time.Now(),
		Kind:      "fetch",
		URL:       url,
		Status:    status,
		Worker:    workerID,
	})
}

func (r *Recorder) RecordProcessed(workerID int, url string, linkCount int) {
	r.statsMu.Lock()
	r.processed++
	r.statsMu.Unlock()
	r.processedMetric.Inc()

	r.logger.Info().
		Int("worker", workerID).
		Str("url", url).
		Int("links", linkCount).
		Msg("processed")

	r.appendEvent(event{
		Timestamp: time.Now(),
		Kind:      "processed",
		URL:       url,
		Links:     linkCount,
		Worker:    workerID,
	})
}

func (r *Recorder) RecordRejection(url string, reason string) {
	r.statsMu.Lock()
	r.rejectionCounts[reason]++
	if samples := r.rejectionSamples[reason]; len(samples) < rejectionSampleLimit {
		r.rejectionSamples[reason] = append(samples, url)
	}
	r.statsMu.Unlock()
	r.rejectedMetric.WithLabelValues(reason).Inc()
}

func (r *Recorder) RecordDuplicate(url string, kind string) {
	r.statsMu.Lock()
	r.duplicateCounts[kind]++
	r.statsMu.Unlock()
	r.duplicateMetric.WithLabelValues(kind).Inc()

	r.appendEvent(event{
		Timestamp: time.Now(),
		Kind:      "duplicate",
		URL:       url,
		Reason:    kind,
	})
}

func (r *Recorder) RecordPageSaved(url string, path string) {
	r.statsMu.Lock()
	r.saved++
	r.statsMu.Unlock()
	r.savedMetric.Inc()

	r.appendEvent(event{
		Timestamp: time.Now(),
		Kind:      "saved",
		URL:       url,
		Message:   path,
	})
}

func (r *Recorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause Cause,
	errorString string,
	attrs []Attribute,
) {
	r.statsMu.Lock()
	r.errors++
	r.statsMu.Unlock()
	r.errorMetric.Inc()

	logEvent := r.logger.Error().
		Str("package", packageName).
		Str("action", action).
		Str("cause", cause.String())
	for _, attr := range attrs {
		logEvent = logEvent.Str(string(attr.Key), attr.Value)
	}
	logEvent.Msg(errorString)

	r.appendEvent(event{
		Timestamp: observedAt,
		Kind:      "error",
		Reason:    cause.String(),
		Message:   fmt.Sprintf("%s.%s: %s", packageName, action, errorString),
	})
}

func (r *Recorder) RecordWorkerEvent(workerID int, message string) {
	r.logger.Info().Int("worker", workerID).Msg(message)
}

func (r *Recorder) RecordFinalCrawlStats(totalProcessed int64, totalErrors int64, totalSaved int64, duration time.Duration) {
	r.logger.Info().
		Int64("processed", totalProcessed).
		Int64("errors", totalErrors).
		Int64("saved", totalSaved).
		Dur("duration", duration).
		Msg("crawl finished")

	r.appendEvent(event{
		Timestamp: time.Now(),
		Kind:      "final",
		Message: fmt.Sprintf("processed=%d errors=%d saved=%d duration=%s",
			totalProcessed, totalErrors, totalSaved, duration),
	})
}

// StatsSnapshot copies the observational counters.
func (r *Recorder) StatsSnapshot() Snapshot {
	r.statsMu.Lock()
	defer r.statsMu.Unlock()

	rejections := make(map[string]int64, len(r.rejectionCounts))
	for k, v := range r.rejectionCounts {
		rejections[k] = v
	}
	duplicates := make(map[string]int64, len(r.duplicateCounts))
	for k, v := range r.duplicateCounts {
		duplicates[k] = v
	}
	return Snapshot{
		Processed:  r.processed,
		Saved:      r.saved,
		Rejections: rejections,
		Duplicates: duplicates,
		Errors:     r.errors,
	}
}

// WriteReports writes the plain-text rejection and duplicate reports
// next to the processing log.
func (r *Recorder) WriteReports() error {
	r.statsMu.Lock()
	rejectionReasons := make([]string, 0, len(r.rejectionCounts))
	for reason := range r.rejectionCounts {
		rejectionReasons = append(rejectionReasons, reason)
	}
	sort.Strings(rejectionReasons)

	rejectionBody := ""
	for _, reason := range rejectionReasons {
		rejectionBody += fmt.Sprintf("%s: %d\n", reason, r.rejectionCounts[reason])
		for _, sample := range r.rejectionSamples[reason] {
			rejectionBody += fmt.Sprintf("  %s\n", sample)
		}
	}

	duplicateKinds := make([]string, 0, len(r.duplicateCounts))
	for kind := range r.duplicateCounts {
		duplicateKinds = append(duplicateKinds, kind)
	}
	sort.Strings(duplicateKinds)

	duplicateBody := ""
	for _, kind := range duplicateKinds {
		duplicateBody += fmt.Sprintf("%s: %d\n", kind, r.duplicateCounts[kind])
	}
	r.statsMu.Unlock()

	dir := filepath.Dir(r.logPath)
	if err := os.WriteFile(filepath.Join(dir, "rejection_report.txt"), []byte(rejectionBody), 0644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "duplicate_report.txt"), []byte(duplicateBody), 0644)
}

func (r *Recorder) appendEvent(e event) {
	line, err := json.Marshal(e)
	if err != nil {
		r.logger.Error().Err(err).Msg("marshal processing-log event")
		return
	}

	r.logMu.Lock()
	defer r.logMu.Unlock()
	if err := fileutil.AppendLine(r.logPath, line); err != nil {
		r.logger.Error().Err(err).Msg("append processing-log event")
	}
}
