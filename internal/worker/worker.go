package worker

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"

	"github.com/anvik-1/spacetime-crawler/internal/fetcher"
	"github.com/anvik-1/spacetime-crawler/internal/frontier"
	"github.com/anvik-1/spacetime-crawler/internal/journal"
	"github.com/anvik-1/spacetime-crawler/internal/scraper"
	"github.com/anvik-1/spacetime-crawler/pkg/timeutil"

	urlpkg "net/url"
)

/*
Worker runs the dequeue -> fetch -> process -> enqueue -> complete loop.

Error discipline: nothing a single URL does may take the worker down.
Fetch failures, parse panics, storage errors all end the same way: the
URL is marked complete so it is never retried forever, and the loop
moves on.

Termination: a worker exits when the frontier stays empty through
MaxIdleStreak consecutive polls AND the wall-clock idle time exceeds
MaxIdleTime AND nothing is queued. Cancelling the context forces an
exit after the in-flight URL is completed.
*/
type Worker struct {
	id          int
	crawlFront  *frontier.Frontier
	htmlFetcher fetcher.Fetcher
	pipeline    *scraper.Pipeline
	sink        journal.Sink
	sleeper     timeutil.Sleeper
	logger      zerolog.Logger
	param       Param
}

func NewWorker(
	id int,
	crawlFront *frontier.Frontier,
	htmlFetcher fetcher.Fetcher,
	pipeline *scraper.Pipeline,
	sink journal.Sink,
	sleeper timeutil.Sleeper,
	logger zerolog.Logger,
	param Param,
) *Worker {
	return &Worker{
		id:          id,
		crawlFront:  crawlFront,
		htmlFetcher: htmlFetcher,
		pipeline:    pipeline,
		sink:        sink,
		sleeper:     sleeper,
		logger:      logger.With().Str("component", "worker").Int("worker", id).Logger(),
		param:       param,
	}
}

func (w *Worker) Run(ctx context.Context) {
	w.sink.RecordWorkerEvent(w.id, "worker started")
	defer w.sink.RecordWorkerEvent(w.id, "worker stopped")

	idleStreak := 0
	lastSuccess := time.Now()

	for {
		if ctx.Err() != nil {
			return
		}

		u, ok := w.crawlFront.NextURL()
		if !ok {
			idleStreak++

			if idleStreak >= w.param.MaxIdleStreak && time.Since(lastSuccess) > w.param.MaxIdleTime {
				if w.crawlFront.TotalQueued() == 0 {
					w.logger.Info().Msg("frontier is empty, stopping")
					return
				}
				// URLs exist but every host is cooling down.
				w.logger.Info().
					Int("remaining", w.crawlFront.TotalQueued()).
					Msg("waiting for politeness delay")
				idleStreak = 0
				w.sleeper.Sleep(w.param.StuckSleep)
				continue
			}

			w.sleeper.Sleep(w.param.IdleSleep)
			continue
		}

		idleStreak = 0
		lastSuccess = time.Now()

		w.processOne(ctx, u)

		w.sleeper.Sleep(w.param.DampingSleep)
	}
}

// processOne handles a single dequeued URL. Completion is written in a
// deferred block so that panics and early returns cannot leave the URL
// eligible for infinite retry.
func (w *Worker) processOne(ctx context.Context, u urlpkg.URL) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error().
				Str("url", u.String()).
				Str("stack", string(debug.Stack())).
				Msgf("unexpected panic: %v", r)
			w.sink.RecordError(
				time.Now(),
				"worker",
				"Worker.processOne",
				journal.CauseUnknown,
				fmt.Sprintf("panic: %v", r),
				[]journal.Attribute{journal.NewAttr(journal.AttrURL, u.String())},
			)
		}
		if err := w.crawlFront.MarkURLComplete(u); err != nil {
			w.logger.Error().Str("url", u.String()).Err(err).Msg("mark complete failed")
		}
	}()

	resp, fetchErr := w.htmlFetcher.Fetch(ctx, u)
	if fetchErr != nil {
		// Already recorded by the fetcher; slow the host down.
		w.crawlFront.Backoff(u)
		return
	}

	switch {
	case resp.Status() == 200:
		w.crawlFront.ResetBackoff(u)
	case resp.Status() == 429 || resp.Status() >= 500:
		w.crawlFront.Backoff(u)
	}

	links := w.pipeline.Process(u, resp)

	for _, link := range links {
		if err := w.crawlFront.AddURL(link); err != nil {
			w.logger.Error().Str("url", link.String()).Err(err).Msg("add url failed")
		}
	}

	w.sink.RecordProcessed(w.id, u.String(), len(links))
}
