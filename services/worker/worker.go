// Package worker refreshes the XD calendar ahead of time so the store stays
// warm without waiting for symbol lookups.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/sukhantharot/dividend-stocks/internal/dividend"
	"github.com/sukhantharot/dividend-stocks/internal/scraper"
	"github.com/sukhantharot/dividend-stocks/internal/store"
	"github.com/sukhantharot/dividend-stocks/logger"
	"github.com/sukhantharot/dividend-stocks/services/publisher"
)

// CalendarCrawler is the page-crawl capability the worker drives
type CalendarCrawler interface {
	Crawl(ctx context.Context, src *scraper.Source) ([]dividend.RawRow, *scraper.Report, error)
}

// Worker periodically crawls the XD calendar for the months ahead,
// reconciles the results into the store and publishes what was new
type Worker struct {
	ctx         context.Context
	crawler     CalendarCrawler
	reconciler  *store.Reconciler
	publisher   publisher.Publisher
	normalizer  *dividend.Normalizer
	calendarURL string
	monthsAhead int
	interval    time.Duration

	// now is swapped in tests
	now func() time.Time
}

// NewWorker creates a calendar refresh worker
func NewWorker(
	ctx context.Context,
	crawler CalendarCrawler,
	reconciler *store.Reconciler,
	pub publisher.Publisher,
	normalizer *dividend.Normalizer,
	calendarURL string,
	monthsAhead int,
	interval time.Duration,
) *Worker {
	return &Worker{
		ctx:         ctx,
		crawler:     crawler,
		reconciler:  reconciler,
		publisher:   pub,
		normalizer:  normalizer,
		calendarURL: calendarURL,
		monthsAhead: monthsAhead,
		interval:    interval,
		now:         time.Now,
	}
}

// Start runs refresh cycles until the context is cancelled
func (w *Worker) Start() {
	log := logger.ForWorker()
	for {
		start := w.now()
		w.RunOnce()
		log.Info().Dur("elapsed", time.Since(start)).Msg("Calendar refresh cycle finished")

		select {
		case <-w.ctx.Done():
			return
		case <-time.After(w.interval):
		}
	}
}

// RunOnce crawls the current month plus the configured months ahead in
// parallel, then reconciles and publishes once over the combined rows
func (w *Worker) RunOnce() {
	log := logger.ForWorker()
	base := w.now()

	var mu sync.Mutex
	var allRows []dividend.RawRow

	var wg sync.WaitGroup
	for offset := 0; offset <= w.monthsAhead; offset++ {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			target := base.AddDate(0, offset, 0)
			rows, report, err := w.crawlMonth(target.Year(), int(target.Month()))
			if err != nil {
				logger.LogError("worker", err, "calendar crawl failed for %d-%02d", target.Year(), int(target.Month()))
				return
			}
			if report != nil && report.Discrepancy {
				log.Warn().
					Int("year", target.Year()).
					Int("month", int(target.Month())).
					Int("extracted", report.Extracted).
					Int("reported", report.Reported).
					Msg("Calendar crawl reconciliation discrepancy")
			}
			mu.Lock()
			allRows = append(allRows, rows...)
			mu.Unlock()
		}(offset)
	}
	wg.Wait()

	if len(allRows) == 0 {
		log.Debug().Msg("No calendar rows this cycle")
		return
	}

	events := dividend.BuildEvents(allRows, w.normalizer, w.now().UTC())
	result, err := w.reconciler.Reconcile(w.ctx, events)
	if err != nil {
		logger.LogError("worker", err, "calendar reconciliation failed")
		return
	}

	log.Info().
		Int("rows", len(allRows)).
		Int("inserted", result.Inserted).
		Int("updated", result.Updated).
		Msg("Calendar refresh reconciled")

	if len(result.InsertedEvents) > 0 {
		if err := w.publisher.PublishEvents(result.InsertedEvents); err != nil {
			logger.LogError("worker", err, "failed to publish %d new events", len(result.InsertedEvents))
		}
	}
	if err := w.publisher.TrimStream(); err != nil {
		logger.LogError("worker", err, "stream trimming failed")
	}
}

// crawlMonth crawls one month's calendar page
func (w *Worker) crawlMonth(year, month int) ([]dividend.RawRow, *scraper.Report, error) {
	src := scraper.NewCalendarSource(w.calendarURL, year, month)
	return w.crawler.Crawl(w.ctx, src)
}
