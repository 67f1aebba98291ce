// Package gateway serves dividend data cache-aside: fast cache first, then
// store freshness, then a live scrape that repopulates both.
package gateway

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/sukhantharot/dividend-stocks/internal/dividend"
	"github.com/sukhantharot/dividend-stocks/internal/scraper"
	"github.com/sukhantharot/dividend-stocks/internal/store"
	"github.com/sukhantharot/dividend-stocks/logger"
	"github.com/sukhantharot/dividend-stocks/services/cache"
)

// SymbolScraper is the crawl capability the gateway invokes on a cache miss
type SymbolScraper interface {
	Scrape(ctx context.Context, symbol string) ([]dividend.RawRow, *scraper.Report, error)
}

// Options tune the gateway's two cache tiers
type Options struct {
	// CacheTTL is the fast-cache lifetime of a serialized response
	CacheTTL time.Duration
	// FreshnessWindow is how recent a stored scrape must be for the store
	// to answer without a crawl
	FreshnessWindow time.Duration
}

// Gateway is the acquisition core's entry point
type Gateway struct {
	cache      cache.CacheService
	store      store.DividendStore
	reconciler *store.Reconciler
	scrapers   SymbolScraper
	normalizer *dividend.Normalizer
	opts       Options

	// now is swapped in tests
	now func() time.Time
}

// New creates a gateway over the given capabilities
func New(cacheSvc cache.CacheService, dividendStore store.DividendStore, scrapers SymbolScraper, normalizer *dividend.Normalizer, opts Options) *Gateway {
	return &Gateway{
		cache:      cacheSvc,
		store:      dividendStore,
		reconciler: store.NewReconciler(dividendStore),
		scrapers:   scrapers,
		normalizer: normalizer,
		opts:       opts,
		now:        time.Now,
	}
}

// cacheKey is lowercase by convention; the store keeps symbols uppercase
func cacheKey(symbol string) string {
	return "dividend:" + strings.ToLower(strings.TrimSpace(symbol))
}

// GetOrScrape returns the symbol's dividend events, scraping only when both
// cache tiers miss or forceRefresh is set
func (g *Gateway) GetOrScrape(ctx context.Context, symbol string, forceRefresh bool) (*dividend.SymbolDividends, error) {
	log := logger.ForGateway()
	displaySymbol := strings.ToUpper(strings.TrimSpace(symbol))
	key := cacheKey(symbol)

	if !forceRefresh {
		if payload, err := g.cache.Get(key); err == nil {
			var response dividend.SymbolDividends
			if err := json.Unmarshal(payload, &response); err == nil {
				log.Debug().Str("symbol", displaySymbol).Msg("Fast cache hit")
				return &response, nil
			}
			// a corrupt entry reads as a miss
			log.Warn().Str("symbol", displaySymbol).Msg("Discarding unreadable cache entry")
		}

		// second tier: a recent scrape in the store answers without crawling
		latest, err := g.store.LatestScrapedAt(ctx, displaySymbol)
		if err == nil && !latest.IsZero() && g.now().Sub(latest) < g.opts.FreshnessWindow {
			log.Debug().
				Str("symbol", displaySymbol).
				Time("scraped_at", latest).
				Msg("Store is fresh, skipping crawl")
			return g.respondFromStore(ctx, displaySymbol, key)
		}
	}

	rows, report, err := g.scrapers.Scrape(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if report != nil && report.Discrepancy {
		log.Warn().
			Str("symbol", displaySymbol).
			Int("extracted", report.Extracted).
			Int("reported", report.Reported).
			Msg("Crawl reconciliation discrepancy, keeping partial data")
	}

	events := dividend.BuildEvents(rows, g.normalizer, g.now().UTC())
	if _, err := g.reconciler.Reconcile(ctx, events); err != nil {
		return nil, err
	}

	// the store write above must commit before the cache repopulates
	return g.respondFromStore(ctx, displaySymbol, key)
}

// respondFromStore re-reads the persisted set and repopulates the fast cache
func (g *Gateway) respondFromStore(ctx context.Context, displaySymbol, key string) (*dividend.SymbolDividends, error) {
	events, err := g.store.BySymbol(ctx, displaySymbol)
	if err != nil {
		return nil, err
	}

	response := &dividend.SymbolDividends{
		Symbol:    displaySymbol,
		Dividends: events,
		Timestamp: g.now().Unix(),
	}

	payload, err := json.Marshal(response)
	if err != nil {
		return nil, err
	}
	if err := g.cache.Set(key, payload, g.opts.CacheTTL); err != nil {
		// a cold cache is acceptable; the store already holds the data
		logger.ForGateway().Warn().Err(err).Str("symbol", displaySymbol).Msg("Cache repopulation failed")
	}

	return response, nil
}

// ListUpcoming returns events whose next event date is at or after referenceNow
func (g *Gateway) ListUpcoming(ctx context.Context, referenceNow time.Time) ([]dividend.Event, error) {
	return g.store.ListUpcoming(ctx, referenceNow)
}

// SummarizeByYear returns, per symbol, the stored event in year whose
// ex-date-or-pay-date month is greatest. When two events share that month the
// first one in store iteration order wins.
func (g *Gateway) SummarizeByYear(ctx context.Context, symbols []string, year int) ([]dividend.YearSummary, error) {
	summaries := make([]dividend.YearSummary, 0, len(symbols))

	for _, symbol := range symbols {
		displaySymbol := strings.ToUpper(strings.TrimSpace(symbol))
		events, err := g.store.EventsInYear(ctx, displaySymbol, year)
		if err != nil {
			return nil, err
		}

		var latest *dividend.Event
		latestMonth := time.Month(0)
		for i := range events {
			month := eventMonth(&events[i])
			if month > latestMonth {
				latestMonth = month
				latest = &events[i]
			}
		}

		summaries = append(summaries, dividend.YearSummary{
			Symbol:      displaySymbol,
			LatestEvent: latest,
		})
	}

	return summaries, nil
}

// eventMonth is the month of the ex-date, falling back to the pay-date
func eventMonth(event *dividend.Event) time.Month {
	if event.ExDate != nil {
		return event.ExDate.Month()
	}
	if event.PayDate != nil {
		return event.PayDate.Month()
	}
	return 0
}
