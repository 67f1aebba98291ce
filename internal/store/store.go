// Package store persists dividend events under their natural key and
// implements the classify-then-batch reconciliation that keeps re-scrapes
// idempotent.
package store

import (
	"context"
	"time"

	"github.com/sukhantharot/dividend-stocks/internal/dividend"
)

// DividendStore is the document-store capability the core consumes. The
// backing store must reject duplicate natural keys so concurrent crawls of
// the same symbol stay race-safe.
type DividendStore interface {
	// FindByKey looks up an event by natural key; nil, nil when absent
	FindByKey(ctx context.Context, key dividend.Key) (*dividend.Event, error)

	// InsertMany inserts a batch of events
	InsertMany(ctx context.Context, events []dividend.Event) error

	// UpdateNextEventDate refreshes the derived field of an existing record
	// in place; every other field is immutable once persisted
	UpdateNextEventDate(ctx context.Context, key dividend.Key, next *time.Time) error

	// BySymbol returns all stored events for a symbol
	BySymbol(ctx context.Context, symbol string) ([]dividend.Event, error)

	// LatestScrapedAt returns the most recent scrape instant for a symbol,
	// or the zero time when nothing is stored
	LatestScrapedAt(ctx context.Context, symbol string) (time.Time, error)

	// ListUpcoming returns events with NextEventDate >= referenceNow,
	// ordered ascending by NextEventDate
	ListUpcoming(ctx context.Context, referenceNow time.Time) ([]dividend.Event, error)

	// EventsInYear returns a symbol's events whose ex-date or pay-date
	// falls in the given calendar year
	EventsInYear(ctx context.Context, symbol string, year int) ([]dividend.Event, error)
}
