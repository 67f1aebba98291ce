package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sukhantharot/dividend-stocks/internal/dividend"
)

// MemoryStore is an in-process DividendStore. It backs tests and small
// deployments that do not want a MongoDB instance.
type MemoryStore struct {
	mu     sync.RWMutex
	events map[dividend.Key]*dividend.Event
	order  []dividend.Key
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		events: make(map[dividend.Key]*dividend.Event),
	}
}

// FindByKey looks up an event by natural key
func (m *MemoryStore) FindByKey(ctx context.Context, key dividend.Key) (*dividend.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	event, ok := m.events[key]
	if !ok {
		return nil, nil
	}
	copied := *event
	return &copied, nil
}

// InsertMany inserts a batch of events, skipping natural keys already present
func (m *MemoryStore) InsertMany(ctx context.Context, events []dividend.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range events {
		key := events[i].NaturalKey()
		if _, exists := m.events[key]; exists {
			continue
		}
		copied := events[i]
		m.events[key] = &copied
		m.order = append(m.order, key)
	}
	return nil
}

// UpdateNextEventDate refreshes the derived field of an existing record
func (m *MemoryStore) UpdateNextEventDate(ctx context.Context, key dividend.Key, next *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	event, ok := m.events[key]
	if !ok {
		return nil
	}
	if next == nil {
		event.NextEventDate = nil
	} else {
		copied := *next
		event.NextEventDate = &copied
	}
	return nil
}

// BySymbol returns all stored events for a symbol in insertion order
func (m *MemoryStore) BySymbol(ctx context.Context, symbol string) ([]dividend.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var events []dividend.Event
	for _, key := range m.order {
		if event, ok := m.events[key]; ok && event.Symbol == symbol {
			events = append(events, *event)
		}
	}
	return events, nil
}

// LatestScrapedAt returns the most recent scrape instant for a symbol
func (m *MemoryStore) LatestScrapedAt(ctx context.Context, symbol string) (time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest time.Time
	for _, event := range m.events {
		if event.Symbol == symbol && event.ScrapedAt.After(latest) {
			latest = event.ScrapedAt
		}
	}
	return latest, nil
}

// ListUpcoming returns events with NextEventDate >= referenceNow, ascending
func (m *MemoryStore) ListUpcoming(ctx context.Context, referenceNow time.Time) ([]dividend.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var events []dividend.Event
	for _, key := range m.order {
		event := m.events[key]
		if event.NextEventDate != nil && !event.NextEventDate.Before(referenceNow) {
			events = append(events, *event)
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].NextEventDate.Before(*events[j].NextEventDate)
	})
	return events, nil
}

// EventsInYear returns a symbol's events whose ex-date or pay-date falls in year
func (m *MemoryStore) EventsInYear(ctx context.Context, symbol string, year int) ([]dividend.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var events []dividend.Event
	for _, key := range m.order {
		event := m.events[key]
		if event.Symbol != symbol {
			continue
		}
		if (event.ExDate != nil && event.ExDate.Year() == year) ||
			(event.PayDate != nil && event.PayDate.Year() == year) {
			events = append(events, *event)
		}
	}
	return events, nil
}

// Len reports the number of stored events
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events)
}
