package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sukhantharot/dividend-stocks/internal/dividend"
	"github.com/sukhantharot/dividend-stocks/internal/scraper"
	"github.com/sukhantharot/dividend-stocks/internal/store"
	"github.com/sukhantharot/dividend-stocks/services/publisher"
)

// mockCrawler returns a fixed row set per crawled URL
type mockCrawler struct {
	mu        sync.Mutex
	rowsByURL map[string][]dividend.RawRow
	crawled   []string
	err       error
}

func (m *mockCrawler) Crawl(ctx context.Context, src *scraper.Source) ([]dividend.RawRow, *scraper.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	url := src.PageURL(1)
	m.crawled = append(m.crawled, url)
	if m.err != nil {
		return nil, nil, m.err
	}
	rows := m.rowsByURL[url]
	return rows, &scraper.Report{Extracted: len(rows)}, nil
}

func (m *mockCrawler) crawlCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.crawled)
}

// mockPublisher records every published batch
type mockPublisher struct {
	mu      sync.Mutex
	batches [][]dividend.Event
	trims   int
}

var _ publisher.Publisher = (*mockPublisher)(nil)

func (m *mockPublisher) PublishEvents(events []dividend.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	batch := make([]dividend.Event, len(events))
	copy(batch, events)
	m.batches = append(m.batches, batch)
	return nil
}

func (m *mockPublisher) TrimStream() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trims++
	return nil
}

func (m *mockPublisher) Close() error { return nil }

func (m *mockPublisher) batchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.batches)
}

func newTestWorker(crawler *mockCrawler, monthsAhead int) (*Worker, *mockPublisher, *store.MemoryStore) {
	pub := &mockPublisher{}
	ms := store.NewMemoryStore()
	w := NewWorker(
		context.Background(),
		crawler,
		store.NewReconciler(ms),
		pub,
		dividend.NewNormalizer(dividend.DefaultEraConfig()),
		"https://example.test/calendar",
		monthsAhead,
		time.Hour,
	)
	w.now = func() time.Time { return time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC) }
	return w, pub, ms
}

func TestRunOnceCrawlsMonthsAhead(t *testing.T) {
	crawler := &mockCrawler{rowsByURL: map[string][]dividend.RawRow{
		"https://example.test/calendar?year=2024&month=9": {
			{Symbol: "PTT", ExDate: "10 กันยายน 2567", PayDate: "25 กันยายน 2567", Amount: "0.80", EventType: "เงินปันผล"},
		},
		"https://example.test/calendar?year=2024&month=10": {
			{Symbol: "AOT", ExDate: "3 ตุลาคม 2567", PayDate: "18 ตุลาคม 2567", Amount: "0.35", EventType: "เงินปันผล"},
		},
	}}

	w, pub, ms := newTestWorker(crawler, 2)
	w.RunOnce()

	// current month plus two ahead
	assert.Equal(t, 3, crawler.crawlCount())
	assert.Contains(t, crawler.crawled, "https://example.test/calendar?year=2024&month=11")

	assert.Equal(t, 2, ms.Len())
	assert.Equal(t, 1, pub.batchCount())
	assert.Len(t, pub.batches[0], 2)
	assert.Equal(t, 1, pub.trims)
}

func TestRunOnceSecondCycleIsQuiet(t *testing.T) {
	crawler := &mockCrawler{rowsByURL: map[string][]dividend.RawRow{
		"https://example.test/calendar?year=2024&month=9": {
			{Symbol: "PTT", ExDate: "10 กันยายน 2567", PayDate: "25 กันยายน 2567", Amount: "0.80", EventType: "เงินปันผล"},
		},
	}}

	w, pub, ms := newTestWorker(crawler, 0)
	w.RunOnce()
	w.RunOnce()

	// the second pass finds nothing new, so nothing is announced
	assert.Equal(t, 1, ms.Len())
	assert.Equal(t, 1, pub.batchCount())
}

func TestRunOnceCrawlErrorDoesNotPublish(t *testing.T) {
	crawler := &mockCrawler{err: errors.New("connection reset")}

	w, pub, ms := newTestWorker(crawler, 1)
	w.RunOnce()

	assert.Equal(t, 0, ms.Len())
	assert.Equal(t, 0, pub.batchCount())
}

func TestRunOnceEmptyCalendar(t *testing.T) {
	crawler := &mockCrawler{rowsByURL: map[string][]dividend.RawRow{}}

	w, pub, _ := newTestWorker(crawler, 1)
	w.RunOnce()

	assert.Equal(t, 0, pub.batchCount())
	assert.Equal(t, 0, pub.trims)
}
