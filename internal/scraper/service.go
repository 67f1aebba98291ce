package scraper

import (
	"context"

	"github.com/sukhantharot/dividend-stocks/internal/dividend"
)

// Service scrapes one symbol's dividend history from the settrade
// rights-benefits page
type Service struct {
	crawler      *Crawler
	urlTemplate  string
	pageSizeHint int
}

// NewService creates a symbol scrape service over the given crawler
func NewService(crawler *Crawler, urlTemplate string, pageSizeHint int) *Service {
	return &Service{
		crawler:      crawler,
		urlTemplate:  urlTemplate,
		pageSizeHint: pageSizeHint,
	}
}

// Scrape crawls the symbol's rights-benefits table
func (s *Service) Scrape(ctx context.Context, symbol string) ([]dividend.RawRow, *Report, error) {
	src := NewSettradeSource(s.urlTemplate, symbol, s.pageSizeHint)
	return s.crawler.Crawl(ctx, src)
}
