package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/sukhantharot/dividend-stocks/helpers"
)

// StaticFetcher implements Fetcher with a plain HTTP GET and goquery parsing.
// Suitable for sources that render their tables server-side.
type StaticFetcher struct{}

// NewStaticFetcher creates a static HTTP fetcher
func NewStaticFetcher() *StaticFetcher {
	return &StaticFetcher{}
}

// Open fetches url with randomized browser-like headers and parses it
func (f *StaticFetcher) Open(ctx context.Context, url string, timeout time.Duration) (Page, error) {
	body, err := helpers.FetchWithRandomHeaders(url)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}

	return &staticPage{doc: doc}, nil
}

// staticPage wraps a parsed document; there is nothing to wait for, the
// markup either contains the selector or it never will
type staticPage struct {
	doc *goquery.Document
}

// WaitFor reports immediately whether selector matches
func (p *staticPage) WaitFor(ctx context.Context, selector string, timeout time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return p.doc.Find(selector).Length() > 0, nil
}

// OuterHTML returns the outer HTML of the first node matching selector
func (p *staticPage) OuterHTML(ctx context.Context, selector string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	sel := p.doc.Find(selector).First()
	if sel.Length() == 0 {
		return "", fmt.Errorf("selector %q not found", selector)
	}
	return goquery.OuterHtml(sel)
}

// Content returns the full page markup
func (p *staticPage) Content(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.doc.Html()
}

// Close is a no-op; nothing is held open
func (p *staticPage) Close() error {
	return nil
}
