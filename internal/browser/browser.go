// Package browser provides the page-fetch capability consumed by the scraper:
// open a URL, wait for a structural descriptor, extract markup, close.
package browser

import (
	"context"
	"time"
)

// Page is a handle to one loaded page
type Page interface {
	// WaitFor blocks until the selector is present or the timeout elapses.
	// It returns false, nil when the selector simply never appeared.
	WaitFor(ctx context.Context, selector string, timeout time.Duration) (bool, error)

	// OuterHTML returns the outer HTML of the first node matching selector
	OuterHTML(ctx context.Context, selector string) (string, error)

	// Content returns the full page markup
	Content(ctx context.Context) (string, error)

	// Close releases the page and its rendering resources
	Close() error
}

// Fetcher opens pages. Implementations: headless Chrome for JS-rendered
// sources, plain HTTP for static ones.
type Fetcher interface {
	Open(ctx context.Context, url string, timeout time.Duration) (Page, error)
}
