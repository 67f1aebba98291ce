package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/sukhantharot/dividend-stocks/logger"
)

// ChromeFetcher implements Fetcher using a headless Chrome instance via chromedp
type ChromeFetcher struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// ChromeConfig holds browser startup options
type ChromeConfig struct {
	Headless  bool
	UserAgent string
}

// NewChromeFetcher starts a Chrome allocator shared by all pages it opens
func NewChromeFetcher(cfg ChromeConfig) *ChromeFetcher {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.DisableGPU,
		chromedp.NoSandbox, // required in container environments
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1920, 1080),
	}
	if cfg.Headless {
		opts = append(opts, chromedp.Headless)
	}
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	logger.Info("Chrome allocator ready (headless=%v)", cfg.Headless)

	return &ChromeFetcher{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
	}
}

// Open navigates a fresh browser tab to url. The returned page must be
// closed by the caller on every exit path.
func (f *ChromeFetcher) Open(ctx context.Context, url string, timeout time.Duration) (Page, error) {
	tabCtx, tabCancel := chromedp.NewContext(f.allocCtx)

	navCtx, navCancel := context.WithTimeout(tabCtx, timeout)
	defer navCancel()

	if err := chromedp.Run(navCtx, chromedp.Navigate(url), chromedp.WaitReady("body")); err != nil {
		tabCancel()
		return nil, fmt.Errorf("navigate %s: %w", url, err)
	}

	return &chromePage{ctx: tabCtx, cancel: tabCancel}, nil
}

// Close shuts down the Chrome allocator
func (f *ChromeFetcher) Close() error {
	f.allocCancel()
	return nil
}

// chromePage is a live browser tab
type chromePage struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// WaitFor waits until selector is visible or the timeout elapses. Cancelling
// ctx aborts an in-flight wait.
func (p *chromePage) WaitFor(ctx context.Context, selector string, timeout time.Duration) (bool, error) {
	waitCtx, cancel := context.WithTimeout(p.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(waitCtx, chromedp.WaitVisible(selector, chromedp.ByQuery))
	if err == nil {
		return true, nil
	}
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if waitCtx.Err() == context.DeadlineExceeded {
		// The selector never appeared; not a transport failure
		return false, nil
	}
	return false, err
}

// run executes actions against the tab, aborting when ctx is cancelled.
// chromedp needs its own target context, so the caller's is bridged in.
func (p *chromePage) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(p.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// OuterHTML returns the outer HTML of the first node matching selector
func (p *chromePage) OuterHTML(ctx context.Context, selector string) (string, error) {
	var html string
	if err := p.run(ctx, chromedp.OuterHTML(selector, &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("extract %q: %w", selector, err)
	}
	return html, nil
}

// Content returns the full rendered page markup
func (p *chromePage) Content(ctx context.Context) (string, error) {
	var html string
	if err := p.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("extract page content: %w", err)
	}
	return html, nil
}

// Close releases the tab
func (p *chromePage) Close() error {
	p.cancel()
	return nil
}
