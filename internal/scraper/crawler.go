package scraper

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/sukhantharot/dividend-stocks/internal/browser"
	"github.com/sukhantharot/dividend-stocks/internal/dividend"
	"github.com/sukhantharot/dividend-stocks/logger"
	scrapeerrors "github.com/sukhantharot/dividend-stocks/pkg/errors"
)

// State is the crawler's per-source state machine
type State int

const (
	StateIdle State = iota
	StateLoading
	StateExtracting
	StateRetrying
	StateDone
)

// Progress is the transient per-invocation crawl state
type Progress struct {
	PageIndex     int
	RecordsSeen   int
	ReportedTotal int
	LastError     error
}

// Report reconciles the crawler's own tally against the count the source
// reported about itself
type Report struct {
	Extracted   int
	Reported    int
	Discrepancy bool
}

// Options bound every wait and retry the crawler performs
type Options struct {
	MaxRetries   int
	RetryBackoff time.Duration
	PageTimeout  time.Duration
	WaitTimeout  time.Duration
	// PageDelay is the politeness interval between page loads
	PageDelay time.Duration
}

// Crawler drives pagination against a source, strictly one page at a time
type Crawler struct {
	fetcher browser.Fetcher
	opts    Options
	limiter *rate.Limiter
}

// NewCrawler creates a crawler over the given page-fetch capability
func NewCrawler(fetcher browser.Fetcher, opts Options) *Crawler {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.PageDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.PageDelay), 1)
	}
	return &Crawler{
		fetcher: fetcher,
		opts:    opts,
		limiter: limiter,
	}
}

// Crawl walks the source's pages and returns every extracted row plus a
// reconciliation report. A confirmed "no data" page is not an error; the rows
// accumulated so far are returned with a clean report.
func (c *Crawler) Crawl(ctx context.Context, src *Source) ([]dividend.RawRow, *Report, error) {
	log := logger.ForSource(src.Name)

	progress := &Progress{PageIndex: 1}
	seen := make(map[string]bool)
	var rows []dividend.RawRow
	state := StateIdle
	attempt := 0

	for state != StateDone {
		state = StateLoading
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, nil, scrapeerrors.NewTransientFetch(src.Name, "crawl cancelled", err)
		}

		pageRows, err := c.loadAndExtract(ctx, src, src.PageURL(progress.PageIndex), progress)
		if err != nil {
			if scrapeerrors.IsNoData(err) {
				log.Debug().Int("page", progress.PageIndex).Msg("Source reported no data, ending crawl")
				state = StateDone
				break
			}

			var se *scrapeerrors.ScrapeError
			if errors.As(err, &se) && se.IsRetryable() && attempt < c.opts.MaxRetries {
				// same page again after a fixed backoff
				attempt++
				progress.LastError = err
				state = StateRetrying
				log.Warn().
					Err(err).
					Int("page", progress.PageIndex).
					Int("attempt", attempt).
					Int("max_retries", c.opts.MaxRetries).
					Msg("Transient failure, retrying page")

				select {
				case <-ctx.Done():
					return nil, nil, scrapeerrors.NewTransientFetch(src.Name, "crawl cancelled", ctx.Err())
				case <-time.After(c.opts.RetryBackoff):
				}
				continue
			}

			progress.LastError = err
			return nil, nil, err
		}

		attempt = 0
		progress.LastError = nil
		state = StateExtracting
		added := 0
		for i := range pageRows {
			id := src.RowID(&pageRows[i])
			if seen[id] {
				continue
			}
			seen[id] = true
			rows = append(rows, pageRows[i])
			added++
		}
		progress.RecordsSeen += added

		log.Debug().
			Int("page", progress.PageIndex).
			Int("rows", added).
			Int("total_seen", progress.RecordsSeen).
			Msg("Extracted page")

		switch {
		case !src.Paginated:
			state = StateDone
		case len(pageRows) < src.PageSizeHint:
			// short page signals the last one
			state = StateDone
		case progress.ReportedTotal > 0 && progress.RecordsSeen >= progress.ReportedTotal:
			state = StateDone
		default:
			progress.PageIndex++
		}
	}

	report := &Report{
		Extracted: progress.RecordsSeen,
		Reported:  progress.ReportedTotal,
	}
	if report.Reported > 0 && report.Extracted != report.Reported {
		report.Discrepancy = true
		discrepancy := scrapeerrors.NewReconciliation(src.Name, report.Extracted, report.Reported)
		log.Warn().
			Int("extracted", report.Extracted).
			Int("reported", report.Reported).
			Msg(discrepancy.Message)
	}

	return rows, report, nil
}

// loadAndExtract performs one goto/wait/extract cycle. The page handle is
// released on every exit path.
func (c *Crawler) loadAndExtract(ctx context.Context, src *Source, url string, progress *Progress) ([]dividend.RawRow, error) {
	page, err := c.fetcher.Open(ctx, url, c.opts.PageTimeout)
	if err != nil {
		return nil, scrapeerrors.NewTransientFetch(src.Name, "failed to load "+url, err)
	}
	defer page.Close()

	// Parse the source's own record count once per crawl
	if src.TotalPattern != nil && progress.ReportedTotal == 0 {
		if content, err := page.Content(ctx); err == nil {
			if total, ok := parseReportedTotal(src.TotalPattern, content); ok {
				progress.ReportedTotal = total
			}
		}
	}

	resolved, err := ResolveContainer(ctx, page, src.Variants, c.opts.WaitTimeout)
	if errors.Is(err, ErrNoVariantMatched) {
		content, contentErr := page.Content(ctx)
		if contentErr == nil && hasNoDataMarker(content, src.NoDataMarkers) {
			return nil, scrapeerrors.NewNoData(src.Name)
		}
		return nil, scrapeerrors.NewStructuralMismatch(src.Name, "no container variant matched and no empty-result marker present")
	}
	if err != nil {
		return nil, scrapeerrors.NewTransientFetch(src.Name, "container wait failed", err)
	}

	rows, err := src.ExtractRows(resolved.HTML)
	if err != nil {
		return nil, scrapeerrors.NewStructuralMismatch(src.Name, "container matched variant "+resolved.Variant.Name+" but rows failed to parse: "+err.Error())
	}
	return rows, nil
}

// parseReportedTotal extracts the filtered record count from a status line
func parseReportedTotal(pattern *regexp.Regexp, content string) (int, bool) {
	match := pattern.FindStringSubmatch(content)
	if len(match) < 2 {
		return 0, false
	}
	total, err := strconv.Atoi(strings.ReplaceAll(match[1], ",", ""))
	if err != nil || total <= 0 {
		return 0, false
	}
	return total, true
}

// hasNoDataMarker reports whether the page carries an explicit empty-result text
func hasNoDataMarker(content string, markers []string) bool {
	for _, marker := range markers {
		if marker != "" && strings.Contains(content, marker) {
			return true
		}
	}
	return false
}
