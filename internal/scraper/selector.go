package scraper

import (
	"context"
	"errors"
	"time"

	"github.com/sukhantharot/dividend-stocks/internal/browser"
)

// ErrNoVariantMatched is returned when none of a source's structural variants
// appeared within the aggregate timeout budget. The crawler decides whether
// that means "no data" or a structural failure.
var ErrNoVariantMatched = errors.New("no structural variant matched")

// Variant is one structural descriptor for the data container. Sources change
// markup between deployments, so each source carries an ordered list of these
// and the first that appears wins.
type Variant struct {
	Name     string
	Selector string
}

// Resolved reports which variant matched and the container markup it yielded
type Resolved struct {
	Variant Variant
	HTML    string
}

// ResolveContainer tries each variant in order, waiting up to an equal slice
// of budget for its presence. Returns ErrNoVariantMatched when none appear.
func ResolveContainer(ctx context.Context, page browser.Page, variants []Variant, budget time.Duration) (*Resolved, error) {
	if len(variants) == 0 {
		return nil, ErrNoVariantMatched
	}

	perVariant := budget / time.Duration(len(variants))
	if perVariant <= 0 {
		perVariant = budget
	}

	for _, v := range variants {
		found, err := page.WaitFor(ctx, v.Selector, perVariant)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}

		html, err := page.OuterHTML(ctx, v.Selector)
		if err != nil {
			return nil, err
		}
		return &Resolved{Variant: v, HTML: html}, nil
	}

	return nil, ErrNoVariantMatched
}
