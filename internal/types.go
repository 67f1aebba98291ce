package internal

import (
	"context"

	"github.com/sukhantharot/dividend-stocks/internal/browser"
	"github.com/sukhantharot/dividend-stocks/internal/store"
	"github.com/sukhantharot/dividend-stocks/services/cache"
	"github.com/sukhantharot/dividend-stocks/services/publisher"
)

// Dependencies holds all service dependencies
type Dependencies struct {
	Cache     cache.CacheService
	Store     *store.MongoStore
	Publisher publisher.Publisher
	Fetcher   *browser.ChromeFetcher
}

// Cleanup releases every held connection
func (d *Dependencies) Cleanup(ctx context.Context) {
	if d.Fetcher != nil {
		d.Fetcher.Close()
	}
	if d.Publisher != nil {
		d.Publisher.Close()
	}
	if d.Store != nil {
		d.Store.Close(ctx)
	}
	if closer, ok := d.Cache.(interface{ Close() error }); ok {
		closer.Close()
	}
}
