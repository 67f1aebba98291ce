package store

import (
	"context"
	"time"

	"github.com/sukhantharot/dividend-stocks/internal/dividend"
	"github.com/sukhantharot/dividend-stocks/logger"
	scrapeerrors "github.com/sukhantharot/dividend-stocks/pkg/errors"
)

// ReconcileResult counts what a reconciliation pass changed. InsertedEvents
// holds the records that were new to the store, for downstream announcement.
type ReconcileResult struct {
	Inserted       int
	Updated        int
	InsertedEvents []dividend.Event
}

// Reconciler classifies freshly scraped candidates against the store and
// applies the changes: new natural keys are batch-inserted, existing records
// get their derived NextEventDate refreshed in place. Running it twice with
// the same candidate set changes nothing.
type Reconciler struct {
	store DividendStore
}

// NewReconciler creates a reconciler over the given store
func NewReconciler(store DividendStore) *Reconciler {
	return &Reconciler{store: store}
}

// Reconcile applies the candidate set to the store
func (r *Reconciler) Reconcile(ctx context.Context, candidates []dividend.Event) (*ReconcileResult, error) {
	log := logger.ForStore()
	result := &ReconcileResult{}

	var toInsert []dividend.Event
	seen := make(map[dividend.Key]bool)

	for i := range candidates {
		key := candidates[i].NaturalKey()
		if seen[key] {
			// the same key twice in one candidate set is a scrape artifact
			continue
		}
		seen[key] = true

		existing, err := r.store.FindByKey(ctx, key)
		if err != nil {
			return nil, scrapeerrors.NewStore(candidates[i].Symbol, "lookup failed", err)
		}

		if existing == nil {
			toInsert = append(toInsert, candidates[i])
			continue
		}

		if !sameDate(existing.NextEventDate, candidates[i].NextEventDate) {
			if err := r.store.UpdateNextEventDate(ctx, key, candidates[i].NextEventDate); err != nil {
				return nil, scrapeerrors.NewStore(candidates[i].Symbol, "next event update failed", err)
			}
			result.Updated++
		}
	}

	// one batch insert after the full set is classified
	if len(toInsert) > 0 {
		if err := r.store.InsertMany(ctx, toInsert); err != nil {
			return nil, scrapeerrors.NewStore(toInsert[0].Symbol, "batch insert failed", err)
		}
		result.Inserted = len(toInsert)
		result.InsertedEvents = toInsert
	}

	log.Debug().
		Int("candidates", len(candidates)).
		Int("inserted", result.Inserted).
		Int("updated", result.Updated).
		Msg("Reconciled candidate set")

	return result, nil
}

// sameDate compares two nullable instants
func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
