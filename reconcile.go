package khabar

import (
	"context"
	"log"
)

// ReconcilePostCount repairs a category's cached PostCount after a full
// category fetch measured the true count. It is a read-repair, not a
// transaction: it recomputes truth from source data every time, so concurrent
// or repeated executions issue at most redundant identical writes
// (last-write-wins, same value). When the corrective write fails, the
// in-memory value still reflects the freshly measured count: that count was
// just observed, so it wins regardless of whether the cache write landed.
func (f *Feed) ReconcilePostCount(ctx context.Context, cat *Category, observed int) {
	if cat.PostCount == observed {
		return
	}
	if err := f.store.Update(ctx, categoriesCollection, cat.ID, map[string]any{
		fieldPostCount: observed,
	}); err != nil {
		log.Printf("[feed] post count repair for category %s failed: %v", cat.ID, err)
	}
	cat.PostCount = observed
	f.nav.setPostCount(cat.ID, observed)
}
