package khabar

import (
	"context"
	"testing"
	"time"
)

func TestNavCacheCountRepairLeavesHandedOutSliceUntouched(t *testing.T) {
	f := newTestFeed(t)
	ctx := context.Background()

	id := seedCategory(t, f, "Sports", "sports", 5)

	categories, err := f.Categories(ctx)
	if err != nil {
		t.Fatalf("Categories failed: %v", err)
	}
	if len(categories) != 1 || categories[0].PostCount != 5 {
		t.Fatalf("unexpected categories: %+v", categories)
	}

	// A count repair must not write into slices earlier reads still hold:
	// one request may be encoding its category list while another triggers
	// the repair.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			f.nav.setPostCount(id, i)
		}
	}()
	for i := 0; i < 100; i++ {
		if categories[0].PostCount != 5 {
			t.Errorf("handed-out slice mutated to %d", categories[0].PostCount)
			break
		}
	}
	<-done

	if categories[0].PostCount != 5 {
		t.Fatalf("handed-out slice mutated to %d", categories[0].PostCount)
	}

	fresh, err := f.Categories(ctx)
	if err != nil {
		t.Fatalf("Categories failed: %v", err)
	}
	if fresh[0].PostCount != 99 {
		t.Fatalf("cache should carry the repaired count, got %d", fresh[0].PostCount)
	}
}

func TestNavCacheInvalidateForcesReload(t *testing.T) {
	f := newTestFeed(t)
	ctx := context.Background()

	seedCategory(t, f, "Sports", "sports", 0)
	if _, err := f.Categories(ctx); err != nil {
		t.Fatalf("Categories failed: %v", err)
	}

	seedCategory(t, f, "Politics", "politics", 0)

	// Cached within TTL: the new category is not yet visible.
	categories, err := f.Categories(ctx)
	if err != nil {
		t.Fatalf("Categories failed: %v", err)
	}
	if len(categories) != 1 {
		t.Fatalf("expected cached single category, got %d", len(categories))
	}

	f.InvalidateCache()

	categories, err = f.Categories(ctx)
	if err != nil {
		t.Fatalf("Categories failed: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("expected reload after invalidate, got %d categories", len(categories))
	}
}

func TestNavCacheExpiresAfterTTL(t *testing.T) {
	s := newTestFeed(t).Store()
	f := NewFeed(s, 30*time.Millisecond)
	ctx := context.Background()

	if _, err := s.Put(ctx, categoriesCollection, "", map[string]any{
		"name": "Sports", "slug": "sports", "isActive": true,
	}); err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}
	if _, err := f.Categories(ctx); err != nil {
		t.Fatalf("Categories failed: %v", err)
	}

	if _, err := s.Put(ctx, categoriesCollection, "", map[string]any{
		"name": "Politics", "slug": "politics", "isActive": true,
	}); err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}

	time.Sleep(50 * time.Millisecond)

	categories, err := f.Categories(ctx)
	if err != nil {
		t.Fatalf("Categories failed: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("expected reload after TTL, got %d categories", len(categories))
	}
}
