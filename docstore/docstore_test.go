package docstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func setupTestStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustPut(t *testing.T, s *SQLite, collection, id string, data map[string]any) string {
	t.Helper()
	got, err := s.Put(context.Background(), collection, id, data)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	return got
}

func TestPutAndGetByID(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	id := mustPut(t, s, "posts", "", map[string]any{
		"title": "First",
		"views": 7,
		"tags":  []string{"desh", "videsh"},
	})
	if id == "" {
		t.Fatal("Put should assign an id")
	}

	doc, err := s.GetByID(ctx, "posts", id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if doc.ID != id {
		t.Errorf("ID = %q, want %q", doc.ID, id)
	}
	if doc.Data["title"] != "First" {
		t.Errorf("title = %v, want First", doc.Data["title"])
	}
	if got := doc.Data["views"].(float64); got != 7 {
		t.Errorf("views = %v, want 7", got)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetByID(context.Background(), "posts", "missing")
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFetchOnceFiltersOrderLimit(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		status := "published"
		if i == 4 {
			status = "draft"
		}
		mustPut(t, s, "posts", "", map[string]any{
			"status":    status,
			"breaking":  i%2 == 0,
			"createdAt": Millis(base.Add(time.Duration(i) * time.Hour)),
		})
	}

	q := C("posts").
		Where("status", Eq, "published").
		OrderBy("createdAt", Desc).
		Limit(3)
	docs, err := s.FetchOnce(ctx, q)
	if err != nil {
		t.Fatalf("FetchOnce failed: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("got %d docs, want 3", len(docs))
	}
	var prev time.Time
	for i, d := range docs {
		ts, ok := FromMillis(d.Data["createdAt"])
		if !ok {
			t.Fatalf("doc %d has no timestamp", i)
		}
		if i > 0 && ts.After(prev) {
			t.Errorf("results not in descending createdAt order")
		}
		prev = ts
	}

	// Boolean predicate pushdown.
	docs, err = s.FetchOnce(ctx, C("posts").Where("breaking", Eq, true))
	if err != nil {
		t.Fatalf("FetchOnce failed: %v", err)
	}
	if len(docs) != 3 {
		t.Errorf("breaking filter got %d docs, want 3", len(docs))
	}

	// Range predicate on timestamps.
	docs, err = s.FetchOnce(ctx, C("posts").
		Where("createdAt", Gte, Millis(base.Add(2*time.Hour))).
		Where("status", Eq, "published"))
	if err != nil {
		t.Fatalf("FetchOnce failed: %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("range filter got %d docs, want 2", len(docs))
	}
}

func TestFetchOnceEmptyCollection(t *testing.T) {
	s := setupTestStore(t)

	docs, err := s.FetchOnce(context.Background(), C("nothing"))
	if err != nil {
		t.Fatalf("FetchOnce failed: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("got %d docs, want 0", len(docs))
	}
}

func TestUpdateMergeAndIncrement(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	id := mustPut(t, s, "posts", "", map[string]any{"title": "Old", "views": 0})

	if err := s.Update(ctx, "posts", id, map[string]any{"title": "New"}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if err := s.Update(ctx, "posts", id, map[string]any{"views": Inc(1)}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if err := s.Update(ctx, "posts", id, map[string]any{"views": Inc(1)}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	doc, err := s.GetByID(ctx, "posts", id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if doc.Data["title"] != "New" {
		t.Errorf("title = %v, want New", doc.Data["title"])
	}
	if got := doc.Data["views"].(float64); got != 2 {
		t.Errorf("views = %v, want 2 after two increments", got)
	}
}

func TestUpdateNotFound(t *testing.T) {
	s := setupTestStore(t)

	err := s.Update(context.Background(), "posts", "missing", map[string]any{"title": "x"})
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	id := mustPut(t, s, "posts", "", map[string]any{"title": "gone"})
	if err := s.Delete(ctx, "posts", id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.GetByID(ctx, "posts", id); err != ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	// Deleting again is a no-op.
	if err := s.Delete(ctx, "posts", id); err != nil {
		t.Errorf("second Delete failed: %v", err)
	}
}

func TestSubscribeDeliversSnapshots(t *testing.T) {
	s := setupTestStore(t)

	mustPut(t, s, "posts", "", map[string]any{"status": "published", "title": "one"})

	snaps := make(chan []Document, 8)
	cancel, err := s.Subscribe(
		C("posts").Where("status", Eq, "published"),
		func(docs []Document) { snaps <- docs },
		func(err error) { t.Errorf("unexpected subscription error: %v", err) },
	)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer cancel()

	first := waitSnapshot(t, snaps)
	if len(first) != 1 {
		t.Fatalf("initial snapshot has %d docs, want 1", len(first))
	}

	mustPut(t, s, "posts", "", map[string]any{"status": "published", "title": "two"})

	deadline := time.After(2 * time.Second)
	for {
		select {
		case docs := <-snaps:
			if len(docs) == 2 {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for re-delivered snapshot with 2 docs")
		}
	}
}

func TestSubscribeCancelStopsDeliveries(t *testing.T) {
	s := setupTestStore(t)

	var got int
	snaps := make(chan []Document, 8)
	cancel, err := s.Subscribe(C("posts"),
		func(docs []Document) { snaps <- docs },
		nil,
	)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	waitSnapshot(t, snaps)

	cancel()
	cancel() // idempotent

	mustPut(t, s, "posts", "", map[string]any{"title": "after cancel"})
	time.Sleep(100 * time.Millisecond)
	for {
		select {
		case <-snaps:
			got++
		default:
			if got != 0 {
				t.Errorf("received %d snapshots after cancel, want 0", got)
			}
			return
		}
	}
}

func waitSnapshot(t *testing.T, snaps <-chan []Document) []Document {
	t.Helper()
	select {
	case docs := <-snaps:
		return docs
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}
