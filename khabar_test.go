package khabar

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rsaxena/khabar/docstore"
)

func newTestFeed(t *testing.T) *Feed {
	t.Helper()
	s, err := docstore.Open(filepath.Join(t.TempDir(), "khabar.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return NewFeed(s, time.Minute)
}

// articleDoc builds a published article document age old. Extra fields merge
// over the defaults.
func articleDoc(title string, age time.Duration, extra map[string]any) map[string]any {
	data := map[string]any{
		"title":     title,
		"excerpt":   title + " excerpt",
		"content":   title + " content",
		"status":    "published",
		"createdAt": docstore.Millis(time.Now().Add(-age)),
		"updatedAt": docstore.Millis(time.Now().Add(-age)),
	}
	for k, v := range extra {
		data[k] = v
	}
	return data
}

func seedPost(t *testing.T, f *Feed, data map[string]any) string {
	t.Helper()
	id, err := f.Store().Put(context.Background(), postsCollection, "", data)
	if err != nil {
		t.Fatalf("failed to seed post: %v", err)
	}
	return id
}

func seedCategory(t *testing.T, f *Feed, name, slug string, postCount int) string {
	t.Helper()
	id, err := f.Store().Put(context.Background(), categoriesCollection, "", map[string]any{
		"name":      name,
		"slug":      slug,
		"isActive":  true,
		"postCount": int64(postCount),
		"createdAt": docstore.Millis(time.Now()),
	})
	if err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}
	return id
}

func titles(items []NewsItem) []string {
	out := make([]string, len(items))
	for i, n := range items {
		out[i] = n.Title
	}
	return out
}

func sameTitles(got []NewsItem, want ...string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if got[i].Title != want[i] {
			return false
		}
	}
	return true
}
