package khabar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rsaxena/khabar/docstore"
)

func TestLatestNewsPublishedOnlyNewestFirst(t *testing.T) {
	f := newTestFeed(t)
	ctx := context.Background()

	seedPost(t, f, articleDoc("old", 3*time.Hour, nil))
	seedPost(t, f, articleDoc("newest", 1*time.Hour, nil))
	seedPost(t, f, articleDoc("middle", 2*time.Hour, nil))
	seedPost(t, f, articleDoc("draft", 0, map[string]any{"status": "draft"}))
	seedPost(t, f, articleDoc("archived", 0, map[string]any{"status": "archived"}))

	items, err := f.LatestNews(ctx, 10)
	if err != nil {
		t.Fatalf("LatestNews failed: %v", err)
	}
	if !sameTitles(items, "newest", "middle", "old") {
		t.Fatalf("unexpected items: %v", titles(items))
	}

	limited, err := f.LatestNews(ctx, 2)
	if err != nil {
		t.Fatalf("LatestNews failed: %v", err)
	}
	if !sameTitles(limited, "newest", "middle") {
		t.Fatalf("unexpected limited items: %v", titles(limited))
	}
}

func TestBreakingNewsSparseFlagsSurvive(t *testing.T) {
	f := newTestFeed(t)
	ctx := context.Background()

	// Many newer non-breaking articles must not crowd out older breaking
	// ones: the flag predicate runs in the store, not over a fetched window.
	for i := 0; i < 20; i++ {
		seedPost(t, f, articleDoc("filler", time.Duration(i)*time.Minute, nil))
	}
	seedPost(t, f, articleDoc("breaking-old", 48*time.Hour, map[string]any{"isBreaking": true}))
	seedPost(t, f, articleDoc("breaking-older", 72*time.Hour, map[string]any{"isBreaking": true}))
	seedPost(t, f, articleDoc("breaking-draft", 0, map[string]any{"isBreaking": true, "status": "draft"}))

	items, err := f.BreakingNews(ctx, 3)
	if err != nil {
		t.Fatalf("BreakingNews failed: %v", err)
	}
	if !sameTitles(items, "breaking-old", "breaking-older") {
		t.Fatalf("unexpected items: %v", titles(items))
	}
}

// sliderFailStore fails only the slider query so the fallback path runs.
type sliderFailStore struct {
	docstore.Store
}

func (s *sliderFailStore) FetchOnce(ctx context.Context, q docstore.Query) ([]docstore.Document, error) {
	for _, fl := range q.Filters {
		if fl.Field == fieldSlider {
			return nil, errors.New("slider query refused")
		}
	}
	return s.Store.FetchOnce(ctx, q)
}

func TestSliderNewsFallsBackToLatest(t *testing.T) {
	base := newTestFeed(t)
	seedPost(t, base, articleDoc("latest-one", time.Hour, nil))
	seedPost(t, base, articleDoc("latest-two", 2*time.Hour, nil))

	f := NewFeed(&sliderFailStore{Store: base.Store()}, time.Minute)
	items, err := f.SliderNews(context.Background())
	if err != nil {
		t.Fatalf("SliderNews should fall back, got error: %v", err)
	}
	if !sameTitles(items, "latest-one", "latest-two") {
		t.Fatalf("unexpected fallback items: %v", titles(items))
	}
}

func TestSliderNewsUsesFlaggedArticles(t *testing.T) {
	f := newTestFeed(t)
	seedPost(t, f, articleDoc("plain", time.Hour, nil))
	seedPost(t, f, articleDoc("hero", 2*time.Hour, map[string]any{"addToSlider": true}))

	items, err := f.SliderNews(context.Background())
	if err != nil {
		t.Fatalf("SliderNews failed: %v", err)
	}
	if !sameTitles(items, "hero") {
		t.Fatalf("unexpected items: %v", titles(items))
	}
}

func TestNewsByCategory(t *testing.T) {
	f := newTestFeed(t)
	ctx := context.Background()

	seedCategory(t, f, "Politics", "politics", 0)
	seedPost(t, f, articleDoc("in-category", time.Hour, map[string]any{"category": "Politics"}))
	seedPost(t, f, articleDoc("elsewhere", time.Hour, map[string]any{"category": "Sports"}))

	items, cat, err := f.NewsByCategory(ctx, "politics")
	if err != nil {
		t.Fatalf("NewsByCategory failed: %v", err)
	}
	if cat == nil || cat.Name != "Politics" {
		t.Fatalf("unexpected category: %+v", cat)
	}
	if !sameTitles(items, "in-category") {
		t.Fatalf("unexpected items: %v", titles(items))
	}

	_, missing, err := f.NewsByCategory(ctx, "no-such-slug")
	if err != nil {
		t.Fatalf("unknown slug should not error: %v", err)
	}
	if missing != nil {
		t.Fatalf("unknown slug should yield nil category, got %+v", missing)
	}
}

func TestNewsByIDAndViews(t *testing.T) {
	f := newTestFeed(t)
	ctx := context.Background()

	id := seedPost(t, f, articleDoc("story", time.Hour, nil))

	item, err := f.NewsByID(ctx, id)
	if err != nil {
		t.Fatalf("NewsByID failed: %v", err)
	}
	if item == nil || item.Title != "story" {
		t.Fatalf("unexpected item: %+v", item)
	}
	if item.Views != 0 {
		t.Fatalf("fresh article should have 0 views, got %d", item.Views)
	}

	if err := f.IncrementViews(ctx, id); err != nil {
		t.Fatalf("IncrementViews failed: %v", err)
	}
	if err := f.IncrementViews(ctx, id); err != nil {
		t.Fatalf("IncrementViews failed: %v", err)
	}

	item, err = f.NewsByID(ctx, id)
	if err != nil {
		t.Fatalf("NewsByID failed: %v", err)
	}
	if item.Views != 2 {
		t.Fatalf("expected 2 views, got %d", item.Views)
	}

	missing, err := f.NewsByID(ctx, "nope")
	if err != nil {
		t.Fatalf("unknown id should not error: %v", err)
	}
	if missing != nil {
		t.Fatalf("unknown id should yield nil, got %+v", missing)
	}
}

func TestCategoryIDAliasResolvesToName(t *testing.T) {
	f := newTestFeed(t)
	ctx := context.Background()

	catID := seedCategory(t, f, "Cinema", "cinema", 0)
	// Legacy documents carry the category id instead of the name.
	seedPost(t, f, articleDoc("film", time.Hour, map[string]any{"category": catID}))

	items, err := f.LatestNews(ctx, 5)
	if err != nil {
		t.Fatalf("LatestNews failed: %v", err)
	}
	if len(items) != 1 || items[0].Category != "Cinema" {
		t.Fatalf("category alias not resolved: %+v", items)
	}
}

func TestAllTagsSortedDeduplicated(t *testing.T) {
	f := newTestFeed(t)
	ctx := context.Background()

	seedPost(t, f, articleDoc("a", time.Hour, map[string]any{"tags": []string{"cricket", "delhi"}}))
	seedPost(t, f, articleDoc("b", time.Hour, map[string]any{"tags": []string{"delhi", "budget"}}))
	seedPost(t, f, articleDoc("hidden", time.Hour, map[string]any{"status": "draft", "tags": []string{"secret"}}))

	tags, err := f.AllTags(ctx)
	if err != nil {
		t.Fatalf("AllTags failed: %v", err)
	}
	want := []string{"budget", "cricket", "delhi"}
	if len(tags) != len(want) {
		t.Fatalf("unexpected tags: %v", tags)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Fatalf("unexpected tags: %v", tags)
		}
	}
}

func TestContactSettingsMissingIsNil(t *testing.T) {
	f := newTestFeed(t)
	ctx := context.Background()

	settings, err := f.ContactSettings(ctx)
	if err != nil {
		t.Fatalf("missing settings should not error: %v", err)
	}
	if settings != nil {
		t.Fatalf("expected nil settings, got %+v", settings)
	}

	if _, err := f.Store().Put(ctx, settingsCollection, contactSettingsID, map[string]any{
		"email": "news@example.in",
		"phone": "+91 11 0000 0000",
	}); err != nil {
		t.Fatalf("failed to save settings: %v", err)
	}

	settings, err = f.ContactSettings(ctx)
	if err != nil {
		t.Fatalf("ContactSettings failed: %v", err)
	}
	if settings == nil || settings.Email != "news@example.in" {
		t.Fatalf("unexpected settings: %+v", settings)
	}
}

func TestCategoriesActiveOnly(t *testing.T) {
	f := newTestFeed(t)
	ctx := context.Background()

	seedCategory(t, f, "Sports", "sports", 0)
	if _, err := f.Store().Put(ctx, categoriesCollection, "", map[string]any{
		"name": "Hidden", "slug": "hidden", "isActive": false,
	}); err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}

	categories, err := f.Categories(ctx)
	if err != nil {
		t.Fatalf("Categories failed: %v", err)
	}
	if len(categories) != 1 || categories[0].Name != "Sports" {
		t.Fatalf("unexpected categories: %+v", categories)
	}
}
