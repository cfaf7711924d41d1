package khabar

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/samber/lo"

	"github.com/rsaxena/khabar/docstore"
)

// Default result window sizes, matching the public pages.
const (
	DefaultLatestLimit   = 5
	DefaultBreakingLimit = 3
)

// Feed bridges the semantic read paths of the site to the document store:
// it builds queries, executes them, and normalizes results. All methods are
// one-shot fetches; see Watch* for the subscribed mode. The store handle is
// injected, so tests can substitute doubles.
type Feed struct {
	store docstore.Store
	nav   *navCache
}

// NewFeed creates a Feed over the given store. navTTL bounds how long the
// category/tag navigation data may be served stale.
func NewFeed(store docstore.Store, navTTL time.Duration) *Feed {
	return &Feed{store: store, nav: newNavCache(store, navTTL)}
}

// Store returns the underlying document store handle.
func (f *Feed) Store() docstore.Store { return f.store }

// InvalidateCache clears cached navigation data after a write.
func (f *Feed) InvalidateCache() { f.nav.Invalidate() }

func (f *Feed) fetchNews(ctx context.Context, q docstore.Query) ([]NewsItem, error) {
	docs, err := f.store.FetchOnce(ctx, q)
	if err != nil {
		return nil, err
	}
	resolve := f.nav.resolver(ctx)
	return lo.Map(docs, func(d docstore.Document, _ int) NewsItem {
		return newsFromDoc(d, resolve)
	}), nil
}

// LatestNews returns the newest published articles, newest first, at most limit.
func (f *Feed) LatestNews(ctx context.Context, limit int) ([]NewsItem, error) {
	if limit <= 0 {
		limit = DefaultLatestLimit
	}
	return f.fetchNews(ctx, latestQuery(limit))
}

// BreakingNews returns the newest published breaking articles, at most limit.
func (f *Feed) BreakingNews(ctx context.Context, limit int) ([]NewsItem, error) {
	if limit <= 0 {
		limit = DefaultBreakingLimit
	}
	return f.fetchNews(ctx, breakingQuery(limit))
}

// SliderNews returns the articles flagged for the home-page slider. When the
// slider query fails it falls back to the latest five, so the hero area is
// never empty just because one query failed.
func (f *Feed) SliderNews(ctx context.Context) ([]NewsItem, error) {
	items, err := f.fetchNews(ctx, sliderQuery())
	if err != nil {
		log.Printf("[feed] slider query failed, falling back to latest: %v", err)
		return f.LatestNews(ctx, sliderSize)
	}
	return items, nil
}

// NewsByCategory returns all published articles for the category with the
// given slug, newest first, together with the category itself. A nil category
// means the slug is unknown, a renderable not-found state rather than an error.
// Fetching the full list is also the moment the cached PostCount is
// read-repaired against the true count.
func (f *Feed) NewsByCategory(ctx context.Context, slug string) ([]NewsItem, *Category, error) {
	cat, err := f.CategoryBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	if cat == nil {
		return nil, nil, nil
	}
	items, err := f.fetchNews(ctx, categoryQuery(cat.Name))
	if err != nil {
		return nil, nil, err
	}
	f.ReconcilePostCount(ctx, cat, len(items))
	return items, cat, nil
}

// NewsByID returns one article by id, or nil when the id is unknown.
func (f *Feed) NewsByID(ctx context.Context, id string) (*NewsItem, error) {
	doc, err := f.store.GetByID(ctx, postsCollection, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	item := newsFromDoc(doc, f.nav.resolver(ctx))
	return &item, nil
}

// IncrementViews bumps an article's view counter by one using the store's
// atomic increment, so concurrent readers never lose updates. Increments are
// best-effort and not exactly-once: a rapid double page-load double-counts.
func (f *Feed) IncrementViews(ctx context.Context, id string) error {
	return f.store.Update(ctx, postsCollection, id, map[string]any{
		fieldViews: docstore.Inc(1),
	})
}

// Categories returns all active categories.
func (f *Feed) Categories(ctx context.Context) ([]Category, error) {
	return f.nav.Categories(ctx)
}

// CategoryBySlug returns the active category with the given slug, or nil
// when no such category exists.
func (f *Feed) CategoryBySlug(ctx context.Context, slug string) (*Category, error) {
	categories, err := f.nav.Categories(ctx)
	if err != nil {
		return nil, err
	}
	for _, cat := range categories {
		if cat.Slug == slug {
			c := cat
			return &c, nil
		}
	}
	return nil, nil
}

// AllTags returns every tag used by a published article, sorted.
func (f *Feed) AllTags(ctx context.Context) ([]string, error) {
	return f.nav.Tags(ctx)
}

// ContactSettings returns the contact/social singleton, or nil when it has
// never been saved.
func (f *Feed) ContactSettings(ctx context.Context) (*ContactSettings, error) {
	doc, err := f.store.GetByID(ctx, settingsCollection, contactSettingsID)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	settings := contactFromDoc(doc)
	return &settings, nil
}
