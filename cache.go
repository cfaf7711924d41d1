package khabar

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rsaxena/khabar/docstore"
)

// navCache is an in-memory cache of active categories and the site-wide tag
// list with TTL. Both are read on every page (navigation, tabs, search
// filters) and are expensive full scans, so they are the one thing cached
// beyond a single page view. It also backs the category id→name alias
// resolution used at normalization.
type navCache struct {
	mu         sync.RWMutex
	categories []Category
	tags       []string
	nameByID   map[string]string
	fetched    time.Time
	ttl        time.Duration
	store      docstore.Store
}

func newNavCache(store docstore.Store, ttl time.Duration) *navCache {
	return &navCache{store: store, ttl: ttl}
}

func (c *navCache) valid() bool {
	return c.categories != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *navCache) Invalidate() {
	c.mu.Lock()
	c.categories = nil
	c.tags = nil
	c.nameByID = nil
	c.mu.Unlock()
}

func (c *navCache) load(ctx context.Context) error {
	if c.valid() {
		return nil
	}
	catDocs, err := c.store.FetchOnce(ctx, activeCategoriesQuery())
	if err != nil {
		return err
	}
	categories := make([]Category, 0, len(catDocs))
	nameByID := make(map[string]string, len(catDocs))
	for _, d := range catDocs {
		cat := categoryFromDoc(d)
		categories = append(categories, cat)
		nameByID[cat.ID] = cat.Name
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })

	postDocs, err := c.store.FetchOnce(ctx, published())
	if err != nil {
		return err
	}
	set := make(map[string]struct{})
	for _, d := range postDocs {
		for _, tag := range docStrings(d.Data, "tags") {
			set[tag] = struct{}{}
		}
	}
	tags := make([]string, 0, len(set))
	for t := range set {
		tags = append(tags, t)
	}
	sort.Strings(tags)

	c.categories = categories
	c.tags = tags
	c.nameByID = nameByID
	c.fetched = time.Now()
	return nil
}

// ensureLoaded returns cached data after ensuring the cache is fresh.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *navCache) ensureLoaded(ctx context.Context) ([]Category, []string, map[string]string, error) {
	c.mu.RLock()
	if c.valid() {
		categories, tags, byID := c.categories, c.tags, c.nameByID
		c.mu.RUnlock()
		return categories, tags, byID, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return nil, nil, nil, err
	}
	return c.categories, c.tags, c.nameByID, nil
}

// Categories returns all active categories.
func (c *navCache) Categories(ctx context.Context) ([]Category, error) {
	categories, _, _, err := c.ensureLoaded(ctx)
	return categories, err
}

// Tags returns the sorted, deduplicated tag list across published articles.
func (c *navCache) Tags(ctx context.Context) ([]string, error) {
	_, tags, _, err := c.ensureLoaded(ctx)
	return tags, err
}

// resolver returns a category id→name translation func for the normalizer.
// A failed load yields a nil resolver: normalization then passes the stored
// value through verbatim rather than failing the read.
func (c *navCache) resolver(ctx context.Context) func(string) string {
	_, _, byID, err := c.ensureLoaded(ctx)
	if err != nil {
		return nil
	}
	return func(id string) string { return byID[id] }
}

// setPostCount updates the cached copy of a category's post count so tab
// badges reflect a read-repair immediately. ensureLoaded hands the backing
// slice to callers, so the update clones and republishes it instead of
// writing elements in place; slices already handed out stay immutable.
func (c *navCache) setPostCount(id string, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	updated := make([]Category, len(c.categories))
	copy(updated, c.categories)
	for i := range updated {
		if updated[i].ID == id {
			updated[i].PostCount = n
		}
	}
	c.categories = updated
}
