package khabar

import (
	"github.com/rsaxena/khabar/docstore"
)

// Store collections. Article ids and category slugs embedded in URLs are the
// only protocol clients depend on.
const (
	postsCollection      = "posts"
	categoriesCollection = "categories"
	settingsCollection   = "settings"
	imagesCollection     = "images"
)

// contactSettingsID names the contact/social singleton within settings.
const contactSettingsID = "contact"

const (
	fieldStatus    = "status"
	fieldCategory  = "category"
	fieldBreaking  = "isBreaking"
	fieldSlider    = "addToSlider"
	fieldCreatedAt = "createdAt"
	fieldViews     = "views"
	fieldActive    = "isActive"
	fieldPostCount = "postCount"
)

const sliderSize = 5

// published is the base predicate every public read path starts from.
func published() docstore.Query {
	return docstore.C(postsCollection).Where(fieldStatus, docstore.Eq, string(StatusPublished))
}

// latestQuery selects the newest n published articles.
func latestQuery(n int) docstore.Query {
	return published().OrderBy(fieldCreatedAt, docstore.Desc).Limit(n)
}

// breakingQuery selects the newest n published breaking articles. The boolean
// predicate is pushed to the store rather than filtered from a fetched
// window, so sparse breaking subsets are never truncated.
func breakingQuery(n int) docstore.Query {
	return published().
		Where(fieldBreaking, docstore.Eq, true).
		OrderBy(fieldCreatedAt, docstore.Desc).
		Limit(n)
}

// sliderQuery selects the articles flagged for the home-page slider.
func sliderQuery() docstore.Query {
	return published().
		Where(fieldSlider, docstore.Eq, true).
		OrderBy(fieldCreatedAt, docstore.Desc).
		Limit(sliderSize)
}

// categoryQuery selects all published articles in a category, newest first.
// The join value is the category name.
func categoryQuery(name string) docstore.Query {
	return published().
		Where(fieldCategory, docstore.Eq, name).
		OrderBy(fieldCreatedAt, docstore.Desc)
}

// searchQuery builds the server-side part of a search: published status,
// optional category equality, optional createdAt bounds, and the requested
// order. Free-text and tag refinement happen in memory afterwards.
func searchQuery(f SearchFilters) docstore.Query {
	q := published()
	if f.Category != "" {
		q = q.Where(fieldCategory, docstore.Eq, f.Category)
	}
	if !f.DateFrom.IsZero() {
		q = q.Where(fieldCreatedAt, docstore.Gte, docstore.Millis(f.DateFrom))
	}
	if !f.DateTo.IsZero() {
		q = q.Where(fieldCreatedAt, docstore.Lte, docstore.Millis(f.DateTo))
	}
	switch f.SortBy {
	case SortOldest:
		q = q.OrderBy(fieldCreatedAt, docstore.Asc)
	case SortMostViewed:
		q = q.OrderBy(fieldViews, docstore.Desc)
	default:
		q = q.OrderBy(fieldCreatedAt, docstore.Desc)
	}
	return q
}

// activeCategoriesQuery selects the categories shown in navigation and tabs.
func activeCategoriesQuery() docstore.Query {
	return docstore.C(categoriesCollection).Where(fieldActive, docstore.Eq, true)
}
