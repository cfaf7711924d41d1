package khabar

import "time"

// Status is an article's publication state. Only published articles are
// ever surfaced on a public read path.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// Language tags an article for the UI language badge.
type Language string

const (
	LangHindi   Language = "hindi"
	LangEnglish Language = "english"
)

// SortMode selects search result ordering. It is the only "ranking" search
// performs; there is no relevance scoring.
type SortMode string

const (
	SortLatest     SortMode = "latest"
	SortOldest     SortMode = "oldest"
	SortMostViewed SortMode = "mostViewed"
)

// NewsItem is the canonical article entity rendered by every page. The id is
// store-assigned and doubles as the URL slug for detail pages. Content is a
// single string with embedded line breaks; consumers split it into paragraphs.
type NewsItem struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Excerpt     string    `json:"excerpt"`
	Content     string    `json:"content"`
	Category    string    `json:"category"` // category name, resolved at normalization
	Tags        []string  `json:"tags"`
	Status      Status    `json:"status"`
	IsBreaking  bool      `json:"isBreaking"`
	AddToSlider bool      `json:"addToSlider"`
	ImageURL    string    `json:"imageUrl"` // canonical; placeholder fallback is a render concern
	Author      string    `json:"author"`
	Views       int64     `json:"views"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Language    Language  `json:"language"`
}

// Category groups articles. Name is the join value carried by
// NewsItem.Category; Slug is the independent URL identifier. PostCount is a
// cached count of published articles, lazily read-repaired on category fetch
// and stale in between.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	IsActive  bool      `json:"isActive"`
	PostCount int       `json:"postCount"`
	CreatedAt time.Time `json:"createdAt"`
}

// ContactSettings is the singleton contact/social record.
type ContactSettings struct {
	ID        string `json:"id"`
	Address   string `json:"address"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Facebook  string `json:"facebook"`
	Instagram string `json:"instagram"`
	Twitter   string `json:"twitter"`
	YouTube   string `json:"youtube"`
}

// SearchFilters is a search request: optional free-text query, category,
// tag list, date range, and sort mode. An empty filter set means "not
// searched yet" and triggers no query at all.
type SearchFilters struct {
	Query    string    `json:"query"`
	Category string    `json:"category"`
	Tags     []string  `json:"tags"`
	DateFrom time.Time `json:"dateFrom"`
	DateTo   time.Time `json:"dateTo"`
	SortBy   SortMode  `json:"sortBy"`
}

// IsEmpty reports whether no query and no filters are set.
func (f SearchFilters) IsEmpty() bool {
	return f.Query == "" && f.Category == "" && len(f.Tags) == 0 &&
		f.DateFrom.IsZero() && f.DateTo.IsZero()
}
