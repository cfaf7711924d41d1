package khabar

import (
	"time"

	"github.com/rsaxena/khabar/docstore"
)

// SiteConfig holds all configuration for a khabar site.
type SiteConfig struct {
	Name        string // Site name (default "Khabar")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags
	Author      string // Publisher name for JSON-LD

	Addr         string // Listen address (default ":3000")
	DatabasePath string // SQLite path (default "data/khabar.db")

	AdminPassword string // Required: admin login password
	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS

	NavCacheTTL    time.Duration // Category/tag cache TTL (default 5min)
	SearchDebounce time.Duration // Search session debounce (default 500ms)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Khabar"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/khabar.db"
	}
	if c.NavCacheTTL == 0 {
		c.NavCacheTTL = 5 * time.Minute
	}
	if c.SearchDebounce == 0 {
		c.SearchDebounce = DefaultSearchDebounce
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithStore injects a document store handle instead of opening the default
// SQLite database. Useful for tests and alternative backends.
func WithStore(s docstore.Store) Option {
	return func(a *App) {
		a.Store = s
	}
}

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}
