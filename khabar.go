// Package khabar is a Hindi news publishing engine built with Go and Echo.
// It serves the public reading surface of a news site (latest, breaking,
// slider, category feeds, search, live updates) over a document store, plus
// the admin authoring surface that writes to it.
package khabar

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rsaxena/khabar/docstore"
)

// App is the central khabar application. It wires together the document
// store, the feed (query builders, normalizer, fetchers, search), handlers,
// and middleware.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  docstore.Store
	Feed   *Feed

	loginLimiter *LoginLimiter
	customRoutes []func(*App)
	staticDir    string
}

// New creates a new khabar App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		staticDir: "public",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Start initializes the store, feed, middleware, and routes, then starts
// the server.
func (a *App) Start() error {
	if a.Config.AdminPassword == "" {
		return fmt.Errorf("khabar: AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("khabar: SessionSecret is required")
	}

	if a.Store == nil {
		store, err := docstore.Open(a.Config.DatabasePath)
		if err != nil {
			return fmt.Errorf("khabar: init store: %w", err)
		}
		a.Store = store
	}

	a.Feed = NewFeed(a.Store, a.Config.NavCacheTTL)
	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}

	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.staticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	// Public read paths. Every one of them surfaces published articles only.
	e.GET("/api/news/latest", a.handleLatest)
	e.GET("/api/news/breaking", a.handleBreaking)
	e.GET("/api/news/slider", a.handleSlider)
	e.GET("/api/news/:id", a.handleNewsByID)
	e.GET("/api/categories", a.handleCategories)
	e.GET("/api/categories/:slug", a.handleCategory)
	e.GET("/api/search", a.handleSearch)
	e.GET("/api/tags", a.handleTags)
	e.GET("/api/contact", a.handleContact)

	// Live queries exposed as server-sent event streams.
	e.GET("/events/breaking", a.handleBreakingEvents)
	e.GET("/events/latest", a.handleLatestEvents)

	// Admin authoring surface: the write side the public paths read from.
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)
	e.GET("/admin/posts/", a.handleAdminListPosts)
	e.POST("/admin/posts/", a.handleAdminSavePost)
	e.DELETE("/admin/posts/:id/", a.handleAdminDeletePost)
	e.GET("/admin/categories/", a.handleAdminListCategories)
	e.POST("/admin/categories/", a.handleAdminSaveCategory)
	e.DELETE("/admin/categories/:id/", a.handleAdminDeleteCategory)
	e.POST("/admin/contact/", a.handleAdminSaveContact)
	e.GET("/admin/images/", a.handleImageList)
	e.POST("/admin/images/upload/", a.handleImageUpload)
	e.DELETE("/admin/images/:filename/", a.handleImageDelete)
}

// NewSearchSession starts a debounced search session over the app's feed
// using the configured SearchDebounce delay. Embedders drive it from custom
// routes (WithCustomRoutes); the stock /api/search endpoint stays one-shot.
func (a *App) NewSearchSession() *SearchSession {
	return a.Feed.NewSearchSession(a.Config.SearchDebounce)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("khabar: required environment variable %s is not set", key)
	}
	return v
}
