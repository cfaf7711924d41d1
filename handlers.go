package khabar

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// newsList is the envelope every article listing responds with. A store
// failure surfaces as an empty list plus the error flag, so pages render
// empty rather than crash and the client can tell "failed" from "no news".
type newsList struct {
	Items []NewsItem `json:"items"`
	Error string     `json:"error,omitempty"`
}

func listOf(items []NewsItem) newsList {
	if items == nil {
		items = []NewsItem{}
	}
	return newsList{Items: items}
}

func (a *App) listResponse(c echo.Context, items []NewsItem, err error) error {
	if err != nil {
		c.Logger().Errorf("fetch failed: %v", err)
		return c.JSON(http.StatusOK, newsList{Items: []NewsItem{}, Error: "unavailable"})
	}
	return c.JSON(http.StatusOK, listOf(items))
}

func limitParam(c echo.Context, fallback int) int {
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func (a *App) handleLatest(c echo.Context) error {
	items, err := a.Feed.LatestNews(c.Request().Context(), limitParam(c, DefaultLatestLimit))
	return a.listResponse(c, items, err)
}

func (a *App) handleBreaking(c echo.Context) error {
	items, err := a.Feed.BreakingNews(c.Request().Context(), limitParam(c, DefaultBreakingLimit))
	return a.listResponse(c, items, err)
}

func (a *App) handleSlider(c echo.Context) error {
	items, err := a.Feed.SliderNews(c.Request().Context())
	return a.listResponse(c, items, err)
}

func (a *App) handleNewsByID(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	item, err := a.Feed.NewsByID(ctx, id)
	if err != nil {
		c.Logger().Errorf("fetch article %s: %v", id, err)
		return c.JSON(http.StatusOK, map[string]any{"error": "unavailable"})
	}
	if item == nil {
		// Unknown id is a renderable not-found state, not a failure.
		return c.JSON(http.StatusNotFound, map[string]any{"error": "not found"})
	}
	// Reading the article is the view; the count is best-effort and its
	// failure never reaches the reader.
	if err := a.Feed.IncrementViews(ctx, id); err != nil {
		c.Logger().Errorf("increment views for %s: %v", id, err)
	}
	return c.JSON(http.StatusOK, item)
}

func (a *App) handleCategories(c echo.Context) error {
	categories, err := a.Feed.Categories(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("fetch categories: %v", err)
		return c.JSON(http.StatusOK, map[string]any{"categories": []Category{}, "error": "unavailable"})
	}
	if categories == nil {
		categories = []Category{}
	}
	return c.JSON(http.StatusOK, map[string]any{"categories": categories})
}

func (a *App) handleCategory(c echo.Context) error {
	slug := c.Param("slug")
	items, cat, err := a.Feed.NewsByCategory(c.Request().Context(), slug)
	if err != nil {
		c.Logger().Errorf("fetch category %s: %v", slug, err)
		return c.JSON(http.StatusOK, map[string]any{"items": []NewsItem{}, "error": "unavailable"})
	}
	if cat == nil {
		return c.JSON(http.StatusNotFound, map[string]any{"error": "not found"})
	}
	return c.JSON(http.StatusOK, map[string]any{"category": cat, "items": listOf(items).Items})
}

func (a *App) handleSearch(c echo.Context) error {
	filters := searchFiltersFromQuery(c)
	if filters.IsEmpty() {
		// No query and no filters: no search runs at all. Distinct from
		// "searched, found nothing".
		return c.JSON(http.StatusOK, map[string]any{"searched": false, "items": []NewsItem{}})
	}
	items, err := a.Feed.Search(c.Request().Context(), filters)
	if err != nil {
		c.Logger().Errorf("search failed: %v", err)
		return c.JSON(http.StatusOK, map[string]any{"searched": true, "items": []NewsItem{}, "error": "unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]any{"searched": true, "items": listOf(items).Items})
}

func searchFiltersFromQuery(c echo.Context) SearchFilters {
	f := SearchFilters{
		Query:    strings.TrimSpace(c.QueryParam("q")),
		Category: c.QueryParam("category"),
		SortBy:   SortMode(c.QueryParam("sort")),
	}
	if tags := c.QueryParam("tags"); tags != "" {
		f.Tags = FilterEmpty(strings.Split(tags, ","))
	}
	if from := c.QueryParam("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			f.DateFrom = t
		}
	}
	if to := c.QueryParam("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			// Inclusive upper bound: the whole day counts.
			f.DateTo = t.Add(24*time.Hour - time.Nanosecond)
		}
	}
	return f
}

func (a *App) handleTags(c echo.Context) error {
	tags, err := a.Feed.AllTags(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("fetch tags: %v", err)
		return c.JSON(http.StatusOK, map[string]any{"tags": []string{}, "error": "unavailable"})
	}
	if tags == nil {
		tags = []string{}
	}
	return c.JSON(http.StatusOK, map[string]any{"tags": tags})
}

func (a *App) handleContact(c echo.Context) error {
	settings, err := a.Feed.ContactSettings(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("fetch contact settings: %v", err)
		return c.JSON(http.StatusOK, map[string]any{"error": "unavailable"})
	}
	if settings == nil {
		return c.JSON(http.StatusNotFound, map[string]any{"error": "not found"})
	}
	return c.JSON(http.StatusOK, settings)
}

func (a *App) handleRobots(c echo.Context) error {
	body := fmt.Sprintf("User-agent: *\nAllow: /\nDisallow: /admin/\n\nSitemap: %s/sitemap.xml\n", a.Config.URL)
	return c.String(http.StatusOK, body)
}

// --- Live event streams ---

func (a *App) handleBreakingEvents(c echo.Context) error {
	return a.streamEvents(c, a.Feed.WatchBreaking(limitParam(c, DefaultBreakingLimit)))
}

func (a *App) handleLatestEvents(c echo.Context) error {
	return a.streamEvents(c, a.Feed.WatchLatest(limitParam(c, DefaultLatestLimit)))
}

// streamEvents pipes a live query to the client as server-sent events. Each
// event carries the full current result set; the client replaces its state
// wholesale. The watch is closed on every exit path.
func (a *App) streamEvents(c echo.Context, w *Watch) error {
	defer w.Close()

	h := c.Response().Header()
	h.Set(echo.HeaderContentType, "text/event-stream")
	h.Set("Connection", "keep-alive")
	c.Response().WriteHeader(http.StatusOK)

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case snap, ok := <-w.Updates():
			if !ok {
				return nil
			}
			if snap.Err != nil {
				c.Logger().Errorf("live query failed: %v", snap.Err)
				continue
			}
			payload, err := json.Marshal(listOf(snap.Items))
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(c.Response(), "data: %s\n\n", payload); err != nil {
				return nil
			}
			c.Response().Flush()
		}
	}
}
