package khabar

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rsaxena/khabar/docstore"
)

func (a *App) handleAdminLogin(c echo.Context) error {
	if !a.loginLimiter.Check(c.RealIP()) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) != 1 {
		a.loginLimiter.Record(c.RealIP())
		return c.JSON(http.StatusUnauthorized, map[string]any{"error": "invalid password"})
	}
	if err := setAdminSession(c); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

func requireAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return echo.NewHTTPError(http.StatusUnauthorized, "login required")
	}
	return nil
}

func (a *App) handleAdminListPosts(c echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return err
	}
	// The authoring list shows every article regardless of status.
	docs, err := a.Store.FetchOnce(c.Request().Context(),
		docstore.C(postsCollection).OrderBy(fieldCreatedAt, docstore.Desc))
	if err != nil {
		return err
	}
	resolve := a.Feed.nav.resolver(c.Request().Context())
	items := make([]NewsItem, 0, len(docs))
	for _, d := range docs {
		items = append(items, newsFromDoc(d, resolve))
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

type postInput struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Excerpt     string   `json:"excerpt"`
	Content     string   `json:"content"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Status      string   `json:"status"`
	IsBreaking  bool     `json:"isBreaking"`
	AddToSlider bool     `json:"addToSlider"`
	ImageURL    string   `json:"imageUrl"`
	Author      string   `json:"author"`
	Language    string   `json:"language"`
}

func (a *App) handleAdminSavePost(c echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return err
	}
	var in postInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid post payload")
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}
	if in.Status == "" {
		in.Status = string(StatusDraft)
	}
	if in.Language == "" {
		in.Language = string(LangHindi)
	}

	ctx := c.Request().Context()
	now := docstore.Millis(time.Now())
	data := map[string]any{
		"title":       in.Title,
		"excerpt":     in.Excerpt,
		"content":     in.Content,
		"category":    in.Category,
		"tags":        in.Tags,
		"status":      in.Status,
		"isBreaking":  in.IsBreaking,
		"addToSlider": in.AddToSlider,
		"imageUrl":    in.ImageURL,
		"author":      in.Author,
		"language":    in.Language,
		"updatedAt":   now,
	}

	// A fresh article starts its clock and counter here; an edit keeps the
	// original creation time and accumulated views.
	if in.ID == "" {
		data["createdAt"] = now
		data["views"] = int64(0)
	} else {
		existing, err := a.Store.GetByID(ctx, postsCollection, in.ID)
		if err != nil && err != docstore.ErrNotFound {
			return err
		}
		if err == nil {
			data["createdAt"] = existing.Data["createdAt"]
			data["views"] = existing.Data["views"]
		} else {
			data["createdAt"] = now
			data["views"] = int64(0)
		}
	}

	id, err := a.Store.Put(ctx, postsCollection, in.ID, data)
	if err != nil {
		return err
	}
	a.Feed.InvalidateCache()
	return c.JSON(http.StatusOK, map[string]any{"id": id})
}

func (a *App) handleAdminDeletePost(c echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return err
	}
	if err := a.Store.Delete(c.Request().Context(), postsCollection, c.Param("id")); err != nil {
		return err
	}
	a.Feed.InvalidateCache()
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

func (a *App) handleAdminListCategories(c echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return err
	}
	docs, err := a.Store.FetchOnce(c.Request().Context(),
		docstore.C(categoriesCollection).OrderBy("name", docstore.Asc))
	if err != nil {
		return err
	}
	categories := make([]Category, 0, len(docs))
	for _, d := range docs {
		categories = append(categories, categoryFromDoc(d))
	}
	return c.JSON(http.StatusOK, map[string]any{"categories": categories})
}

type categoryInput struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	IsActive bool   `json:"isActive"`
}

func (a *App) handleAdminSaveCategory(c echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return err
	}
	var in categoryInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid category payload")
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if in.Slug == "" {
		in.Slug = Slugify(in.Name)
	}

	ctx := c.Request().Context()
	data := map[string]any{
		"name":     in.Name,
		"slug":     in.Slug,
		"isActive": in.IsActive,
	}
	if in.ID == "" {
		data["postCount"] = int64(0)
		data["createdAt"] = docstore.Millis(time.Now())
	} else {
		existing, err := a.Store.GetByID(ctx, categoriesCollection, in.ID)
		if err != nil && err != docstore.ErrNotFound {
			return err
		}
		if err == nil {
			data["postCount"] = existing.Data["postCount"]
			data["createdAt"] = existing.Data["createdAt"]
		} else {
			data["postCount"] = int64(0)
			data["createdAt"] = docstore.Millis(time.Now())
		}
	}

	id, err := a.Store.Put(ctx, categoriesCollection, in.ID, data)
	if err != nil {
		return err
	}
	a.Feed.InvalidateCache()
	return c.JSON(http.StatusOK, map[string]any{"id": id})
}

func (a *App) handleAdminDeleteCategory(c echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return err
	}
	if err := a.Store.Delete(c.Request().Context(), categoriesCollection, c.Param("id")); err != nil {
		return err
	}
	a.Feed.InvalidateCache()
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

func (a *App) handleAdminSaveContact(c echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return err
	}
	var in ContactSettings
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid contact payload")
	}
	data := map[string]any{
		"address":   in.Address,
		"email":     in.Email,
		"phone":     in.Phone,
		"facebook":  in.Facebook,
		"instagram": in.Instagram,
		"twitter":   in.Twitter,
		"youtube":   in.YouTube,
	}
	if _, err := a.Store.Put(c.Request().Context(), settingsCollection, contactSettingsID, data); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}
