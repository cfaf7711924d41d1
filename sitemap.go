package khabar

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const sitemapWindow = 1000

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

func (a *App) handleSitemap(c echo.Context) error {
	ctx := c.Request().Context()
	base := a.Config.URL

	urls := []sitemapURL{{Loc: base}}

	categories, err := a.Feed.Categories(ctx)
	if err != nil {
		c.Logger().Errorf("sitemap categories fetch failed: %v", err)
	}
	for _, cat := range categories {
		urls = append(urls, sitemapURL{Loc: BuildURL(base, "category", cat.Slug)})
	}

	articles, err := a.Feed.LatestNews(ctx, sitemapWindow)
	if err != nil {
		c.Logger().Errorf("sitemap articles fetch failed: %v", err)
	}
	for _, n := range articles {
		urls = append(urls, sitemapURL{
			Loc:     BuildURL(base, "news", n.ID),
			LastMod: n.UpdatedAt.Format(time.DateOnly),
		})
	}

	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}

	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}
