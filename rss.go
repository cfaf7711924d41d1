package khabar

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const rssWindow = 50

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Language    string    `xml:"language,omitempty"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Category    string `xml:"category,omitempty"`
	PubDate     string `xml:"pubDate"`
	GUID        string `xml:"guid"`
}

func (a *App) handleFeed(c echo.Context) error {
	articles, err := a.Feed.LatestNews(c.Request().Context(), rssWindow)
	if err != nil {
		c.Logger().Errorf("rss fetch failed: %v", err)
		articles = nil
	}

	items := make([]rssItem, 0, len(articles))
	for _, n := range articles {
		articleURL := BuildURL(a.Config.URL, "news", n.ID)
		items = append(items, rssItem{
			Title:       n.Title,
			Link:        articleURL,
			Description: n.Excerpt,
			Category:    n.Category,
			PubDate:     n.CreatedAt.Format(time.RFC1123Z),
			GUID:        articleURL,
		})
	}

	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        a.Config.URL,
			Description: a.Config.Description,
			Language:    "hi",
			Items:       items,
		},
	}

	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}
