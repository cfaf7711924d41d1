package khabar

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"
	"unicode"
)

// Slugify converts a name to a URL-safe slug. Unicode letters and digits are
// kept as-is so Devanagari category names survive; runs of anything else
// collapse to a single hyphen.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	hyphen := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			hyphen = false
			continue
		}
		if !hyphen && b.Len() > 0 {
			b.WriteByte('-')
			hyphen = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// BuildURL joins a base URL with path segments.
func BuildURL(base string, segments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(segments...))
	return u.String()
}

// FilterEmpty removes empty/whitespace-only strings from a slice, trimming
// the survivors.
func FilterEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Paragraphs splits article content on line breaks into renderable
// paragraphs, dropping blank lines.
func Paragraphs(content string) []string {
	return FilterEmpty(strings.Split(content, "\n"))
}

// ShareLinks returns social share URLs for an article page.
func ShareLinks(articleURL, title string) map[string]string {
	u := url.QueryEscape(articleURL)
	t := url.QueryEscape(title)
	return map[string]string{
		"facebook": "https://www.facebook.com/sharer/sharer.php?u=" + u,
		"twitter":  "https://twitter.com/intent/tweet?url=" + u + "&text=" + t,
		"whatsapp": "https://wa.me/?text=" + t + "%20" + u,
	}
}

// WebsiteJsonLD returns a JSON-LD string for a WebSite schema using SiteConfig.
func WebsiteJsonLD(cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "WebSite",
		"name":        cfg.Name,
		"url":         cfg.URL,
		"description": cfg.Description,
	}
	if cfg.Author != "" {
		data["publisher"] = map[string]string{
			"@type": "Organization",
			"name":  cfg.Author,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// NewsArticleJsonLD returns a JSON-LD string for a NewsArticle schema.
func NewsArticleJsonLD(item NewsItem, cfg SiteConfig) string {
	articleURL := BuildURL(cfg.URL, "news", item.ID)
	data := map[string]interface{}{
		"@context":      "https://schema.org",
		"@type":         "NewsArticle",
		"headline":      item.Title,
		"description":   item.Excerpt,
		"datePublished": item.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		"dateModified":  item.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
		"url":           articleURL,
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   articleURL,
		},
	}
	if item.ImageURL != "" {
		data["image"] = item.ImageURL
	}
	if item.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  item.Author,
		}
	}
	if cfg.Name != "" {
		data["publisher"] = map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		}
	}
	if len(item.Tags) > 0 {
		data["keywords"] = strings.Join(item.Tags, ", ")
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
