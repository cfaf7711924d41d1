package khabar

import (
	"time"

	"github.com/rsaxena/khabar/docstore"
)

// The store has carried two shapes for articles over time: `category` holding
// either the category name or its id, and the image under either
// `featuredImage` or `imageUrl`. Normalization resolves both aliases here so
// neither variant leaks past this file.

// newsFromDoc maps one raw document to a NewsItem. It never fails: malformed
// or partial documents normalize best-effort, with timestamps defaulting to
// now and absent tags to an empty list. resolve translates a category id to
// its name and may be nil.
func newsFromDoc(d docstore.Document, resolve func(string) string) NewsItem {
	now := time.Now()
	category := docString(d.Data, fieldCategory)
	if resolve != nil {
		if name := resolve(category); name != "" {
			category = name
		}
	}
	image := docString(d.Data, "featuredImage")
	if image == "" {
		image = docString(d.Data, "imageUrl")
	}
	return NewsItem{
		ID:          d.ID,
		Title:       docString(d.Data, "title"),
		Excerpt:     docString(d.Data, "excerpt"),
		Content:     docString(d.Data, "content"),
		Category:    category,
		Tags:        docStrings(d.Data, "tags"),
		Status:      Status(docString(d.Data, fieldStatus)),
		IsBreaking:  docBool(d.Data, fieldBreaking),
		AddToSlider: docBool(d.Data, fieldSlider),
		ImageURL:    image,
		Author:      docString(d.Data, "author"),
		Views:       docInt64(d.Data, fieldViews),
		CreatedAt:   docTime(d.Data, fieldCreatedAt, now),
		UpdatedAt:   docTime(d.Data, "updatedAt", now),
		Language:    Language(docString(d.Data, "language")),
	}
}

// categoryFromDoc maps one raw document to a Category.
func categoryFromDoc(d docstore.Document) Category {
	return Category{
		ID:        d.ID,
		Name:      docString(d.Data, "name"),
		Slug:      docString(d.Data, "slug"),
		IsActive:  docBool(d.Data, fieldActive),
		PostCount: int(docInt64(d.Data, fieldPostCount)),
		CreatedAt: docTime(d.Data, fieldCreatedAt, time.Now()),
	}
}

// contactFromDoc maps the settings singleton to ContactSettings.
func contactFromDoc(d docstore.Document) ContactSettings {
	return ContactSettings{
		ID:        d.ID,
		Address:   docString(d.Data, "address"),
		Email:     docString(d.Data, "email"),
		Phone:     docString(d.Data, "phone"),
		Facebook:  docString(d.Data, "facebook"),
		Instagram: docString(d.Data, "instagram"),
		Twitter:   docString(d.Data, "twitter"),
		YouTube:   docString(d.Data, "youtube"),
	}
}

func docString(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}

func docBool(data map[string]any, key string) bool {
	switch v := data[key].(type) {
	case bool:
		return v
	case float64:
		return v != 0
	}
	return false
}

func docInt64(data map[string]any, key string) int64 {
	switch v := data[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}

func docTime(data map[string]any, key string, fallback time.Time) time.Time {
	if t, ok := docstore.FromMillis(data[key]); ok {
		return t
	}
	return fallback
}

func docStrings(data map[string]any, key string) []string {
	switch v := data[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
