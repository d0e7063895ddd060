// Package model provides the data types shared by the feed loader, the
// preference store, the REST backend and the TUI.
//
// Article.URL is the identity of an article everywhere in NewsHub. Article.ID
// is generated per fetch and is never stable across fetches of the same story.
package model

import "time"

// Placeholders used when the remote source omits a field.
const (
	NoTitle       = "No title available"
	NoDescription = "No description available"
	UnknownSource = "Unknown Source"
)

// Article is the canonical normalized article record.
type Article struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	SourceName  string `json:"sourceName"`
	PublishedAt string `json:"publishedAt"` // ISO-8601
	URL         string `json:"url"`
	Content     string `json:"content,omitempty"`
	Category    string `json:"category"`
}

// Published parses PublishedAt. Returns the zero time if it cannot be parsed.
func (a Article) Published() time.Time {
	t, err := time.Parse(time.RFC3339, a.PublishedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Filters is the filter combination a feed fetch is issued for.
type Filters struct {
	Category string `json:"category"`
	Country  string `json:"country"`
	Query    string `json:"q,omitempty"`
}

// Normalize fills in defaults: general category, "none" country.
func (f Filters) Normalize() Filters {
	if f.Category == "" {
		f.Category = CategoryGeneral
	}
	if f.Country == "" {
		f.Country = CountryNone
	}
	return f
}

// Summarize shortens text to at most n runes, appending "..." when cut.
func Summarize(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
