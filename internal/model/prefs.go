package model

import "time"

// Bookmark is a snapshot of an Article taken when it was bookmarked.
type Bookmark struct {
	Article
	BookmarkedAt string `json:"bookmarkedAt"`
}

// Preferences is the persisted user preference record.
type Preferences struct {
	DarkMode      bool       `json:"darkMode"`
	Country       string     `json:"country"`
	Categories    []string   `json:"categories"`
	Bookmarks     []Bookmark `json:"bookmarks"`
	Notifications bool       `json:"notifications"`
	Language      string     `json:"language"`
}

// DefaultPreferences returns the record used before anything was saved.
func DefaultPreferences() Preferences {
	return Preferences{
		Country:       "us",
		Categories:    []string{CategoryGeneral},
		Bookmarks:     []Bookmark{},
		Notifications: true,
		Language:      "en",
	}
}

// Category returns the primary selected category.
func (p Preferences) Category() string {
	if len(p.Categories) == 0 || p.Categories[0] == "" {
		return CategoryGeneral
	}
	return p.Categories[0]
}

// Bookmarks is an ordered bookmark set keyed by URL.
type Bookmarks struct {
	list []Bookmark
}

// NewBookmarks builds a set from a stored list. Later duplicates of a URL are
// dropped.
func NewBookmarks(list []Bookmark) *Bookmarks {
	b := &Bookmarks{list: make([]Bookmark, 0, len(list))}
	for _, bm := range list {
		if b.Has(bm.URL) {
			continue
		}
		b.list = append(b.list, bm)
	}
	return b
}

// Has reports whether url is bookmarked.
func (b *Bookmarks) Has(url string) bool {
	return b.index(url) >= 0
}

func (b *Bookmarks) index(url string) int {
	for i, bm := range b.list {
		if bm.URL == url {
			return i
		}
	}
	return -1
}

// Toggle adds a snapshot of a when its URL is absent, or removes the existing
// bookmark. Returns true if the article is bookmarked afterwards.
func (b *Bookmarks) Toggle(a Article, now time.Time) bool {
	if i := b.index(a.URL); i >= 0 {
		b.list = append(b.list[:i], b.list[i+1:]...)
		return false
	}
	b.list = append(b.list, Bookmark{Article: a, BookmarkedAt: now.UTC().Format(time.RFC3339)})
	return true
}

// List returns a copy of the bookmarks in insertion order.
func (b *Bookmarks) List() []Bookmark {
	out := make([]Bookmark, len(b.list))
	copy(out, b.list)
	return out
}

// Len returns the number of bookmarks.
func (b *Bookmarks) Len() int {
	return len(b.list)
}
