package fetch

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// Source is an RSS feed used by the breaking news ticker.
type Source struct {
	Name string
	URL  string
}

// Headline is one ticker entry.
type Headline struct {
	Title     string
	URL       string
	Source    string
	Published time.Time
}

// HeadlineFetcher reads RSS/Atom feeds for the ticker.
type HeadlineFetcher struct {
	client *http.Client
}

// NewHeadlineFetcher creates a HeadlineFetcher with the given HTTP timeout.
func NewHeadlineFetcher(timeout time.Duration) *HeadlineFetcher {
	return &HeadlineFetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch retrieves headlines from one source, newest first.
func (f *HeadlineFetcher) Fetch(ctx context.Context, src Source) ([]Headline, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	now := time.Now()
	out := make([]Headline, 0, len(feed.Items))
	for _, it := range feed.Items {
		title := strings.TrimSpace(it.Title)
		if title == "" {
			continue
		}
		published := now
		if it.PublishedParsed != nil {
			published = *it.PublishedParsed
		} else if it.UpdatedParsed != nil {
			published = *it.UpdatedParsed
		}
		out = append(out, Headline{
			Title:     title,
			URL:       it.Link,
			Source:    src.Name,
			Published: published,
		})
	}

	SortHeadlines(out)
	return out, nil
}

// SortHeadlines orders headlines newest first.
func SortHeadlines(hs []Headline) {
	sort.SliceStable(hs, func(i, j int) bool {
		return hs[i].Published.After(hs[j].Published)
	})
}
