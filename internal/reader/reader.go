// Package reader pulls the readable body text out of an article page for the
// TUI detail view.
package reader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

// ErrNoURL is returned for articles that came without a link.
var ErrNoURL = errors.New("reader: article has no url")

const maxPageBytes = 4 << 20

// Page is the readable form of an article.
type Page struct {
	Title    string
	Byline   string
	SiteName string
	Excerpt  string
	Text     string
	Words    int
}

// Reader downloads and extracts article pages.
type Reader struct {
	client *http.Client
}

// New creates a Reader with the given HTTP timeout.
func New(timeout time.Duration) *Reader {
	return &Reader{client: &http.Client{Timeout: timeout}}
}

// Extract fetches rawURL and returns its readable text.
func (r *Reader) Extract(ctx context.Context, rawURL string) (Page, error) {
	if strings.TrimSpace(rawURL) == "" {
		return Page{}, ErrNoURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Page{}, fmt.Errorf("parse url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Page{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "NewsHub/1.0 (https://github.com/abelbrown/newshub)")

	resp, err := r.client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Page{}, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	art, err := readability.FromReader(io.LimitReader(resp.Body, maxPageBytes), u)
	if err != nil {
		return Page{}, fmt.Errorf("extract article: %w", err)
	}

	text := tidy(art.TextContent)
	return Page{
		Title:    art.Title,
		Byline:   art.Byline,
		SiteName: art.SiteName,
		Excerpt:  art.Excerpt,
		Text:     text,
		Words:    len(strings.Fields(text)),
	}, nil
}

// tidy collapses runs of blank lines and trims each line.
func tidy(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, l)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
