package server

import (
	"fmt"
	"time"

	"github.com/gorilla/feeds"

	"github.com/abelbrown/newshub/internal/model"
)

// GenerateRSSFeed renders a page of articles as RSS 2.0.
func GenerateRSSFeed(articles []model.Article, f model.Filters, link string) (string, error) {
	if link == "" {
		link = "http://localhost:5000"
	}
	now := time.Now()

	title := "NewsHub: " + model.NameOf(model.Categories(), f.Category)
	if f.Query != "" {
		title = fmt.Sprintf("NewsHub: search %q", f.Query)
	}

	feed := &feeds.Feed{
		Title:       title,
		Link:        &feeds.Link{Href: link},
		Description: "Top headlines from NewsHub",
		Created:     now,
	}

	feed.Items = make([]*feeds.Item, 0, len(articles))
	for _, a := range articles {
		if a.URL == "" {
			continue
		}
		item := &feeds.Item{
			Title:       a.Title,
			Link:        &feeds.Link{Href: a.URL},
			Id:          a.URL,
			Description: model.Summarize(a.Description, 500),
			Author:      &feeds.Author{Name: a.SourceName},
			Created:     a.Published(),
		}
		if item.Created.IsZero() {
			item.Created = now
		}
		feed.Items = append(feed.Items, item)
	}

	rss, err := feed.ToRss()
	if err != nil {
		return "", fmt.Errorf("generate RSS: %w", err)
	}
	return rss, nil
}
