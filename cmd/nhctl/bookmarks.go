package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/abelbrown/newshub/internal/model"
	"github.com/abelbrown/newshub/internal/server"
	"github.com/abelbrown/newshub/internal/store"
)

func runBookmarks() {
	fs := flag.NewFlagSet("bookmarks", flag.ExitOnError)
	format := fs.String("format", "text", "Output format: text, json, rss")
	fs.Parse(os.Args[1:])

	st := openDB(dbPath())
	defer st.Close()

	list, err := st.Bookmarks(context.Background(), store.LocalOwner)
	if err != nil {
		log.Fatalf("load bookmarks: %v", err)
	}

	if err := writeBookmarks(os.Stdout, list, *format); err != nil {
		log.Fatal(err)
	}
}

// writeBookmarks renders list in the requested format.
func writeBookmarks(w io.Writer, list []model.Bookmark, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(list)

	case "rss":
		articles := make([]model.Article, len(list))
		for i, b := range list {
			articles[i] = b.Article
		}
		rss, err := server.GenerateRSSFeed(articles, model.Filters{Category: model.CategoryGeneral}, "")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, rss)
		return err

	case "text":
		if len(list) == 0 {
			_, err := fmt.Fprintln(w, "No bookmarks yet.")
			return err
		}
		for i, b := range list {
			age := ""
			if t := b.Published(); !t.IsZero() {
				age = humanize.Time(t)
			}
			fmt.Fprintf(w, "%3d. %-60s %s\n", i+1, truncate(b.Title, 60), age)
			fmt.Fprintf(w, "     %s  %s\n", b.SourceName, b.URL)
		}
		_, err := fmt.Fprintf(w, "\n%d bookmarks\n", len(list))
		return err

	default:
		return fmt.Errorf("unknown format %q (want text, json or rss)", format)
	}
}
