package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/abelbrown/newshub/internal/feed"
	"github.com/abelbrown/newshub/internal/fetch"
	"github.com/abelbrown/newshub/internal/model"
	"github.com/abelbrown/newshub/internal/otel"
)

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	category := fs.String("category", model.CategoryGeneral, "Category filter")
	country := fs.String("country", model.CountryNone, "Country filter (none for worldwide)")
	pages := fs.Int("pages", 1, "Pages to load per query")
	interactive := fs.Bool("i", false, "Read queries from stdin, one per line, debounced")
	fs.Parse(os.Args[1:])

	cfg := loadConfig()
	client := fetch.NewClient(fetch.Options{
		Endpoint:          cfg.GNews.Endpoint,
		APIKey:            cfg.GNews.APIKey,
		Timeout:           cfg.FetchTimeout(),
		RequestsPerSecond: cfg.GNews.RequestsPerSecond,
	})
	if !client.Available() {
		fmt.Fprintln(os.Stderr, "error: GNEWS_API_KEY environment variable is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	filters := model.Filters{Category: *category, Country: *country}
	m := feed.New(otel.NewNullLogger())

	if *interactive {
		searchInteractive(ctx, m, client, filters, os.Stdin, os.Stdout)
		return
	}

	queries := fs.Args()
	if len(queries) == 0 {
		fmt.Fprintln(os.Stderr, "usage: nhctl search [-category c] [-country c] [-pages N] <query> [query...]")
		fmt.Fprintln(os.Stderr, "       nhctl search -i")
		os.Exit(1)
	}

	for _, q := range queries {
		fmt.Printf("\n>>> QUERY: %q\n", q)
		fmt.Println(strings.Repeat("-", 80))
		filters.Query = q
		if err := drain(ctx, m, client, m.ChangeFilters(filters), *pages, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
}

// drain runs req and then LoadMore until pages pages are loaded or the feed
// ends, printing the collection as it grows.
func drain(ctx context.Context, m *feed.Machine, f fetch.Fetcher, req *feed.Request, pages int, w io.Writer) error {
	printed := 0
	for loaded := 0; req != nil && loaded < pages; loaded++ {
		t0 := time.Now()
		res := f.Fetch(ctx, req.Filters, req.Page)
		m.Complete(req, res)
		if !res.Success {
			return res.Err
		}

		snap := m.Snapshot()
		fmt.Fprintf(w, "page %d: %d articles (%s)\n", req.Page, len(res.Articles), time.Since(t0).Round(time.Millisecond))
		for i := printed; i < len(snap.Items); i++ {
			a := snap.Items[i]
			fmt.Fprintf(w, "  %3d. %-60s %s\n", i+1, truncate(a.Title, 60), a.SourceName)
		}
		printed = len(snap.Items)

		req = m.LoadMore()
	}
	if !m.HasMore() {
		fmt.Fprintln(w, "(no more articles)")
	}
	return nil
}

// searchInteractive treats each input line as what the user has typed so
// far. Lines narrow the loaded collection at once; the remote query only
// runs once typing pauses for feed.SearchDelay. The loop goroutine owns m.
func searchInteractive(ctx context.Context, m *feed.Machine, f fetch.Fetcher, filters model.Filters, in io.Reader, w io.Writer) {
	if err := drain(ctx, m, f, m.Init(filters), 1, w); err != nil {
		fmt.Fprintf(w, "error: %v\n", err)
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	due := make(chan uint64, 1)
	debounce := feed.NewDebouncer(feed.SearchDelay)
	defer debounce.Cancel()

	pending := false
	for {
		select {
		case <-ctx.Done():
			return

		case line, ok := <-lines:
			if !ok {
				lines = nil
				if !pending {
					return
				}
				continue
			}
			ticket := m.SetSearchQuery(line)
			pending = true
			fmt.Fprintf(w, "narrowed: %d of %d loaded\n", len(m.Visible()), m.Len())
			debounce.Trigger(func() {
				select {
				case due <- ticket.Seq:
				case <-ctx.Done():
				}
			})

		case seq := <-due:
			req := m.SearchDue(seq)
			if req == nil {
				continue
			}
			pending = false
			fmt.Fprintf(w, "\n>>> QUERY: %q\n", req.Filters.Query)
			if err := drain(ctx, m, f, req, 1, w); err != nil {
				fmt.Fprintf(w, "error: %v\n", err)
			}
			if lines == nil {
				return
			}
		}
	}
}
