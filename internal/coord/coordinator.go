// Package coord runs the breaking news ticker in the background for NewsHub.
package coord

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/newshub/internal/fetch"
	"github.com/abelbrown/newshub/internal/logging"
	"github.com/abelbrown/newshub/internal/otel"
	"github.com/abelbrown/newshub/internal/ui"
)

// DefaultInterval is the time between ticker refreshes.
const DefaultInterval = 10 * time.Minute

// fetchTimeout is the timeout for each individual feed.
const fetchTimeout = 20 * time.Second

// maxConcurrentFetches limits parallel feed reads.
const maxConcurrentFetches = 4

// maxHeadlines caps what the ticker carries.
const maxHeadlines = 20

// fetcher interface for dependency injection (testing).
type fetcher interface {
	Fetch(ctx context.Context, src fetch.Source) ([]fetch.Headline, error)
}

// sender receives ticker updates. *tea.Program satisfies it.
type sender interface {
	Send(msg tea.Msg)
}

// Coordinator refreshes breaking headlines on an interval.
// Uses context cancellation as the ONLY stop mechanism.
type Coordinator struct {
	fetcher  fetcher
	sources  []fetch.Source // IMMUTABLE: set at construction, never modified
	interval time.Duration
	events   *otel.Logger
	wg       sync.WaitGroup
}

// NewCoordinator creates a Coordinator with the real RSS fetcher.
func NewCoordinator(f *fetch.HeadlineFetcher, sources []fetch.Source, interval time.Duration, events *otel.Logger) *Coordinator {
	return NewCoordinatorWithFetcher(f, sources, interval, events)
}

// NewCoordinatorWithFetcher allows injecting a custom fetcher (for testing).
func NewCoordinatorWithFetcher(f fetcher, sources []fetch.Source, interval time.Duration, events *otel.Logger) *Coordinator {
	sourcesCopy := make([]fetch.Source, len(sources))
	copy(sourcesCopy, sources)
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Coordinator{
		fetcher:  f,
		sources:  sourcesCopy,
		interval: interval,
		events:   events,
	}
}

// Start refreshes immediately, then every interval, until ctx is cancelled.
func (c *Coordinator) Start(ctx context.Context, program sender) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		c.refresh(ctx, program)

		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.refresh(ctx, program)
			}
		}
	}()
}

// Wait blocks until the background goroutine exits.
// Call after canceling the context passed to Start.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// refresh reads every source in parallel and sends one merged update.
func (c *Coordinator) refresh(ctx context.Context, program sender) {
	start := time.Now()
	msg := c.fetchAll(ctx)
	if ctx.Err() != nil {
		return
	}

	c.events.Emit(otel.Event{
		Level: otel.LevelInfo, Kind: otel.KindTickerRefresh, Comp: "coord",
		Dur: time.Since(start), Count: len(msg.Headlines),
		Extra: map[string]any{"failed": msg.Failed},
	})
	if program != nil {
		program.Send(msg)
	}
}

// fetchAll fetches all sources and merges the results newest first.
// A source that fails is counted and skipped.
func (c *Coordinator) fetchAll(ctx context.Context) ui.BreakingNews {
	var (
		mu     sync.Mutex
		all    []fetch.Headline
		failed int
	)

	var g errgroup.Group
	g.SetLimit(maxConcurrentFetches)

	for _, src := range c.sources {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			hs, err := c.fetchSource(ctx, src)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				return nil // never fail the group - errors reported per-source
			}
			all = append(all, hs...)
			return nil
		})
	}
	_ = g.Wait()

	fetch.SortHeadlines(all)
	if len(all) > maxHeadlines {
		all = all[:maxHeadlines]
	}
	return ui.BreakingNews{Headlines: all, Failed: failed}
}

func (c *Coordinator) fetchSource(ctx context.Context, src fetch.Source) ([]fetch.Headline, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	hs, err := c.fetcher.Fetch(fetchCtx, src)
	if err != nil && ctx.Err() == nil {
		logging.Warn("ticker source failed", "source", src.Name, "error", err)
		c.events.Emit(otel.Event{
			Level: otel.LevelWarn, Kind: otel.KindTickerError, Comp: "coord",
			Source: src.Name, URL: src.URL, Err: err.Error(),
		})
	}
	return hs, err
}
