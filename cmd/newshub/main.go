// Command newshub is the NewsHub terminal client.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/newshub/internal/config"
	"github.com/abelbrown/newshub/internal/coord"
	"github.com/abelbrown/newshub/internal/fetch"
	"github.com/abelbrown/newshub/internal/logging"
	"github.com/abelbrown/newshub/internal/otel"
	"github.com/abelbrown/newshub/internal/prefs"
	"github.com/abelbrown/newshub/internal/reader"
	"github.com/abelbrown/newshub/internal/store"
	"github.com/abelbrown/newshub/internal/ui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fatal("Failed to load config: %v", err)
	}

	if err := logging.Init(""); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}
	defer logging.Close()

	dataDir := config.Dir()
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		fatal("Failed to create data directory: %v", err)
	}

	// Event log: JSONL for nhctl events, ring buffer for the ? panel
	ring := otel.NewRingBuffer(otel.DefaultRingSize)
	var events *otel.Logger
	if f, err := os.OpenFile(filepath.Join(dataDir, "newshub.events.jsonl"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
		logging.Warn("event log unavailable", "error", err)
		events = otel.NewNullLogger()
	} else {
		defer f.Close()
		events = otel.NewLogger(f)
	}
	events.SetRingBuffer(ring)
	defer events.Close()
	events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindStartup, Comp: "main"})

	db, err := store.Open(filepath.Join(dataDir, "newshub.db"))
	if err != nil {
		fatal("Failed to open database: %v", err)
	}
	defer db.Close()

	// Signed-in users sync preferences through newsd; everyone else keeps
	// them on this device.
	var prefStore prefs.Store = prefs.NewLocal(db)
	if cfg.Backend.URL != "" && cfg.Backend.Token != "" {
		prefStore = prefs.NewRemote(cfg.Backend.URL, cfg.Backend.Token)
		logging.Info("using remote preferences", "url", cfg.Backend.URL)
	}

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 10*time.Second)
	p := prefs.Load(loadCtx, prefStore, events)
	cancelLoad()
	if cfg.DarkMode() {
		p.DarkMode = true
	}

	client := fetch.NewClient(fetch.Options{
		Endpoint:          cfg.GNews.Endpoint,
		APIKey:            cfg.GNews.APIKey,
		Timeout:           cfg.FetchTimeout(),
		RequestsPerSecond: cfg.GNews.RequestsPerSecond,
		Events:            events,
	})
	if !client.Available() {
		logging.Warn("GNEWS_API_KEY is not set; headlines will not load")
	}

	app := ui.NewApp(ui.Deps{
		Fetcher: client,
		Saver:   prefs.NewSaver(prefStore, events),
		Reader:  reader.New(20 * time.Second),
		Events:  events,
		Ring:    ring,
		Compact: cfg.UI.Density == "compact",
	}, p)

	program := tea.NewProgram(app, tea.WithAltScreen())

	ctx, cancel := context.WithCancel(context.Background())
	var ticker *coord.Coordinator
	if cfg.Breaking.Enabled && len(cfg.Breaking.Sources) > 0 {
		sources := make([]fetch.Source, len(cfg.Breaking.Sources))
		for i, s := range cfg.Breaking.Sources {
			sources[i] = fetch.Source{Name: s.Name, URL: s.URL}
		}
		ticker = coord.NewCoordinator(fetch.NewHeadlineFetcher(cfg.FetchTimeout()), sources, cfg.BreakingInterval(), events)
		ticker.Start(ctx, program)
	}

	logging.Info("Starting UI")
	if _, err := program.Run(); err != nil {
		logging.Error("Application error", "error", err)
	}

	// Graceful shutdown
	cancel()
	if ticker != nil {
		ticker.Wait()
	}
	events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindShutdown, Comp: "main"})
	logging.Info("NewsHub exiting normally")
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
