// Command newsd is the NewsHub REST backend.
//
// Usage:
//
//	newsd [-port 5000] [-db path] [-mongo uri]
//
// Accounts, sessions and preferences live in SQLite unless a MongoDB URI is
// given. Configuration comes from ~/.newshub/config.json, .env and the
// environment (GNEWS_API_KEY, PORT, DATABASE_PATH, MONGO_URI, SESSION_TTL).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/abelbrown/newshub/internal/config"
	"github.com/abelbrown/newshub/internal/fetch"
	"github.com/abelbrown/newshub/internal/logging"
	"github.com/abelbrown/newshub/internal/mongostore"
	"github.com/abelbrown/newshub/internal/otel"
	"github.com/abelbrown/newshub/internal/server"
	"github.com/abelbrown/newshub/internal/store"
)

// purgeInterval is how often expired SQLite sessions are deleted.
const purgeInterval = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		fatal("Failed to load config: %v", err)
	}

	port := flag.String("port", cfg.Server.Port, "HTTP port")
	dbPath := flag.String("db", cfg.Server.DatabasePath, "SQLite database path")
	mongoURI := flag.String("mongo", cfg.Server.MongoURI, "MongoDB URI (overrides -db)")
	debug := flag.Bool("debug", false, "Verbose logging")
	flag.Parse()

	level := log.InfoLevel
	if *debug {
		level = log.DebugLevel
	}
	logging.InitWriter(os.Stderr, level)

	if err := os.MkdirAll(config.Dir(), 0755); err != nil {
		fatal("Failed to create data directory: %v", err)
	}
	var events *otel.Logger
	if f, err := os.OpenFile(filepath.Join(config.Dir(), "newsd.events.jsonl"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
		logging.Warn("event log unavailable", "error", err)
		events = otel.NewNullLogger()
	} else {
		defer f.Close()
		events = otel.NewLogger(f)
	}
	defer events.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var repo server.Repository
	if *mongoURI != "" {
		ms, err := mongostore.Open(ctx, *mongoURI, cfg.Server.MongoDatabase)
		if err != nil {
			fatal("Failed to connect to MongoDB: %v", err)
		}
		defer ms.Close()
		repo = ms
		logging.Info("MongoDB connected", "database", cfg.Server.MongoDatabase)
	} else {
		if err := os.MkdirAll(filepath.Dir(*dbPath), 0755); err != nil {
			fatal("Failed to create database directory: %v", err)
		}
		st, err := store.Open(*dbPath)
		if err != nil {
			fatal("Failed to open database: %v", err)
		}
		defer st.Close()
		repo = st
		go purgeSessions(ctx, st, events)
		logging.Info("SQLite store opened", "path", *dbPath)
	}

	client := fetch.NewClient(fetch.Options{
		Endpoint:          cfg.GNews.Endpoint,
		APIKey:            cfg.GNews.APIKey,
		Timeout:           cfg.FetchTimeout(),
		RequestsPerSecond: cfg.GNews.RequestsPerSecond,
		Events:            events,
	})
	if !client.Available() {
		logging.Warn("GNEWS_API_KEY is not set; article routes will fail")
	}

	srv := server.New(server.Options{
		Repo:          repo,
		Fetcher:       client,
		Events:        events,
		SessionTTL:    cfg.SessionTTL(),
		CacheTTL:      cfg.CacheTTL(),
		CacheSize:     cfg.Server.CacheSize,
		AllowedOrigin: cfg.Server.AllowedOrigin,
		FeedLink:      "http://localhost:" + *port,
	})

	events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindStartup, Comp: "main", Msg: "newsd :" + *port})
	if err := srv.Start(ctx, ":"+*port); err != nil {
		logging.Error("server error", "error", err)
		events.Emit(otel.Event{Level: otel.LevelError, Kind: otel.KindError, Comp: "main", Err: err.Error()})
		os.Exit(1)
	}
	events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindShutdown, Comp: "main"})
	logging.Info("newsd stopped")
}

// purgeSessions deletes expired sessions until ctx is cancelled.
func purgeSessions(ctx context.Context, st *store.Store, events *otel.Logger) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := st.PurgeSessions(ctx)
			if err != nil {
				logging.Warn("session purge failed", "error", err)
				events.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindStoreError, Comp: "store", Err: err.Error()})
				continue
			}
			if n > 0 {
				logging.Debug("expired sessions purged", "count", n)
			}
		}
	}
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
