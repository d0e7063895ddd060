// Package otel provides structured observability for NewsHub.
//
// Events are typed structs serialized as JSONL lines. The Logger writes them
// asynchronously through a buffered channel drained by one goroutine. An
// optional RingBuffer keeps the most recent events for the TUI event panel.
package otel

import (
	"encoding/json"
	"time"
)

// Level defines event severity for filtering.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// EventKind identifies the category of an event.
// Dot-delimited: "<subsystem>.<action>".
type EventKind string

const (
	// Remote article source
	KindFetchStart    EventKind = "fetch.start"
	KindFetchComplete EventKind = "fetch.complete"
	KindFetchError    EventKind = "fetch.error"

	// Feed state machine
	KindFeedReset   EventKind = "feed.reset"
	KindFeedMerge   EventKind = "feed.merge"
	KindFeedStale   EventKind = "feed.stale"
	KindFeedEnd     EventKind = "feed.end"
	KindSearchFired EventKind = "feed.search"

	// Breaking news ticker
	KindTickerRefresh EventKind = "ticker.refresh"
	KindTickerError   EventKind = "ticker.error"

	// Preferences and bookmarks
	KindPrefsLoad  EventKind = "prefs.load"
	KindPrefsSave  EventKind = "prefs.save"
	KindPrefsError EventKind = "prefs.error"
	KindBookmark   EventKind = "prefs.bookmark"

	// REST backend
	KindRequest   EventKind = "http.request"
	KindAuthError EventKind = "http.auth_error"

	// Store
	KindStoreError EventKind = "store.error"

	// UI
	KindKeyPress EventKind = "ui.key"

	// System
	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
	KindError    EventKind = "sys.error"
)

// Event is the universal observability record. Every field except Kind and
// Time is optional. Serialized as a single JSONL line.
type Event struct {
	Time      time.Time      `json:"t"`
	Level     Level          `json:"level,omitempty"`
	Kind      EventKind      `json:"kind"`
	Comp      string         `json:"comp,omitempty"` // "feed", "fetch", "ui", "server", "main"
	SessionID string         `json:"session_id,omitempty"`
	Gen       uint64         `json:"gen,omitempty"` // feed generation the event belongs to
	Mode      string         `json:"mode,omitempty"`
	Page      int            `json:"page,omitempty"`
	Dur       time.Duration  `json:"-"`
	DurMs     float64        `json:"dur_ms,omitempty"`
	Count     int            `json:"count,omitempty"`
	Source    string         `json:"source,omitempty"`
	Query     string         `json:"query,omitempty"`
	URL       string         `json:"url,omitempty"`
	Err       string         `json:"err,omitempty"`
	Msg       string         `json:"msg,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// MarshalJSON converts Dur to DurMs.
func (e Event) MarshalJSON() ([]byte, error) {
	type alias Event
	a := alias(e)
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(a)
}
