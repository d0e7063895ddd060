// Package prefs is the preference and bookmark store used by the TUI. Local
// keeps the record in the device SQLite database; Remote syncs it with newsd
// for a signed-in user.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abelbrown/newshub/internal/logging"
	"github.com/abelbrown/newshub/internal/model"
	"github.com/abelbrown/newshub/internal/otel"
	"github.com/abelbrown/newshub/internal/store"
)

// Store reads and writes the preference record.
type Store interface {
	Read(ctx context.Context) (model.Preferences, error)
	Write(ctx context.Context, p model.Preferences) error
}

// Local is the unauthenticated, device-local Store.
type Local struct {
	db *store.Store
}

// NewLocal wraps an open SQLite store.
func NewLocal(db *store.Store) *Local {
	return &Local{db: db}
}

// Read returns the saved record, or defaults when nothing was saved.
func (l *Local) Read(ctx context.Context) (model.Preferences, error) {
	p, err := l.db.LoadPreferences(ctx, store.LocalOwner)
	if errors.Is(err, store.ErrNotFound) {
		return model.DefaultPreferences(), nil
	}
	if err != nil {
		return model.Preferences{}, fmt.Errorf("read local preferences: %w", err)
	}
	return p, nil
}

// Write replaces the saved record.
func (l *Local) Write(ctx context.Context, p model.Preferences) error {
	if err := l.db.SavePreferences(ctx, store.LocalOwner, p); err != nil {
		return fmt.Errorf("write local preferences: %w", err)
	}
	return nil
}

// Saver writes preferences in the background. Failures are logged and never
// surface to the user; the UI has already applied the change.
type Saver struct {
	store   Store
	events  *otel.Logger
	timeout time.Duration
}

// NewSaver creates a Saver over st.
func NewSaver(st Store, events *otel.Logger) *Saver {
	return &Saver{store: st, events: events, timeout: 10 * time.Second}
}

// Save writes p and returns the error only for callers that care (tests, CLI).
func (s *Saver) Save(p model.Preferences) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	if err := s.store.Write(ctx, p); err != nil {
		logging.Warn("preference save failed", "error", err)
		s.events.Emit(otel.Event{
			Level: otel.LevelWarn, Kind: otel.KindPrefsError, Comp: "prefs",
			Dur: time.Since(start), Err: err.Error(),
		})
		return err
	}
	s.events.Emit(otel.Event{
		Level: otel.LevelDebug, Kind: otel.KindPrefsSave, Comp: "prefs",
		Dur: time.Since(start), Count: len(p.Bookmarks),
	})
	return nil
}

// Load reads preferences, falling back to defaults on any error.
func Load(ctx context.Context, st Store, events *otel.Logger) model.Preferences {
	p, err := st.Read(ctx)
	if err != nil {
		logging.Warn("preference load failed, using defaults", "error", err)
		events.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindPrefsError, Comp: "prefs", Err: err.Error()})
		return model.DefaultPreferences()
	}
	events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindPrefsLoad, Comp: "prefs", Count: len(p.Bookmarks)})
	return p
}
