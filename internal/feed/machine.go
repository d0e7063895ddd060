// Package feed is the incremental news feed loader: a single-owner state
// machine that decides which page to request next and reconciles each fetch
// result into the displayed collection.
//
// The Machine does no I/O. Every transition that needs data returns a
// *Request; the caller performs the fetch and hands the outcome back through
// Complete. A Request carries the generation it was issued under, and any
// completion from an older generation is dropped on arrival. That is how a
// filter change or refresh supersedes a fetch already on the wire.
//
// A Machine must only be used from one goroutine (the Bubble Tea update loop
// in the TUI).
package feed

import (
	"github.com/abelbrown/newshub/internal/fetch"
	"github.com/abelbrown/newshub/internal/model"
	"github.com/abelbrown/newshub/internal/otel"
)

// Mode is the loader's current activity.
type Mode int

const (
	Idle Mode = iota
	LoadingInitial
	LoadingMore
	Refreshing
	Errored
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case LoadingInitial:
		return "loading"
	case LoadingMore:
		return "loading-more"
	case Refreshing:
		return "refreshing"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}

// Loading reports whether a fetch is outstanding in this mode.
func (m Mode) Loading() bool {
	return m == LoadingInitial || m == LoadingMore || m == Refreshing
}

// Request describes the fetch a transition wants issued.
type Request struct {
	Generation uint64
	Mode       Mode
	Filters    model.Filters
	Page       int
}

// Snapshot is a read-only copy of the loader state for rendering.
type Snapshot struct {
	Items      []model.Article
	Mode       Mode
	HasMore    bool
	Err        error
	Filters    model.Filters
	Page       int
	Generation uint64
	SearchText string
}

// Machine owns the feed state.
type Machine struct {
	items   []model.Article
	seen    map[string]struct{}
	cursor  int
	hasMore bool
	filters model.Filters
	mode    Mode
	gen     uint64
	err     error

	search    string
	searchSeq uint64

	events *otel.Logger
}

// New creates an empty Machine. Nothing is loaded until Init.
func New(events *otel.Logger) *Machine {
	return &Machine{
		items:   []model.Article{},
		seen:    make(map[string]struct{}),
		cursor:  1,
		filters: model.Filters{}.Normalize(),
		events:  events,
	}
}

// Init starts the first load for filters.
func (m *Machine) Init(f model.Filters) *Request {
	m.filters = f.Normalize()
	return m.reset(LoadingInitial)
}

// ChangeFilters starts over with new filters. Identical filters still
// re-query.
func (m *Machine) ChangeFilters(f model.Filters) *Request {
	m.filters = f.Normalize()
	return m.reset(LoadingInitial)
}

// Refresh reloads page one with the current filters.
func (m *Machine) Refresh() *Request {
	return m.reset(Refreshing)
}

// LoadMore requests the next page. Returns nil unless the loader is idle and
// the last page was non-empty.
func (m *Machine) LoadMore() *Request {
	if m.mode != Idle || !m.hasMore {
		return nil
	}
	m.cursor++
	m.mode = LoadingMore
	return m.request()
}

func (m *Machine) reset(mode Mode) *Request {
	m.items = []model.Article{}
	m.seen = make(map[string]struct{})
	m.cursor = 1
	m.hasMore = true
	m.err = nil
	m.gen++
	m.mode = mode

	m.events.Emit(otel.Event{
		Level: otel.LevelDebug, Kind: otel.KindFeedReset, Comp: "feed",
		Gen: m.gen, Mode: mode.String(), Source: m.filters.Category, Query: m.filters.Query,
	})
	return m.request()
}

func (m *Machine) request() *Request {
	return &Request{
		Generation: m.gen,
		Mode:       m.mode,
		Filters:    m.filters,
		Page:       m.cursor,
	}
}

// Complete applies the outcome of req. Returns false when the result was
// discarded because a newer reset superseded it.
func (m *Machine) Complete(req *Request, res fetch.Result) bool {
	if req == nil {
		return false
	}
	if req.Generation != m.gen || req.Mode != m.mode || req.Page != m.cursor {
		m.events.Emit(otel.Event{
			Level: otel.LevelDebug, Kind: otel.KindFeedStale, Comp: "feed",
			Gen: req.Generation, Mode: req.Mode.String(), Page: req.Page,
		})
		return false
	}

	if !res.Success {
		m.hasMore = false
		m.mode = Errored
		m.err = res.Err
		if m.err == nil {
			m.err = &fetch.RemoteServiceError{Message: fetch.UserMessage}
		}
		return true
	}

	switch req.Mode {
	case LoadingMore:
		m.items = mergeAppend(m.items, res.Articles, m.seen)
	default:
		m.items = mergeReset(res.Articles, m.seen)
	}
	m.hasMore = len(res.Articles) > 0
	m.mode = Idle
	m.err = nil

	kind := otel.KindFeedMerge
	if !m.hasMore {
		kind = otel.KindFeedEnd
	}
	m.events.Emit(otel.Event{
		Level: otel.LevelDebug, Kind: kind, Comp: "feed",
		Gen: m.gen, Mode: req.Mode.String(), Page: req.Page, Count: len(m.items),
	})
	return true
}

// Snapshot copies the current state.
func (m *Machine) Snapshot() Snapshot {
	items := make([]model.Article, len(m.items))
	copy(items, m.items)
	return Snapshot{
		Items:      items,
		Mode:       m.mode,
		HasMore:    m.hasMore,
		Err:        m.err,
		Filters:    m.filters,
		Page:       m.cursor,
		Generation: m.gen,
		SearchText: m.search,
	}
}

// Filters returns the active filters.
func (m *Machine) Filters() model.Filters {
	return m.filters
}

// Mode returns the current mode.
func (m *Machine) Mode() Mode {
	return m.mode
}

// HasMore reports whether LoadMore may issue a request once idle.
func (m *Machine) HasMore() bool {
	return m.hasMore
}

// Len returns the number of loaded items.
func (m *Machine) Len() int {
	return len(m.items)
}

// Seen reports whether url is in the seen set.
func (m *Machine) Seen(url string) bool {
	_, ok := m.seen[url]
	return ok
}

// SeenCount returns the size of the seen set.
func (m *Machine) SeenCount() int {
	return len(m.seen)
}
