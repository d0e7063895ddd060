package feed

import (
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/abelbrown/newshub/internal/model"
	"github.com/abelbrown/newshub/internal/otel"
)

// SearchDelay is how long typing must pause before a search query is sent.
const SearchDelay = 500 * time.Millisecond

// Debounce is a ticket for a pending search. The driver waits Delay and then
// calls SearchDue with Seq.
type Debounce struct {
	Seq   uint64
	Delay time.Duration
}

// SetSearchQuery records the search text. The visible collection narrows at
// once; the remote query only changes when the returned ticket comes due.
// Each call supersedes the previous ticket.
func (m *Machine) SetSearchQuery(text string) Debounce {
	m.search = text
	m.searchSeq++
	return Debounce{Seq: m.searchSeq, Delay: SearchDelay}
}

// SearchDue fires a pending search. Only the most recent ticket resets the
// feed; older tickets return nil.
func (m *Machine) SearchDue(seq uint64) *Request {
	if seq != m.searchSeq {
		return nil
	}
	m.filters.Query = strings.TrimSpace(m.search)
	m.events.Emit(otel.Event{
		Level: otel.LevelDebug, Kind: otel.KindSearchFired, Comp: "feed", Query: m.filters.Query,
	})
	return m.reset(LoadingInitial)
}

// SearchText returns the current narrowing text.
func (m *Machine) SearchText() string {
	return m.search
}

// Visible returns the loaded items whose title or description contains the
// search text, compared with Unicode case folding. State is not modified.
func (m *Machine) Visible() []model.Article {
	return Narrow(m.items, m.search)
}

// Narrow filters items by text without touching the input.
func Narrow(items []model.Article, text string) []model.Article {
	text = strings.TrimSpace(text)
	if text == "" {
		out := make([]model.Article, len(items))
		copy(out, items)
		return out
	}

	fold := cases.Fold()
	needle := fold.String(text)
	out := make([]model.Article, 0, len(items))
	for _, a := range items {
		if strings.Contains(fold.String(a.Title), needle) ||
			strings.Contains(fold.String(a.Description), needle) {
			out = append(out, a)
		}
	}
	return out
}
