package feed

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abelbrown/newshub/internal/fetch"
	"github.com/abelbrown/newshub/internal/model"
)

// page builds n articles with URLs https://ex.com/<from>..<from+n-1>.
func page(from, n int) []model.Article {
	out := make([]model.Article, n)
	for i := range out {
		id := from + i
		out[i] = model.Article{
			ID:    fmt.Sprintf("article-1-%d", i),
			Title: fmt.Sprintf("Story %d", id),
			URL:   fmt.Sprintf("https://ex.com/%d", id),
		}
	}
	return out
}

func ok(articles []model.Article) fetch.Result {
	return fetch.Result{Success: true, Articles: articles, HasMore: len(articles) == fetch.PageSize}
}

func failed() fetch.Result {
	return fetch.Result{Articles: []model.Article{}, Err: &fetch.TransportError{Op: "request", Err: errors.New("timeout")}}
}

func TestInitialLoad(t *testing.T) {
	m := New(nil)
	req := m.Init(model.Filters{Category: "general", Country: "us"})
	if req == nil || req.Page != 1 || req.Mode != LoadingInitial {
		t.Fatalf("unexpected request %+v", req)
	}
	if !m.Complete(req, ok(page(0, 10))) {
		t.Fatal("expected completion to apply")
	}

	s := m.Snapshot()
	if len(s.Items) != 10 || !s.HasMore || s.Mode != Idle {
		t.Errorf("unexpected snapshot: items=%d hasMore=%v mode=%v", len(s.Items), s.HasMore, s.Mode)
	}
	if m.SeenCount() != 10 {
		t.Errorf("expected 10 seen urls, got %d", m.SeenCount())
	}
}

func TestAppendKeepsDuplicates(t *testing.T) {
	m := New(nil)
	m.Complete(m.Init(model.Filters{}), ok(page(0, 10)))

	req := m.LoadMore()
	if req == nil || req.Page != 2 || req.Mode != LoadingMore {
		t.Fatalf("unexpected request %+v", req)
	}
	// Items 8 and 9 overlap the first page.
	m.Complete(req, ok(page(8, 10)))

	if m.Len() != 20 {
		t.Errorf("expected 20 items, got %d", m.Len())
	}
	if m.SeenCount() != 18 {
		t.Errorf("expected 18 seen urls, got %d", m.SeenCount())
	}
	if !m.HasMore() {
		t.Error("expected hasMore after non-empty page")
	}
}

func TestEmptyPageEndsFeed(t *testing.T) {
	m := New(nil)
	m.Complete(m.Init(model.Filters{}), ok(page(0, 10)))
	m.Complete(m.LoadMore(), ok(page(10, 10)))

	req := m.LoadMore()
	if req.Page != 3 {
		t.Fatalf("expected page 3, got %d", req.Page)
	}
	m.Complete(req, ok(nil))

	if m.HasMore() {
		t.Error("empty page should end the feed")
	}
	if m.Len() != 20 {
		t.Errorf("expected 20 items, got %d", m.Len())
	}
	if m.LoadMore() != nil {
		t.Error("LoadMore should be a no-op once the feed has ended")
	}
	if m.Mode() != Idle {
		t.Errorf("expected idle, got %v", m.Mode())
	}
}

func TestShortPageKeepsGoing(t *testing.T) {
	m := New(nil)
	m.Complete(m.Init(model.Filters{}), ok(page(0, 4)))
	if !m.HasMore() {
		t.Error("a short but non-empty page should leave hasMore true")
	}
}

func TestFailureKeepsItems(t *testing.T) {
	m := New(nil)
	m.Complete(m.Init(model.Filters{}), ok(page(0, 10)))
	req := m.LoadMore()
	m.Complete(req, failed())

	s := m.Snapshot()
	if s.Mode != Errored || s.HasMore || len(s.Items) != 10 {
		t.Fatalf("unexpected snapshot: mode=%v hasMore=%v items=%d", s.Mode, s.HasMore, len(s.Items))
	}
	var te *fetch.TransportError
	if !errors.As(s.Err, &te) {
		t.Errorf("expected transport error in snapshot, got %v", s.Err)
	}
	if m.LoadMore() != nil {
		t.Error("LoadMore should stay gated after a failure")
	}

	// Refresh clears the error.
	r := m.Refresh()
	if r == nil || m.Mode() != Refreshing || m.Snapshot().Err != nil {
		t.Fatalf("refresh should restart from errored, got mode %v", m.Mode())
	}
}

func TestFailureWithoutErrStillErrors(t *testing.T) {
	m := New(nil)
	m.Complete(m.Init(model.Filters{}), fetch.Result{})
	if m.Snapshot().Err == nil {
		t.Error("expected a non-nil error for a failed result")
	}
}

func TestLoadMoreGatedWhileLoading(t *testing.T) {
	m := New(nil)
	if m.LoadMore() != nil {
		t.Error("LoadMore before Init should be nil")
	}
	m.Init(model.Filters{})
	if m.LoadMore() != nil {
		t.Error("LoadMore during initial load should be nil")
	}
}

func TestStaleCompletionDiscarded(t *testing.T) {
	m := New(nil)
	first := m.Init(model.Filters{Category: "sports"})
	second := m.ChangeFilters(model.Filters{Category: "science"})

	if second.Generation == first.Generation {
		t.Fatal("filter change must bump the generation")
	}
	before := m.Snapshot()
	if m.Complete(first, ok(page(0, 10))) {
		t.Error("stale completion should be discarded")
	}
	after := m.Snapshot()
	if len(after.Items) != len(before.Items) || after.Mode != before.Mode || after.HasMore != before.HasMore {
		t.Errorf("stale completion changed state: %+v -> %+v", before, after)
	}

	m.Complete(second, ok(page(100, 3)))
	if m.Len() != 3 || m.Filters().Category != "science" {
		t.Errorf("expected science results, got %d items for %q", m.Len(), m.Filters().Category)
	}
}

func TestStaleFailureDiscarded(t *testing.T) {
	m := New(nil)
	m.Complete(m.Init(model.Filters{}), ok(page(0, 10)))
	more := m.LoadMore()
	m.Refresh()

	if m.Complete(more, failed()) {
		t.Error("failure from a superseded generation should be discarded")
	}
	if m.Mode() != Refreshing {
		t.Errorf("expected refreshing, got %v", m.Mode())
	}
}

func TestDuplicateCompletionIgnored(t *testing.T) {
	m := New(nil)
	req := m.Init(model.Filters{})
	m.Complete(req, ok(page(0, 10)))
	if m.Complete(req, ok(page(50, 10))) {
		t.Error("a request must only apply once")
	}
	if m.Len() != 10 {
		t.Errorf("expected 10 items, got %d", m.Len())
	}
}

func TestResetDedup(t *testing.T) {
	m := New(nil)
	in := []model.Article{
		{Title: "a", URL: "u1"},
		{Title: "b", URL: "u2"},
		{Title: "a again", URL: "u1"},
		{Title: "no url 1"},
		{Title: "no url 2"},
	}
	m.Complete(m.Init(model.Filters{}), ok(in))

	s := m.Snapshot()
	want := []string{"a", "b", "no url 1", "no url 2"}
	if len(s.Items) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(s.Items))
	}
	for i, title := range want {
		if s.Items[i].Title != title {
			t.Errorf("item %d: got %q, want %q", i, s.Items[i].Title, title)
		}
	}
	if m.SeenCount() != 2 || m.Seen("") {
		t.Errorf("empty urls must not be recorded; seen=%d", m.SeenCount())
	}
}

func TestRefreshReplacesItems(t *testing.T) {
	m := New(nil)
	m.Complete(m.Init(model.Filters{}), ok(page(0, 10)))
	m.Complete(m.LoadMore(), ok(page(10, 10)))

	req := m.Refresh()
	if req.Page != 1 || req.Mode != Refreshing {
		t.Fatalf("unexpected refresh request %+v", req)
	}
	if m.Len() != 0 || m.SeenCount() != 0 {
		t.Error("refresh should clear items and seen urls")
	}
	m.Complete(req, ok(page(5, 10)))
	if m.Len() != 10 || !m.Seen("https://ex.com/5") {
		t.Errorf("expected fresh page after refresh, got %d items", m.Len())
	}
}

func TestChangeFiltersSameValuesRequeries(t *testing.T) {
	m := New(nil)
	f := model.Filters{Category: "health", Country: "gb"}
	first := m.Init(f)
	m.Complete(first, ok(page(0, 10)))

	again := m.ChangeFilters(f)
	if again == nil || again.Generation == first.Generation {
		t.Fatal("identical filters should still re-query")
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	m := New(nil)
	m.Complete(m.Init(model.Filters{}), ok(page(0, 3)))
	s := m.Snapshot()
	s.Items[0].Title = "mutated"
	if m.Snapshot().Items[0].Title == "mutated" {
		t.Error("snapshot must not alias machine state")
	}
}

func TestBookmarkToggleLeavesFeedAlone(t *testing.T) {
	m := New(nil)
	m.Complete(m.Init(model.Filters{}), ok(page(0, 5)))
	before := m.Snapshot()

	b := model.NewBookmarks(nil)
	b.Toggle(before.Items[2], time.Now())
	b.Toggle(before.Items[2], time.Now())

	after := m.Snapshot()
	if len(after.Items) != len(before.Items) || after.Mode != before.Mode || after.Generation != before.Generation {
		t.Error("bookmarking must not affect feed state")
	}
}

func TestSearchDebounceOnlyLatestFires(t *testing.T) {
	m := New(nil)
	m.Complete(m.Init(model.Filters{}), ok(page(0, 10)))
	gen := m.Snapshot().Generation

	t1 := m.SetSearchQuery("ma")
	t2 := m.SetSearchQuery("mars")
	if t1.Delay != SearchDelay || t2.Delay != 500*time.Millisecond {
		t.Errorf("unexpected delay %v", t2.Delay)
	}

	if m.SearchDue(t1.Seq) != nil {
		t.Error("superseded ticket should not fire")
	}
	if m.Snapshot().Generation != gen {
		t.Error("superseded ticket must not reset the feed")
	}

	req := m.SearchDue(t2.Seq)
	if req == nil {
		t.Fatal("latest ticket should fire")
	}
	if req.Filters.Query != "mars" || req.Page != 1 || req.Mode != LoadingInitial {
		t.Errorf("unexpected search request %+v", req)
	}
	if m.Len() != 0 {
		t.Error("search should reset items")
	}
}

func TestSearchClearedRequeriesHeadlines(t *testing.T) {
	m := New(nil)
	m.Init(model.Filters{Category: "science"})
	d := m.SetSearchQuery("   ")
	req := m.SearchDue(d.Seq)
	if req == nil || req.Filters.Query != "" {
		t.Fatalf("expected headline request, got %+v", req)
	}
	if req.Filters.Category != "science" {
		t.Errorf("search must keep the category, got %q", req.Filters.Category)
	}
}

func TestVisibleNarrowsWithoutMutating(t *testing.T) {
	m := New(nil)
	in := []model.Article{
		{Title: "Mars rover lands", URL: "1"},
		{Title: "Stocks", Description: "MARKETS rally", URL: "2"},
		{Title: "Straße closed", URL: "3"},
		{Title: "Weather", URL: "4"},
	}
	m.Complete(m.Init(model.Filters{}), ok(in))

	m.SetSearchQuery("mar")
	vis := m.Visible()
	if len(vis) != 2 {
		t.Fatalf("expected 2 visible, got %d", len(vis))
	}
	if m.Len() != 4 {
		t.Error("narrowing must not mutate items")
	}

	m.SetSearchQuery("STRASSE")
	if vis := m.Visible(); len(vis) != 1 || vis[0].URL != "3" {
		t.Errorf("expected case-folded match, got %+v", vis)
	}

	m.SetSearchQuery("")
	if len(m.Visible()) != 4 {
		t.Error("empty search should show everything")
	}
}

func TestModeString(t *testing.T) {
	for mode, want := range map[Mode]string{
		Idle: "idle", LoadingInitial: "loading", LoadingMore: "loading-more",
		Refreshing: "refreshing", Errored: "errored", Mode(42): "unknown",
	} {
		if mode.String() != want {
			t.Errorf("%d: got %q, want %q", mode, mode.String(), want)
		}
	}
	if !LoadingMore.Loading() || Idle.Loading() || Errored.Loading() {
		t.Error("Loading() mismatch")
	}
}

func TestDebouncerRunsLastOnly(t *testing.T) {
	var calls atomic.Int32
	var last atomic.Value
	d := NewDebouncer(30 * time.Millisecond)

	for _, q := range []string{"m", "ma", "mar"} {
		q := q
		d.Trigger(func() {
			calls.Add(1)
			last.Store(q)
		})
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(150 * time.Millisecond)

	if calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", calls.Load())
	}
	if last.Load() != "mar" {
		t.Errorf("expected final query, got %v", last.Load())
	}
}

func TestDebouncerCancel(t *testing.T) {
	var calls atomic.Int32
	d := NewDebouncer(20 * time.Millisecond)
	d.Trigger(func() { calls.Add(1) })
	d.Cancel()
	time.Sleep(60 * time.Millisecond)
	if calls.Load() != 0 {
		t.Errorf("cancelled call ran %d times", calls.Load())
	}
}
