package coord

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/newshub/internal/fetch"
	"github.com/abelbrown/newshub/internal/otel"
	"github.com/abelbrown/newshub/internal/ui"
)

// mockFetcher implements the fetcher interface for testing.
type mockFetcher struct {
	mu          sync.Mutex
	fetchedSrcs []fetch.Source
	failFor     map[string]bool
	fetchDelay  time.Duration
	fetchCount  atomic.Int32
	base        time.Time
}

func (m *mockFetcher) Fetch(ctx context.Context, src fetch.Source) ([]fetch.Headline, error) {
	m.fetchCount.Add(1)

	if m.fetchDelay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.fetchDelay):
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchedSrcs = append(m.fetchedSrcs, src)

	if m.failFor[src.Name] {
		return nil, errors.New("feed unavailable")
	}
	hs := make([]fetch.Headline, 3)
	for i := range hs {
		hs[i] = fetch.Headline{
			Title:     fmt.Sprintf("%s headline %d", src.Name, i),
			URL:       fmt.Sprintf("%s/%d", src.URL, i),
			Source:    src.Name,
			Published: m.base.Add(-time.Duration(i) * time.Hour),
		}
	}
	return hs, nil
}

func (m *mockFetcher) getFetchedSources() []fetch.Source {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]fetch.Source, len(m.fetchedSrcs))
	copy(result, m.fetchedSrcs)
	return result
}

// mockSender collects messages sent to the program.
type mockSender struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (s *mockSender) Send(msg tea.Msg) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
}

func (s *mockSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.msgs)
}

var testSources = []fetch.Source{
	{Name: "BBC", URL: "http://example.com/bbc"},
	{Name: "NPR", URL: "http://example.com/npr"},
	{Name: "AJ", URL: "http://example.com/aj"},
}

func TestCoordinatorFetchesAllSources(t *testing.T) {
	mock := &mockFetcher{base: time.Now()}
	coord := NewCoordinatorWithFetcher(mock, testSources, time.Hour, otel.NewNullLogger())

	msg := coord.fetchAll(context.Background())

	fetched := mock.getFetchedSources()
	if len(fetched) != len(testSources) {
		t.Errorf("expected %d sources fetched, got %d", len(testSources), len(fetched))
	}
	if len(msg.Headlines) != 9 || msg.Failed != 0 {
		t.Errorf("expected 9 headlines and no failures, got %d/%d", len(msg.Headlines), msg.Failed)
	}
}

func TestCoordinatorMergesNewestFirst(t *testing.T) {
	mock := &mockFetcher{base: time.Now()}
	coord := NewCoordinatorWithFetcher(mock, testSources, time.Hour, nil)

	msg := coord.fetchAll(context.Background())
	for i := 1; i < len(msg.Headlines); i++ {
		if msg.Headlines[i].Published.After(msg.Headlines[i-1].Published) {
			t.Fatalf("headline %d is newer than headline %d", i, i-1)
		}
	}
}

func TestCoordinatorCountsFailedSources(t *testing.T) {
	mock := &mockFetcher{base: time.Now(), failFor: map[string]bool{"NPR": true}}
	coord := NewCoordinatorWithFetcher(mock, testSources, time.Hour, nil)

	msg := coord.fetchAll(context.Background())
	if msg.Failed != 1 {
		t.Errorf("expected 1 failed source, got %d", msg.Failed)
	}
	if len(msg.Headlines) != 6 {
		t.Errorf("expected headlines from the healthy sources, got %d", len(msg.Headlines))
	}
	for _, h := range msg.Headlines {
		if h.Source == "NPR" {
			t.Errorf("unexpected headline from failed source: %+v", h)
		}
	}
}

func TestCoordinatorCapsHeadlines(t *testing.T) {
	var many []fetch.Source
	for i := 0; i < 10; i++ {
		many = append(many, fetch.Source{Name: fmt.Sprintf("S%d", i), URL: fmt.Sprintf("http://example.com/%d", i)})
	}
	mock := &mockFetcher{base: time.Now()}
	coord := NewCoordinatorWithFetcher(mock, many, time.Hour, nil)

	msg := coord.fetchAll(context.Background())
	if len(msg.Headlines) != maxHeadlines {
		t.Errorf("expected %d headlines, got %d", maxHeadlines, len(msg.Headlines))
	}
}

func TestCoordinatorStartSendsImmediately(t *testing.T) {
	mock := &mockFetcher{base: time.Now()}
	coord := NewCoordinatorWithFetcher(mock, testSources, time.Hour, nil)
	program := &mockSender{}

	ctx, cancel := context.WithCancel(context.Background())
	coord.Start(ctx, program)

	deadline := time.Now().Add(2 * time.Second)
	for program.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	coord.Wait()

	if program.count() != 1 {
		t.Fatalf("expected 1 update, got %d", program.count())
	}
	if _, ok := program.msgs[0].(ui.BreakingNews); !ok {
		t.Errorf("expected ui.BreakingNews, got %T", program.msgs[0])
	}
}

func TestCoordinatorRefreshesOnInterval(t *testing.T) {
	mock := &mockFetcher{base: time.Now()}
	coord := NewCoordinatorWithFetcher(mock, testSources, 30*time.Millisecond, nil)
	program := &mockSender{}

	ctx, cancel := context.WithCancel(context.Background())
	coord.Start(ctx, program)

	deadline := time.Now().Add(2 * time.Second)
	for program.count() < 3 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	coord.Wait()

	if program.count() < 3 {
		t.Errorf("expected at least 3 updates, got %d", program.count())
	}
}

func TestCoordinatorRespectsContextCancellation(t *testing.T) {
	mock := &mockFetcher{base: time.Now(), fetchDelay: 200 * time.Millisecond}
	coord := NewCoordinatorWithFetcher(mock, testSources, time.Hour, nil)
	program := &mockSender{}

	ctx, cancel := context.WithCancel(context.Background())
	coord.Start(ctx, program)
	time.Sleep(20 * time.Millisecond)
	cancel()

	done := make(chan struct{})
	go func() {
		coord.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("coordinator did not respect context cancellation")
	}

	if program.count() != 0 {
		t.Errorf("cancelled refresh must not send, got %d messages", program.count())
	}
}

func TestCoordinatorNilProgram(t *testing.T) {
	mock := &mockFetcher{base: time.Now()}
	coord := NewCoordinatorWithFetcher(mock, testSources, time.Hour, nil)
	coord.refresh(context.Background(), nil)
	if mock.fetchCount.Load() != 3 {
		t.Errorf("expected 3 fetches, got %d", mock.fetchCount.Load())
	}
}

func TestCoordinatorCopiesSources(t *testing.T) {
	srcs := []fetch.Source{{Name: "A", URL: "http://a"}}
	coord := NewCoordinatorWithFetcher(&mockFetcher{}, srcs, 0, nil)
	srcs[0].Name = "mutated"
	if coord.sources[0].Name != "A" {
		t.Error("coordinator must not share the caller's slice")
	}
	if coord.interval != DefaultInterval {
		t.Errorf("expected default interval, got %v", coord.interval)
	}
}
