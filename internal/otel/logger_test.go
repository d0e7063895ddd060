package otel

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// lines flushes l and decodes every JSONL line written to buf.
func lines(t *testing.T, l *Logger, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	l.Close()

	var out []map[string]any
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var m map[string]any
		if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
			t.Fatalf("invalid JSON line %q: %v", sc.Text(), err)
		}
		out = append(out, m)
	}
	return out
}

func TestEmitWritesJSONL(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	l.Emit(Event{Kind: KindFetchStart, Comp: "fetch", Page: 2, Query: "go"})
	l.Emit(Event{Kind: KindFeedMerge, Comp: "feed", Gen: 3, Count: 10})

	got := lines(t, l, &buf)
	if len(got) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(got))
	}
	if got[0]["kind"] != string(KindFetchStart) {
		t.Errorf("expected kind fetch.start, got %v", got[0]["kind"])
	}
	if got[0]["page"] != float64(2) {
		t.Errorf("expected page 2, got %v", got[0]["page"])
	}
	if got[1]["gen"] != float64(3) {
		t.Errorf("expected gen 3, got %v", got[1]["gen"])
	}
}

func TestEmitStampsTimeAndSession(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)
	sid := l.SessionID()
	if len(sid) != 16 {
		t.Fatalf("expected 16-char hex session id, got %q", sid)
	}

	l.Emit(Event{Kind: KindStartup})
	got := lines(t, l, &buf)

	if got[0]["session_id"] != sid {
		t.Errorf("expected session %s, got %v", sid, got[0]["session_id"])
	}
	if ts, _ := got[0]["t"].(string); ts == "" {
		t.Error("expected time to be filled in")
	}
}

func TestDurationInMilliseconds(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)
	l.Emit(Event{Kind: KindFetchComplete, Dur: 1500 * time.Microsecond})

	got := lines(t, l, &buf)
	if got[0]["dur_ms"] != 1.5 {
		t.Errorf("expected dur_ms 1.5, got %v", got[0]["dur_ms"])
	}
}

func TestEmptyFieldsOmitted(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)
	l.Emit(Event{Kind: KindShutdown})
	got := lines(t, l, &buf)

	for _, k := range []string{"gen", "page", "url", "err", "extra", "dur_ms"} {
		if _, ok := got[0][k]; ok {
			t.Errorf("expected %q to be omitted", k)
		}
	}
}

func TestConcurrentEmit(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				l.Emit(Event{Kind: KindKeyPress, Page: i*100 + j})
			}
		}(i)
	}
	wg.Wait()

	got := lines(t, l, &buf)
	if len(got) != 400 {
		t.Errorf("expected 400 lines, got %d (dropped %d)", len(got), l.Dropped())
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	l.Emit(Event{Kind: KindStartup})
	l.Info(KindStartup, "main", "x")
	l.Close()
}

func TestEmitAfterCloseCountsDrop(t *testing.T) {
	l := NewNullLogger()
	l.Close()
	l.Close()
	l.Emit(Event{Kind: KindStartup})
	if l.Dropped() != 1 {
		t.Errorf("expected 1 dropped, got %d", l.Dropped())
	}
}

// gate blocks every Write until released.
type gate struct {
	release chan struct{}
}

func (g *gate) Write(p []byte) (int, error) {
	<-g.release
	return len(p), nil
}

func TestFullQueueDrops(t *testing.T) {
	g := &gate{release: make(chan struct{})}
	l := NewLogger(g)

	// One event is held by the blocked writer, queueSize fill the channel.
	for i := 0; i < queueSize+10; i++ {
		l.Emit(Event{Kind: KindKeyPress})
	}
	if l.Dropped() == 0 {
		t.Error("expected drops once the queue is full")
	}
	close(g.release)
	l.Close()
}

func TestHelpersSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)
	l.Info(KindPrefsLoad, "prefs", "loaded")
	l.Warn(KindFeedStale, "feed", "discarded")
	l.Error(KindFetchError, "fetch", errors.New("boom"))
	l.Error(KindFetchError, "fetch", nil)

	got := lines(t, l, &buf)
	want := []string{"info", "warn", "error", "error"}
	for i, lv := range want {
		if got[i]["level"] != lv {
			t.Errorf("line %d: expected level %s, got %v", i, lv, got[i]["level"])
		}
	}
	if got[2]["err"] != "boom" {
		t.Errorf("expected err boom, got %v", got[2]["err"])
	}
}

func TestRingReceivesEvents(t *testing.T) {
	l := NewNullLogger()
	ring := NewRingBuffer(8)
	l.SetRingBuffer(ring)

	l.Emit(Event{Kind: KindFetchComplete, Dur: time.Second, Msg: "ok"})
	l.Close()

	evs := ring.Snapshot()
	if len(evs) != 1 {
		t.Fatalf("expected 1 ring event, got %d", len(evs))
	}
	if evs[0].Dur != time.Second {
		t.Errorf("expected duration kept in memory, got %v", evs[0].Dur)
	}
	if !strings.HasPrefix(string(evs[0].Kind), "fetch.") {
		t.Errorf("unexpected kind %s", evs[0].Kind)
	}
}
