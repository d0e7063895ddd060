package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/newshub/internal/model"
)

func articlesAt(ages ...time.Duration) []model.Article {
	now := time.Now()
	out := make([]model.Article, len(ages))
	for i, age := range ages {
		out[i] = model.Article{
			Title:       strings.Repeat("x", 20),
			SourceName:  "src",
			PublishedAt: now.Add(-age).UTC().Format(time.RFC3339),
			URL:         "https://ex.com/" + string(rune('a'+i)),
		}
	}
	return out
}

func TestTimeBand(t *testing.T) {
	tests := []struct {
		age  time.Duration
		want string
	}{
		{5 * time.Minute, "Just Now"},
		{30 * time.Minute, "Past Hour"},
		{5 * time.Hour, "Today"},
		{30 * time.Hour, "Yesterday"},
		{72 * time.Hour, "Older"},
	}
	for _, tt := range tests {
		if got := TimeBand(time.Now().Add(-tt.age)); got != tt.want {
			t.Errorf("TimeBand(-%v) = %q, want %q", tt.age, got, tt.want)
		}
	}
	if got := TimeBand(time.Time{}); got != "Older" {
		t.Errorf("zero time should be Older, got %q", got)
	}
}

func TestCalcScrollOffsetNoBands(t *testing.T) {
	items := articlesAt(make([]time.Duration, 50)...)
	tests := []struct {
		cursor, height, want int
	}{
		{0, 10, 0},
		{9, 10, 0},
		{10, 10, 1},
		{49, 10, 40},
		{99, 10, 40},
	}
	for _, tt := range tests {
		if got := calcScrollOffset(items, tt.cursor, tt.height, false); got != tt.want {
			t.Errorf("calcScrollOffset(cursor=%d, h=%d) = %d, want %d", tt.cursor, tt.height, got, tt.want)
		}
	}
}

func TestCalcScrollOffsetWithBands(t *testing.T) {
	// 3 Just Now, 3 Past Hour: two headers.
	items := articlesAt(time.Minute, 2*time.Minute, 3*time.Minute,
		20*time.Minute, 25*time.Minute, 30*time.Minute)

	// Everything fits in 8 lines.
	if got := calcScrollOffset(items, 5, 8, true); got != 0 {
		t.Errorf("expected offset 0, got %d", got)
	}
	// Cursor on the last item with 4 lines: header + 3 items.
	if got := calcScrollOffset(items, 5, 4, true); got != 3 {
		t.Errorf("expected offset 3, got %d", got)
	}
	if lines := visibleLineCount(items, 0, 5); lines != 8 {
		t.Errorf("expected 8 lines, got %d", lines)
	}
}

func TestRenderStreamEmpty(t *testing.T) {
	out := RenderStream(NewStyles(false), nil, nil, 0, 80, 10, true, false)
	if !strings.Contains(out, "No articles found") {
		t.Errorf("unexpected empty render %q", out)
	}
}

func TestRenderStreamFitsHeight(t *testing.T) {
	items := articlesAt(make([]time.Duration, 40)...)
	out := RenderStream(NewStyles(false), items, nil, 35, 80, 10, false, false)
	if lines := strings.Count(out, "\n"); lines != 10 {
		t.Errorf("expected 10 lines, got %d", lines)
	}
}

func TestRenderItemLineWidth(t *testing.T) {
	st := NewStyles(true)
	a := model.Article{
		Title:       "日本語のタイトルがとても長い場合にも幅を超えないことを確認するための見出し",
		SourceName:  "A Very Long Source Name Indeed",
		PublishedAt: time.Now().Add(-2 * time.Hour).UTC().Format(time.RFC3339),
	}
	for _, selected := range []bool{false, true} {
		line := renderItemLine(st, a, selected, true, 80)
		if w := lipgloss.Width(line); w != 80 {
			t.Errorf("selected=%v: width %d, want 80", selected, w)
		}
	}
}

func TestRenderItemMarksBookmarks(t *testing.T) {
	items := articlesAt(time.Minute, time.Minute)
	marks := model.NewBookmarks([]model.Bookmark{{Article: items[1]}})
	out := RenderStream(NewStyles(false), items, marks, 0, 80, 10, false, false)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if strings.Contains(lines[0], "★") || !strings.Contains(lines[1], "★") {
		t.Errorf("only the bookmarked row should be marked:\n%s", out)
	}
}

func TestAgeLabel(t *testing.T) {
	if got := ageLabel(model.Article{PublishedAt: "not a date"}); got != "" {
		t.Errorf("unparseable date should render empty, got %q", got)
	}
	a := model.Article{PublishedAt: time.Now().Add(-3 * time.Hour).UTC().Format(time.RFC3339)}
	if got := ageLabel(a); got != "3 hours ago" {
		t.Errorf("ageLabel = %q, want 3 hours ago", got)
	}
}

func TestRenderHeaderShowsFilters(t *testing.T) {
	out := RenderHeader(NewStyles(false), model.Filters{Category: "technology", Country: "gb", Query: "rust"}, "NewsHub", 100)
	for _, want := range []string{"NewsHub", "Tech", "United Kingdom", `"rust"`} {
		if !strings.Contains(out, want) {
			t.Errorf("header missing %q: %s", want, out)
		}
	}
}
