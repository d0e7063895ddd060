package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/abelbrown/newshub/internal/otel"
)

// eventPanelChrome is the number of terminal lines consumed by the panel's
// border (top + bottom = 2) and vertical padding (top + bottom = 2).
const eventPanelChrome = 4

// eventPanel renders recent activity counts and the last events from ring.
// Returns empty string if ring is nil.
func eventPanel(st Styles, ring *otel.RingBuffer, width, height int) string {
	if ring == nil {
		return ""
	}

	stats := ring.Stats()
	recent := ring.Last(20)

	var lines []string
	lines = append(lines, st.DebugHeader.Render("Activity"))
	lines = append(lines, fmt.Sprintf("  Fetches:    %d complete, %d errors",
		stats[otel.KindFetchComplete], stats[otel.KindFetchError]))
	lines = append(lines, fmt.Sprintf("  Feed:       %d resets, %d merges, %d stale",
		stats[otel.KindFeedReset], stats[otel.KindFeedMerge], stats[otel.KindFeedStale]))
	lines = append(lines, fmt.Sprintf("  Searches:   %d fired", stats[otel.KindSearchFired]))
	lines = append(lines, fmt.Sprintf("  Ticker:     %d refreshes, %d errors",
		stats[otel.KindTickerRefresh], stats[otel.KindTickerError]))
	lines = append(lines, fmt.Sprintf("  Prefs:      %d saved, %d errors",
		stats[otel.KindPrefsSave], stats[otel.KindPrefsError]))
	lines = append(lines, fmt.Sprintf("  Buffer:     %d / %d events", ring.Len(), ring.Cap()))
	lines = append(lines, "")

	lines = append(lines, st.DebugHeader.Render("Recent Events"))
	for i := len(recent) - 1; i >= 0; i-- {
		e := recent[i]
		line := fmt.Sprintf("  %6s  %-16s", formatAge(time.Since(e.Time)), string(e.Kind))
		if e.Gen != 0 {
			line += fmt.Sprintf("  g%d", e.Gen)
		}
		if e.Page != 0 {
			line += fmt.Sprintf(" p%d", e.Page)
		}
		if e.Query != "" {
			line += "  q:" + runewidth.Truncate(e.Query, 20, "…")
		}
		if e.Msg != "" {
			line += "  " + runewidth.Truncate(e.Msg, 40, "…")
		}
		if e.Err != "" {
			line += "  ERR:" + runewidth.Truncate(e.Err, 30, "…")
		}
		lines = append(lines, line)
	}

	maxHeight := height - eventPanelChrome
	if maxHeight < 1 {
		maxHeight = 1
	}
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
	}

	panelWidth := 76
	if panelWidth > width-4 {
		panelWidth = width - 4
	}
	if panelWidth < 20 {
		panelWidth = 20
	}

	return st.DebugPanel.Width(panelWidth).Render(strings.Join(lines, "\n"))
}

// formatAge formats a duration as a compact human string.
// Handles negative durations from clock skew by clamping to "0ms".
func formatAge(d time.Duration) string {
	if d < 0 {
		return "0ms"
	}
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
}
