package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/abelbrown/newshub/internal/model"
)

const (
	markWidth   = 2
	sourceWidth = 16
	ageWidth    = 14
	minTitle    = 20
)

// TimeBand returns a display string for grouping articles by age.
func TimeBand(published time.Time) string {
	if published.IsZero() {
		return "Older"
	}
	age := time.Since(published)
	switch {
	case age < 15*time.Minute:
		return "Just Now"
	case age < 1*time.Hour:
		return "Past Hour"
	case age < 24*time.Hour:
		return "Today"
	case age < 48*time.Hour:
		return "Yesterday"
	default:
		return "Older"
	}
}

// RenderStream renders the article list. When showBands is false (search
// results, bookmarks), time band headers are suppressed. When preview is set
// the selected article gets a second line with its summary.
func RenderStream(st Styles, items []model.Article, marks *model.Bookmarks, cursor, width, height int, showBands, preview bool) string {
	if len(items) == 0 {
		return st.HelpStyle.Render("No articles found. Press 'r' to refresh.")
	}

	availableHeight := height
	if preview {
		availableHeight--
	}
	if availableHeight < 1 {
		availableHeight = 1
	}

	scrollOffset := calcScrollOffset(items, cursor, availableHeight, showBands)

	var b strings.Builder
	currentBand := ""
	if scrollOffset > 0 && showBands {
		currentBand = TimeBand(items[scrollOffset-1].Published())
	}
	renderedLines := 0

	for i := scrollOffset; i < len(items) && renderedLines < availableHeight; i++ {
		a := items[i]
		if showBands {
			if band := TimeBand(a.Published()); band != currentBand {
				currentBand = band
				b.WriteString(st.HeaderMeta.Bold(true).Render(" " + band))
				b.WriteString("\n")
				renderedLines++
				if renderedLines >= availableHeight {
					break
				}
			}
		}

		b.WriteString(renderItemLine(st, a, i == cursor, marks != nil && marks.Has(a.URL), width))
		b.WriteString("\n")
		renderedLines++

		if preview && i == cursor {
			b.WriteString(renderPreviewLine(st, a, width))
			b.WriteString("\n")
		}
	}

	return b.String()
}

// calcScrollOffset finds the smallest item index such that all visible lines
// from that index through the cursor (including band headers) fit within
// availableHeight.
func calcScrollOffset(items []model.Article, cursor, availableHeight int, showBands bool) int {
	if len(items) == 0 || cursor < 0 {
		return 0
	}
	if cursor >= len(items) {
		cursor = len(items) - 1
	}

	offset := 0
	if cursor >= availableHeight {
		offset = cursor - availableHeight + 1
	}
	if !showBands {
		return offset
	}

	for offset <= cursor {
		if visibleLineCount(items, offset, cursor) <= availableHeight {
			return offset
		}
		offset++
	}
	return cursor
}

// visibleLineCount counts the lines items[from..to] produce with band headers.
func visibleLineCount(items []model.Article, from, to int) int {
	lines := 0
	currentBand := ""
	if from > 0 {
		currentBand = TimeBand(items[from-1].Published())
	}
	for i := from; i <= to && i < len(items); i++ {
		if band := TimeBand(items[i].Published()); band != currentBand {
			currentBand = band
			lines++
		}
		lines++
	}
	return lines
}

// renderItemLine renders one article as
// "<mark><source....> <title...........> <age>".
func renderItemLine(st Styles, a model.Article, selected, bookmarked bool, width int) string {
	mark := "  "
	if bookmarked {
		mark = "★ "
	}

	source := runewidth.FillRight(runewidth.Truncate(a.SourceName, sourceWidth, "…"), sourceWidth)
	age := runewidth.FillLeft(ageLabel(a), ageWidth)

	titleWidth := width - markWidth - sourceWidth - ageWidth - 2
	if titleWidth < minTitle {
		titleWidth = minTitle
	}
	title := runewidth.FillRight(runewidth.Truncate(a.Title, titleWidth, "…"), titleWidth)

	if selected {
		return st.SelectedItem.Render(mark + source + " " + title + " " + age)
	}

	styledMark := mark
	if bookmarked {
		styledMark = st.BookmarkMark.Render(mark)
	}
	return styledMark +
		st.MetaItem.Render(source) + " " +
		st.NormalItem.Render(title) + " " +
		st.MetaItem.Render(age)
}

func renderPreviewLine(st Styles, a model.Article, width int) string {
	indent := strings.Repeat(" ", markWidth+sourceWidth+1)
	room := width - len(indent)
	if room < minTitle {
		room = minTitle
	}
	return indent + st.MetaItem.Render(runewidth.Truncate(model.Summarize(a.Description, 200), room, "…"))
}

// ageLabel renders the publish time relative to now, or nothing when the
// timestamp could not be parsed.
func ageLabel(a model.Article) string {
	t := a.Published()
	if t.IsZero() {
		return ""
	}
	return humanize.Time(t)
}

// RenderHeader renders the title line with the active filters.
func RenderHeader(st Styles, f model.Filters, title string, width int) string {
	left := st.Header.Render(title)
	meta := fmt.Sprintf("%s · %s",
		model.NameOf(model.Categories(), f.Category),
		model.NameOf(model.Countries(), f.Country))
	if f.Query != "" {
		meta += fmt.Sprintf(" · %q", f.Query)
	}
	right := st.HeaderMeta.Render(meta + " ")

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}
	return left + strings.Repeat(" ", padding) + right
}

// RenderStatusBar renders the bottom bar: position or activity on the left,
// key hints on the right.
func RenderStatusBar(st Styles, left string, hints [][2]string, width int) string {
	keys := make([]string, 0, len(hints))
	for _, h := range hints {
		keys = append(keys, st.StatusKey.Render(h[0])+st.StatusText.Render(":"+h[1]))
	}
	keyHints := strings.Join(keys, " ")

	padding := width - lipgloss.Width(left) - lipgloss.Width(keyHints) - 2
	if padding < 0 {
		padding = 0
	}
	return st.StatusBar.Width(width).Render(left + strings.Repeat(" ", padding) + keyHints)
}

// RenderSearchBar renders the search input with the narrowed count.
func RenderSearchBar(st Styles, input string, shown, total, width int) string {
	content := st.SearchPrompt.Render("/") + input +
		st.SearchCount.Render(fmt.Sprintf(" %d/%d", shown, total))
	return st.SearchBar.Width(width).Render(content)
}
