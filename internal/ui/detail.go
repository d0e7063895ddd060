package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/abelbrown/newshub/internal/model"
	"github.com/abelbrown/newshub/internal/reader"
)

// detailState is the article open in the detail view.
type detailState struct {
	article model.Article
	page    *reader.Page
	err     error
	loading bool
	vp      viewport.Model
}

func newDetail(a model.Article, width, height int) detailState {
	return detailState{
		article: a,
		loading: true,
		vp:      viewport.New(width, height),
	}
}

// detailContent lays out the article for the viewport.
func detailContent(st Styles, d detailState, bookmarked bool, width int) string {
	if width < 20 {
		width = 20
	}
	wrap := lipgloss.NewStyle().Width(width)
	a := d.article

	var b strings.Builder
	b.WriteString(st.DetailTitle.Width(width).Render(a.Title))
	b.WriteString("\n")

	meta := a.SourceName
	if t := a.Published(); !t.IsZero() {
		meta += " · " + humanize.Time(t)
	}
	if bookmarked {
		meta += " · ★ bookmarked"
	}
	b.WriteString(st.DetailMeta.Render(meta))
	b.WriteString("\n\n")

	b.WriteString(st.DetailBody.Width(width).Render(model.Summarize(a.Description, 200)))
	b.WriteString("\n\n")

	switch {
	case d.loading:
		b.WriteString(st.HeaderMeta.Render("Loading full article..."))
	case d.err != nil:
		body := a.Content
		if body == "" {
			body = a.Description
		}
		b.WriteString(wrap.Render(body))
		b.WriteString("\n\n")
		b.WriteString(st.HeaderMeta.Render("Full text unavailable."))
	case d.page != nil:
		if d.page.Byline != "" {
			b.WriteString(st.DetailMeta.Render(d.page.Byline))
			b.WriteString("\n\n")
		}
		b.WriteString(wrap.Render(d.page.Text))
		b.WriteString("\n\n")
		b.WriteString(st.HeaderMeta.Render(fmt.Sprintf("%d words", d.page.Words)))
	}

	if a.URL != "" {
		b.WriteString("\n")
		b.WriteString(st.HeaderMeta.Render(a.URL))
	}
	return b.String()
}
