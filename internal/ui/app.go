package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/abelbrown/newshub/internal/feed"
	"github.com/abelbrown/newshub/internal/fetch"
	"github.com/abelbrown/newshub/internal/model"
	"github.com/abelbrown/newshub/internal/otel"
	"github.com/abelbrown/newshub/internal/reader"
)

// NoticeDuration is how long a notification stays in the status line.
const NoticeDuration = 3 * time.Second

// tickerInterval is how long each breaking headline is shown.
const tickerInterval = 8 * time.Second

// fetchTimeout bounds one feed request issued from the UI.
const fetchTimeout = 30 * time.Second

type view int

const (
	viewFeed view = iota
	viewBookmarks
	viewDetail
)

// ArticleReader extracts readable text for the detail view.
type ArticleReader interface {
	Extract(ctx context.Context, url string) (reader.Page, error)
}

// PrefsSaver persists preferences. *prefs.Saver satisfies it.
type PrefsSaver interface {
	Save(p model.Preferences) error
}

// Deps are the collaborators the App issues commands against. Any of them
// may be nil; the matching feature then does nothing.
type Deps struct {
	Fetcher fetch.Fetcher
	Saver   PrefsSaver
	Reader  ArticleReader
	Events  *otel.Logger
	Ring    *otel.RingBuffer
	Compact bool // one line per article, no preview of the selection
}

// App is the root Bubble Tea model.
// IMPORTANT: App performs no I/O in Update. Fetches, saves and page
// extraction run as tea.Cmds and report back through messages.
type App struct {
	deps   Deps
	feed   *feed.Machine
	prefs  model.Preferences
	marks  *model.Bookmarks
	styles Styles

	view       view
	prevView   view
	cursor     int
	markCursor int
	detail     detailState

	search    textinput.Model
	searching bool
	spinner   spinner.Model

	headlines     []fetch.Headline
	tickerIdx     int
	tickerRunning bool

	notice   string
	noticeID int

	showEvents bool
	width      int
	height     int
	ready      bool
	now        func() time.Time
}

// NewApp creates an App for the given saved preferences.
func NewApp(deps Deps, p model.Preferences) App {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "search headlines"
	ti.CharLimit = 120

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return App{
		deps:    deps,
		feed:    feed.New(deps.Events),
		prefs:   p,
		marks:   model.NewBookmarks(p.Bookmarks),
		styles:  NewStyles(p.DarkMode),
		search:  ti,
		spinner: sp,
		now:     time.Now,
	}
}

// Init starts the first feed load.
func (a App) Init() tea.Cmd {
	req := a.feed.Init(model.Filters{Category: a.prefs.Category(), Country: a.prefs.Country})
	return tea.Batch(a.fetchCmd(req), a.spinner.Tick)
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.search.Width = msg.Width - 12
		if a.view == viewDetail {
			a.detail.vp.Width = msg.Width
			a.detail.vp.Height = a.detailHeight()
			a.refreshDetail()
		}
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case fetchDone:
		if !a.feed.Complete(msg.req, msg.res) {
			return a, nil
		}
		if msg.req.Mode != feed.LoadingMore {
			a.cursor = 0
		}
		a.clampCursor()
		if msg.req.Mode == feed.Refreshing && msg.res.Success {
			return a, a.notify("News refreshed!")
		}
		return a, nil

	case searchDue:
		if req := a.feed.SearchDue(msg.seq); req != nil {
			a.cursor = 0
			return a, a.fetchCmd(req)
		}
		return a, nil

	case noticeExpired:
		if msg.id == a.noticeID {
			a.notice = ""
		}
		return a, nil

	case BreakingNews:
		a.headlines = msg.Headlines
		if a.tickerIdx >= len(a.headlines) {
			a.tickerIdx = 0
		}
		if !a.tickerRunning && len(a.headlines) > 1 {
			a.tickerRunning = true
			return a, tickerTick()
		}
		return a, nil

	case tickerRotate:
		if len(a.headlines) < 2 {
			a.tickerRunning = false
			return a, nil
		}
		a.tickerIdx = (a.tickerIdx + 1) % len(a.headlines)
		return a, tickerTick()

	case articleRead:
		if a.view == viewDetail && a.detail.article.URL == msg.url {
			a.detail.loading = false
			a.detail.err = msg.err
			if msg.err == nil {
				page := msg.page
				a.detail.page = &page
			}
			a.refreshDetail()
		}
		return a, nil

	case prefsSaved:
		return a, nil
	}

	return a, nil
}

// handleKeyMsg processes keyboard input.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.searching {
		return a.handleSearchKey(msg)
	}
	if a.view == viewDetail {
		return a.handleDetailKey(msg)
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, keys.Events):
		a.showEvents = !a.showEvents
		return a, nil

	case key.Matches(msg, keys.Dark):
		return a, a.toggleDark()

	case key.Matches(msg, keys.Up):
		a.moveCursor(-1)
		return a, nil

	case key.Matches(msg, keys.Down):
		a.moveCursor(1)
		return a, a.maybeLoadMore()

	case key.Matches(msg, keys.Home):
		a.setCursor(0)
		return a, nil

	case key.Matches(msg, keys.End):
		a.setCursor(len(a.currentItems()) - 1)
		return a, a.maybeLoadMore()

	case key.Matches(msg, keys.Open):
		if art, ok := a.selected(); ok {
			return a, a.openDetail(art)
		}
		return a, nil

	case key.Matches(msg, keys.Bookmark):
		if art, ok := a.selected(); ok {
			return a, a.toggleBookmark(art)
		}
		return a, nil

	case key.Matches(msg, keys.Share):
		if art, ok := a.selected(); ok {
			return a, a.share(art)
		}
		return a, nil

	case key.Matches(msg, keys.Bookmarks):
		if a.view == viewBookmarks {
			a.view = viewFeed
		} else {
			a.view = viewBookmarks
			a.markCursor = 0
		}
		return a, nil
	}

	if a.view == viewBookmarks {
		if key.Matches(msg, keys.Back) {
			a.view = viewFeed
		}
		return a, nil
	}

	switch {
	case key.Matches(msg, keys.Search):
		a.searching = true
		return a, a.search.Focus()

	case key.Matches(msg, keys.Back):
		if a.search.Value() != "" {
			a.search.SetValue("")
			a.cursor = 0
			return a, a.setSearch("")
		}
		return a, nil

	case key.Matches(msg, keys.Refresh):
		a.cursor = 0
		return a, a.fetchCmd(a.feed.Refresh())

	case key.Matches(msg, keys.NextCat):
		return a, a.changeCategory(1)

	case key.Matches(msg, keys.PrevCat):
		return a, a.changeCategory(-1)

	case key.Matches(msg, keys.NextCountry):
		return a, a.changeCountry(1)

	case key.Matches(msg, keys.PrevCountry):
		return a, a.changeCountry(-1)
	}

	return a, nil
}

// handleSearchKey routes keys to the search input while it has focus.
func (a App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return a, tea.Quit
	case tea.KeyEsc:
		a.searching = false
		a.search.Blur()
		a.search.SetValue("")
		a.cursor = 0
		return a, a.setSearch("")
	case tea.KeyEnter:
		a.searching = false
		a.search.Blur()
		return a, nil
	}

	before := a.search.Value()
	var cmd tea.Cmd
	a.search, cmd = a.search.Update(msg)
	if a.search.Value() == before {
		return a, cmd
	}
	a.cursor = 0
	return a, tea.Batch(cmd, a.setSearch(a.search.Value()))
}

func (a App) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, keys.Back):
		a.view = a.prevView
		a.clampCursor()
		return a, nil
	case key.Matches(msg, keys.Bookmark):
		cmd := a.toggleBookmark(a.detail.article)
		a.refreshDetail()
		return a, cmd
	case key.Matches(msg, keys.Share):
		return a, a.share(a.detail.article)
	case key.Matches(msg, keys.Dark):
		cmd := a.toggleDark()
		a.refreshDetail()
		return a, cmd
	}

	var cmd tea.Cmd
	a.detail.vp, cmd = a.detail.vp.Update(msg)
	return a, cmd
}

// setSearch narrows at once and schedules the remote query.
func (a *App) setSearch(text string) tea.Cmd {
	d := a.feed.SetSearchQuery(text)
	return tea.Tick(d.Delay, func(time.Time) tea.Msg {
		return searchDue{seq: d.Seq}
	})
}

func (a *App) changeCategory(step int) tea.Cmd {
	f := a.feed.Filters()
	f.Category = model.Cycle(model.Categories(), f.Category, step)
	a.prefs.Categories = []string{f.Category}
	a.cursor = 0
	return tea.Batch(a.fetchCmd(a.feed.ChangeFilters(f)), a.savePrefs())
}

func (a *App) changeCountry(step int) tea.Cmd {
	f := a.feed.Filters()
	f.Country = model.Cycle(model.Countries(), f.Country, step)
	a.prefs.Country = f.Country
	a.cursor = 0
	return tea.Batch(a.fetchCmd(a.feed.ChangeFilters(f)), a.savePrefs())
}

func (a *App) toggleDark() tea.Cmd {
	a.prefs.DarkMode = !a.prefs.DarkMode
	a.styles = NewStyles(a.prefs.DarkMode)
	return a.savePrefs()
}

func (a *App) toggleBookmark(art model.Article) tea.Cmd {
	if art.URL == "" {
		return a.notify("This article has no link to bookmark")
	}
	on := a.marks.Toggle(art, a.now())
	a.prefs.Bookmarks = a.marks.List()
	if a.view == viewBookmarks {
		a.clampCursor()
	}

	a.deps.Events.Emit(otel.Event{
		Level: otel.LevelInfo, Kind: otel.KindBookmark, Comp: "ui",
		URL: art.URL, Count: a.marks.Len(), Extra: map[string]any{"on": on},
	})
	text := "Bookmark removed"
	if on {
		text = "Article bookmarked!"
	}
	return tea.Batch(a.notify(text), a.savePrefs())
}

func (a *App) share(art model.Article) tea.Cmd {
	if art.URL == "" {
		return a.notify("This article has no link")
	}
	return a.notify("Link: " + art.URL)
}

func (a *App) openDetail(art model.Article) tea.Cmd {
	a.prevView = a.view
	a.view = viewDetail
	a.detail = newDetail(art, a.width, a.detailHeight())
	a.refreshDetail()

	if a.deps.Reader == nil || art.URL == "" {
		a.detail.loading = false
		a.detail.err = reader.ErrNoURL
		a.refreshDetail()
		return nil
	}
	r := a.deps.Reader
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		page, err := r.Extract(ctx, art.URL)
		return articleRead{url: art.URL, page: page, err: err}
	}
}

func (a *App) refreshDetail() {
	a.detail.vp.SetContent(detailContent(a.styles, a.detail, a.marks.Has(a.detail.article.URL), a.width-2))
}

// notify shows text in the status line until NoticeDuration passes or a
// newer notice replaces it.
func (a *App) notify(text string) tea.Cmd {
	if !a.prefs.Notifications {
		return nil
	}
	a.noticeID++
	a.notice = text
	id := a.noticeID
	return tea.Tick(NoticeDuration, func(time.Time) tea.Msg {
		return noticeExpired{id: id}
	})
}

func (a *App) savePrefs() tea.Cmd {
	if a.deps.Saver == nil {
		return nil
	}
	s := a.deps.Saver
	p := a.prefs
	p.Bookmarks = a.marks.List()
	return func() tea.Msg {
		return prefsSaved{err: s.Save(p)}
	}
}

func (a App) fetchCmd(req *feed.Request) tea.Cmd {
	if req == nil || a.deps.Fetcher == nil {
		return nil
	}
	f := a.deps.Fetcher
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		return fetchDone{req: req, res: f.Fetch(ctx, req.Filters, req.Page)}
	}
}

func tickerTick() tea.Cmd {
	return tea.Tick(tickerInterval, func(time.Time) tea.Msg { return tickerRotate{} })
}

// maybeLoadMore asks for the next page once the cursor sits on the last
// visible article of the feed.
func (a *App) maybeLoadMore() tea.Cmd {
	if a.view != viewFeed {
		return nil
	}
	items := a.feed.Visible()
	if len(items) == 0 || a.cursor < len(items)-1 {
		return nil
	}
	return a.fetchCmd(a.feed.LoadMore())
}

func (a *App) currentItems() []model.Article {
	if a.view == viewBookmarks {
		list := a.marks.List()
		out := make([]model.Article, len(list))
		for i, bm := range list {
			out[i] = bm.Article
		}
		return out
	}
	return a.feed.Visible()
}

func (a *App) selected() (model.Article, bool) {
	items := a.currentItems()
	c := a.cursor
	if a.view == viewBookmarks {
		c = a.markCursor
	}
	if c < 0 || c >= len(items) {
		return model.Article{}, false
	}
	return items[c], true
}

func (a *App) moveCursor(delta int) {
	if a.view == viewBookmarks {
		a.setCursor(a.markCursor + delta)
		return
	}
	a.setCursor(a.cursor + delta)
}

func (a *App) setCursor(c int) {
	n := len(a.currentItems())
	if c >= n {
		c = n - 1
	}
	if c < 0 {
		c = 0
	}
	if a.view == viewBookmarks {
		a.markCursor = c
	} else {
		a.cursor = c
	}
}

func (a *App) clampCursor() {
	if a.view == viewBookmarks {
		a.setCursor(a.markCursor)
		return
	}
	a.setCursor(a.cursor)
}

func (a App) detailHeight() int {
	h := a.height - 3 // header, ticker, status bar
	if h < 3 {
		h = 3
	}
	return h
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}
	st := a.styles

	if a.showEvents {
		return lipgloss.JoinVertical(lipgloss.Left,
			eventPanel(st, a.deps.Ring, a.width, a.height-1),
			RenderStatusBar(st, " [EVENTS] ", [][2]string{{"?", "close"}}, a.width),
		)
	}

	snap := a.feed.Snapshot()
	header := RenderHeader(st, snap.Filters, "NewsHub", a.width)
	ticker := a.renderTicker()

	if a.view == viewDetail {
		return lipgloss.JoinVertical(lipgloss.Left,
			header, ticker, a.detail.vp.View(),
			RenderStatusBar(st, a.statusLeft(" Article "), [][2]string{
				{"Esc", "back"}, {"b", "bookmark"}, {"y", "share"}, {"d", "theme"}, {"q", "quit"},
			}, a.width),
		)
	}

	// header, ticker, optional search bar, optional error bar, status bar
	contentHeight := a.height - 3
	var searchBar, errorBar string

	var body string
	if a.view == viewBookmarks {
		items := a.currentItems()
		header = RenderHeader(st, snap.Filters, "Bookmarks", a.width)
		if len(items) == 0 {
			body = st.HelpStyle.Render("No bookmarks yet. Press 'b' on an article to save it.")
		} else {
			body = RenderStream(st, items, a.marks, a.markCursor, a.width, contentHeight, false, !a.deps.Compact)
		}
		return lipgloss.JoinVertical(lipgloss.Left, header, ticker, body,
			RenderStatusBar(st, a.statusLeft(positionText(a.markCursor, len(items))), [][2]string{
				{"Enter", "read"}, {"b", "remove"}, {"y", "share"}, {"B", "feed"}, {"q", "quit"},
			}, a.width),
		)
	}

	visible := a.feed.Visible()
	if a.searching || snap.SearchText != "" {
		searchBar = RenderSearchBar(st, a.search.View(), len(visible), len(snap.Items), a.width)
		contentHeight--
	}
	if snap.Mode == feed.Errored {
		errorBar = st.ErrorStyle.Width(a.width).Render("Error: " + fetch.UserMessage + " (press r to retry)")
		contentHeight--
	}

	if contentHeight < 1 {
		contentHeight = 1
	}

	switch {
	case len(snap.Items) == 0 && snap.Mode.Loading():
		body = st.HelpStyle.Render(a.spinner.View() + " Loading news...")
	case len(snap.Items) == 0 && snap.Mode == feed.Errored:
		body = ""
	default:
		body = RenderStream(st, visible, a.marks, a.cursor, a.width, contentHeight, snap.Filters.Query == "" && snap.SearchText == "", !a.deps.Compact)
		if !snap.HasMore && snap.Mode == feed.Idle && len(snap.Items) > 0 {
			body += st.HeaderMeta.Render(" No more articles")
		}
	}

	left := positionText(a.cursor, len(visible))
	switch snap.Mode {
	case feed.LoadingMore:
		left = " " + a.spinner.View() + " Loading more... "
	case feed.Refreshing, feed.LoadingInitial:
		left = " " + a.spinner.View() + " Loading... "
	}

	parts := []string{header, ticker}
	if searchBar != "" {
		parts = append(parts, searchBar)
	}
	parts = append(parts, lipgloss.NewStyle().Height(contentHeight).MaxHeight(contentHeight).Render(strings.TrimRight(body, "\n")))
	if errorBar != "" {
		parts = append(parts, errorBar)
	}
	parts = append(parts, RenderStatusBar(st, a.statusLeft(left), [][2]string{
		{"j/k", "nav"}, {"Enter", "read"}, {"/", "search"}, {"c/n", "filter"},
		{"b", "bookmark"}, {"B", "saved"}, {"r", "refresh"}, {"q", "quit"},
	}, a.width))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// statusLeft prefers a live notification over the default text.
func (a App) statusLeft(def string) string {
	if a.notice != "" {
		return a.styles.Notice.Render(a.notice)
	}
	return def
}

func (a App) renderTicker() string {
	st := a.styles
	if len(a.headlines) == 0 {
		return st.TickerText.Render("")
	}
	h := a.headlines[a.tickerIdx%len(a.headlines)]
	label := st.TickerLabel.Render("BREAKING")
	room := a.width - lipgloss.Width(label) - 2
	if room < 10 {
		room = 10
	}
	return label + st.TickerText.Render(runewidth.Truncate(h.Source+": "+h.Title, room, "…"))
}

func positionText(cursor, total int) string {
	if total == 0 {
		return " 0/0 "
	}
	return fmt.Sprintf(" %d/%d ", cursor+1, total)
}

// Cursor returns the feed cursor position (for testing).
func (a App) Cursor() int {
	return a.cursor
}

// Feed returns the loader snapshot (for testing).
func (a App) Feed() feed.Snapshot {
	return a.feed.Snapshot()
}

// Preferences returns the in-memory preference record.
func (a App) Preferences() model.Preferences {
	p := a.prefs
	p.Bookmarks = a.marks.List()
	return p
}
