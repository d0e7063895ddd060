package ui

import "github.com/charmbracelet/lipgloss"

// palette is one color scheme. Light is the default.
type palette struct {
	fg        lipgloss.Color
	bg        lipgloss.Color
	primary   lipgloss.Color
	secondary lipgloss.Color
	muted     lipgloss.Color
	highlight lipgloss.Color
	barBg     lipgloss.Color
	success   lipgloss.Color
	danger    lipgloss.Color
}

var lightPalette = palette{
	fg:        lipgloss.Color("235"),
	bg:        lipgloss.Color("255"),
	primary:   lipgloss.Color("25"),  // Blue
	secondary: lipgloss.Color("243"), // Gray
	muted:     lipgloss.Color("248"),
	highlight: lipgloss.Color("161"), // Magenta
	barBg:     lipgloss.Color("253"),
	success:   lipgloss.Color("28"),
	danger:    lipgloss.Color("160"),
}

var darkPalette = palette{
	fg:        lipgloss.Color("255"),
	bg:        lipgloss.Color("234"),
	primary:   lipgloss.Color("62"),  // Purple
	secondary: lipgloss.Color("241"), // Gray
	muted:     lipgloss.Color("240"),
	highlight: lipgloss.Color("212"), // Pink
	barBg:     lipgloss.Color("236"),
	success:   lipgloss.Color("78"),
	danger:    lipgloss.Color("196"),
}

// Styles holds every style the views use. Rebuilt when the theme changes.
type Styles struct {
	Header       lipgloss.Style
	HeaderMeta   lipgloss.Style
	SelectedItem lipgloss.Style
	NormalItem   lipgloss.Style
	MetaItem     lipgloss.Style
	BookmarkMark lipgloss.Style
	StatusBar    lipgloss.Style
	StatusKey    lipgloss.Style
	StatusText   lipgloss.Style
	ErrorStyle   lipgloss.Style
	HelpStyle    lipgloss.Style
	SearchBar    lipgloss.Style
	SearchPrompt lipgloss.Style
	SearchCount  lipgloss.Style
	Notice       lipgloss.Style
	TickerLabel  lipgloss.Style
	TickerText   lipgloss.Style
	DetailTitle  lipgloss.Style
	DetailMeta   lipgloss.Style
	DetailBody   lipgloss.Style
	DebugPanel   lipgloss.Style
	DebugHeader  lipgloss.Style
}

// NewStyles builds the styles for the light or dark theme.
func NewStyles(dark bool) Styles {
	p := lightPalette
	if dark {
		p = darkPalette
	}
	return Styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.primary).
			Padding(0, 1),
		HeaderMeta: lipgloss.NewStyle().
			Foreground(p.secondary),
		SelectedItem: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")).
			Background(p.primary),
		NormalItem: lipgloss.NewStyle().
			Foreground(p.fg),
		MetaItem: lipgloss.NewStyle().
			Foreground(p.muted),
		BookmarkMark: lipgloss.NewStyle().
			Foreground(p.highlight).
			Bold(true),
		StatusBar: lipgloss.NewStyle().
			Foreground(p.fg).
			Background(p.barBg).
			Padding(0, 1),
		StatusKey: lipgloss.NewStyle().
			Foreground(p.highlight).
			Bold(true),
		StatusText: lipgloss.NewStyle().
			Foreground(p.secondary),
		ErrorStyle: lipgloss.NewStyle().
			Foreground(p.danger).
			Bold(true).
			Padding(0, 1),
		HelpStyle: lipgloss.NewStyle().
			Foreground(p.muted).
			Padding(1, 2),
		SearchBar: lipgloss.NewStyle().
			Foreground(p.fg).
			Background(p.barBg).
			Padding(0, 1),
		SearchPrompt: lipgloss.NewStyle().
			Foreground(p.highlight).
			Bold(true),
		SearchCount: lipgloss.NewStyle().
			Foreground(p.secondary),
		Notice: lipgloss.NewStyle().
			Foreground(p.success).
			Bold(true).
			Padding(0, 1),
		TickerLabel: lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(p.danger).
			Bold(true).
			Padding(0, 1),
		TickerText: lipgloss.NewStyle().
			Foreground(p.fg).
			Padding(0, 1),
		DetailTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.primary),
		DetailMeta: lipgloss.NewStyle().
			Foreground(p.secondary).
			Italic(true),
		DetailBody: lipgloss.NewStyle().
			Foreground(p.fg),
		DebugPanel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.primary).
			Padding(1, 2),
		DebugHeader: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.highlight),
	}
}
