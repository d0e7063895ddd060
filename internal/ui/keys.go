package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit        key.Binding
	Up          key.Binding
	Down        key.Binding
	Home        key.Binding
	End         key.Binding
	Open        key.Binding
	Back        key.Binding
	Search      key.Binding
	Refresh     key.Binding
	Bookmark    key.Binding
	Bookmarks   key.Binding
	NextCat     key.Binding
	PrevCat     key.Binding
	NextCountry key.Binding
	PrevCountry key.Binding
	Share       key.Binding
	Dark        key.Binding
	Events      key.Binding
}

var keys = keyMap{
	Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c")),
	Up:          key.NewBinding(key.WithKeys("up", "k")),
	Down:        key.NewBinding(key.WithKeys("down", "j")),
	Home:        key.NewBinding(key.WithKeys("home", "g")),
	End:         key.NewBinding(key.WithKeys("end", "G")),
	Open:        key.NewBinding(key.WithKeys("enter")),
	Back:        key.NewBinding(key.WithKeys("esc", "backspace")),
	Search:      key.NewBinding(key.WithKeys("/")),
	Refresh:     key.NewBinding(key.WithKeys("r")),
	Bookmark:    key.NewBinding(key.WithKeys("b")),
	Bookmarks:   key.NewBinding(key.WithKeys("B")),
	NextCat:     key.NewBinding(key.WithKeys("c", "tab")),
	PrevCat:     key.NewBinding(key.WithKeys("C", "shift+tab")),
	NextCountry: key.NewBinding(key.WithKeys("n")),
	PrevCountry: key.NewBinding(key.WithKeys("N")),
	Share:       key.NewBinding(key.WithKeys("y")),
	Dark:        key.NewBinding(key.WithKeys("d")),
	Events:      key.NewBinding(key.WithKeys("?")),
}
