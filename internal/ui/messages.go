// Package ui provides the Bubble Tea TUI for NewsHub.
package ui

import (
	"github.com/abelbrown/newshub/internal/feed"
	"github.com/abelbrown/newshub/internal/fetch"
	"github.com/abelbrown/newshub/internal/reader"
)

// BreakingNews is sent by the ticker coordinator after each refresh.
type BreakingNews struct {
	Headlines []fetch.Headline
	Failed    int // sources that could not be read
}

// fetchDone carries the outcome of a feed request back to the loop.
type fetchDone struct {
	req *feed.Request
	res fetch.Result
}

// searchDue fires when the search debounce ticket expires.
type searchDue struct {
	seq uint64
}

// noticeExpired clears a notification if it is still the one shown.
type noticeExpired struct {
	id int
}

// tickerRotate advances the breaking news line.
type tickerRotate struct{}

// articleRead carries the extracted page for the detail view.
type articleRead struct {
	url  string
	page reader.Page
	err  error
}

// prefsSaved reports a background preference write.
type prefsSaved struct {
	err error
}
