// Command nhctl is the NewsHub maintenance and debugging CLI.
//
// Usage:
//
//	nhctl                       Show help
//	nhctl events                JSONL event log viewer
//	nhctl bookmarks             List or export local bookmarks
//	nhctl prefs                 Show or edit local preferences
//	nhctl search <query>        Run the feed loader against GNews
//	nhctl search -i             Debounced search driven by stdin lines
//	nhctl purge                 Delete expired newsd sessions
package main

import (
	"fmt"
	"os"
)

const usage = `nhctl: NewsHub debug & maintenance CLI

Usage:
  nhctl <command> [flags]

Commands:
  events      JSONL event log viewer
  bookmarks   List or export local bookmarks (text, json, rss)
  prefs       Show local preferences, optionally change them
  search      Run the feed loader for a query (requires GNEWS_API_KEY)
  purge       Delete expired login sessions from the newsd database

Environment:
  GNEWS_API_KEY   GNews API key (required for search)
  DATABASE_PATH   newsd database (default: ~/.newshub/newsd.db)

Run 'nhctl <command> -h' for command-specific help.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(0)
	}

	cmd := os.Args[1]
	// Strip the program name + subcommand so flag sets see only their flags
	os.Args = os.Args[1:]

	switch cmd {
	case "events":
		runEvents()
	case "bookmarks":
		runBookmarks()
	case "prefs":
		runPrefs()
	case "search":
		runSearch()
	case "purge":
		runPurge()
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "nhctl: unknown command %q\n\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}
}
