package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/abelbrown/newshub/internal/model"
	"github.com/abelbrown/newshub/internal/prefs"
)

func runPrefs() {
	fs := flag.NewFlagSet("prefs", flag.ExitOnError)
	country := fs.String("country", "", "Set the country filter (e.g. us, gb, none)")
	category := fs.String("category", "", "Set the category (e.g. technology)")
	dark := fs.String("dark", "", "Set dark mode: on or off")
	fs.Parse(os.Args[1:])

	st := openDB(dbPath())
	defer st.Close()

	ctx := context.Background()
	local := prefs.NewLocal(st)
	p, err := local.Read(ctx)
	if err != nil {
		log.Fatalf("read preferences: %v", err)
	}

	changed, err := applyPrefFlags(&p, *country, *category, *dark)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if changed {
		if err := local.Write(ctx, p); err != nil {
			log.Fatalf("save preferences: %v", err)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		log.Fatal(err)
	}
}

// applyPrefFlags applies the non-empty setters to p and reports whether
// anything changed.
func applyPrefFlags(p *model.Preferences, country, category, dark string) (bool, error) {
	changed := false
	if country != "" {
		if !validOption(model.Countries(), country) {
			return false, fmt.Errorf("unknown country %q", country)
		}
		p.Country = country
		changed = true
	}
	if category != "" {
		if !model.ValidCategory(category) {
			return false, fmt.Errorf("unknown category %q", category)
		}
		p.Categories = []string{category}
		changed = true
	}
	switch dark {
	case "":
	case "on", "true":
		p.DarkMode = true
		changed = true
	case "off", "false":
		p.DarkMode = false
		changed = true
	default:
		return false, fmt.Errorf("-dark wants on or off, got %q", dark)
	}
	return changed, nil
}

func validOption(opts []model.Option, id string) bool {
	for _, o := range opts {
		if o.ID == id {
			return true
		}
	}
	return false
}
