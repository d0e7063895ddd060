package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/abelbrown/newshub/internal/model"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	st, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestOpenCreatesTables(t *testing.T) {
	st := openTest(t)
	for _, table := range []string{"users", "sessions", "preferences", "bookmarks"} {
		var name string
		err := st.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("%s table not created: %v", table, err)
		}
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.db")
	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	ctx := context.Background()
	if err := st.SavePreferences(ctx, LocalOwner, model.DefaultPreferences()); err != nil {
		t.Fatal(err)
	}
	st.Close()

	st, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	if _, err := st.LoadPreferences(ctx, LocalOwner); err != nil {
		t.Errorf("expected preferences to persist, got %v", err)
	}
}

func TestLoadPreferencesNotFound(t *testing.T) {
	st := openTest(t)
	_, err := st.LoadPreferences(context.Background(), LocalOwner)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSavePreferencesRoundTrip(t *testing.T) {
	st := openTest(t)
	ctx := context.Background()

	p := model.Preferences{
		DarkMode:      true,
		Country:       "gb",
		Categories:    []string{"science", "health"},
		Notifications: false,
		Language:      "en",
		Bookmarks: []model.Bookmark{
			{Article: model.Article{ID: "article-1-0", Title: "B", URL: "https://ex.com/b"}, BookmarkedAt: "2024-01-01T00:00:00Z"},
			{Article: model.Article{Title: "A", URL: "https://ex.com/a", Category: "science"}, BookmarkedAt: "2024-01-02T00:00:00Z"},
		},
	}
	if err := st.SavePreferences(ctx, LocalOwner, p); err != nil {
		t.Fatalf("SavePreferences: %v", err)
	}

	got, err := st.LoadPreferences(ctx, LocalOwner)
	if err != nil {
		t.Fatalf("LoadPreferences: %v", err)
	}
	if !got.DarkMode || got.Country != "gb" || got.Notifications {
		t.Errorf("scalar fields lost: %+v", got)
	}
	if len(got.Categories) != 2 || got.Categories[0] != "science" {
		t.Errorf("categories: %v", got.Categories)
	}
	if len(got.Bookmarks) != 2 {
		t.Fatalf("expected 2 bookmarks, got %d", len(got.Bookmarks))
	}
	if got.Bookmarks[0].URL != "https://ex.com/b" || got.Bookmarks[1].Category != "science" {
		t.Errorf("bookmark order or fields lost: %+v", got.Bookmarks)
	}
}

func TestSavePreferencesReplacesBookmarks(t *testing.T) {
	st := openTest(t)
	ctx := context.Background()

	p := model.DefaultPreferences()
	p.Bookmarks = []model.Bookmark{{Article: model.Article{URL: "u1"}}, {Article: model.Article{URL: "u2"}}}
	st.SavePreferences(ctx, LocalOwner, p)

	p.Bookmarks = p.Bookmarks[1:]
	if err := st.SavePreferences(ctx, LocalOwner, p); err != nil {
		t.Fatal(err)
	}
	bms, err := st.Bookmarks(ctx, LocalOwner)
	if err != nil {
		t.Fatal(err)
	}
	if len(bms) != 1 || bms[0].URL != "u2" {
		t.Errorf("expected only u2, got %+v", bms)
	}
}

func TestPreferencesPerOwner(t *testing.T) {
	st := openTest(t)
	ctx := context.Background()

	a := model.DefaultPreferences()
	a.Country = "de"
	st.SavePreferences(ctx, "user-a", a)

	if _, err := st.LoadPreferences(ctx, "user-b"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected other owner to be empty, got %v", err)
	}
}

func TestCreateUserConflict(t *testing.T) {
	st := openTest(t)
	ctx := context.Background()

	u, err := st.CreateUser(ctx, " Ada ", "Ada@Example.com", "hash")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.ID == "" || u.Email != "ada@example.com" || u.Name != "Ada" {
		t.Errorf("unexpected user %+v", u)
	}

	if _, err := st.CreateUser(ctx, "Other", "ada@example.com ", "hash"); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}

	got, err := st.UserByEmail(ctx, "ADA@example.com")
	if err != nil || got.ID != u.ID {
		t.Errorf("UserByEmail: %+v, %v", got, err)
	}
	if _, err := st.UserByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateProfileAndPassword(t *testing.T) {
	st := openTest(t)
	ctx := context.Background()
	a, _ := st.CreateUser(ctx, "A", "a@x.com", "h1")
	st.CreateUser(ctx, "B", "b@x.com", "h2")

	if err := st.UpdateProfile(ctx, a.ID, "A2", "b@x.com"); !errors.Is(err, ErrConflict) {
		t.Errorf("expected conflict on taken email, got %v", err)
	}
	if err := st.UpdateProfile(ctx, a.ID, "A2", "a2@x.com"); err != nil {
		t.Fatal(err)
	}
	if err := st.UpdatePassword(ctx, a.ID, "h3"); err != nil {
		t.Fatal(err)
	}
	got, _ := st.UserByID(ctx, a.ID)
	if got.Name != "A2" || got.Email != "a2@x.com" || got.PasswordHash != "h3" {
		t.Errorf("updates lost: %+v", got)
	}
	if err := st.UpdatePassword(ctx, "missing", "h"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSessions(t *testing.T) {
	st := openTest(t)
	ctx := context.Background()
	u, _ := st.CreateUser(ctx, "A", "a@x.com", "h")

	tok, err := st.CreateSession(ctx, u.ID, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	got, err := st.SessionUser(ctx, tok)
	if err != nil || got.ID != u.ID {
		t.Fatalf("SessionUser: %+v, %v", got, err)
	}

	if err := st.DeleteSession(ctx, tok); err != nil {
		t.Fatal(err)
	}
	if _, err := st.SessionUser(ctx, tok); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected revoked token to be rejected, got %v", err)
	}
}

func TestExpiredSessions(t *testing.T) {
	st := openTest(t)
	ctx := context.Background()
	u, _ := st.CreateUser(ctx, "A", "a@x.com", "h")

	old, _ := st.CreateSession(ctx, u.ID, -time.Hour)
	st.CreateSession(ctx, u.ID, time.Hour)

	if _, err := st.SessionUser(ctx, old); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected expired token to be rejected, got %v", err)
	}
	n, err := st.PurgeSessions(ctx)
	if err != nil || n != 1 {
		t.Errorf("expected 1 purged, got %d (%v)", n, err)
	}
}

func TestConcurrentAccess(t *testing.T) {
	st := openTest(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := model.DefaultPreferences()
			p.Bookmarks = []model.Bookmark{{Article: model.Article{URL: fmt.Sprintf("u%d", i)}}}
			if err := st.SavePreferences(ctx, fmt.Sprintf("owner-%d", i), p); err != nil {
				t.Errorf("save %d: %v", i, err)
			}
			if _, err := st.LoadPreferences(ctx, fmt.Sprintf("owner-%d", i)); err != nil {
				t.Errorf("load %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()
}
