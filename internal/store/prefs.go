package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/abelbrown/newshub/internal/model"
)

// LoadPreferences returns the preference record for owner, bookmarks included.
// Returns ErrNotFound when nothing was saved yet.
// Thread-safe: acquires read lock.
func (s *Store) LoadPreferences(ctx context.Context, owner string) (model.Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var p model.Preferences
	var dark, notify int
	var cats string
	err := s.db.QueryRowContext(ctx, `
		SELECT dark_mode, country, categories, notifications, language
		FROM preferences WHERE owner = ?
	`, owner).Scan(&dark, &p.Country, &cats, &notify, &p.Language)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Preferences{}, ErrNotFound
	}
	if err != nil {
		return model.Preferences{}, fmt.Errorf("query preferences: %w", err)
	}
	p.DarkMode = dark != 0
	p.Notifications = notify != 0
	if err := json.Unmarshal([]byte(cats), &p.Categories); err != nil {
		return model.Preferences{}, fmt.Errorf("decode categories: %w", err)
	}

	p.Bookmarks, err = s.queryBookmarks(ctx, owner)
	if err != nil {
		return model.Preferences{}, err
	}
	return p, nil
}

// SavePreferences replaces the preference record and bookmark list for owner.
// Thread-safe: acquires write lock.
func (s *Store) SavePreferences(ctx context.Context, owner string, p model.Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cats := p.Categories
	if cats == nil {
		cats = []string{}
	}
	catsJSON, err := json.Marshal(cats)
	if err != nil {
		return fmt.Errorf("encode categories: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO preferences (owner, dark_mode, country, categories, notifications, language, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(owner) DO UPDATE SET
			dark_mode = excluded.dark_mode,
			country = excluded.country,
			categories = excluded.categories,
			notifications = excluded.notifications,
			language = excluded.language,
			updated_at = excluded.updated_at
	`, owner, boolToInt(p.DarkMode), p.Country, string(catsJSON),
		boolToInt(p.Notifications), p.Language, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert preferences: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM bookmarks WHERE owner = ?", owner); err != nil {
		return fmt.Errorf("clear bookmarks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO bookmarks (
			owner, url, position, id, title, description, image_url,
			source_name, published_at, content, category, bookmarked_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare bookmark insert: %w", err)
	}
	defer stmt.Close()

	for i, b := range p.Bookmarks {
		_, err := stmt.ExecContext(ctx, owner, b.URL, i, b.ID, b.Title, b.Description,
			b.ImageURL, b.SourceName, b.PublishedAt, b.Content, b.Category, b.BookmarkedAt)
		if err != nil {
			return fmt.Errorf("insert bookmark: %w", err)
		}
	}

	return tx.Commit()
}

// Bookmarks returns the bookmarks for owner in saved order.
// Thread-safe: acquires read lock.
func (s *Store) Bookmarks(ctx context.Context, owner string) ([]model.Bookmark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryBookmarks(ctx, owner)
}

// Caller must hold s.mu.
func (s *Store) queryBookmarks(ctx context.Context, owner string) ([]model.Bookmark, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT url, id, title, description, image_url, source_name,
			published_at, content, category, bookmarked_at
		FROM bookmarks WHERE owner = ?
		ORDER BY position
	`, owner)
	if err != nil {
		return nil, fmt.Errorf("query bookmarks: %w", err)
	}
	defer rows.Close()

	out := []model.Bookmark{}
	for rows.Next() {
		var b model.Bookmark
		var id, title, desc, img, src, pub, content, cat sql.NullString
		if err := rows.Scan(&b.URL, &id, &title, &desc, &img, &src, &pub, &content, &cat, &b.BookmarkedAt); err != nil {
			return nil, fmt.Errorf("scan bookmark: %w", err)
		}
		b.ID, b.Title, b.Description = id.String, title.String, desc.String
		b.ImageURL, b.SourceName, b.PublishedAt = img.String, src.String, pub.String
		b.Content, b.Category = content.String, cat.String
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
