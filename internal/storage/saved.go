package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// SavedImage is an image the user wrote to disk.
type SavedImage struct {
	ID      int64
	URL     string
	Path    string
	Tag     string
	Mode    string
	SavedAt time.Time
}

// SavedStore records saved images in SQLite.
type SavedStore struct {
	db *sql.DB
}

// NewSavedStore creates a saved-image ledger using the given database.
func NewSavedStore(db *DB) *SavedStore {
	return &SavedStore{db: db.conn}
}

// Add records a saved image.
func (ss *SavedStore) Add(img SavedImage) error {
	_, err := ss.db.Exec(
		`INSERT INTO saved_images (url, path, tag, mode) VALUES (?, ?, ?, ?)`,
		img.URL, img.Path, img.Tag, img.Mode,
	)
	if err != nil {
		return fmt.Errorf("recording saved image: %w", err)
	}
	return nil
}

// Has reports whether the URL has been saved before.
func (ss *SavedStore) Has(url string) bool {
	var count int
	err := ss.db.QueryRow(`SELECT COUNT(*) FROM saved_images WHERE url = ?`, url).Scan(&count)
	return err == nil && count > 0
}

// List returns saved images, newest first. A limit <= 0 returns all.
func (ss *SavedStore) List(limit int) ([]SavedImage, error) {
	query := `SELECT id, url, path, tag, mode, saved_at FROM saved_images ORDER BY saved_at DESC, id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := ss.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing saved images: %w", err)
	}
	defer rows.Close()
	return scanSaved(rows)
}

// Count returns the number of saved images.
func (ss *SavedStore) Count() int {
	var count int
	ss.db.QueryRow(`SELECT COUNT(*) FROM saved_images`).Scan(&count)
	return count
}

func scanSaved(rows *sql.Rows) ([]SavedImage, error) {
	var saved []SavedImage
	for rows.Next() {
		var s SavedImage
		var savedAt string
		if err := rows.Scan(&s.ID, &s.URL, &s.Path, &s.Tag, &s.Mode, &savedAt); err != nil {
			return nil, fmt.Errorf("scanning saved image: %w", err)
		}
		s.SavedAt = parseSQLiteTime(savedAt)
		saved = append(saved, s)
	}
	return saved, rows.Err()
}

func parseSQLiteTime(v string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339, "2006-01-02T15:04:05Z"} {
		if t, err := time.Parse(layout, strings.TrimSpace(v)); err == nil {
			return t
		}
	}
	return time.Time{}
}

// RenderSaved formats the ledger for the terminal.
func RenderSaved(saved []SavedImage) string {
	var sb strings.Builder

	sb.WriteString("  💾 Saved images\n")
	sb.WriteString("  ━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	if len(saved) == 0 {
		sb.WriteString("  Nothing saved yet. Press 's' in the viewer to save an image.\n")
		return sb.String()
	}

	for i, s := range saved {
		sb.WriteString(fmt.Sprintf("  [%d] %s\n", i+1, s.Path))
		sb.WriteString(fmt.Sprintf("       %s\n", s.URL))
		if s.Tag != "" {
			sb.WriteString(fmt.Sprintf("       %s/%s\n", s.Mode, s.Tag))
		}
		sb.WriteString(fmt.Sprintf("       saved %s\n\n", timeAgo(s.SavedAt)))
	}
	return sb.String()
}

// timeAgo returns a human-readable relative time string.
func timeAgo(t time.Time) string {
	if t.IsZero() {
		return "some time ago"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
