package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mxchestnut/workshelf/pkg/models"
)

// SaveSession stores the single session row, replacing any previous one.
func (db *DB) SaveSession(sess *models.Session) error {
	userJSON, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("marshaling session user: %w", err)
	}

	_, err = db.Exec(
		"INSERT INTO session (id, token, user_json, saved_at) VALUES (1, ?, ?, ?) ON CONFLICT(id) DO UPDATE SET token = excluded.token, user_json = excluded.user_json, saved_at = excluded.saved_at",
		sess.Token, string(userJSON), sess.SavedAt,
	)
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// LoadSession returns the stored session, or nil when logged out.
func (db *DB) LoadSession() (*models.Session, error) {
	var sess models.Session
	var userJSON string
	err := db.QueryRow("SELECT token, user_json, saved_at FROM session WHERE id = 1").
		Scan(&sess.Token, &userJSON, &sess.SavedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}

	if err := json.Unmarshal([]byte(userJSON), &sess.User); err != nil {
		return nil, fmt.Errorf("parsing session user: %w", err)
	}
	return &sess, nil
}

// ClearSession removes the stored session
func (db *DB) ClearSession() error {
	_, err := db.Exec("DELETE FROM session WHERE id = 1")
	if err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// CacheShelf replaces the cached bookshelf with the given items.
func (db *DB) CacheShelf(items []models.ShelfItem) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM shelf_cache"); err != nil {
		return fmt.Errorf("clearing shelf cache: %w", err)
	}

	now := time.Now()
	for _, item := range items {
		_, err := tx.Exec(
			"INSERT INTO shelf_cache (book_id, title, author, epub_url, last_location, percentage, cached_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			item.Book.ID, item.Book.Title, item.Book.Author, item.Book.EpubURL,
			item.Progress.LastLocation, item.Progress.Percentage, now,
		)
		if err != nil {
			return fmt.Errorf("caching shelf item: %w", err)
		}
	}

	return tx.Commit()
}

// CachedShelf returns the locally cached bookshelf.
func (db *DB) CachedShelf() ([]models.ShelfItem, error) {
	rows, err := db.Query("SELECT book_id, title, author, epub_url, last_location, percentage, cached_at FROM shelf_cache ORDER BY title")
	if err != nil {
		return nil, fmt.Errorf("querying shelf cache: %w", err)
	}
	defer rows.Close()

	var items []models.ShelfItem
	for rows.Next() {
		var item models.ShelfItem
		var cachedAt time.Time
		if err := rows.Scan(&item.Book.ID, &item.Book.Title, &item.Book.Author, &item.Book.EpubURL, &item.Progress.LastLocation, &item.Progress.Percentage, &cachedAt); err != nil {
			return nil, fmt.Errorf("scanning shelf item: %w", err)
		}
		item.Progress.UpdatedAt = cachedAt
		items = append(items, item)
	}

	return items, rows.Err()
}

// UpdateCachedProgress records the latest position for a cached shelf item so
// the shelf reflects it before the backend write lands.
func (db *DB) UpdateCachedProgress(bookID, location string, percentage int) error {
	_, err := db.Exec(
		"UPDATE shelf_cache SET last_location = ?, percentage = ? WHERE book_id = ?",
		location, percentage, bookID,
	)
	if err != nil {
		return fmt.Errorf("updating cached progress: %w", err)
	}
	return nil
}

// ProgressEntry is one pending best-effort progress write.
type ProgressEntry struct {
	ID            string
	BookID        string
	LastLocation  string
	Percentage    int
	Attempts      int
	NextAttemptAt time.Time
	CreatedAt     time.Time
}

// EnqueueProgress queues a progress write for the book. The latest value
// wins: a pending entry for the same book is overwritten and its schedule
// reset so the fresh position goes out as soon as possible.
func (db *DB) EnqueueProgress(bookID, location string, percentage int) error {
	now := time.Now()
	_, err := db.Exec(
		`INSERT INTO progress_queue (id, book_id, last_location, percentage, attempts, next_attempt_at, created_at)
		 VALUES (?, ?, ?, ?, 0, ?, ?)
		 ON CONFLICT(book_id) DO UPDATE SET last_location = excluded.last_location, percentage = excluded.percentage, attempts = 0, next_attempt_at = excluded.next_attempt_at`,
		uuid.NewString(), bookID, location, percentage, now, now,
	)
	if err != nil {
		return fmt.Errorf("enqueuing progress: %w", err)
	}
	return nil
}

// DueProgress returns queued entries whose next attempt time has passed.
func (db *DB) DueProgress(now time.Time, limit int) ([]ProgressEntry, error) {
	rows, err := db.Query(
		"SELECT id, book_id, last_location, percentage, attempts, next_attempt_at, created_at FROM progress_queue WHERE next_attempt_at <= ? ORDER BY next_attempt_at LIMIT ?",
		now, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying progress queue: %w", err)
	}
	defer rows.Close()

	var entries []ProgressEntry
	for rows.Next() {
		var e ProgressEntry
		if err := rows.Scan(&e.ID, &e.BookID, &e.LastLocation, &e.Percentage, &e.Attempts, &e.NextAttemptAt, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning progress entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// RescheduleProgress bumps the attempt count and sets the next attempt time.
func (db *DB) RescheduleProgress(id string, next time.Time) error {
	_, err := db.Exec(
		"UPDATE progress_queue SET attempts = attempts + 1, next_attempt_at = ? WHERE id = ?",
		next, id,
	)
	if err != nil {
		return fmt.Errorf("rescheduling progress entry: %w", err)
	}
	return nil
}

// DeleteProgress removes a queue entry after delivery or after giving up.
func (db *DB) DeleteProgress(id string) error {
	_, err := db.Exec("DELETE FROM progress_queue WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting progress entry: %w", err)
	}
	return nil
}
