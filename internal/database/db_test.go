package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/mxchestnut/workshelf/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSessionRoundTrip(t *testing.T) {
	db := newTestDB(t)

	loaded, err := db.LoadSession()
	require.NoError(t, err)
	assert.Nil(t, loaded, "fresh database holds no session")

	sess := &models.Session{
		Token:   "tok-1",
		User:    models.User{ID: "u1", Username: "ada", Roles: []string{"admin"}},
		SavedAt: time.Now().Truncate(time.Second),
	}
	require.NoError(t, db.SaveSession(sess))

	loaded, err = db.LoadSession()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "tok-1", loaded.Token)
	assert.Equal(t, "ada", loaded.User.Username)
	assert.True(t, loaded.User.IsAdmin())

	// Saving again replaces the single row.
	sess.Token = "tok-2"
	require.NoError(t, db.SaveSession(sess))
	loaded, err = db.LoadSession()
	require.NoError(t, err)
	assert.Equal(t, "tok-2", loaded.Token)

	require.NoError(t, db.ClearSession())
	loaded, err = db.LoadSession()
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestShelfCache(t *testing.T) {
	db := newTestDB(t)

	items := []models.ShelfItem{
		{
			Book:     models.Book{ID: "b1", Title: "First", Author: "A", EpubURL: "https://cdn/b1.epub"},
			Progress: models.ReadingProgress{LastLocation: "ws1:0:0", Percentage: 12},
		},
		{
			Book:     models.Book{ID: "b2", Title: "Second", Author: "B", EpubURL: "https://cdn/b2.epub"},
			Progress: models.ReadingProgress{Percentage: 0},
		},
	}
	require.NoError(t, db.CacheShelf(items))

	cached, err := db.CachedShelf()
	require.NoError(t, err)
	require.Len(t, cached, 2)
	assert.Equal(t, "b1", cached[0].Book.ID)
	assert.Equal(t, 12, cached[0].Progress.Percentage)

	require.NoError(t, db.UpdateCachedProgress("b1", "ws1:3:7", 45))
	cached, err = db.CachedShelf()
	require.NoError(t, err)
	assert.Equal(t, "ws1:3:7", cached[0].Progress.LastLocation)
	assert.Equal(t, 45, cached[0].Progress.Percentage)

	// Re-caching replaces the whole shelf.
	require.NoError(t, db.CacheShelf(items[:1]))
	cached, err = db.CachedShelf()
	require.NoError(t, err)
	assert.Len(t, cached, 1)
}

func TestProgressQueueLatestWins(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.EnqueueProgress("b1", "ws1:0:0", 5))
	require.NoError(t, db.EnqueueProgress("b1", "ws1:1:3", 9))
	require.NoError(t, db.EnqueueProgress("b2", "ws1:0:0", 1))

	due, err := db.DueProgress(time.Now().Add(time.Second), 10)
	require.NoError(t, err)
	require.Len(t, due, 2, "one pending entry per book")

	byBook := map[string]ProgressEntry{}
	for _, e := range due {
		byBook[e.BookID] = e
	}
	assert.Equal(t, "ws1:1:3", byBook["b1"].LastLocation)
	assert.Equal(t, 9, byBook["b1"].Percentage)
	assert.Equal(t, 0, byBook["b1"].Attempts, "replacement resets the schedule")
}

func TestProgressQueueScheduling(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.EnqueueProgress("b1", "ws1:0:0", 5))

	due, err := db.DueProgress(time.Now().Add(time.Second), 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	entry := due[0]

	// Pushed into the future, the entry is no longer due.
	require.NoError(t, db.RescheduleProgress(entry.ID, time.Now().Add(time.Hour)))
	due, err = db.DueProgress(time.Now(), 10)
	require.NoError(t, err)
	assert.Empty(t, due)

	due, err = db.DueProgress(time.Now().Add(2*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, 1, due[0].Attempts)

	require.NoError(t, db.DeleteProgress(entry.ID))
	due, err = db.DueProgress(time.Now().Add(2*time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, due)
}
