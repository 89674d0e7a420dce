package session

import (
	"path/filepath"
	"testing"

	"github.com/mxchestnut/workshelf/internal/database"
	"github.com/mxchestnut/workshelf/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStoreTest(t *testing.T) (*Store, *database.DB) {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := NewStore(db)
	require.NoError(t, err)
	return store, db
}

func TestStoreLifecycle(t *testing.T) {
	store, db := newStoreTest(t)

	assert.Nil(t, store.Current())
	assert.Empty(t, store.Token())
	_, err := store.CurrentUser()
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	require.NoError(t, store.Put(models.Session{
		Token: "tok",
		User:  models.User{ID: "u1", Username: "ada"},
	}))

	assert.Equal(t, "tok", store.Token())
	user, err := store.CurrentUser()
	require.NoError(t, err)
	assert.Equal(t, "ada", user.Username)
	assert.False(t, store.Current().SavedAt.IsZero(), "SavedAt is stamped on put")

	// A fresh store over the same database sees the persisted session.
	reloaded, err := NewStore(db)
	require.NoError(t, err)
	assert.Equal(t, "tok", reloaded.Token())

	require.NoError(t, store.Clear())
	assert.Nil(t, store.Current())
	assert.Empty(t, store.Token())
}
