package feed

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/mxchestnut/workshelf/internal/api"
	"github.com/mxchestnut/workshelf/internal/config"
	"github.com/mxchestnut/workshelf/internal/database"
	"github.com/mxchestnut/workshelf/internal/session"
	"github.com/mxchestnut/workshelf/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const authorRSS = `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Ada Writes</title>
    <item>
      <guid>rss-1</guid>
      <title>New chapter draft</title>
      <link>https://blog.example.com/draft</link>
      <description>Thoughts on the draft.</description>
      <pubDate>Tue, 02 Jan 2024 10:00:00 GMT</pubDate>
    </item>
    <item>
      <guid>rss-2</guid>
      <title>Undated post</title>
      <link>https://blog.example.com/undated</link>
    </item>
  </channel>
</rss>`

func newAssemblerTest(t *testing.T, entries []models.FeedEntry, feedURLs ...string) *Assembler {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := session.NewStore(db)
	require.NoError(t, err)
	require.NoError(t, store.Put(models.Session{Token: "tok", User: models.User{ID: "u1"}}))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/feed", r.URL.Path)
		json.NewEncoder(w).Encode(entries)
	}))
	t.Cleanup(srv.Close)

	var feeds []config.AuthorFeed
	for _, u := range feedURLs {
		feeds = append(feeds, config.AuthorFeed{URL: u})
	}
	return NewAssembler(api.NewClient(srv.URL, store), feeds, log.New(io.Discard, "", 0))
}

func TestAssembleMergesAndSorts(t *testing.T) {
	rssSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(authorRSS))
	}))
	defer rssSrv.Close()

	platform := []models.FeedEntry{
		{ID: "p1", Kind: "group_post", Title: "Older platform entry", PublishedAt: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)},
		{ID: "p2", Kind: "review", Title: "Newer platform entry", PublishedAt: time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC)},
	}

	a := newAssemblerTest(t, platform, rssSrv.URL)
	entries, err := a.Assemble(context.Background())
	require.NoError(t, err)

	// Two platform entries plus the one dated RSS item; the undated item is
	// skipped.
	require.Len(t, entries, 3)
	assert.Equal(t, "p2", entries[0].ID)
	assert.Equal(t, "rss-1", entries[1].ID)
	assert.Equal(t, "p1", entries[2].ID)

	assert.Equal(t, "author_post", entries[1].Kind)
	assert.Equal(t, "Ada Writes", entries[1].Author, "channel title used when no name configured")
}

func TestAssembleSkipsDeadFeeds(t *testing.T) {
	deadSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer deadSrv.Close()

	platform := []models.FeedEntry{{ID: "p1", Title: "Still here", PublishedAt: time.Now()}}

	a := newAssemblerTest(t, platform, deadSrv.URL)
	entries, err := a.Assemble(context.Background())
	require.NoError(t, err, "a dead author feed never breaks the page")
	require.Len(t, entries, 1)
	assert.Equal(t, "p1", entries[0].ID)
}
