package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  base_url: https://staging.workshelf.dev\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://staging.workshelf.dev", cfg.API.BaseURL)
	assert.Equal(t, "http://localhost:11434", cfg.Ollama.Host)
	assert.Equal(t, "llama2", cfg.Ollama.Model)
	assert.Equal(t, 72, cfg.UI.PageWidth)
	assert.Equal(t, 20, cfg.UI.PageHeight)
	assert.NotEmpty(t, cfg.Database.Path)
	assert.NotEmpty(t, cfg.LogPath)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\n  - not yaml {"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := Default()
	cfg.API.BaseURL = "https://api.example.com"
	cfg.AuthorFeeds = []AuthorFeed{{URL: "https://blog.example.com/rss", Name: "Ada"}}
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", loaded.API.BaseURL)
	require.Len(t, loaded.AuthorFeeds, 1)
	assert.Equal(t, "Ada", loaded.AuthorFeeds[0].Name)
}
