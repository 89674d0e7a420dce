package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	API         APIConfig      `yaml:"api"`
	Database    DatabaseConfig `yaml:"database"`
	AuthorFeeds []AuthorFeed   `yaml:"author_feeds"`
	Ollama      OllamaConfig   `yaml:"ollama"`
	UI          UIConfig       `yaml:"ui"`
	LogPath     string         `yaml:"log_path"`
}

type APIConfig struct {
	BaseURL string `yaml:"base_url"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AuthorFeed is an RSS/Atom feed of a followed author, merged into the
// activity feed alongside platform entries.
type AuthorFeed struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
}

type OllamaConfig struct {
	Host  string `yaml:"host"`
	Model string `yaml:"model"`
}

type UIConfig struct {
	PageWidth  int `yaml:"page_width"`
	PageHeight int `yaml:"page_height"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Expand home directory in paths
	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.LogPath = expandPath(cfg.LogPath)

	cfg.applyDefaults()

	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "https://api.workshelf.dev"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = filepath.Join(configDir(), "workshelf.db")
	}
	if cfg.LogPath == "" {
		cfg.LogPath = filepath.Join(configDir(), "client.log")
	}
	if cfg.Ollama.Host == "" {
		cfg.Ollama.Host = "http://localhost:11434"
	}
	if cfg.Ollama.Model == "" {
		cfg.Ollama.Model = "llama2"
	}
	if cfg.UI.PageWidth == 0 {
		cfg.UI.PageWidth = 72
	}
	if cfg.UI.PageHeight == 0 {
		cfg.UI.PageHeight = 20
	}
}

// Default returns a configuration with all defaults applied, used when no
// config file exists yet.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Save writes configuration to file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "workshelf")
}

// DefaultConfigPath returns the default configuration file path
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}
