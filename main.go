package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mxchestnut/workshelf/internal/api"
	"github.com/mxchestnut/workshelf/internal/config"
	"github.com/mxchestnut/workshelf/internal/database"
	"github.com/mxchestnut/workshelf/internal/feed"
	"github.com/mxchestnut/workshelf/internal/progress"
	"github.com/mxchestnut/workshelf/internal/prompts"
	"github.com/mxchestnut/workshelf/internal/session"
	"github.com/mxchestnut/workshelf/internal/tui"
)

const flushInterval = 15 * time.Second

func main() {
	configPath := flag.String("config", config.DefaultConfigPath(), "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		cfg = config.Default()
		if err := config.Save(cfg, configPath); err != nil {
			return fmt.Errorf("writing initial config: %w", err)
		}
	}

	// The TUI owns the terminal, so diagnostics go to a file.
	if err := os.MkdirAll(filepath.Dir(cfg.LogPath), 0755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	logFile, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()
	logger := log.New(logFile, "", log.LstdFlags)

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	sess, err := session.NewStore(db)
	if err != nil {
		return err
	}

	client := api.NewClient(cfg.API.BaseURL, sess)
	persister := progress.NewPersister(db, client, logger)
	assembler := feed.NewAssembler(client, cfg.AuthorFeeds, logger)
	prompter := prompts.NewClient(cfg.Ollama.Host, cfg.Ollama.Model)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go persister.Run(ctx, flushInterval)

	m := tui.New(ctx, cfg, db, sess, client, persister, assembler, prompter, logger)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}

	// Push any queued progress out before the process exits, best effort.
	flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer flushCancel()
	persister.Flush(flushCtx)

	return nil
}
