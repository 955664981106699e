package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"cribscore/internal/config"
	"cribscore/internal/scoring"
	"cribscore/internal/server"
	"cribscore/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	_ "github.com/joho/godotenv/autoload"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err.Error())
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// The terminal belongs to the board, so logs go to a file.
	logger := server.NewLogger(cfg)
	logger.SetOutput(io.Discard)
	if f, err := os.OpenFile("cribscore-tui.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
		defer f.Close()
		logger.SetOutput(f)
	}

	backend, err := server.OpenBackend(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	defer backend.Close()

	store, err := scoring.NewStore(ctx, scoring.NewKVPersistence(backend.Store, logger), logger)
	if err != nil {
		return fmt.Errorf("load games: %w", err)
	}
	session := scoring.NewSession(store, nil)

	if _, err := tea.NewProgram(tui.New(ctx, session), tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
