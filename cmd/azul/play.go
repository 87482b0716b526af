package main

import (
	"fmt"
	"os"
	"os/user"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-azul/internal/multiplayer"
	"github.com/vovakirdan/tui-azul/internal/platform/tui"
	"github.com/vovakirdan/tui-azul/internal/registry"
	"github.com/vovakirdan/tui-azul/internal/storage"
)

var (
	flagName     string
	flagBots     int
	flagStrategy string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play Azul at this terminal",
	Long: `Start a table at this terminal. The setup menu seats you first; further
seats can be computer players or more humans sharing the keyboard.

Controls:
  Left/Right/h/l  - Choose a display or the center
  Up/Down/j/k     - Choose a color
  Enter/Space     - Take the tiles
  1-5             - Place on a pattern line
  F/0             - Place on the floor line
  R               - New game (after game over)
  Esc/B           - Back to setup
  Q/Ctrl+C        - Quit

Examples:
  azul play
  azul play --bots 3
  azul play --name ada --strategy random
  azul play --seed 42`,
	Run: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagName, "name", "", "Your name (default: login name)")
	playCmd.Flags().IntVar(&flagBots, "bots", 1, "Computer opponents seated by default (1-3)")
	playCmd.Flags().StringVar(&flagStrategy, "strategy", "", "Strategy of the computer opponents (default from config)")
}

func runPlay(_ *cobra.Command, _ []string) {
	cfg := mustLoadConfig()

	strategy := flagStrategy
	if strategy == "" {
		strategy = cfg.BotStrategy()
	}
	if !registry.Exists(strategy) {
		fmt.Fprintf(os.Stderr, "Error: unknown strategy %q\n", strategy)
		fmt.Fprintln(os.Stderr, "Run 'azul strategies' to see available strategies.")
		os.Exit(1)
	}

	name := flagName
	if name == "" {
		name = "You"
		if u, err := user.Current(); err == nil && u.Username != "" {
			name = u.Username
		}
	}

	// Open game storage
	store, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open games database: %v\n", err)
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	width, height := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}

	// The terminal belongs to the UI; only errors reach the log.
	logger := newLogger(cfg)
	if logger.GetLevel() < log.ErrorLevel {
		logger.SetLevel(log.ErrorLevel)
	}

	coord := multiplayer.NewCoordinator(coordinatorConfig(cfg), logger)
	if store != nil {
		coord.SetResultSaver(store)
	}
	coord.Start()
	defer coord.Stop()

	opts := tui.SetupOptions{Name: name, Bots: flagBots, Strategy: strategy}
	if err := tui.Run(coord, store, opts, width, height); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
