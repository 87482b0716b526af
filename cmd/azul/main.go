// azul runs the Azul tile-drafting game in the terminal, over SSH and over
// WebSocket.
//
// Usage:
//
//	azul play               - Play at this terminal against bots or friends
//	azul serve              - Start the SSH and WebSocket servers
//	azul simulate           - Let bots play full games headless
//	azul scores             - Show high scores and player statistics
//	azul strategies         - List computer player strategies
//
// Global flags:
//
//	--config <path>     - Path to a custom azul.yaml
//	--log-level <level> - debug, info, warn or error
//	--seed <value>      - RNG seed for reproducible tables
//	--db <path>         - Database path (default: ~/.azul/azul.db)
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-azul/internal/azul"
	"github.com/vovakirdan/tui-azul/internal/config"
	"github.com/vovakirdan/tui-azul/internal/multiplayer"

	// Import bots to register their strategies
	_ "github.com/vovakirdan/tui-azul/internal/bot"
)

var (
	// Global flags
	flagConfig   string
	flagLogLevel string
	flagSeed     int64
	flagDBPath   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "azul",
	Short: "Azul - draft tiles and decorate the palace wall",
	Long: `Azul is a rules engine for the tile-drafting board game with a terminal
frontend, an SSH server and a WebSocket server.

Available commands:
  play        - Play at this terminal
  serve       - Start the SSH and WebSocket servers
  simulate    - Let bots play full games headless
  scores      - View high scores and player statistics
  strategies  - List computer player strategies

Examples:
  azul play
  azul play --bots 3 --strategy cautious
  azul serve --ssh :2222 --ws :8080
  azul simulate --games 100 --strategies greedy,random
  azul scores --player ada`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom azul.yaml")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (default from config)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = from config, then the clock)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to the games database (default from config)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(strategiesCmd)
}

// mustLoadConfig loads the configuration and applies the global flags.
func mustLoadConfig() config.Config {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	if flagSeed != 0 {
		cfg.Table.Seed = flagSeed
	}
	if flagDBPath != "" {
		cfg.Storage.DBPath = flagDBPath
	}
	return cfg
}

func newLogger(cfg config.Config) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "azul",
	})
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.Warn("unknown log level, using info", "level", cfg.Log.Level)
		level = log.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// coordinatorConfig maps the configuration onto the coordinator.
func coordinatorConfig(cfg config.Config) multiplayer.CoordinatorConfig {
	cc := multiplayer.DefaultCoordinatorConfig()
	cc.Table = azul.TablePreferences{DisplaysByPlayers: cfg.Table.DisplaysByPlayers}
	cc.Seed = cfg.Table.Seed
	cc.BotDelay = cfg.Bots.ThinkDelay
	cc.LuaScript = config.ExpandPath(cfg.Bots.LuaScript)
	cc.IdleTTL = cfg.Server.GameIdleTTL
	return cc
}
