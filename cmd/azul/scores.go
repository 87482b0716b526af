package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-azul/internal/platform/tui"
	"github.com/vovakirdan/tui-azul/internal/storage"
)

var (
	flagScoresLimit  int
	flagScoresPlayer string
	flagScoresRecent bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show high scores and player statistics",
	Long: `Display the best scores of finished games. On a terminal the interactive
scoreboard opens; otherwise a plain table is printed.

Examples:
  azul scores
  azul scores --limit 20
  azul scores --recent
  azul scores --player ada`,
	Run: runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of entries to show")
	scoresCmd.Flags().StringVar(&flagScoresPlayer, "player", "", "Show statistics of one player")
	scoresCmd.Flags().BoolVar(&flagScoresRecent, "recent", false, "Show recent games instead of top scores")
}

func runScores(_ *cobra.Command, _ []string) {
	cfg := mustLoadConfig()

	store, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening games database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	interactive := flagScoresPlayer == "" && !flagScoresRecent && term.IsTerminal(int(os.Stdout.Fd()))
	if interactive {
		width, height := 80, 24
		if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			width, height = w, h
		}
		if _, err := tui.RunScoreboard(store, width, height); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	switch {
	case flagScoresPlayer != "":
		err = printPlayerStats(store, flagScoresPlayer)
	case flagScoresRecent:
		err = printRecentGames(store, flagScoresLimit)
	default:
		err = printTopScores(store, flagScoresLimit)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving scores: %v\n", err)
		os.Exit(1)
	}
}

func printTopScores(store *storage.Store, limit int) error {
	scores, err := store.TopScores(limit)
	if err != nil {
		return err
	}

	fmt.Println("High Scores")
	fmt.Println()
	if len(scores) == 0 {
		fmt.Println("No games recorded yet.")
		fmt.Println()
		fmt.Println("Play 'azul play' to set the first high score!")
		return nil
	}

	fmt.Printf("  %-4s  %-16s  %-10s  %-6s  %s\n", "Rank", "Player", "Strategy", "Score", "Date")
	fmt.Printf("  %-4s  %-16s  %-10s  %-6s  %s\n", "----", "------", "--------", "-----", "----")
	for i, e := range scores {
		strategy := e.Strategy
		if strategy == "" {
			strategy = "-"
		}
		name := e.Name
		if e.Winner {
			name += " *"
		}
		fmt.Printf("  %-4d  %-16s  %-10s  %-6d  %s\n", i+1, name, strategy, e.Score, e.EndedAt.Format("2006-01-02 15:04"))
	}
	fmt.Println()
	fmt.Println("* won the game")
	return nil
}

func printRecentGames(store *storage.Store, limit int) error {
	games, err := store.RecentGames(limit)
	if err != nil {
		return err
	}

	fmt.Println("Recent Games")
	fmt.Println()
	if len(games) == 0 {
		fmt.Println("No games recorded yet.")
		return nil
	}

	for _, g := range games {
		var seats []string
		for _, p := range g.Players {
			seats = append(seats, fmt.Sprintf("%s %d", p.Name, p.Score))
		}
		fmt.Printf("  %s  %d rounds  %s  (won by %s)\n",
			g.EndedAt.Format("2006-01-02 15:04"), g.Rounds, strings.Join(seats, ", "), strings.Join(g.Winners(), ", "))
	}
	return nil
}

func printPlayerStats(store *storage.Store, name string) error {
	stats, err := store.PlayerStats(name)
	if err != nil {
		return err
	}
	if stats == nil || stats.Games == 0 {
		fmt.Printf("No games recorded for %s.\n", name)
		return nil
	}

	fmt.Printf("Player - %s\n", stats.Name)
	fmt.Println()
	fmt.Printf("  Games:       %d\n", stats.Games)
	fmt.Printf("  Wins:        %d\n", stats.Wins)
	fmt.Printf("  Best score:  %d\n", stats.HighScore)
	fmt.Printf("  Avg score:   %.1f\n", stats.AvgScore)
	fmt.Printf("  Last played: %s\n", stats.LastPlayed.Format("2006-01-02 15:04"))
	return nil
}
