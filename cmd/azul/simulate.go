package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-azul/internal/azul"
	"github.com/vovakirdan/tui-azul/internal/multiplayer"
	"github.com/vovakirdan/tui-azul/internal/registry"
	"github.com/vovakirdan/tui-azul/internal/storage"
)

var (
	flagSimGames      int
	flagSimPlayers    int
	flagSimStrategies string
	flagSimParallel   int
	flagSimSave       bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Let computer players play full games headless",
	Long: `Seat only computer players and play complete games without a UI.
Strategies are assigned to the seats in turn, so two strategies at a
four player table play two seats each.

Examples:
  azul simulate
  azul simulate --games 500 --players 4 --strategies greedy,cautious
  azul simulate --games 20 --save --seed 7`,
	Run: runSimulate,
}

func init() {
	simulateCmd.Flags().IntVar(&flagSimGames, "games", 10, "Number of games to play")
	simulateCmd.Flags().IntVar(&flagSimPlayers, "players", 2, "Players per table (2-4)")
	simulateCmd.Flags().StringVar(&flagSimStrategies, "strategies", "greedy,random", "Comma separated strategies assigned to the seats in turn")
	simulateCmd.Flags().IntVar(&flagSimParallel, "parallel", 4, "Games played at the same time")
	simulateCmd.Flags().BoolVar(&flagSimSave, "save", false, "Save finished games to the database")
}

// resultCollector hands finished games to the simulation and optionally
// stores them.
type resultCollector struct {
	results chan azul.GameResult
	store   *storage.Store
}

func (rc *resultCollector) SaveGameResult(res azul.GameResult) error {
	rc.results <- res
	if rc.store == nil {
		return nil
	}
	return rc.store.SaveGameResult(res)
}

// strategyStats aggregates the results of one strategy.
type strategyStats struct {
	seats int
	wins  int
	total int
	best  int
}

func runSimulate(_ *cobra.Command, _ []string) {
	cfg := mustLoadConfig()
	logger := newLogger(cfg)

	if flagSimGames < 1 {
		fmt.Fprintln(os.Stderr, "Error: --games must be at least 1")
		os.Exit(1)
	}
	if flagSimPlayers < azul.MinPlayers || flagSimPlayers > azul.MaxPlayers {
		fmt.Fprintf(os.Stderr, "Error: --players must be between %d and %d\n", azul.MinPlayers, azul.MaxPlayers)
		os.Exit(1)
	}
	strategies := splitStrategies(flagSimStrategies)
	if len(strategies) == 0 {
		fmt.Fprintln(os.Stderr, "Error: --strategies is empty")
		os.Exit(1)
	}
	for _, s := range strategies {
		if !registry.Exists(s) {
			fmt.Fprintf(os.Stderr, "Error: unknown strategy %q\n", s)
			fmt.Fprintln(os.Stderr, "Run 'azul strategies' to see available strategies.")
			os.Exit(1)
		}
	}
	parallel := max(flagSimParallel, 1)

	collector := &resultCollector{results: make(chan azul.GameResult, flagSimGames)}
	if flagSimSave {
		store, err := storage.Open(cfg.Storage.DBPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening games database: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		collector.store = store
	}

	cc := coordinatorConfig(cfg)
	cc.BotDelay = 0
	cc.CleanupPeriod = 0
	coord := multiplayer.NewCoordinator(cc, logger.WithPrefix("coordinator"))
	coord.SetResultSaver(collector)
	defer coord.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats := make(map[string]*strategyStats)
	seatStrategy := make(map[string]string) // player id -> strategy
	started, finished, inFlight := 0, 0, 0

	for finished < flagSimGames {
		for inFlight < parallel && started < flagSimGames {
			specs := make([]multiplayer.PlayerSpec, flagSimPlayers)
			for i := range specs {
				strategy := strategies[(started+i)%len(strategies)]
				specs[i] = multiplayer.Bot(fmt.Sprintf("%s %d", strategy, i+1), strategy)
				seatStrategy[specs[i].ID.String()] = strategy
			}
			snap, err := coord.CreateGame(specs)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
				os.Exit(1)
			}
			logger.Debug("game started", "game", snap.GameID, "number", started+1)
			started++
			inFlight++
		}

		select {
		case <-ctx.Done():
			logger.Warn("simulation interrupted", "finished", finished, "games", flagSimGames)
			printSimulation(stats, finished)
			return
		case res := <-collector.results:
			finished++
			inFlight--
			record(stats, seatStrategy, res)
			_ = coord.Abandon(res.GameID)
			logger.Info("game finished", "game", res.GameID, "number", finished, "rounds", res.Rounds, "winners", winnerNames(res))
		}
	}

	printSimulation(stats, finished)
}

func splitStrategies(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func record(stats map[string]*strategyStats, seatStrategy map[string]string, res azul.GameResult) {
	for _, p := range res.Players {
		id := p.PlayerID.String()
		strategy := seatStrategy[id]
		delete(seatStrategy, id)

		s, ok := stats[strategy]
		if !ok {
			s = &strategyStats{}
			stats[strategy] = s
		}
		s.seats++
		s.total += p.Score
		s.best = max(s.best, p.Score)
		if p.Winner {
			s.wins++
		}
	}
}

func winnerNames(res azul.GameResult) string {
	var names []string
	for _, p := range res.Players {
		if p.Winner {
			names = append(names, p.Name)
		}
	}
	return strings.Join(names, ", ")
}

func printSimulation(stats map[string]*strategyStats, games int) {
	fmt.Printf("Simulation - %d games\n", games)
	fmt.Println()
	if games == 0 {
		return
	}

	ids := make([]string, 0, len(stats))
	for id := range stats {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Printf("  %-10s  %-6s  %-6s  %-7s  %-9s  %s\n", "Strategy", "Seats", "Wins", "Win %", "Avg score", "Best")
	fmt.Printf("  %-10s  %-6s  %-6s  %-7s  %-9s  %s\n", "--------", "-----", "----", "-----", "---------", "----")
	for _, id := range ids {
		s := stats[id]
		winRate := 100 * float64(s.wins) / float64(s.seats)
		avg := float64(s.total) / float64(s.seats)
		fmt.Printf("  %-10s  %-6d  %-6d  %-7.1f  %-9.1f  %d\n", id, s.seats, s.wins, winRate, avg, s.best)
	}
}
