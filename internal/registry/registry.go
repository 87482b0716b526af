// Package registry provides a global registry for computer player strategies.
// Strategies register themselves in init() functions, allowing the platform
// to discover and instantiate bots without hardcoded dependencies.
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/vovakirdan/tui-azul/internal/azul"
)

// Strategy picks moves for a computer player.
// Strategies see only snapshots and never mutate a game. A strategy holding
// resources also implements io.Closer; its owner closes it when the game is
// dropped.
type Strategy interface {
	// ID returns the identifier used in config files and CLI flags (e.g. "greedy").
	ID() string

	// Choose returns the move to play for playerID. It is only called when
	// azul.LegalMoves(snap, playerID) is non-empty, and must return one of
	// those moves.
	Choose(ctx context.Context, snap azul.Snapshot, playerID uuid.UUID) (azul.Move, error)
}

// Options configures a strategy instance.
type Options struct {
	Seed       int64  // random source for strategies that need one
	ScriptPath string // script file for scripted strategies
}

// StrategyInfo contains metadata about a registered strategy.
type StrategyInfo struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// Factory is a function that creates a new instance of a strategy.
type Factory func(opts Options) (Strategy, error)

var (
	factories    = make(map[string]Factory)
	descriptions = make(map[string]string)
	mu           sync.RWMutex
)

// Register adds a strategy factory to the registry.
// Typically called from a strategy's init() function.
// Panics if a strategy with the same ID is already registered.
func Register(id, description string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: strategy %q already registered", id))
	}

	factories[id] = f
	descriptions[id] = description
}

// List returns information about all registered strategies, sorted by ID.
func List() []StrategyInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]StrategyInfo, 0, len(factories))
	for id := range factories {
		result = append(result, StrategyInfo{
			ID:          id,
			Description: descriptions[id],
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Create instantiates a new strategy by its ID.
// Returns an error if the strategy ID is not registered or the factory fails.
func Create(id string, opts Options) (Strategy, error) {
	mu.RLock()
	f, ok := factories[id]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("registry: unknown strategy %q", id)
	}

	s, err := f(opts)
	if err != nil {
		return nil, fmt.Errorf("registry: create %q: %w", id, err)
	}
	return s, nil
}

// Exists checks if a strategy with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
